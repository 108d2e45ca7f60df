/*
 * Copyright 2025 The Daemondex Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

import "time"

// HealthStatus is the outcome of one health check against a daemon URL.
// The individual probe booleans are kept so callers can see which probe
// produced the resolved status.
type HealthStatus struct {
	URL          string       `json:"url"`
	Status       DaemonStatus `json:"status"`
	Healthy      bool         `json:"healthy"`
	MCPReachable bool         `json:"mcp_reachable"`
	WebReachable bool         `json:"web_reachable"`
	DocVerified  bool         `json:"doc_verified"`
	CheckedAt    time.Time    `json:"checked_at"`
}

// VerifyResult is the fail-closed outcome of a daemon.md verification.
// Network and timeout failures are folded into Error, never raised.
type VerifyResult struct {
	Verified bool   `json:"verified"`
	Error    string `json:"error,omitempty"`
}

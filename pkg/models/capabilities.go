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

// ToolInfo is one advertised tool from a daemon's tools/list response.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// DaemonCapabilities reports what a remote daemon's query endpoint
// supports. Probe failures are reduced to SupportsMCP=false plus a
// human-readable Error; CheckedAt is stamped either way.
type DaemonCapabilities struct {
	URL         string     `json:"url"`
	SupportsMCP bool       `json:"supports_mcp"`
	Tools       []ToolInfo `json:"tools,omitempty"`
	Error       string     `json:"error,omitempty"`
	CheckedAt   time.Time  `json:"checked_at"`
}

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

// AnnounceRequest is a self-announced daemon submission. URL and Owner are
// required; everything else is optional metadata.
type AnnounceRequest struct {
	URL      string   `json:"url"`
	Owner    string   `json:"owner"`
	Role     string   `json:"role,omitempty"`
	Focus    []string `json:"focus,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	Protocol string   `json:"protocol,omitempty"`
	MCPURL   string   `json:"mcp_url,omitempty"`
}

// AnnounceResult is the discriminated outcome of one announce call. A
// duplicate announce carries the pre-existing entry with Success=false; a
// rate-limited announce carries RateLimited=true and retry-after guidance.
type AnnounceResult struct {
	Success     bool         `json:"success"`
	Message     string       `json:"message,omitempty"`
	Entry       *DaemonEntry `json:"daemon,omitempty"`
	RateLimited bool         `json:"rate_limited,omitempty"`
	Remaining   int          `json:"remaining_announces,omitempty"`
	ResetIn     Duration     `json:"reset_in,omitempty"`
}

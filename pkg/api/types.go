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

package api

import (
	"time"

	"github.com/daemondex/daemondex/pkg/models"
)

// SearchResponse wraps search results with a convenience count.
type SearchResponse struct {
	Results []*models.DaemonEntry `json:"results"`
	Count   int                   `json:"count"`
}

// HealthCheckRequest names the daemon URL to probe.
type HealthCheckRequest struct {
	URL string `json:"url"`
}

// CapabilitiesRequest names the daemon to interrogate, with an optional
// MCP endpoint override.
type CapabilitiesRequest struct {
	URL    string `json:"url"`
	MCPURL string `json:"mcp_url,omitempty"`
}

// StreamMessage is one frame on the websocket activity stream. Type is
// "data" for an activity event and "ping" for a keepalive.
type StreamMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

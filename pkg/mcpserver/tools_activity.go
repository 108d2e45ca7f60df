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

package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/daemondex/daemondex/pkg/models"
)

// ActivityArgs represents arguments for the get_recent_activity tool.
type ActivityArgs struct {
	Type  string `json:"type,omitempty"`  // Event type filter: daemon_announced, health_changed, or daemon_verified
	Limit int    `json:"limit,omitempty"` // Max events to return (default 20)
}

// registerActivityTools registers the activity feed tool.
func (s *Server) registerActivityTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "get_recent_activity",
		Description: "Get recent registry activity events, newest first. Optionally filter by event type.",
		InputSchema: inputSchema(map[string]any{
			"type":  map[string]any{"type": "string", "description": "Event type filter: daemon_announced, health_changed, or daemon_verified"},
			"limit": map[string]any{"type": "integer", "description": "Max events to return (default 20)"},
		}, nil),
	}, s.handleGetRecentActivity)
}

func (s *Server) handleGetRecentActivity(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args ActivityArgs
	if req.Params.Arguments != nil {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err))
		}
	}

	return textResult(s.registry.Activity(ctx, models.EventType(args.Type), args.Limit))
}

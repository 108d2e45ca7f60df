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

// mcpClientKey is the rate-limit bucket shared by announces arriving
// through the MCP surface; tool calls carry no usable client address.
const mcpClientKey = "mcp"

// SearchArgs represents arguments for the search_daemons tool.
type SearchArgs struct {
	Query  string `json:"query,omitempty"`  // Substring match on owner, role, focus, and URL
	Tag    string `json:"tag,omitempty"`    // Exact tag match, case-insensitive
	Status string `json:"status,omitempty"` // Health status filter: mcp, web, or offline
}

// registerDaemonTools registers the announce, search, and list tools.
func (s *Server) registerDaemonTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "announce_daemon",
		Description: "Register a daemon endpoint with the registry. The daemon.md document is verified at announce time and announces are rate limited per client.",
		InputSchema: inputSchema(map[string]any{
			"url":      map[string]any{"type": "string", "description": "Daemon endpoint URL (http or https)"},
			"owner":    map[string]any{"type": "string", "description": "Owner of the daemon"},
			"role":     map[string]any{"type": "string", "description": "Role the daemon serves"},
			"focus":    map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Focus areas"},
			"tags":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Tags for search"},
			"protocol": map[string]any{"type": "string", "description": "Preferred protocol"},
			"mcp_url":  map[string]any{"type": "string", "description": "Alternate MCP endpoint URL"},
		}, []string{"url", "owner"}),
	}, s.handleAnnounceDaemon)

	s.server.AddTool(&mcp.Tool{
		Name:        "search_daemons",
		Description: "Search registered daemons by free-text query, tag, or health status. All filters are optional and combine with AND.",
		InputSchema: inputSchema(map[string]any{
			"query":  map[string]any{"type": "string", "description": "Substring match on owner, role, focus, and URL"},
			"tag":    map[string]any{"type": "string", "description": "Exact tag match, case-insensitive"},
			"status": map[string]any{"type": "string", "description": "Health status filter: mcp, web, or offline"},
		}, nil),
	}, s.handleSearchDaemons)

	s.server.AddTool(&mcp.Tool{
		Name:        "list_daemons",
		Description: "List every registered daemon with its current health state.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, s.handleListDaemons)
}

func (s *Server) handleAnnounceDaemon(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var announce models.AnnounceRequest
	if err := json.Unmarshal(req.Params.Arguments, &announce); err != nil {
		return toolError(fmt.Errorf("invalid arguments: %w", err))
	}

	result, err := s.registry.Announce(ctx, &announce, mcpClientKey)
	if err != nil {
		return toolError(err)
	}

	return textResult(result)
}

func (s *Server) handleSearchDaemons(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args SearchArgs
	if req.Params.Arguments != nil {
		if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
			return toolError(fmt.Errorf("invalid arguments: %w", err))
		}
	}

	results := s.registry.Search(ctx, args.Query, args.Tag, args.Status)
	if results == nil {
		results = []*models.DaemonEntry{}
	}

	return textResult(map[string]any{
		"results": results,
		"count":   len(results),
	})
}

func (s *Server) handleListDaemons(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return textResult(s.registry.List(ctx))
}

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
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var errURLRequired = errors.New("url is required")

// HealthCheckArgs represents arguments for the check_daemon_health tool.
type HealthCheckArgs struct {
	URL string `json:"url"` // Daemon endpoint URL
}

// CapabilitiesArgs represents arguments for the
// discover_daemon_capabilities tool.
type CapabilitiesArgs struct {
	URL    string `json:"url"`               // Daemon endpoint URL
	MCPURL string `json:"mcp_url,omitempty"` // Alternate MCP endpoint to probe instead
}

// registerHealthTools registers the on-demand probe tools.
func (s *Server) registerHealthTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "check_daemon_health",
		Description: "Run an immediate health check against a daemon endpoint and persist the outcome when the daemon is registered.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Daemon endpoint URL"},
		}, []string{"url"}),
	}, s.handleCheckDaemonHealth)

	s.server.AddTool(&mcp.Tool{
		Name:        "discover_daemon_capabilities",
		Description: "Probe a daemon's MCP endpoint and list the tools it advertises.",
		InputSchema: inputSchema(map[string]any{
			"url":     map[string]any{"type": "string", "description": "Daemon endpoint URL"},
			"mcp_url": map[string]any{"type": "string", "description": "Alternate MCP endpoint to probe instead"},
		}, []string{"url"}),
	}, s.handleDiscoverCapabilities)
}

func (s *Server) handleCheckDaemonHealth(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args HealthCheckArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Errorf("invalid arguments: %w", err))
	}

	if args.URL == "" {
		return toolError(errURLRequired)
	}

	status, err := s.registry.HealthCheck(ctx, args.URL)
	if err != nil {
		return toolError(err)
	}

	return textResult(status)
}

func (s *Server) handleDiscoverCapabilities(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var args CapabilitiesArgs
	if err := json.Unmarshal(req.Params.Arguments, &args); err != nil {
		return toolError(fmt.Errorf("invalid arguments: %w", err))
	}

	if args.URL == "" {
		return toolError(errURLRequired)
	}

	return textResult(s.registry.DiscoverCapabilities(ctx, args.URL, args.MCPURL))
}

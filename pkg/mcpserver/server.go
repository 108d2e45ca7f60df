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
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	dxhttp "github.com/daemondex/daemondex/pkg/http"
	"github.com/daemondex/daemondex/pkg/logger"
)

const (
	serverName    = "daemondex"
	serverVersion = "1.0.0"
)

// Config holds configuration for the MCP surface.
type Config struct {
	Enabled bool   `json:"enabled"`
	APIKey  string `json:"api_key,omitempty"`
}

// Server adapts the daemon registry to MCP tool calls.
type Server struct {
	registry DaemonRegistry
	logger   logger.Logger
	config   *Config
	server   *mcp.Server
}

// NewServer creates the MCP server and registers all registry tools on
// it. A nil config enables the surface with no API key.
func NewServer(registry DaemonRegistry, log logger.Logger, config *Config) *Server {
	if config == nil {
		config = &Config{Enabled: true}
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	s := &Server{
		registry: registry,
		logger:   log,
		config:   config,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    serverName,
			Version: serverVersion,
		}, nil),
	}

	s.registerDaemonTools()
	s.registerHealthTools()
	s.registerActivityTools()

	return s
}

// Server returns the underlying MCP server, used to attach transports
// directly.
func (s *Server) Server() *mcp.Server {
	return s.server
}

// Handler returns the streamable HTTP handler for the MCP endpoint, or
// nil when the surface is disabled. A configured API key guards every
// request.
func (s *Server) Handler() http.Handler {
	if !s.config.Enabled {
		s.logger.Info().Msg("MCP surface disabled")

		return nil
	}

	handler := mcp.NewStreamableHTTPHandler(func(_ *http.Request) *mcp.Server {
		return s.server
	}, nil)

	return dxhttp.APIKeyMiddleware(s.config.APIKey, s.logger)(handler)
}

// inputSchema builds the JSON schema object describing a tool's
// arguments.
func inputSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// textResult marshals v into the tool call's text content.
func textResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return toolError(fmt.Errorf("failed to marshal result: %w", err))
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
	}, nil
}

// toolError reports err as a tool-level failure rather than a protocol
// error, so clients see the message in the call result.
func toolError(err error) (*mcp.CallToolResult, error) {
	var res mcp.CallToolResult

	res.SetError(err)

	return &res, nil
}

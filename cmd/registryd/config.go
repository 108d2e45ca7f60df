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

package main

import (
	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/mcpserver"
	"github.com/daemondex/daemondex/pkg/models"
)

const defaultListenAddr = ":8090"

// RegistrySettings tunes announce handling and the seed list.
type RegistrySettings struct {
	// SeedFile overrides the embedded seed list. JSON or YAML by
	// extension.
	SeedFile string `json:"seed_file,omitempty"`
	// AnnounceWindow is the rate limit window per client. Defaults to
	// one hour.
	AnnounceWindow models.Duration `json:"announce_window,omitempty"`
	// AnnounceLimit caps announces per client per window. Defaults
	// to 5.
	AnnounceLimit int `json:"announce_limit,omitempty"`
}

// HealthSettings tunes the background sweeper and outbound probes.
type HealthSettings struct {
	// Interval between sweeper ticks. Defaults to one minute.
	Interval models.Duration `json:"interval,omitempty"`
	// Timeout bounds each outbound probe. Defaults to 10 seconds.
	Timeout models.Duration `json:"timeout,omitempty"`
}

// ServerConfig is the registryd configuration file.
type ServerConfig struct {
	ListenAddr string            `json:"listen_addr"`
	APIKey     string            `json:"api_key,omitempty"`
	CORS       models.CORSConfig `json:"cors,omitempty"`
	KV         kv.Config         `json:"kv,omitempty"`
	Logging    *logger.Config    `json:"logging,omitempty"`
	Registry   RegistrySettings  `json:"registry,omitempty"`
	Health     HealthSettings    `json:"health,omitempty"`
	MCP        *mcpserver.Config `json:"mcp,omitempty"`
}

// Validate applies defaults and validates the nested store config. The
// MCP surface is enabled unless the config says otherwise.
func (c *ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}

	if c.MCP == nil {
		c.MCP = &mcpserver.Config{Enabled: true}
	}

	return c.KV.Validate()
}

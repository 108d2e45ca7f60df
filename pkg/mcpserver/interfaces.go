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

// Package mcpserver exposes registry operations as Model Context
// Protocol tools, served over streamable HTTP alongside the JSON API.
package mcpserver

//go:generate mockgen -destination=mock_mcpserver.go -package=mcpserver github.com/daemondex/daemondex/pkg/mcpserver DaemonRegistry

import (
	"context"

	"github.com/daemondex/daemondex/pkg/models"
)

// DaemonRegistry is the slice of the registry facade the MCP tools call
// into. Implemented by registry.Service.
type DaemonRegistry interface {
	Announce(ctx context.Context, req *models.AnnounceRequest, clientKey string) (*models.AnnounceResult, error)
	Search(ctx context.Context, query, tag, status string) []*models.DaemonEntry
	List(ctx context.Context) *models.RegistrySnapshot
	HealthCheck(ctx context.Context, rawURL string) (*models.HealthStatus, error)
	Activity(ctx context.Context, eventType models.EventType, limit int) *models.ActivityPage
	DiscoverCapabilities(ctx context.Context, rawURL, mcpURLOverride string) models.DaemonCapabilities
}

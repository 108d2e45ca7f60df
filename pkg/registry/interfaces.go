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

// Package registry holds the daemon directory: seed entries merged with a
// KV-backed overlay of announced daemons, plus the announce, search, health
// and activity operations layered on top of it.
package registry

import (
	"context"

	"github.com/daemondex/daemondex/pkg/daemonmd"
	"github.com/daemondex/daemondex/pkg/models"
)

//go:generate mockgen -destination=mock_registry.go -package=registry github.com/daemondex/daemondex/pkg/registry HealthChecker,CapabilityProber,Verifier

// HealthChecker probes one daemon and reports its reachability.
// Implemented by health.Checker.
type HealthChecker interface {
	Check(ctx context.Context, rawURL, mcpURL string) *models.HealthStatus
}

// CapabilityProber lists the tools a daemon exposes over JSON-RPC.
// Implemented by probe.Client.
type CapabilityProber interface {
	Discover(ctx context.Context, rawURL, mcpURL string) models.DaemonCapabilities
}

// Verifier fetches and validates a daemon's daemon.md manifest.
// Implemented by daemonmd.Fetcher.
type Verifier interface {
	Verify(ctx context.Context, rawURL string) models.VerifyResult
	Fetch(ctx context.Context, rawURL string) (*daemonmd.Document, error)
}

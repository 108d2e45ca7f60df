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

// Package health determines per-daemon reachability tiers and runs the
// minute-slotted background sweep that keeps registry health state
// fresh.
package health

import (
	"context"
	"time"

	"github.com/daemondex/daemondex/pkg/models"
)

// Clock abstracts time-related operations.
type Clock interface {
	Now() time.Time
	Ticker(d time.Duration) Ticker
}

// Ticker abstracts the ticker behavior.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// MCPProber reports whether an endpoint answers a tools/list probe.
// Implemented by probe.Client.
type MCPProber interface {
	ProbeMCP(ctx context.Context, endpoint string) bool
}

// Verifier checks the daemon.md manifest at an endpoint. Implemented by
// daemonmd.Fetcher.
type Verifier interface {
	Verify(ctx context.Context, rawURL string) models.VerifyResult
}

// SweepRunner executes one sweep pass for a minute-of-hour. Implemented
// by the registry facade.
type SweepRunner interface {
	SweepDue(ctx context.Context, minute int) error
}

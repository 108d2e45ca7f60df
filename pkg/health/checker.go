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

package health

import (
	"context"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

const (
	defaultProbeTimeout = 10 * time.Second
	minutesPerHour      = 60
)

// CheckMinute maps a URL to its minute-of-hour slot via an FNV-1a hash.
// Deterministic per URL, so N entries spread their hourly checks across
// the 60 slots without coordination and re-deploys keep the schedule.
func CheckMinute(url string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(url))

	return int(h.Sum32() % minutesPerHour)
}

// CheckerConfig controls how health probes are issued.
type CheckerConfig struct {
	Timeout  time.Duration
	HTTP     *http.Client
	Prober   MCPProber
	Verifier Verifier
	Logger   logger.Logger
}

// Checker resolves one daemon's reachability tier from three parallel
// probes: a plain GET, a tools/list RPC probe, and the manifest
// verifier.
type Checker struct {
	client   *http.Client
	prober   MCPProber
	verifier Verifier
	logger   logger.Logger
}

func NewChecker(cfg CheckerConfig) *Checker {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Checker{
		client:   httpClient,
		prober:   cfg.Prober,
		verifier: cfg.Verifier,
		logger:   log,
	}
}

// Check probes the daemon and resolves its status. The RPC probe goes
// to mcpURL when set, else to the daemon URL. Probes run concurrently,
// each reduced to a bool behind its own timeout; no probe error ever
// escapes. Priority: RPC or verified manifest beats plain reachability.
func (c *Checker) Check(ctx context.Context, rawURL, mcpURL string) *models.HealthStatus {
	rpcEndpoint := rawURL
	if strings.TrimSpace(mcpURL) != "" {
		rpcEndpoint = mcpURL
	}

	var (
		webOK  bool
		rpcOK  bool
		verify models.VerifyResult
		wg     sync.WaitGroup
	)

	wg.Add(3)

	go func() {
		defer wg.Done()

		webOK = c.probeWeb(ctx, rawURL)
	}()

	go func() {
		defer wg.Done()

		rpcOK = c.prober.ProbeMCP(ctx, rpcEndpoint)
	}()

	go func() {
		defer wg.Done()

		verify = c.verifier.Verify(ctx, rawURL)
	}()

	wg.Wait()

	status := &models.HealthStatus{
		URL:          rawURL,
		MCPReachable: rpcOK,
		WebReachable: webOK,
		DocVerified:  verify.Verified,
		CheckedAt:    time.Now(),
	}

	switch {
	case rpcOK || verify.Verified:
		status.Status = models.StatusMCP
		status.Healthy = true
	case webOK:
		status.Status = models.StatusWeb
		status.Healthy = true
	default:
		status.Status = models.StatusOffline
		status.Healthy = false
	}

	c.logger.Debug().
		Str("url", rawURL).
		Str("status", string(status.Status)).
		Bool("mcp", rpcOK).
		Bool("web", webOK).
		Bool("doc", verify.Verified).
		Msg("Health check resolved")

	return status
}

// probeWeb reports plain HTTP reachability: any 2xx answer counts,
// redirects are followed by the client.
func (c *Checker) probeWeb(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

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

package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemondex/daemondex/pkg/daemonmd"
	"github.com/daemondex/daemondex/pkg/health"
	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

type stubChecker struct {
	mu       sync.Mutex
	statuses map[string]*models.HealthStatus
	calls    []string
	mcpURLs  map[string]string
}

func (c *stubChecker) Check(_ context.Context, rawURL, mcpURL string) *models.HealthStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls = append(c.calls, rawURL)
	c.mcpURLs[rawURL] = mcpURL

	if status, ok := c.statuses[rawURL]; ok {
		out := *status
		out.URL = rawURL

		if out.CheckedAt.IsZero() {
			out.CheckedAt = time.Now()
		}

		return &out
	}

	return &models.HealthStatus{URL: rawURL, Status: models.StatusOffline, CheckedAt: time.Now()}
}

func (c *stubChecker) checkedURLs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return append([]string(nil), c.calls...)
}

type stubVerifier struct {
	result models.VerifyResult
	doc    *daemonmd.Document
	calls  int
}

func (v *stubVerifier) Verify(context.Context, string) models.VerifyResult {
	v.calls++

	return v.result
}

func (v *stubVerifier) Fetch(context.Context, string) (*daemonmd.Document, error) {
	if v.doc == nil {
		return nil, errors.New("no document")
	}

	return v.doc, nil
}

type stubProber struct {
	caps        models.DaemonCapabilities
	gotURL      string
	gotOverride string
}

func (p *stubProber) Discover(_ context.Context, rawURL, mcpURL string) models.DaemonCapabilities {
	p.gotURL = rawURL
	p.gotOverride = mcpURL

	return p.caps
}

type serviceFixture struct {
	memory   *kv.MemoryStore
	checker  *stubChecker
	prober   *stubProber
	verifier *stubVerifier
	svc      *Service
}

func newTestService(t *testing.T, seed *models.SeedList) *serviceFixture {
	t.Helper()

	memory := kv.NewMemoryStore()
	log := logger.NewTestLogger()
	checker := &stubChecker{
		statuses: make(map[string]*models.HealthStatus),
		mcpURLs:  make(map[string]string),
	}
	prober := &stubProber{}
	verifier := &stubVerifier{result: models.VerifyResult{Error: "daemon.md too short: 0 bytes"}}

	svc := NewService(ServiceConfig{
		Store:    NewStore(memory, seed, log),
		Limiter:  NewRateLimiter(RateLimiterConfig{KV: memory, Logger: log}),
		Activity: NewActivityLog(memory, log),
		Checker:  checker,
		Prober:   prober,
		Verifier: verifier,
		Logger:   log,
	})

	return &serviceFixture{
		memory:   memory,
		checker:  checker,
		prober:   prober,
		verifier: verifier,
		svc:      svc,
	}
}

func searchSeed() *models.SeedList {
	return &models.SeedList{
		Version: "s",
		Daemons: []*models.DaemonEntry{
			{
				ID:       "com.example.weather.mira",
				URL:      "https://weather.example.com",
				Owner:    "Mira",
				Role:     "weather assistant",
				Focus:    []string{"forecasts"},
				Tags:     []string{"Weather", "public"},
				Verified: true,
				Status:   models.StatusMCP,
				Healthy:  true,
			},
			{
				ID:      "com.example.notes.theo",
				URL:     "https://notes.example.com",
				Owner:   "Theo",
				Role:    "notes archive",
				Focus:   []string{"knowledge"},
				Tags:    []string{"notes"},
				Status:  models.StatusWeb,
				Healthy: true,
			},
			{
				ID:     "com.example.idle.ida",
				URL:    "https://idle.example.com",
				Owner:  "Ida",
				Role:   "dormant",
				Status: models.StatusOffline,
			},
		},
	}
}

func TestAnnounceRegistersDaemon(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	result, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://x.example.com/",
		Owner: "Ada",
		Role:  "research assistant",
		Tags:  []string{"research"},
	}, "203.0.113.9")
	require.NoError(t, err)

	require.True(t, result.Success)
	require.NotNil(t, result.Entry)
	assert.Equal(t, "com.example.x.ada", result.Entry.ID)
	assert.Equal(t, "https://x.example.com", result.Entry.URL)
	assert.Equal(t, models.StatusWeb, result.Entry.Status)
	assert.True(t, result.Entry.Healthy)
	assert.False(t, result.Entry.Verified)
	assert.False(t, result.Entry.AnnouncedAt.IsZero())
	assert.Equal(t, 4, result.Remaining)

	snapshot := f.svc.List(ctx)
	require.NotNil(t, snapshot.FindByID("com.example.x.ada"))

	page := f.svc.Activity(ctx, "", 0)
	require.Len(t, page.Events, 1)
	assert.Equal(t, models.EventDaemonAnnounced, page.Events[0].Type)
	assert.Equal(t, "https://x.example.com", page.Events[0].DaemonURL)
	assert.Equal(t, "Ada", page.Events[0].DaemonOwner)
	assert.Equal(t, "com.example.x.ada", page.Events[0].Details["id"])
}

func TestAnnounceVerifiedDaemon(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	raw := "[identity]\nname: x\n\n[tools]\n- search"
	f.verifier.result = models.VerifyResult{Verified: true}
	f.verifier.doc = &daemonmd.Document{
		URL:       "https://x.example.com/daemon.md",
		Raw:       raw,
		Sections:  daemonmd.Parse(raw),
		FetchedAt: time.Now(),
	}

	result, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://x.example.com",
		Owner: "Ada",
	}, "203.0.113.9")
	require.NoError(t, err)

	require.True(t, result.Success)
	assert.Equal(t, models.StatusMCP, result.Entry.Status)
	assert.True(t, result.Entry.Verified)
	assert.False(t, result.Entry.VerifiedAt.IsZero())

	page := f.svc.Activity(ctx, "", 0)
	require.Len(t, page.Events, 2)
	assert.Equal(t, models.EventDaemonVerified, page.Events[0].Type)
	assert.Equal(t, "identity,tools", page.Events[0].Details["sections"])
	assert.Equal(t, models.EventDaemonAnnounced, page.Events[1].Type)
}

func TestAnnounceDuplicateURLIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	first, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://x.example.com/",
		Owner: "Ada",
	}, "203.0.113.9")
	require.NoError(t, err)
	require.True(t, first.Success)

	// Same endpoint, different spelling and announcer.
	second, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "HTTPS://X.EXAMPLE.COM",
		Owner: "Grace",
	}, "198.51.100.7")
	require.NoError(t, err)

	assert.False(t, second.Success)
	assert.Equal(t, "daemon already registered", second.Message)
	require.NotNil(t, second.Entry)
	assert.Equal(t, first.Entry.ID, second.Entry.ID)

	assert.Equal(t, 1, f.verifier.calls, "duplicate must not reach the verifier")

	page := f.svc.Activity(ctx, models.EventDaemonAnnounced, 0)
	assert.Equal(t, 1, page.Total, "duplicate must not append a second event")
}

func TestAnnounceDuplicateDerivedID(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	first, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://x.example.com/ada",
		Owner: "Somebody",
	}, "203.0.113.9")
	require.NoError(t, err)
	require.True(t, first.Success)
	require.Equal(t, "com.example.x.ada", first.Entry.ID)

	second, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://x.example.com",
		Owner: "Ada",
	}, "203.0.113.9")
	require.NoError(t, err)

	assert.False(t, second.Success)
	assert.Equal(t, first.Entry.URL, second.Entry.URL)
	assert.Equal(t, 1, f.verifier.calls)
}

func TestAnnounceValidation(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	_, err := f.svc.Announce(ctx, &models.AnnounceRequest{Owner: "Ada"}, "")
	require.ErrorIs(t, err, ErrMissingURL)

	_, err = f.svc.Announce(ctx, &models.AnnounceRequest{URL: "https://x.example.com", Owner: "   "}, "")
	require.ErrorIs(t, err, ErrMissingOwner)

	_, err = f.svc.Announce(ctx, &models.AnnounceRequest{URL: "ftp://x.example.com", Owner: "Ada"}, "")
	require.ErrorIs(t, err, ErrInvalidURL)

	_, err = f.svc.Announce(ctx, &models.AnnounceRequest{URL: "notaurl", Owner: "Ada"}, "")
	require.ErrorIs(t, err, ErrInvalidURL)

	assert.Zero(t, f.verifier.calls, "rejected input must never reach the network")
	assert.Zero(t, f.svc.Activity(ctx, "", 0).Total)
}

func TestAnnounceRateLimitExhaustion(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	for i := 0; i < defaultAnnounceLimit; i++ {
		result, err := f.svc.Announce(ctx, &models.AnnounceRequest{
			URL:   fmt.Sprintf("https://d%d.example.com", i),
			Owner: "Ada",
		}, "203.0.113.9")
		require.NoError(t, err)
		require.True(t, result.Success, "announce %d should pass", i+1)
		assert.Equal(t, defaultAnnounceLimit-i-1, result.Remaining)
	}

	denied, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://one-too-many.example.com",
		Owner: "Ada",
	}, "203.0.113.9")
	require.NoError(t, err)

	assert.False(t, denied.Success)
	assert.True(t, denied.RateLimited)
	assert.Greater(t, time.Duration(denied.ResetIn), time.Duration(0))

	assert.Equal(t, defaultAnnounceLimit, f.verifier.calls, "denied announce must not reach the verifier")
	assert.Nil(t, f.svc.List(ctx).FindByURL("https://one-too-many.example.com"))
}

func TestSearchFilters(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, searchSeed())

	tests := []struct {
		name    string
		query   string
		tag     string
		status  string
		wantIDs []string
	}{
		{
			name:    "no filters returns everything",
			wantIDs: []string{"com.example.weather.mira", "com.example.notes.theo", "com.example.idle.ida"},
		},
		{
			name:    "query matches owner case-insensitively",
			query:   "MIRA",
			wantIDs: []string{"com.example.weather.mira"},
		},
		{
			name:    "query matches focus",
			query:   "forecast",
			wantIDs: []string{"com.example.weather.mira"},
		},
		{
			name:    "query matches role",
			query:   "archive",
			wantIDs: []string{"com.example.notes.theo"},
		},
		{
			name:    "tag matches case-insensitively",
			tag:     "weather",
			wantIDs: []string{"com.example.weather.mira"},
		},
		{
			name:    "status matches exactly",
			status:  "offline",
			wantIDs: []string{"com.example.idle.ida"},
		},
		{
			name:    "query and status combine",
			query:   "example",
			status:  "mcp",
			wantIDs: []string{"com.example.weather.mira"},
		},
		{
			name:  "no match",
			query: "zzz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := f.svc.Search(ctx, tt.query, tt.tag, tt.status)

			ids := make([]string, 0, len(entries))
			for _, entry := range entries {
				ids = append(ids, entry.ID)
			}

			assert.ElementsMatch(t, tt.wantIDs, ids)
		})
	}
}

func TestHealthCheckRegisteredPersistsDelta(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, searchSeed())

	checkedAt := time.Now()
	f.checker.statuses["https://weather.example.com"] = &models.HealthStatus{
		Status:    models.StatusOffline,
		Healthy:   false,
		CheckedAt: checkedAt,
	}

	status, err := f.svc.HealthCheck(ctx, "https://weather.example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusOffline, status.Status)

	entry := f.svc.List(ctx).FindByURL("https://weather.example.com")
	require.NotNil(t, entry)
	assert.Equal(t, models.StatusOffline, entry.Status)
	assert.False(t, entry.Healthy)
	assert.Equal(t, checkedAt.Unix(), entry.LastChecked.Unix())

	page := f.svc.Activity(ctx, models.EventHealthChanged, 0)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "mcp", page.Events[0].Details["from"])
	assert.Equal(t, "offline", page.Events[0].Details["to"])
	assert.Equal(t, "Mira", page.Events[0].DaemonOwner)
}

func TestHealthCheckUnchangedStatusEmitsNoEvent(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, searchSeed())

	f.checker.statuses["https://notes.example.com"] = &models.HealthStatus{
		Status:  models.StatusWeb,
		Healthy: true,
	}

	_, err := f.svc.HealthCheck(ctx, "https://notes.example.com")
	require.NoError(t, err)

	entry := f.svc.List(ctx).FindByURL("https://notes.example.com")
	assert.False(t, entry.LastChecked.IsZero(), "last_checked is stamped even without a transition")
	assert.Zero(t, f.svc.Activity(ctx, models.EventHealthChanged, 0).Total)
}

func TestHealthCheckUnregisteredIsEphemeral(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, searchSeed())

	f.checker.statuses["https://ghost.example.com"] = &models.HealthStatus{
		Status:  models.StatusWeb,
		Healthy: true,
	}

	status, err := f.svc.HealthCheck(ctx, "https://ghost.example.com")
	require.NoError(t, err)
	assert.Equal(t, models.StatusWeb, status.Status)

	assert.Nil(t, f.svc.List(ctx).FindByURL("https://ghost.example.com"))
	assert.Zero(t, f.svc.Activity(ctx, "", 0).Total)
}

func TestHealthCheckPassesRegisteredMCPURL(t *testing.T) {
	ctx := context.Background()

	seed := searchSeed()
	seed.Daemons[0].MCPURL = "https://weather.example.com/mcp"
	f := newTestService(t, seed)

	_, err := f.svc.HealthCheck(ctx, "https://weather.example.com")
	require.NoError(t, err)

	assert.Equal(t, "https://weather.example.com/mcp", f.checker.mcpURLs["https://weather.example.com"])
}

func TestSweepDueChecksMatchingMinuteOnly(t *testing.T) {
	ctx := context.Background()

	seed := searchSeed()
	f := newTestService(t, seed)

	minute := health.CheckMinute(seed.Daemons[0].URL)

	expected := make([]string, 0, len(seed.Daemons))

	for _, entry := range seed.Daemons {
		// Keep non-transitioning outcomes so only slot membership matters.
		f.checker.statuses[entry.URL] = &models.HealthStatus{Status: entry.Status, Healthy: entry.Healthy}

		if health.CheckMinute(entry.URL) == minute {
			expected = append(expected, entry.URL)
		}
	}

	require.NoError(t, f.svc.SweepDue(ctx, minute))

	assert.ElementsMatch(t, expected, f.checker.checkedURLs())
}

func TestSweepPersistsTransitions(t *testing.T) {
	ctx := context.Background()

	seed := searchSeed()
	f := newTestService(t, seed)

	for _, entry := range seed.Daemons {
		f.checker.statuses[entry.URL] = &models.HealthStatus{Status: entry.Status, Healthy: entry.Healthy}
	}

	target := seed.Daemons[0]
	f.checker.statuses[target.URL] = &models.HealthStatus{Status: models.StatusOffline, Healthy: false}

	require.NoError(t, f.svc.SweepDue(ctx, health.CheckMinute(target.URL)))

	entry := f.svc.List(ctx).FindByURL(target.URL)
	require.NotNil(t, entry)
	assert.Equal(t, models.StatusOffline, entry.Status)
	assert.False(t, entry.Healthy)
	assert.False(t, entry.LastChecked.IsZero())

	page := f.svc.Activity(ctx, models.EventHealthChanged, 0)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, target.URL, page.Events[0].DaemonURL)
}

func TestSweepWithNoDueEntriesIsANoOp(t *testing.T) {
	ctx := context.Background()

	seed := searchSeed()
	f := newTestService(t, seed)

	occupied := make(map[int]bool, len(seed.Daemons))
	for _, entry := range seed.Daemons {
		occupied[health.CheckMinute(entry.URL)] = true
	}

	idle := -1

	for minute := 0; minute < 60; minute++ {
		if !occupied[minute] {
			idle = minute

			break
		}
	}

	require.NotEqual(t, -1, idle)

	require.NoError(t, f.svc.SweepDue(ctx, idle))
	assert.Empty(t, f.checker.checkedURLs())

	_, found, err := f.memory.Get(ctx, "daemons.overlay")
	require.NoError(t, err)
	assert.False(t, found, "an idle sweep must not write the overlay")
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, searchSeed())

	stats := f.svc.Stats(ctx)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.MCP)
	assert.Equal(t, 1, stats.Web)
	assert.Equal(t, 1, stats.Offline)
	assert.Equal(t, 2, stats.Healthy)
	assert.Equal(t, 1, stats.Verified)
	assert.Equal(t, "s", stats.Version)
}

func TestDiscoverCapabilitiesPassthrough(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	f.prober.caps = models.DaemonCapabilities{
		URL:         "https://x.example.com",
		SupportsMCP: true,
		Tools:       []models.ToolInfo{{Name: "search", Description: "find things"}},
	}

	caps := f.svc.DiscoverCapabilities(ctx, "https://x.example.com", "https://x.example.com/mcp")

	assert.True(t, caps.SupportsMCP)
	assert.Equal(t, "https://x.example.com", f.prober.gotURL)
	assert.Equal(t, "https://x.example.com/mcp", f.prober.gotOverride)
}

func TestSubscribeActivityStreamsAnnounces(t *testing.T) {
	ctx := context.Background()
	f := newTestService(t, &models.SeedList{})

	ch, cancel := f.svc.SubscribeActivity()
	defer cancel()

	_, err := f.svc.Announce(ctx, &models.AnnounceRequest{
		URL:   "https://x.example.com",
		Owner: "Ada",
	}, "203.0.113.9")
	require.NoError(t, err)

	select {
	case event := <-ch:
		assert.Equal(t, models.EventDaemonAnnounced, event.Type)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for streamed event")
	}
}

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
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/daemondex/daemondex/pkg/health"
	"github.com/daemondex/daemondex/pkg/identity"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

// ServiceConfig wires the facade's collaborators.
type ServiceConfig struct {
	Store    *Store
	Limiter  *RateLimiter
	Activity *ActivityLog
	Checker  HealthChecker
	Prober   CapabilityProber
	Verifier Verifier
	Logger   logger.Logger
}

// Service composes the store, rate limiter, verifier, health checker,
// capability prober and activity log into the registry operations served to
// the transport adapters.
type Service struct {
	store    *Store
	limiter  *RateLimiter
	activity *ActivityLog
	checker  HealthChecker
	prober   CapabilityProber
	verifier Verifier
	logger   logger.Logger
}

// NewService builds the registry facade.
func NewService(cfg ServiceConfig) *Service {
	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Service{
		store:    cfg.Store,
		limiter:  cfg.Limiter,
		activity: cfg.Activity,
		checker:  cfg.Checker,
		prober:   cfg.Prober,
		verifier: cfg.Verifier,
		logger:   log,
	}
}

// Announce runs the intake state machine: rate limit, duplicate check by
// URL then by derived ID, URL validation, verification, persist. Missing
// fields and malformed URLs return sentinel errors before any network or
// store access beyond the checks already made; rate-limit denial and
// duplicates are results, not errors.
func (s *Service) Announce(ctx context.Context, req *models.AnnounceRequest, clientKey string) (*models.AnnounceResult, error) {
	rawURL := strings.TrimSpace(req.URL)
	if rawURL == "" {
		return nil, ErrMissingURL
	}

	owner := strings.TrimSpace(req.Owner)
	if owner == "" {
		return nil, ErrMissingOwner
	}

	decision := s.limiter.Check(ctx, clientKey)
	if !decision.Allowed {
		return &models.AnnounceResult{
			Success:     false,
			Message:     "announce rate limit exceeded",
			RateLimited: true,
			ResetIn:     models.Duration(decision.ResetIn),
		}, nil
	}

	snapshot := s.store.Load(ctx)

	if existing := snapshot.FindByURL(rawURL); existing != nil {
		return &models.AnnounceResult{
			Success: false,
			Message: "daemon already registered",
			Entry:   existing,
		}, nil
	}

	id := identity.Derive(rawURL, owner)

	if existing := snapshot.FindByID(id); existing != nil {
		return &models.AnnounceResult{
			Success: false,
			Message: "daemon already registered",
			Entry:   existing,
		}, nil
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrInvalidURL
	}

	verify := s.verifier.Verify(ctx, rawURL)

	now := time.Now()
	entry := &models.DaemonEntry{
		ID:          id,
		URL:         strings.TrimRight(rawURL, "/"),
		Owner:       owner,
		Role:        strings.TrimSpace(req.Role),
		Focus:       append([]string(nil), req.Focus...),
		Tags:        append([]string(nil), req.Tags...),
		Protocol:    strings.TrimSpace(req.Protocol),
		MCPURL:      strings.TrimSpace(req.MCPURL),
		AnnouncedAt: now,
		Verified:    verify.Verified,
		VerifiedAt:  now,
		Healthy:     true,
		Status:      models.StatusWeb,
	}
	if verify.Verified {
		entry.Status = models.StatusMCP
	}

	if _, err := s.store.Mutate(ctx, func(snap *models.RegistrySnapshot) error {
		snap.Entries = append(snap.Entries, entry)

		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to persist announce: %w", err)
	}

	if err := s.limiter.Record(ctx, clientKey); err != nil {
		return nil, err
	}

	if err := s.appendAnnounceEvents(ctx, entry, verify); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("id", entry.ID).
		Str("url", entry.URL).
		Str("status", string(entry.Status)).
		Msg("Daemon announced")

	return &models.AnnounceResult{
		Success:   true,
		Message:   "daemon registered",
		Entry:     entry,
		Remaining: decision.Remaining,
	}, nil
}

// appendAnnounceEvents writes daemon_announced and, when verification
// succeeded, daemon_verified with the manifest's section names.
func (s *Service) appendAnnounceEvents(ctx context.Context, entry *models.DaemonEntry, verify models.VerifyResult) error {
	err := s.activity.Append(ctx, &models.ActivityEvent{
		Type:        models.EventDaemonAnnounced,
		DaemonURL:   entry.URL,
		DaemonOwner: entry.Owner,
		Details: map[string]string{
			"id":     entry.ID,
			"status": string(entry.Status),
		},
	})
	if err != nil {
		return err
	}

	if !verify.Verified {
		return nil
	}

	details := map[string]string{}

	// The verifier just fetched this document, so the cache serves it.
	if doc, docErr := s.verifier.Fetch(ctx, entry.URL); docErr == nil {
		if names := doc.SectionNames(); len(names) > 0 {
			details["sections"] = strings.Join(names, ",")
		}
	}

	return s.activity.Append(ctx, &models.ActivityEvent{
		Type:        models.EventDaemonVerified,
		DaemonURL:   entry.URL,
		DaemonOwner: entry.Owner,
		Details:     details,
	})
}

// Search filters the merged snapshot. query is a case-insensitive substring
// match across ID, URL, owner, role, focus and tags; tag matches one tag
// element case-insensitively; status matches exactly.
func (s *Service) Search(ctx context.Context, query, tag, status string) []*models.DaemonEntry {
	snapshot := s.store.Load(ctx)

	query = strings.ToLower(strings.TrimSpace(query))
	tag = strings.TrimSpace(tag)
	status = strings.TrimSpace(status)

	out := make([]*models.DaemonEntry, 0, len(snapshot.Entries))

	for _, entry := range snapshot.Entries {
		if query != "" && !matchesQuery(entry, query) {
			continue
		}

		if tag != "" && !hasTag(entry, tag) {
			continue
		}

		if status != "" && string(entry.Status) != status {
			continue
		}

		out = append(out, entry)
	}

	return out
}

func matchesQuery(entry *models.DaemonEntry, query string) bool {
	fields := []string{entry.ID, entry.URL, entry.Owner, entry.Role}
	fields = append(fields, entry.Focus...)
	fields = append(fields, entry.Tags...)

	for _, field := range fields {
		if strings.Contains(strings.ToLower(field), query) {
			return true
		}
	}

	return false
}

func hasTag(entry *models.DaemonEntry, tag string) bool {
	for _, t := range entry.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}

	return false
}

// List returns the merged snapshot.
func (s *Service) List(ctx context.Context) *models.RegistrySnapshot {
	return s.store.Load(ctx)
}

// HealthCheck probes one URL on demand. For registered URLs the resulting
// delta is persisted and a health_changed event is appended on status
// transitions; unregistered URLs are probed and reported without touching
// the store. The probe outcome is returned even when persisting it fails.
func (s *Service) HealthCheck(ctx context.Context, rawURL string) (*models.HealthStatus, error) {
	snapshot := s.store.Load(ctx)
	entry := snapshot.FindByURL(rawURL)

	mcpURL := ""
	if entry != nil {
		mcpURL = entry.MCPURL
	}

	status := s.checker.Check(ctx, rawURL, mcpURL)

	if entry == nil {
		return status, nil
	}

	return status, s.persistHealth(ctx, []*models.HealthStatus{status})
}

// SweepDue performs one scheduled pass: every entry whose minute slot
// matches the given minute is checked concurrently and all deltas land in a
// single overlay write. Individual probe failures are final results, never
// aborts.
func (s *Service) SweepDue(ctx context.Context, minute int) error {
	snapshot := s.store.Load(ctx)

	due := make([]*models.DaemonEntry, 0, len(snapshot.Entries))

	for _, entry := range snapshot.Entries {
		if health.CheckMinute(entry.URL) == minute {
			due = append(due, entry)
		}
	}

	if len(due) == 0 {
		return nil
	}

	s.logger.Debug().Int("minute", minute).Int("due", len(due)).Msg("Health sweep pass")

	statuses := make([]*models.HealthStatus, len(due))

	var wg sync.WaitGroup

	for i, entry := range due {
		wg.Add(1)

		go func(i int, entry *models.DaemonEntry) {
			defer wg.Done()

			statuses[i] = s.checker.Check(ctx, entry.URL, entry.MCPURL)
		}(i, entry)
	}

	wg.Wait()

	return s.persistHealth(ctx, statuses)
}

// healthTransition records one observed status flip for event emission.
type healthTransition struct {
	url   string
	owner string
	from  models.DaemonStatus
	to    models.DaemonStatus
}

// persistHealth applies check outcomes to their registry entries in one
// read-modify-write and emits health_changed events for status transitions.
// Event append failures are reported after every event has been attempted.
func (s *Service) persistHealth(ctx context.Context, statuses []*models.HealthStatus) error {
	var transitions []healthTransition

	_, err := s.store.Mutate(ctx, func(snap *models.RegistrySnapshot) error {
		transitions = transitions[:0]

		for _, status := range statuses {
			target := snap.FindByURL(status.URL)
			if target == nil {
				continue
			}

			if target.Status != status.Status {
				transitions = append(transitions, healthTransition{
					url:   target.URL,
					owner: target.Owner,
					from:  target.Status,
					to:    status.Status,
				})
			}

			target.Status = status.Status
			target.Healthy = status.Healthy
			target.LastChecked = status.CheckedAt
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to persist health deltas: %w", err)
	}

	var firstErr error

	for _, tr := range transitions {
		appendErr := s.activity.Append(ctx, &models.ActivityEvent{
			Type:        models.EventHealthChanged,
			DaemonURL:   tr.url,
			DaemonOwner: tr.owner,
			Details: map[string]string{
				"from": string(tr.from),
				"to":   string(tr.to),
			},
		})
		if appendErr != nil && firstErr == nil {
			firstErr = appendErr
		}
	}

	return firstErr
}

// Activity returns the newest events, optionally filtered by type.
func (s *Service) Activity(ctx context.Context, eventType models.EventType, limit int) *models.ActivityPage {
	return s.activity.Query(ctx, eventType, limit)
}

// DiscoverCapabilities asks a daemon for its tool inventory.
func (s *Service) DiscoverCapabilities(ctx context.Context, rawURL, mcpURLOverride string) models.DaemonCapabilities {
	return s.prober.Discover(ctx, rawURL, mcpURLOverride)
}

// Stats summarizes the merged registry for the status surface.
func (s *Service) Stats(ctx context.Context) *models.RegistryStats {
	snapshot := s.store.Load(ctx)

	stats := &models.RegistryStats{
		Total:   len(snapshot.Entries),
		Version: snapshot.Version,
		Updated: snapshot.Updated,
	}

	for _, entry := range snapshot.Entries {
		switch entry.Status {
		case models.StatusMCP:
			stats.MCP++
		case models.StatusWeb:
			stats.Web++
		case models.StatusOffline:
			stats.Offline++
		}

		if entry.Healthy {
			stats.Healthy++
		}

		if entry.Verified {
			stats.Verified++
		}
	}

	return stats
}

// SubscribeActivity registers a live activity listener.
func (s *Service) SubscribeActivity() (<-chan *models.ActivityEvent, func()) {
	return s.activity.Subscribe()
}

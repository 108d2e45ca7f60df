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
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

const (
	defaultAnnounceWindow = time.Hour
	defaultAnnounceLimit  = 5

	ratelimitKeyPrefix = "daemons.ratelimit."
	anonymousClientKey = "anonymous"
)

// RateLimiterConfig configures the announce rate limiter.
type RateLimiterConfig struct {
	// Window is the fixed-window duration. Defaults to one hour.
	Window time.Duration
	// Limit is the announce cap per window. Defaults to 5.
	Limit  int
	KV     kv.KVStore
	Logger logger.Logger
}

// RateLimiter gates announces with a fixed window per client key. Check and
// Record are separate calls and are not atomic against concurrent callers
// sharing a window record; the envelope matches the backing store's
// last-writer-wins semantics.
type RateLimiter struct {
	kv     kv.KVStore
	window time.Duration
	limit  int
	logger logger.Logger
}

// NewRateLimiter builds a limiter over the given KV backend.
func NewRateLimiter(cfg RateLimiterConfig) *RateLimiter {
	window := cfg.Window
	if window <= 0 {
		window = defaultAnnounceWindow
	}

	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultAnnounceLimit
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &RateLimiter{
		kv:     cfg.KV,
		window: window,
		limit:  limit,
		logger: log,
	}
}

// Check reports whether clientKey may announce right now. It never mutates
// state and never returns an error: a failing KV read fails open so a store
// outage cannot block announces outright.
func (r *RateLimiter) Check(ctx context.Context, clientKey string) models.RateLimitDecision {
	record, err := r.fetchRecord(ctx, clientKey)
	if err != nil {
		r.logger.Warn().Err(err).
			Str("client", sanitizeClientKey(clientKey)).
			Msg("Rate limit read failed, allowing announce")

		return models.RateLimitDecision{Allowed: true, Remaining: r.limit - 1}
	}

	now := time.Now()

	if record == nil || record.Expired(now, r.window) {
		return models.RateLimitDecision{Allowed: true, Remaining: r.limit - 1}
	}

	resetIn := r.window - now.Sub(record.WindowStart)

	if record.Count >= r.limit {
		return models.RateLimitDecision{Allowed: false, Remaining: 0, ResetIn: resetIn}
	}

	return models.RateLimitDecision{
		Allowed:   true,
		Remaining: r.limit - record.Count - 1,
		ResetIn:   resetIn,
	}
}

// Record counts one announce against clientKey, starting a fresh window if
// none is active. Unlike Check, a KV failure propagates: silently dropping
// the hit would let a client announce without bound.
func (r *RateLimiter) Record(ctx context.Context, clientKey string) error {
	record, err := r.fetchRecord(ctx, clientKey)
	if err != nil {
		return fmt.Errorf("failed to read rate limit record: %w", err)
	}

	now := time.Now()

	if record == nil || record.Expired(now, r.window) {
		record = &models.RateLimitRecord{Count: 1, WindowStart: now}
	} else {
		record.Count++
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal rate limit record: %w", err)
	}

	if err := r.kv.Put(ctx, r.key(clientKey), data, r.window); err != nil {
		return fmt.Errorf("failed to write rate limit record: %w", err)
	}

	return nil
}

// fetchRecord reads the client's window record. Transport errors propagate;
// undecodable bytes are logged and treated as no record so the next Record
// starts a clean window over them.
func (r *RateLimiter) fetchRecord(ctx context.Context, clientKey string) (*models.RateLimitRecord, error) {
	data, found, err := r.kv.Get(ctx, r.key(clientKey))
	if err != nil {
		return nil, err
	}

	if !found || len(data) == 0 {
		return nil, nil
	}

	var record models.RateLimitRecord
	if err := json.Unmarshal(data, &record); err != nil {
		r.logger.Warn().Err(err).
			Str("client", sanitizeClientKey(clientKey)).
			Msg("Discarding corrupt rate limit record")

		return nil, nil
	}

	return &record, nil
}

func (r *RateLimiter) key(clientKey string) string {
	return ratelimitKeyPrefix + sanitizeClientKey(clientKey)
}

// sanitizeClientKey maps a client key (usually an IP address) onto the
// character set NATS KV accepts for keys. Anything outside [a-zA-Z0-9._-]
// becomes an underscore; an empty key shares the anonymous bucket.
func sanitizeClientKey(clientKey string) string {
	clientKey = strings.TrimSpace(clientKey)
	if clientKey == "" {
		return anonymousClientKey
	}

	var b strings.Builder

	b.Grow(len(clientKey))

	for _, r := range clientKey {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	return b.String()
}

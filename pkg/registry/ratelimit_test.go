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
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

func newTestLimiter() (*RateLimiter, *kv.MemoryStore) {
	memory := kv.NewMemoryStore()

	return NewRateLimiter(RateLimiterConfig{KV: memory, Logger: logger.NewTestLogger()}), memory
}

func TestRateLimiterFreshClientIsAllowed(t *testing.T) {
	limiter, _ := newTestLimiter()

	decision := limiter.Check(context.Background(), "203.0.113.9")

	assert.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)
	assert.Zero(t, decision.ResetIn)
}

func TestRateLimiterCheckDoesNotWrite(t *testing.T) {
	ctx := context.Background()
	limiter, memory := newTestLimiter()

	limiter.Check(ctx, "203.0.113.9")

	_, found, err := memory.Get(ctx, "daemons.ratelimit.203.0.113.9")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRateLimiterDeniesAboveLimit(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter()

	for i := 0; i < defaultAnnounceLimit; i++ {
		decision := limiter.Check(ctx, "203.0.113.9")
		require.True(t, decision.Allowed, "announce %d should pass", i+1)
		assert.Equal(t, defaultAnnounceLimit-i-1, decision.Remaining)

		require.NoError(t, limiter.Record(ctx, "203.0.113.9"))
	}

	decision := limiter.Check(ctx, "203.0.113.9")
	assert.False(t, decision.Allowed)
	assert.Zero(t, decision.Remaining)
	assert.Greater(t, decision.ResetIn, time.Duration(0))
	assert.LessOrEqual(t, decision.ResetIn, defaultAnnounceWindow)
}

func TestRateLimiterClientsAreIndependent(t *testing.T) {
	ctx := context.Background()
	limiter, _ := newTestLimiter()

	for i := 0; i < defaultAnnounceLimit; i++ {
		require.NoError(t, limiter.Record(ctx, "203.0.113.9"))
	}

	assert.False(t, limiter.Check(ctx, "203.0.113.9").Allowed)
	assert.True(t, limiter.Check(ctx, "198.51.100.7").Allowed)
}

func TestRateLimiterExpiredWindowResets(t *testing.T) {
	ctx := context.Background()
	limiter, memory := newTestLimiter()

	stale := models.RateLimitRecord{
		Count:       defaultAnnounceLimit,
		WindowStart: time.Now().Add(-2 * time.Hour),
	}
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, memory.Put(ctx, "daemons.ratelimit.203.0.113.9", data, 0))

	decision := limiter.Check(ctx, "203.0.113.9")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)

	// Recording over the stale record starts a fresh window at count 1.
	require.NoError(t, limiter.Record(ctx, "203.0.113.9"))

	raw, found, err := memory.Get(ctx, "daemons.ratelimit.203.0.113.9")
	require.NoError(t, err)
	require.True(t, found)

	var record models.RateLimitRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, 1, record.Count)
	assert.WithinDuration(t, time.Now(), record.WindowStart, time.Minute)
}

func TestRateLimiterCheckFailsOpenOnKVError(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockKV := kv.NewMockKVStore(ctrl)
	mockKV.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("kv down"))

	limiter := NewRateLimiter(RateLimiterConfig{KV: mockKV, Logger: logger.NewTestLogger()})

	decision := limiter.Check(context.Background(), "203.0.113.9")
	assert.True(t, decision.Allowed)
}

func TestRateLimiterRecordPropagatesKVErrors(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockKV := kv.NewMockKVStore(ctrl)
	mockKV.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, errors.New("kv down"))

	limiter := NewRateLimiter(RateLimiterConfig{KV: mockKV, Logger: logger.NewTestLogger()})

	require.Error(t, limiter.Record(context.Background(), "203.0.113.9"))
}

func TestRateLimiterCorruptRecordResets(t *testing.T) {
	ctx := context.Background()
	limiter, memory := newTestLimiter()

	require.NoError(t, memory.Put(ctx, "daemons.ratelimit.203.0.113.9", []byte("{bad"), 0))

	decision := limiter.Check(ctx, "203.0.113.9")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 4, decision.Remaining)

	require.NoError(t, limiter.Record(ctx, "203.0.113.9"))

	raw, _, err := memory.Get(ctx, "daemons.ratelimit.203.0.113.9")
	require.NoError(t, err)

	var record models.RateLimitRecord
	require.NoError(t, json.Unmarshal(raw, &record))
	assert.Equal(t, 1, record.Count)
}

func TestSanitizeClientKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "ipv4 passes through", input: "203.0.113.9", expected: "203.0.113.9"},
		{name: "ipv6 colons replaced", input: "2001:db8::1", expected: "2001_db8__1"},
		{name: "port separator replaced", input: "203.0.113.9:8080", expected: "203.0.113.9_8080"},
		{name: "empty becomes anonymous", input: "", expected: "anonymous"},
		{name: "whitespace becomes anonymous", input: "   ", expected: "anonymous"},
		{name: "safe characters kept", input: "client_a-b.c", expected: "client_a-b.c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeClientKey(tt.input))
		})
	}
}

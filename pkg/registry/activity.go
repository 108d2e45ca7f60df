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
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

const (
	// activityKey holds the persisted event log, newest-first.
	activityKey = "daemons.activity"

	// maxActivityEvents bounds the persisted log; older events fall off.
	maxActivityEvents = 100

	// defaultActivityLimit is the query page size when none is given.
	defaultActivityLimit = 20

	// subscriberBuffer is the per-subscriber channel depth. Events beyond
	// it are dropped for that subscriber rather than blocking the writer.
	subscriberBuffer = 16
)

// ActivityLog is the bounded, newest-first event history. Appends persist
// to the KV store and fan out to live subscribers.
type ActivityLog struct {
	kv     kv.KVStore
	logger logger.Logger

	mu          sync.Mutex
	subscribers map[uint64]chan *models.ActivityEvent
	nextSubID   uint64
}

// NewActivityLog builds an activity log over the given KV backend.
func NewActivityLog(kvStore kv.KVStore, log logger.Logger) *ActivityLog {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &ActivityLog{
		kv:          kvStore,
		logger:      log,
		subscribers: make(map[uint64]chan *models.ActivityEvent),
	}
}

// Append prepends event to the log, truncates to the maximum length and
// notifies subscribers. Missing ID and Timestamp fields are filled in. A KV
// read error aborts the append so a transient outage cannot wipe history;
// undecodable stored bytes reset the log since they are already lost.
func (a *ActivityLog) Append(ctx context.Context, event *models.ActivityEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	events, err := a.fetchEvents(ctx)
	if err != nil {
		return fmt.Errorf("failed to read activity log: %w", err)
	}

	events = append([]*models.ActivityEvent{event}, events...)
	if len(events) > maxActivityEvents {
		events = events[:maxActivityEvents]
	}

	data, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("failed to marshal activity log: %w", err)
	}

	if err := a.kv.Put(ctx, activityKey, data, 0); err != nil {
		return fmt.Errorf("failed to write activity log: %w", err)
	}

	a.notify(event)

	return nil
}

// Query returns the newest events, optionally filtered by type. Total is
// the filtered count before the limit is applied. A failing read degrades
// to an empty page with a logged warning.
func (a *ActivityLog) Query(ctx context.Context, eventType models.EventType, limit int) *models.ActivityPage {
	if limit <= 0 {
		limit = defaultActivityLimit
	}

	events, err := a.fetchEvents(ctx)
	if err != nil {
		a.logger.Warn().Err(err).Msg("Serving empty activity page, log read failed")

		return &models.ActivityPage{Events: []*models.ActivityEvent{}}
	}

	filtered := events
	if eventType != "" {
		filtered = make([]*models.ActivityEvent, 0, len(events))

		for _, event := range events {
			if event.Type == eventType {
				filtered = append(filtered, event)
			}
		}
	}

	total := len(filtered)
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	return &models.ActivityPage{Events: filtered, Total: total}
}

// Subscribe registers a live event listener. The returned cancel func must
// be called to release the subscription; the channel closes once it is.
func (a *ActivityLog) Subscribe() (<-chan *models.ActivityEvent, func()) {
	ch := make(chan *models.ActivityEvent, subscriberBuffer)

	a.mu.Lock()
	id := a.nextSubID
	a.nextSubID++
	a.subscribers[id] = ch
	a.mu.Unlock()

	cancel := func() {
		a.mu.Lock()
		defer a.mu.Unlock()

		if _, ok := a.subscribers[id]; ok {
			delete(a.subscribers, id)
			close(ch)
		}
	}

	return ch, cancel
}

// notify fans an event out to subscribers. Slow subscribers miss events
// instead of blocking the append path.
func (a *ActivityLog) notify(event *models.ActivityEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, ch := range a.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

func (a *ActivityLog) fetchEvents(ctx context.Context) ([]*models.ActivityEvent, error) {
	data, found, err := a.kv.Get(ctx, activityKey)
	if err != nil {
		return nil, err
	}

	if !found || len(data) == 0 {
		return nil, nil
	}

	var events []*models.ActivityEvent
	if err := json.Unmarshal(data, &events); err != nil {
		a.logger.Warn().Err(err).Msg("Discarding corrupt activity log")

		return nil, nil
	}

	return events, nil
}

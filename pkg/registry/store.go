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
	"time"

	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

// overlayKey holds the announced daemons layered on top of the seed list.
const overlayKey = "daemons.overlay"

// Store materializes the registry as seed templates merged with a KV
// overlay. The overlay carries everything announced or health-touched at
// runtime and shadows seed entries with the same URL.
type Store struct {
	kv       kv.KVStore
	seed     *models.SeedList
	seedURLs map[string]struct{}
	logger   logger.Logger
}

// NewStore builds a store over the given KV backend and seed list. A nil
// seed list behaves like an empty one.
func NewStore(kvStore kv.KVStore, seed *models.SeedList, log logger.Logger) *Store {
	if seed == nil {
		seed = &models.SeedList{}
	}

	urls := make(map[string]struct{}, len(seed.Daemons))
	for _, entry := range seed.Daemons {
		urls[models.CanonicalURL(entry.URL)] = struct{}{}
	}

	return &Store{
		kv:       kvStore,
		seed:     seed,
		seedURLs: urls,
		logger:   log,
	}
}

// Load returns the merged registry view. A failing or corrupt overlay read
// degrades to the seed list alone so lookups keep working while the KV
// backend is unavailable.
func (s *Store) Load(ctx context.Context) *models.RegistrySnapshot {
	overlay, err := s.fetchOverlay(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Serving seed-only registry, overlay read failed")

		overlay = nil
	}

	return s.merge(overlay)
}

// Mutate loads the registry, applies fn to the snapshot and persists the
// resulting overlay. Unlike Load it refuses to proceed on an overlay read
// error so a transient KV outage cannot truncate previously announced
// daemons. Concurrent mutators race under last-writer-wins.
func (s *Store) Mutate(ctx context.Context, fn func(*models.RegistrySnapshot) error) (*models.RegistrySnapshot, error) {
	overlay, err := s.fetchOverlay(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load overlay for mutation: %w", err)
	}

	snapshot := s.merge(overlay)

	if err := fn(snapshot); err != nil {
		return nil, err
	}

	if err := s.SaveOverlay(ctx, s.overlayEntries(snapshot)); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// SaveOverlay persists the overlay entries. No TTL: announced daemons stay
// until the health engine or an operator removes them.
func (s *Store) SaveOverlay(ctx context.Context, entries []*models.DaemonEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal overlay: %w", err)
	}

	if err := s.kv.Put(ctx, overlayKey, data, 0); err != nil {
		return fmt.Errorf("failed to write overlay: %w", err)
	}

	return nil
}

// fetchOverlay reads the overlay from KV. A transport error propagates;
// corrupt stored bytes are logged and treated as an empty overlay since
// re-reading them cannot recover anything.
func (s *Store) fetchOverlay(ctx context.Context) ([]*models.DaemonEntry, error) {
	data, found, err := s.kv.Get(ctx, overlayKey)
	if err != nil {
		return nil, err
	}

	if !found || len(data) == 0 {
		return nil, nil
	}

	var overlay []*models.DaemonEntry
	if err := json.Unmarshal(data, &overlay); err != nil {
		s.logger.Warn().Err(err).Msg("Discarding corrupt registry overlay")

		return nil, nil
	}

	return overlay, nil
}

// merge produces the working snapshot: seed clones first, overlay entries
// after, with overlay shadowing seeds by URL and by derived ID.
func (s *Store) merge(overlay []*models.DaemonEntry) *models.RegistrySnapshot {
	shadowURLs := make(map[string]struct{}, len(overlay))
	shadowIDs := make(map[string]struct{}, len(overlay))

	for _, entry := range overlay {
		shadowURLs[models.CanonicalURL(entry.URL)] = struct{}{}

		if entry.ID != "" {
			shadowIDs[entry.ID] = struct{}{}
		}
	}

	entries := make([]*models.DaemonEntry, 0, len(s.seed.Daemons)+len(overlay))

	for _, seed := range s.seed.Daemons {
		if _, ok := shadowURLs[models.CanonicalURL(seed.URL)]; ok {
			continue
		}

		if _, ok := shadowIDs[seed.ID]; ok && seed.ID != "" {
			continue
		}

		entries = append(entries, seed.Clone())
	}

	entries = append(entries, overlay...)

	return &models.RegistrySnapshot{
		Entries: entries,
		Updated: time.Now(),
		Version: s.seed.Version,
	}
}

// overlayEntries filters a snapshot down to what must be persisted. Seed
// entries that were never health-checked are templates, not state, and are
// dropped so the stored overlay stays minimal.
func (s *Store) overlayEntries(snapshot *models.RegistrySnapshot) []*models.DaemonEntry {
	out := make([]*models.DaemonEntry, 0, len(snapshot.Entries))

	for _, entry := range snapshot.Entries {
		_, isSeed := s.seedURLs[models.CanonicalURL(entry.URL)]
		if isSeed && entry.LastChecked.IsZero() {
			continue
		}

		out = append(out, entry)
	}

	return out
}

// IsSeedURL reports whether rawURL matches one of the embedded seed entries.
func (s *Store) IsSeedURL(rawURL string) bool {
	_, ok := s.seedURLs[models.CanonicalURL(rawURL)]

	return ok
}

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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/daemondex/daemondex/pkg/identity"
	"github.com/daemondex/daemondex/pkg/models"
)

var seedEpoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

// DefaultSeed returns the seed list embedded in the binary. Entries are
// templates: health state starts pristine and is only persisted once the
// sweeper has touched an entry.
func DefaultSeed() *models.SeedList {
	return &models.SeedList{
		Version: "1.0.0",
		Daemons: []*models.DaemonEntry{
			{
				ID:          "dev.daemondex.demo.daemondex",
				URL:         "https://demo.daemondex.dev",
				Owner:       "Daemondex",
				Role:        "reference daemon",
				Focus:       []string{"discovery", "examples"},
				Tags:        []string{"demo", "official"},
				Protocol:    "mcp",
				MCPURL:      "https://demo.daemondex.dev/mcp",
				AnnouncedAt: seedEpoch,
				Verified:    true,
				VerifiedAt:  seedEpoch,
				Status:      models.StatusMCP,
				Healthy:     true,
			},
			{
				ID:          "com.axiomfield.weather.mira",
				URL:         "https://weather.axiomfield.com",
				Owner:       "Mira",
				Role:        "weather assistant",
				Focus:       []string{"forecasts"},
				Tags:        []string{"weather", "public"},
				AnnouncedAt: seedEpoch,
				Status:      models.StatusWeb,
				Healthy:     true,
			},
			{
				ID:          "io.quillhaven.notes.theo",
				URL:         "https://notes.quillhaven.io",
				Owner:       "Theo",
				Role:        "notes archive",
				Focus:       []string{"knowledge", "search"},
				Tags:        []string{"notes"},
				AnnouncedAt: seedEpoch,
				Status:      models.StatusWeb,
				Healthy:     true,
			},
		},
	}
}

// LoadSeedFile reads a seed list from a JSON or YAML file, chosen by
// extension. Entries are normalized: URLs trimmed, missing IDs derived and
// uniqueness enforced across URL and ID.
func LoadSeedFile(path string) (*models.SeedList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed models.SeedList

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &seed)
	default:
		err = json.Unmarshal(data, &seed)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	if err := normalizeSeed(&seed); err != nil {
		return nil, fmt.Errorf("invalid seed file %s: %w", path, err)
	}

	return &seed, nil
}

func normalizeSeed(seed *models.SeedList) error {
	seenURLs := make(map[string]struct{}, len(seed.Daemons))
	seenIDs := make(map[string]struct{}, len(seed.Daemons))

	for i, entry := range seed.Daemons {
		entry.URL = strings.TrimSpace(entry.URL)
		if entry.URL == "" {
			return fmt.Errorf("entry %d: %w", i, ErrMissingURL)
		}

		if entry.ID == "" {
			entry.ID = identity.Derive(entry.URL, entry.Owner)
		}

		canonical := models.CanonicalURL(entry.URL)
		if _, ok := seenURLs[canonical]; ok {
			return fmt.Errorf("%w: %s", errDuplicateSeedURL, entry.URL)
		}

		seenURLs[canonical] = struct{}{}

		if _, ok := seenIDs[entry.ID]; ok {
			return fmt.Errorf("%w: %s", errDuplicateSeedID, entry.ID)
		}

		seenIDs[entry.ID] = struct{}{}

		// A template without explicit health state lists as a reachable
		// web endpoint until the first sweep says otherwise.
		if entry.Status == "" {
			entry.Status = models.StatusWeb
			entry.Healthy = true
		}
	}

	return nil
}

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

package daemonmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

const (
	// DocumentName is the well-known manifest path relative to the
	// daemon's endpoint root.
	DocumentName = "daemon.md"

	defaultTimeout      = 10 * time.Second
	defaultCacheTTL     = 5 * time.Minute
	defaultCacheCleanup = 10 * time.Minute

	minDocumentLength = 32
	maxDocumentSize   = 1 << 20
)

var errUnexpectedStatus = errors.New("unexpected daemon.md response status")

// DocumentCache memoizes fetched manifests. *cache.Cache satisfies it
// directly; tests substitute a deterministic implementation.
type DocumentCache interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{}, ttl time.Duration)
}

// FetcherConfig controls how manifests are fetched and cached.
type FetcherConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
	HTTP     *http.Client
	Cache    DocumentCache
	Logger   logger.Logger
}

// Fetcher retrieves daemon.md manifests with a bounded timeout and a
// TTL cache so announce verification and a health check shortly after
// share one fetch.
type Fetcher struct {
	client   *http.Client
	cache    DocumentCache
	cacheTTL time.Duration
	logger   logger.Logger
}

func NewFetcher(cfg FetcherConfig) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	cacheTTL := cfg.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = defaultCacheTTL
	}

	docCache := cfg.Cache
	if docCache == nil {
		docCache = cache.New(cacheTTL, defaultCacheCleanup)
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Fetcher{
		client:   httpClient,
		cache:    docCache,
		cacheTTL: cacheTTL,
		logger:   log,
	}
}

// DocumentURL maps an endpoint URL to its manifest URL.
func DocumentURL(rawURL string) string {
	return strings.TrimRight(strings.TrimSpace(rawURL), "/") + "/" + DocumentName
}

// Fetch retrieves and parses the manifest for the given endpoint URL.
// Successful fetches are cached; failures are not, so a recovering
// daemon is picked up on the next attempt.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Document, error) {
	docURL := DocumentURL(rawURL)

	if cached, found := f.cache.Get(docURL); found {
		if doc, ok := cached.(*Document); ok {
			return doc, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create daemon.md request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("daemon.md fetch failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", errUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read daemon.md body: %w", err)
	}

	doc := &Document{
		URL:       docURL,
		Raw:       string(body),
		Sections:  Parse(string(body)),
		FetchedAt: time.Now(),
	}

	f.cache.Set(docURL, doc, f.cacheTTL)

	f.logger.Debug().
		Str("url", docURL).
		Int("bytes", len(doc.Raw)).
		Int("sections", len(doc.Sections)).
		Msg("Fetched daemon.md")

	return doc, nil
}

// Verify checks that the endpoint serves a plausible manifest. It fails
// closed: fetch errors, undersized bodies, and bodies without a section
// marker all yield Verified=false with a descriptive error, never a Go
// error.
func (f *Fetcher) Verify(ctx context.Context, rawURL string) models.VerifyResult {
	doc, err := f.Fetch(ctx, rawURL)
	if err != nil {
		return models.VerifyResult{Verified: false, Error: err.Error()}
	}

	if len(doc.Raw) < minDocumentLength {
		return models.VerifyResult{
			Verified: false,
			Error:    fmt.Sprintf("daemon.md too short: %d bytes", len(doc.Raw)),
		}
	}

	if !strings.Contains(doc.Raw, "[") {
		return models.VerifyResult{
			Verified: false,
			Error:    "daemon.md has no section marker",
		}
	}

	return models.VerifyResult{Verified: true}
}

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

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/daemondex/daemondex/pkg/models"
	"github.com/daemondex/daemondex/pkg/registry"
)

const maxRequestBody = 1 << 20

// @Summary Announce a daemon
// @Description Registers a self-announced daemon endpoint, verifying its daemon.md manifest
// @Tags Daemons
// @Accept json
// @Produce json
// @Param request body models.AnnounceRequest true "Daemon announcement"
// @Success 201 {object} models.AnnounceResult "Registered entry"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.AnnounceResult "Already registered"
// @Failure 429 {object} models.AnnounceResult "Rate limited"
// @Router /api/daemons [post]
// @Security ApiKeyAuth
func (s *APIServer) announceDaemon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	var req models.AnnounceRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := s.registry.Announce(ctx, &req, clientKey(r))
	if err != nil {
		if errors.Is(err, registry.ErrMissingURL) ||
			errors.Is(err, registry.ErrMissingOwner) ||
			errors.Is(err, registry.ErrInvalidURL) {
			writeError(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.logger.Error().Err(err).Msg("Announce failed")
		writeError(w, "Failed to register daemon", http.StatusInternalServerError)

		return
	}

	status := http.StatusCreated

	if !result.Success {
		if result.RateLimited {
			status = http.StatusTooManyRequests
		} else {
			status = http.StatusConflict
		}
	}

	s.encodeJSONStatus(w, status, result)
}

// @Summary List daemons
// @Description Returns the merged seed and overlay registry
// @Tags Daemons
// @Produce json
// @Success 200 {object} models.RegistrySnapshot "Current registry"
// @Router /api/daemons [get]
func (s *APIServer) listDaemons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	s.encodeJSONResponse(w, s.registry.List(ctx))
}

// @Summary Search daemons
// @Description Case-insensitive substring search over id, url, owner, role, focus and tags
// @Tags Daemons
// @Produce json
// @Param q query string false "Substring query"
// @Param tag query string false "Exact tag (case-insensitive)"
// @Param status query string false "Status filter (mcp|web|offline)"
// @Success 200 {object} SearchResponse "Matching entries"
// @Router /api/daemons/search [get]
func (s *APIServer) searchDaemons(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	q := r.URL.Query()

	results := s.registry.Search(ctx, q.Get("q"), q.Get("tag"), q.Get("status"))
	if results == nil {
		results = []*models.DaemonEntry{}
	}

	s.encodeJSONResponse(w, &SearchResponse{Results: results, Count: len(results)})
}

// @Summary Check daemon health
// @Description Probes the URL immediately and updates stored health state for registered daemons
// @Tags Daemons
// @Accept json
// @Produce json
// @Param request body HealthCheckRequest true "Daemon URL"
// @Success 200 {object} models.HealthStatus "Probe outcome"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 500 {object} models.ErrorResponse "Persistence failure"
// @Router /api/daemons/health-check [post]
// @Security ApiKeyAuth
func (s *APIServer) checkDaemonHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	var req HealthCheckRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeError(w, "url is required", http.StatusBadRequest)
		return
	}

	status, err := s.registry.HealthCheck(ctx, req.URL)
	if err != nil {
		s.logger.Error().Err(err).Str("url", req.URL).Msg("Health check persistence failed")
		writeError(w, "Failed to persist health state", http.StatusInternalServerError)

		return
	}

	s.encodeJSONResponse(w, status)
}

// @Summary Recent activity
// @Description Returns recent registry activity, newest first
// @Tags Activity
// @Produce json
// @Param type query string false "Event type filter"
// @Param limit query int false "Maximum events (default 20)"
// @Success 200 {object} models.ActivityPage "Recent events"
// @Failure 400 {object} models.ErrorResponse "Invalid limit"
// @Router /api/activity [get]
func (s *APIServer) getActivity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	q := r.URL.Query()

	limit := 0

	if v := q.Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, "limit must be an integer", http.StatusBadRequest)
			return
		}

		limit = parsed
	}

	s.encodeJSONResponse(w, s.registry.Activity(ctx, models.EventType(q.Get("type")), limit))
}

// @Summary Discover daemon capabilities
// @Description Queries the daemon's tools/list endpoint and reports the advertised inventory
// @Tags Daemons
// @Accept json
// @Produce json
// @Param request body CapabilitiesRequest true "Daemon URL and optional MCP endpoint"
// @Success 200 {object} models.DaemonCapabilities "Advertised tools"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Router /api/daemons/capabilities [post]
// @Security ApiKeyAuth
func (s *APIServer) discoverCapabilities(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	var req CapabilitiesRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.URL) == "" {
		writeError(w, "url is required", http.StatusBadRequest)
		return
	}

	s.encodeJSONResponse(w, s.registry.DiscoverCapabilities(ctx, req.URL, req.MCPURL))
}

// @Summary Registry status
// @Description Summarizes entry counts by status, health and verification
// @Tags Status
// @Produce json
// @Success 200 {object} models.RegistryStats "Registry summary"
// @Router /api/status [get]
func (s *APIServer) getStatus(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), defaultTimeout)
	defer cancel()

	s.encodeJSONResponse(w, s.registry.Stats(ctx))
}

// clientKey identifies the announcing client for rate limiting. The
// first X-Forwarded-For hop wins when a proxy fronts the listener.
func clientKey(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}

		return strings.TrimSpace(fwd)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

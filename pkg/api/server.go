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
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"

	dxhttp "github.com/daemondex/daemondex/pkg/http"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultReadTimeout  = 10 * time.Second
	defaultWriteTimeout = 10 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// APIServer exposes the registry over HTTP. Read routes are public;
// the mutating POST routes sit behind an optional static API key.
type APIServer struct {
	listenAddr string
	apiKey     string
	registry   DaemonRegistry
	router     *mux.Router
	corsConfig models.CORSConfig
	mcpHandler http.Handler
	logger     logger.Logger

	mu         sync.Mutex
	httpServer *http.Server
}

func NewAPIServer(corsConfig models.CORSConfig, options ...func(server *APIServer)) *APIServer {
	s := &APIServer{
		router:     mux.NewRouter(),
		corsConfig: corsConfig,
		logger:     logger.NewTestLogger(),
	}

	for _, o := range options {
		o(s)
	}

	s.setupRoutes()

	return s
}

// WithRegistry sets the registry facade behind the handlers.
func WithRegistry(registry DaemonRegistry) func(server *APIServer) {
	return func(server *APIServer) {
		server.registry = registry
	}
}

// WithLogger sets the logger for the API server.
func WithLogger(log logger.Logger) func(server *APIServer) {
	return func(server *APIServer) {
		server.logger = log
	}
}

// WithListenAddr sets the address Start listens on.
func WithListenAddr(addr string) func(server *APIServer) {
	return func(server *APIServer) {
		server.listenAddr = addr
	}
}

// WithAPIKey guards the mutating routes with a static key. Empty
// leaves them open.
func WithAPIKey(apiKey string) func(server *APIServer) {
	return func(server *APIServer) {
		server.apiKey = apiKey
	}
}

// WithMCPHandler mounts an MCP handler under /mcp on the same listener.
func WithMCPHandler(handler http.Handler) func(server *APIServer) {
	return func(server *APIServer) {
		server.mcpHandler = handler
	}
}

func (s *APIServer) setupRoutes() {
	public := s.router.PathPrefix("/api").Subrouter()
	public.HandleFunc("/daemons", s.listDaemons).Methods("GET")
	public.HandleFunc("/daemons/search", s.searchDaemons).Methods("GET")
	public.HandleFunc("/activity", s.getActivity).Methods("GET")
	public.HandleFunc("/activity/stream", s.streamActivity).Methods("GET")
	public.HandleFunc("/status", s.getStatus).Methods("GET")

	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(dxhttp.APIKeyMiddlewareWithOptions(dxhttp.APIKeyOptions{
		APIKey:          s.apiKey,
		LogUnauthorized: true,
		Logger:          s.logger,
	}))
	protected.HandleFunc("/daemons", s.announceDaemon).Methods("POST")
	protected.HandleFunc("/daemons/health-check", s.checkDaemonHealth).Methods("POST")
	protected.HandleFunc("/daemons/capabilities", s.discoverCapabilities).Methods("POST")

	if s.mcpHandler != nil {
		s.router.PathPrefix("/mcp").Handler(s.mcpHandler)
	}
}

// Handler returns the full handler chain. The common middleware wraps
// the router itself so CORS preflight is answered even for method
// combinations no route matches.
func (s *APIServer) Handler() http.Handler {
	return dxhttp.CommonMiddleware(s.router, s.corsConfig, s.logger)
}

// Start implements the lifecycle.Service interface. It blocks until
// Stop shuts the listener down.
func (s *APIServer) Start(_ context.Context) error {
	srv := &http.Server{
		Addr:         s.listenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		IdleTimeout:  defaultIdleTimeout,
	}

	s.mu.Lock()
	s.httpServer = srv
	s.mu.Unlock()

	s.logger.Info().Str("addr", s.listenAddr).Msg("API server listening")

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop implements the lifecycle.Service interface.
func (s *APIServer) Stop(ctx context.Context) error {
	s.mu.Lock()
	srv := s.httpServer
	s.mu.Unlock()

	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}

func (s *APIServer) encodeJSONResponse(w http.ResponseWriter, data interface{}) {
	s.encodeJSONStatus(w, http.StatusOK, data)
}

func (s *APIServer) encodeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(&models.ErrorResponse{Message: message, Status: status})
}

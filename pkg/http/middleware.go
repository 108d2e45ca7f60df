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

// Package http carries the middleware shared by the registry's HTTP
// surfaces.
package http

import (
	"net/http"
	"strings"

	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/models"
)

// CommonMiddleware logs each request and applies CORS headers from the
// given config. Preflight OPTIONS requests are answered directly.
func CommonMiddleware(next http.Handler, corsConfig models.CORSConfig, log logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().
			Str("remote", r.RemoteAddr).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("HTTP request")

		if origin := allowedOrigin(r.Header.Get("Origin"), corsConfig.AllowedOrigins); origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}

		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-API-Key")
		w.Header().Set("Access-Control-Max-Age", "3600")

		if corsConfig.AllowCredentials {
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func allowedOrigin(origin string, allowed []string) string {
	for _, candidate := range allowed {
		if candidate == "*" {
			return "*"
		}

		if origin != "" && strings.EqualFold(candidate, origin) {
			return origin
		}
	}

	return ""
}

// APIKeyOptions configures APIKeyMiddlewareWithOptions.
type APIKeyOptions struct {
	// APIKey is the expected key. Empty disables the check entirely.
	APIKey string
	// ExcludePaths lists path prefixes served without a key.
	ExcludePaths []string
	// LogUnauthorized emits a warning for each rejected request.
	LogUnauthorized bool
	Logger          logger.Logger
}

// APIKeyMiddleware guards next with a static API key taken from the
// X-API-Key header or the api_key query parameter.
func APIKeyMiddleware(apiKey string, log logger.Logger) func(next http.Handler) http.Handler {
	return APIKeyMiddlewareWithOptions(APIKeyOptions{
		APIKey:          apiKey,
		LogUnauthorized: true,
		Logger:          log,
	})
}

// APIKeyMiddlewareWithOptions is the configurable API key guard.
func APIKeyMiddlewareWithOptions(opts APIKeyOptions) func(next http.Handler) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return func(next http.Handler) http.Handler {
		if opts.APIKey == "" {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if pathExcluded(r.URL.Path, opts.ExcludePaths) {
				next.ServeHTTP(w, r)
				return
			}

			requestKey := r.Header.Get("X-API-Key")
			if requestKey == "" {
				requestKey = r.URL.Query().Get("api_key")
			}

			if requestKey != opts.APIKey {
				if opts.LogUnauthorized {
					log.Warn().
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Msg("Unauthorized API access attempt")
				}

				http.Error(w, "Unauthorized", http.StatusUnauthorized)

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func pathExcluded(path string, excludes []string) bool {
	for _, exclude := range excludes {
		if path == exclude || strings.HasPrefix(path, exclude+"/") {
			return true
		}
	}

	return false
}

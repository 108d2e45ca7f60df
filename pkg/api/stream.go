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
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsBufferSize   = 1024
	wsPingInterval = 30 * time.Second
	wsReadDeadline = 60 * time.Second
)

// @Summary Stream registry activity
// @Description Upgrades to a websocket and pushes activity events as they happen
// @Tags Activity
// @Success 101 {string} string "Switching protocols"
// @Router /api/activity/stream [get]
func (s *APIServer) streamActivity(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsBufferSize,
		WriteBufferSize: wsBufferSize,
		CheckOrigin:     s.checkWebSocketOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go s.readClientMessages(ctx, conn, cancel)

	events, unsubscribe := s.registry.SubscribeActivity()
	defer unsubscribe()

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("Activity stream opened")

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}

			if err := conn.WriteJSON(&StreamMessage{Type: "data", Data: event, Timestamp: time.Now()}); err != nil {
				s.logger.Debug().Err(err).Msg("Activity stream write failed")
				return
			}
		case <-pingTicker.C:
			if err := conn.WriteJSON(&StreamMessage{Type: "ping", Timestamp: time.Now()}); err != nil {
				return
			}
		}
	}
}

// readClientMessages drains the client side of the socket so closes
// are noticed. A client that goes silent past the read deadline is
// treated as disconnected.
func (s *APIServer) readClientMessages(ctx context.Context, conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsReadDeadline)); err != nil {
			return
		}

		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// checkWebSocketOrigin mirrors the CORS policy: requests without an
// Origin header (non-browser clients) are admitted, browser origins
// must be on the allowed list, and "*" admits everything.
func (s *APIServer) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.corsConfig.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}

	return false
}

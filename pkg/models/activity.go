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

package models

import "time"

// EventType classifies activity log entries.
type EventType string

const (
	EventDaemonAnnounced EventType = "daemon_announced"
	EventHealthChanged   EventType = "health_changed"
	EventDaemonVerified  EventType = "daemon_verified"
)

// ActivityEvent is one append-only log entry. The log is ordered strictly
// newest-first and truncated from the tail.
type ActivityEvent struct {
	ID          string            `json:"id"`
	Type        EventType         `json:"type"`
	DaemonURL   string            `json:"daemon_url"`
	DaemonOwner string            `json:"daemon_owner,omitempty"`
	Timestamp   time.Time         `json:"timestamp"`
	Details     map[string]string `json:"details,omitempty"`
}

// ActivityPage is the result of one activity query: the filtered slice plus
// the pre-limit total.
type ActivityPage struct {
	Events []*ActivityEvent `json:"events"`
	Total  int              `json:"total"`
}

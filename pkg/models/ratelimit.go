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

// RateLimitRecord is the per-client fixed-window state persisted in the KV
// store. It is created on the first recorded announce from a client and
// self-cleans once the window expires.
type RateLimitRecord struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
}

// Expired reports whether the record's window ended before now.
func (r *RateLimitRecord) Expired(now time.Time, window time.Duration) bool {
	return now.Sub(r.WindowStart) >= window
}

// RateLimitDecision is the read-only outcome of a rate-limit check.
type RateLimitDecision struct {
	Allowed   bool          `json:"allowed"`
	Remaining int           `json:"remaining"`
	ResetIn   time.Duration `json:"reset_in"`
}

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

// Package models provides data models for the daemon registry.
package models

import (
	"strings"
	"time"
)

// DaemonStatus is the reachability tier assigned by the health engine.
type DaemonStatus string

const (
	// StatusMCP means the daemon answered the tools/list probe or served a
	// well-formed daemon.md document.
	StatusMCP DaemonStatus = "mcp"
	// StatusWeb means only the plain HTTP probe succeeded.
	StatusWeb DaemonStatus = "web"
	// StatusOffline means no probe succeeded.
	StatusOffline DaemonStatus = "offline"
)

// DaemonEntry is one registered daemon endpoint.
type DaemonEntry struct {
	ID       string   `json:"id" yaml:"id"`
	URL      string   `json:"url" yaml:"url"`
	Owner    string   `json:"owner" yaml:"owner"`
	Role     string   `json:"role,omitempty" yaml:"role,omitempty"`
	Focus    []string `json:"focus,omitempty" yaml:"focus,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Protocol string   `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	MCPURL   string   `json:"mcp_url,omitempty" yaml:"mcp_url,omitempty"`

	// AnnouncedAt is set once at creation and never changes.
	AnnouncedAt time.Time `json:"announced_at" yaml:"announced_at"`

	// Verification outcome at announce time.
	Verified   bool      `json:"verified" yaml:"verified"`
	VerifiedAt time.Time `json:"verified_at,omitempty" yaml:"verified_at,omitempty"`

	// Mutable health state, written only by the health engine. Seed
	// templates ship with LastChecked zero; a non-zero value marks an
	// entry that belongs in the persisted overlay.
	LastChecked time.Time    `json:"last_checked,omitempty" yaml:"last_checked,omitempty"`
	Status      DaemonStatus `json:"status,omitempty" yaml:"status,omitempty"`
	Healthy     bool         `json:"healthy" yaml:"healthy"`
}

// Clone returns a deep copy so seed templates are never mutated in place.
func (d *DaemonEntry) Clone() *DaemonEntry {
	if d == nil {
		return nil
	}

	out := *d
	out.Focus = append([]string(nil), d.Focus...)
	out.Tags = append([]string(nil), d.Tags...)

	return &out
}

// CanonicalURL normalizes a daemon URL for duplicate detection: trailing
// slashes are insignificant and the comparison is case-insensitive.
func CanonicalURL(rawURL string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(rawURL), "/"))
}

// RegistrySnapshot is the merged seed+overlay view produced by one load.
type RegistrySnapshot struct {
	Entries []*DaemonEntry `json:"daemons"`
	Updated time.Time      `json:"updated"`
	Version string         `json:"version,omitempty"`
}

// FindByURL returns the entry whose URL canonically matches rawURL, or nil.
func (s *RegistrySnapshot) FindByURL(rawURL string) *DaemonEntry {
	want := CanonicalURL(rawURL)

	for _, entry := range s.Entries {
		if CanonicalURL(entry.URL) == want {
			return entry
		}
	}

	return nil
}

// FindByID returns the entry with the given derived ID, or nil.
func (s *RegistrySnapshot) FindByID(id string) *DaemonEntry {
	for _, entry := range s.Entries {
		if entry.ID == id {
			return entry
		}
	}

	return nil
}

// SeedList is the process-embedded, read-only starting registry. Entries
// are templates: they are copied into the working set on every load and
// never mutated in place.
type SeedList struct {
	Version string         `json:"version" yaml:"version"`
	Daemons []*DaemonEntry `json:"daemons" yaml:"daemons"`
}

// RegistryStats summarizes the merged registry for the status endpoint.
type RegistryStats struct {
	Total    int       `json:"total"`
	MCP      int       `json:"mcp"`
	Web      int       `json:"web"`
	Offline  int       `json:"offline"`
	Healthy  int       `json:"healthy"`
	Verified int       `json:"verified"`
	Version  string    `json:"version,omitempty"`
	Updated  time.Time `json:"updated"`
}

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

// Package daemonmd fetches and verifies daemon.md manifests, the
// self-describing document every registered daemon is expected to serve
// at its endpoint root.
package daemonmd

import (
	"strings"
	"time"
)

// Section is one [name]-headed block of a daemon.md manifest.
type Section struct {
	Name string
	Body string
}

// Document is a fetched daemon.md manifest.
type Document struct {
	URL       string
	Raw       string
	Sections  []Section
	FetchedAt time.Time
}

// Parse splits a manifest into its [name]-headed sections. Lines before
// the first header are ignored.
func Parse(raw string) []Section {
	var (
		sections []Section
		current  *Section
		body     []string
	)

	flush := func() {
		if current == nil {
			return
		}

		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		sections = append(sections, *current)
		current = nil
		body = nil
	}

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)

		if name, ok := sectionHeader(trimmed); ok {
			flush()

			current = &Section{Name: name}

			continue
		}

		if current != nil {
			body = append(body, line)
		}
	}

	flush()

	return sections
}

func sectionHeader(line string) (string, bool) {
	if len(line) < 3 || line[0] != '[' || line[len(line)-1] != ']' {
		return "", false
	}

	name := strings.TrimSpace(line[1 : len(line)-1])
	if name == "" {
		return "", false
	}

	return name, true
}

// SectionNames returns the section names in document order.
func (d *Document) SectionNames() []string {
	names := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		names = append(names, s.Name)
	}

	return names
}

// Section returns the body of the named section, matched
// case-insensitively.
func (d *Document) Section(name string) (string, bool) {
	for _, s := range d.Sections {
		if strings.EqualFold(s.Name, name) {
			return s.Body, true
		}
	}

	return "", false
}

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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `daemon.md v1

[identity]
name = mapper
owner = Ada

[tools]
list_hosts
scan_subnet

[notes]
`

func TestParse(t *testing.T) {
	sections := Parse(sampleManifest)
	require.Len(t, sections, 3)

	assert.Equal(t, "identity", sections[0].Name)
	assert.Equal(t, "name = mapper\nowner = Ada", sections[0].Body)

	assert.Equal(t, "tools", sections[1].Name)
	assert.Equal(t, "list_hosts\nscan_subnet", sections[1].Body)

	assert.Equal(t, "notes", sections[2].Name)
	assert.Empty(t, sections[2].Body)
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{name: "empty document", raw: "", expected: 0},
		{name: "no headers", raw: "just prose\nmore prose", expected: 0},
		{name: "empty header name skipped", raw: "[]\nbody", expected: 0},
		{name: "bracket mid line is not a header", raw: "see [docs] for details", expected: 0},
		{name: "header with surrounding spaces", raw: "  [identity]  \nx", expected: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, Parse(tt.raw), tt.expected)
		})
	}
}

func TestDocumentSectionLookup(t *testing.T) {
	doc := &Document{Sections: Parse(sampleManifest)}

	body, found := doc.Section("Tools")
	require.True(t, found)
	assert.Equal(t, "list_hosts\nscan_subnet", body)

	_, found = doc.Section("missing")
	assert.False(t, found)

	assert.Equal(t, []string{"identity", "tools", "notes"}, doc.SectionNames())
}

package identity

import (
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		owner    string
		expected string
	}{
		{
			name:     "host with owner",
			url:      "https://x.example.com/",
			owner:    "Ada",
			expected: "com.example.x.ada",
		},
		{
			name:     "path segment wins over owner",
			url:      "https://api.example.com/lovelace/v1",
			owner:    "Ada",
			expected: "com.example.api.lovelace",
		},
		{
			name:     "no owner and no path",
			url:      "https://daemons.example.org",
			owner:    "",
			expected: "org.example.daemons.daemon",
		},
		{
			name:     "owner sanitized and capped",
			url:      "https://a.io/",
			owner:    "Grace Brewster Murray Hopper!",
			expected: "io.a.gracebrewstermur",
		},
		{
			name:     "owner with no usable characters falls back",
			url:      "https://a.io/",
			owner:    "!!! ???",
			expected: "io.a.daemon",
		},
		{
			name:     "path segment keeps hyphen and underscore",
			url:      "https://hub.example.net/My_Agent-2",
			owner:    "x",
			expected: "net.example.hub.my_agent-2",
		},
		{
			name:     "port dropped from host",
			url:      "https://x.example.com:8443/",
			owner:    "ada",
			expected: "com.example.x.ada",
		},
		{
			name:     "single label host",
			url:      "http://localhost/tools",
			owner:    "",
			expected: "localhost.tools",
		},
		{
			name:     "ip host reverses octets",
			url:      "http://10.0.0.7/agent",
			owner:    "",
			expected: "7.0.0.10.agent",
		},
		{
			name:     "unparseable url",
			url:      "://not a url",
			owner:    "ada",
			expected: "unknown.notaurl",
		},
		{
			name:     "missing host",
			url:      "/just/a/path",
			owner:    "ada",
			expected: "unknown.justapath",
		},
		{
			name:     "empty input",
			url:      "",
			owner:    "",
			expected: "unknown.daemon",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Derive(tt.url, tt.owner)
			if got != tt.expected {
				t.Errorf("Derive(%q, %q) = %q, want %q", tt.url, tt.owner, got, tt.expected)
			}
		})
	}
}

func TestDeriveDeterministic(t *testing.T) {
	first := Derive("https://x.example.com/tools", "Ada")

	for i := 0; i < 100; i++ {
		if got := Derive("https://x.example.com/tools", "Ada"); got != first {
			t.Fatalf("Derive is not deterministic: %q != %q", got, first)
		}
	}
}

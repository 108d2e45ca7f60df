// Package identity derives stable namespaced daemon identifiers from
// endpoint URLs. Derivation is pure: the same URL and owner always
// produce the same id, so re-announces and re-deploys do not reshuffle
// identities.
package identity

import (
	"net/url"
	"strings"
)

const (
	maxOwnerSegment   = 16
	maxUnknownPrefix  = 24
	fallbackSegment   = "daemon"
	unknownHostPrefix = "unknown."
)

// Derive computes the registry id for an endpoint. The host's DNS labels
// are reversed (a.b.com -> com.b.a) and suffixed with an identifier
// segment: the first path segment when the URL has one, else a sanitized
// slice of the owner name, else "daemon". Unparseable URLs map into the
// "unknown." namespace keyed by a sanitized prefix of the raw string.
func Derive(rawURL, owner string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Hostname() == "" {
		prefix := sanitizeAlnum(rawURL, maxUnknownPrefix)
		if prefix == "" {
			prefix = fallbackSegment
		}

		return unknownHostPrefix + prefix
	}

	labels := strings.Split(strings.ToLower(parsed.Hostname()), ".")
	for i, j := 0, len(labels)-1; i < j; i, j = i+1, j-1 {
		labels[i], labels[j] = labels[j], labels[i]
	}

	return strings.Join(labels, ".") + "." + identifierSegment(parsed.Path, owner)
}

// identifierSegment picks the trailing id segment, trying the URL path
// first, then the owner, then the fixed fallback.
func identifierSegment(path, owner string) string {
	for _, segment := range strings.Split(path, "/") {
		if segment == "" {
			continue
		}

		if cleaned := sanitizeSegment(segment); cleaned != "" {
			return cleaned
		}

		break
	}

	if cleaned := sanitizeAlnum(owner, maxOwnerSegment); cleaned != "" {
		return cleaned
	}

	return fallbackSegment
}

// sanitizeSegment lowercases a path segment and strips everything
// outside [a-z0-9_-].
func sanitizeSegment(s string) string {
	var b strings.Builder

	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// sanitizeAlnum lowercases the input and keeps only ASCII letters and
// digits, capped at limit runes.
func sanitizeAlnum(s string, limit int) string {
	var b strings.Builder

	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)

			if b.Len() >= limit {
				break
			}
		}
	}

	return b.String()
}

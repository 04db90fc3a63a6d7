package crawler

import (
	"net/url"
	"strings"
)

// MatchesPrefix reports whether raw starts with any of the allowed prefixes.
// Matching is a case-sensitive exact prefix test; callers are expected to
// hand in already-cleaned absolute URLs.
func MatchesPrefix(raw string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(raw, p) {
			return true
		}
	}
	return false
}

// MarkdownURL applies the fixed markdown suffix rule: the trailing slash is
// trimmed and ".md" is appended.
func MarkdownURL(raw string) string {
	return strings.TrimSuffix(raw, "/") + ".md"
}

// DeriveOutputName builds a filesystem-safe output base name from the start
// URL's host and path. It falls back to "crawled_output" when nothing
// usable remains.
func DeriveOutputName(startURL string) string {
	u, err := url.Parse(startURL)
	if err != nil {
		return "crawled_output"
	}
	name := SanitizeFilename(u.Host + u.Path)
	if name == "" {
		return "crawled_output"
	}
	return name
}

// SanitizeFilename keeps letters, digits, spaces, dashes and underscores,
// replacing path separators and dots with underscores.
func SanitizeFilename(name string) string {
	var b strings.Builder
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		case c == ' ', c == '-', c == '_':
			b.WriteRune(c)
		case c == '/', c == '.', c == ':':
			b.WriteRune('_')
		}
	}
	return strings.Trim(b.String(), " _")
}

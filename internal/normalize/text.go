// Package normalize holds the total helper functions adapters use to coerce
// upstream payloads into the canonical job shape. None of them fail.
package normalize

import (
	"html"
	"regexp"
	"strings"
)

// DescriptionLimit is the maximum description length kept for external jobs.
const DescriptionLimit = 200

// Ellipsis is appended to text cut by Truncate.
const Ellipsis = "..."

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// StripMarkup converts an HTML or HTML-encoded string to plain text.
// Entities are unescaped first (some boards double-encode), then tags are
// removed and whitespace is collapsed.
func StripMarkup(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, " ")
	return strings.Join(strings.Fields(plain), " ")
}

// Truncate shortens text to at most maxLen runes, appending Ellipsis when
// something was cut. A non-positive maxLen returns text unchanged.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	return strings.TrimRight(string(runes[:maxLen]), " ") + Ellipsis
}

// Description strips markup and truncates to DescriptionLimit.
func Description(raw string) string {
	return Truncate(StripMarkup(raw), DescriptionLimit)
}

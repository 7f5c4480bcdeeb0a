package news

import (
	"regexp"
	"strings"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&#?[a-zA-Z0-9]+;`)
)

// SanitizeText strips HTML-tag-shaped and entity-shaped substrings and trims
// whitespace. It is an allow-nothing filter, not a parser: anything that
// doesn't match the two patterns passes through unchanged, and running it
// twice yields the same output.
func SanitizeText(text string) string {
	text = tagPattern.ReplaceAllString(text, "")
	text = entityPattern.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

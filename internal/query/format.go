// Package query normalizes free-text scouting queries before embedding.
package query

import (
	"regexp"
	"strings"
)

var yearPattern = regexp.MustCompile(`(19|20)\d{2}`)

const draftClassSuffix = " draft class: "

// DetectYear returns the first 19xx/20xx token in text.
func DetectYear(text string) (string, bool) {
	year := yearPattern.FindString(text)
	return year, year != ""
}

// FormatForEmbedding prefixes "<year> draft class: " when the query mentions a
// year so the embedding lands closer to year-scoped corpus chunks. The raw
// query is still what the language model sees.
//
// Formatting is idempotent: an already prefixed query is returned unchanged.
func FormatForEmbedding(raw string) string {
	year, ok := DetectYear(raw)
	if !ok {
		return raw
	}
	prefix := year + draftClassSuffix
	if strings.HasPrefix(raw, prefix) {
		return raw
	}
	return prefix + raw
}

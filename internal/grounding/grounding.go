// Package grounding maps free-form model output back onto retrieved players.
//
// All matching is literal and case-sensitive. A paraphrased or misspelled
// name is not recognised, and a name that is a substring of another matches
// wherever the longer one appears. No fuzzy matching is attempted.
package grounding

import (
	"regexp"
	"sort"
	"strings"
)

const (
	FinalSummaryMarker = "Final Best Fit Recommendation"
	FollowUpMarker     = "Would you like deeper stats"

	NoMatchesNarrative = "No matching players found."
	NoRationale        = "No detailed recommendation found."
	NoFinalSummary     = "No final best fit recommendation was provided."

	headingPunct = " \t\r\n:*#-"
)

// TrimFollowUp drops the conversational tail some models append.
func TrimFollowUp(text string) string {
	if i := strings.Index(text, FollowUpMarker); i >= 0 {
		text = text[:i]
	}
	return strings.TrimSpace(text)
}

// GroundNames returns the candidate names mentioned in text, each once,
// ordered by first mention and capped at limit (limit <= 0 means no cap).
// Names mentioned at the same offset keep candidate order.
func GroundNames(text string, candidates []string, limit int) []string {
	type mention struct {
		name string
		at   int
	}
	seen := make(map[string]struct{}, len(candidates))
	found := make([]mention, 0, len(candidates))
	for _, name := range candidates {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		if at := strings.Index(text, name); at >= 0 {
			found = append(found, mention{name: name, at: at})
		}
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].at < found[j].at })

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, 0, len(found))
	for _, m := range found {
		out = append(out, m.name)
	}
	return out
}

// ExtractRationales attributes to each name the text after its first literal
// occurrence up to the next blank line or the end of text.
func ExtractRationales(text string, names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, name := range names {
		out[name] = extractRationale(text, name)
	}
	return out
}

func extractRationale(text, name string) string {
	if name == "" {
		return NoRationale
	}
	re := regexp.MustCompile(`(?s)` + regexp.QuoteMeta(name) + `(.*?)(?:\n\n|$)`)
	m := re.FindStringSubmatch(text)
	if m == nil {
		return NoRationale
	}
	r := strings.TrimSpace(strings.TrimLeft(m[1], headingPunct))
	if r == "" {
		return NoRationale
	}
	return r
}

// ExtractFinalSummary returns the text after the last summary marker with
// leading heading punctuation removed.
func ExtractFinalSummary(text string) string {
	i := strings.LastIndex(text, FinalSummaryMarker)
	if i < 0 {
		return NoFinalSummary
	}
	s := strings.TrimSpace(strings.TrimLeft(text[i+len(FinalSummaryMarker):], headingPunct))
	if s == "" {
		return NoFinalSummary
	}
	return s
}

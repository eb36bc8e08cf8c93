package util

import (
	"sort"
	"strings"
	"unicode"
)

// SanitizeText drops NUL and other non-printing control characters that
// scraped scouting notes sometimes carry, keeping newlines and tabs.
func SanitizeText(s string) string {
	if s == "" {
		return s
	}
	r := make([]rune, 0, len(s))
	for _, ch := range s {
		if ch == '\n' || ch == '\r' || ch == '\t' {
			r = append(r, ch)
			continue
		}
		if ch < 0x20 || ch == 0x7f {
			continue
		}
		r = append(r, ch)
	}
	return strings.TrimSpace(string(r))
}

// Preview flattens s onto one line and cuts it to maxRunes.
func Preview(s string, maxRunes int) string {
	if maxRunes <= 0 {
		maxRunes = 160
	}
	s = strings.Join(strings.Fields(SanitizeText(s)), " ")
	runes := []rune(s)
	if len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return s
}

// EvidenceSnippet picks the sentences of a scouting chunk that share the most
// terms with the query.
func EvidenceSnippet(chunk, query string, maxRunes int) string {
	chunk = Preview(chunk, 4000)
	if chunk == "" {
		return ""
	}
	terms := queryTerms(query)
	sentences := splitSentences(chunk)
	if len(terms) == 0 || len(sentences) == 0 {
		return Preview(chunk, maxRunes)
	}

	type scored struct {
		sentence string
		score    int
	}
	list := make([]scored, 0, len(sentences))
	for _, s := range sentences {
		low := strings.ToLower(s)
		score := 0
		for _, term := range terms {
			if strings.Contains(low, term) {
				score++
			}
		}
		list = append(list, scored{sentence: s, score: score})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})
	if list[0].score == 0 {
		return Preview(chunk, maxRunes)
	}
	best := list[0].sentence
	if len(list) > 1 && list[1].score > 0 {
		best += " " + list[1].sentence
	}
	return Preview(best, maxRunes)
}

func splitSentences(s string) []string {
	out := make([]string, 0, 8)
	var b strings.Builder
	for _, r := range s {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if x := strings.TrimSpace(b.String()); x != "" {
				out = append(out, x)
			}
			b.Reset()
		}
	}
	if rest := strings.TrimSpace(b.String()); rest != "" {
		out = append(out, rest)
	}
	return out
}

var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "who": {}, "can": {}, "that": {}, "this": {},
	"player": {}, "players": {}, "need": {}, "needs": {}, "want": {}, "looking": {}, "from": {},
	"draft": {}, "class": {}, "good": {}, "best": {},
}

func queryTerms(s string) []string {
	seen := map[string]struct{}{}
	var terms []string
	for _, f := range strings.Fields(strings.ToLower(s)) {
		f = strings.TrimFunc(f, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if len(f) < 3 {
			continue
		}
		if _, ok := stopWords[f]; ok {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		terms = append(terms, f)
	}
	return terms
}

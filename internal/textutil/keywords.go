package textutil

import (
	"sort"
	"strings"
)

var stopwords = map[string]struct{}{
	"about": {}, "after": {}, "again": {}, "all": {}, "also": {}, "and": {},
	"any": {}, "are": {}, "because": {}, "been": {}, "before": {}, "being": {},
	"but": {}, "can": {}, "could": {}, "did": {}, "does": {},
	"doing": {}, "down": {}, "during": {}, "each": {}, "few": {}, "for": {},
	"from": {}, "had": {}, "has": {}, "have": {}, "having": {}, "here": {},
	"how": {}, "into": {}, "its": {}, "just": {}, "more": {}, "most": {},
	"much": {}, "not": {}, "now": {}, "off": {}, "once": {}, "only": {},
	"other": {}, "our": {}, "out": {}, "over": {}, "own": {}, "same": {},
	"she": {}, "should": {}, "some": {}, "such": {}, "than": {}, "that": {},
	"the": {}, "their": {}, "them": {}, "then": {}, "there": {}, "these": {},
	"they": {}, "this": {}, "those": {}, "through": {}, "under": {},
	"until": {}, "very": {}, "was": {}, "were": {}, "what": {}, "when": {},
	"where": {}, "which": {}, "while": {}, "who": {}, "why": {}, "will": {},
	"with": {}, "would": {}, "you": {}, "your": {}, "https": {}, "http": {},
	"www": {}, "com": {},
}

// ExtractKeywords counts hashtags (kept with their #) and plain alphabetic
// tokens of length >= 4, stopwords excluded.
func ExtractKeywords(text string) map[string]int {
	freq := make(map[string]int)
	for _, tok := range tokenize(text) {
		if strings.HasPrefix(tok, "#") && len(tok) > 1 {
			freq[tok]++
			continue
		}
		if strings.HasPrefix(tok, "@") {
			continue
		}
		if len(tok) < 4 || !isAlpha(tok) {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		freq[tok]++
	}
	return freq
}

type Keyword struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// TopKeywords ranks by count descending, term ascending on ties, keeping at
// most n entries.
func TopKeywords(freq map[string]int, n int) []Keyword {
	ranked := make([]Keyword, 0, len(freq))
	for term, count := range freq {
		ranked = append(ranked, Keyword{Term: term, Count: count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].Term < ranked[j].Term
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func isAlpha(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}

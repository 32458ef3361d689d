package textutil

import (
	"strings"
	"unicode"
)

// ExtractEntities pulls candidate entities from post text: hashtags,
// @mentions, and capitalized tokens (adjacent capitalized words merge into
// one entity, so "New York" is a single node). Deduplicated, first-seen
// order preserved.
func ExtractEntities(text string) []string {
	var entities []string
	seen := make(map[string]struct{})
	add := func(e string) {
		if _, dup := seen[e]; dup {
			return
		}
		seen[e] = struct{}{}
		entities = append(entities, e)
	}

	words := strings.Fields(text)
	var run []string
	flush := func() {
		if len(run) > 0 {
			add(strings.Join(run, " "))
			run = nil
		}
	}

	for _, w := range words {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '#' && r != '@'
		})
		if trimmed == "" {
			flush()
			continue
		}

		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "@") {
			flush()
			if len(trimmed) > 2 {
				add(trimmed)
			}
			continue
		}

		if isCapitalized(trimmed) && len(trimmed) > 2 && !isCommonWord(trimmed) {
			run = append(run, trimmed)
			continue
		}
		flush()
	}
	flush()

	return entities
}

func isCapitalized(s string) bool {
	r := []rune(s)
	if !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r[1:] {
		if unicode.IsUpper(c) {
			continue
		}
		if !unicode.IsLetter(c) && !unicode.IsNumber(c) {
			return false
		}
	}
	return true
}

// Capitalized stopwords are almost always sentence starts, not names.
func isCommonWord(s string) bool {
	_, stop := stopwords[strings.ToLower(s)]
	return stop
}

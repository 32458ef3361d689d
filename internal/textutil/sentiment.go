package textutil

import (
	"strings"
	"unicode"
)

// Compact valence lexicon, AFINN-style weights in -5..5. Enough coverage for
// short social posts; unknown words score zero.
var sentimentLexicon = map[string]float64{
	"amazing": 4, "awesome": 4, "best": 3, "brilliant": 4, "celebrate": 3,
	"excellent": 3, "excited": 3, "fantastic": 4, "fun": 4, "glad": 3,
	"good": 3, "great": 3, "happy": 3, "impressive": 3, "incredible": 4,
	"inspiring": 2, "love": 3, "loved": 3, "lovely": 3, "nice": 3,
	"perfect": 3, "proud": 2, "thank": 2, "thanks": 2, "thrilled": 5,
	"win": 4, "winner": 4, "wonderful": 4, "wow": 4, "beautiful": 3,
	"enjoy": 2, "enjoyed": 2, "success": 2, "successful": 3, "superb": 5,
	"cool": 1, "interesting": 2, "like": 2, "liked": 2, "helpful": 2,

	"angry": -3, "annoying": -2, "awful": -3, "bad": -3, "boring": -3,
	"broken": -1, "disappointed": -2, "disappointing": -2, "disaster": -2,
	"fail": -2, "failed": -2, "failure": -2, "hate": -3, "hated": -3,
	"horrible": -3, "lose": -3, "losing": -3, "lost": -3, "mess": -2,
	"pathetic": -2, "poor": -2, "sad": -2, "scam": -2, "stupid": -2,
	"terrible": -3, "ugly": -3, "unhappy": -2, "useless": -2, "waste": -1,
	"worst": -3, "wrong": -2, "broke": -1, "problem": -2,
	"problems": -2, "sucks": -3, "toxic": -2,
}

var negators = map[string]struct{}{
	"not": {}, "no": {}, "never": {}, "neither": {}, "nobody": {},
	"dont": {}, "don't": {}, "cant": {}, "can't": {}, "wont": {}, "won't": {},
	"isnt": {}, "isn't": {}, "wasnt": {}, "wasn't": {},
}

// SentimentScore scores text in -1..1. A preceding negator within two tokens
// flips a word's valence.
func SentimentScore(text string) float64 {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0
	}

	var total float64
	hits := 0
	for i, tok := range tokens {
		w, ok := sentimentLexicon[tok]
		if !ok {
			continue
		}
		for j := i - 2; j < i; j++ {
			if j < 0 {
				continue
			}
			if _, neg := negators[tokens[j]]; neg {
				w = -w
				break
			}
		}
		total += w
		hits++
	}

	if hits == 0 {
		return 0
	}
	score := total / (5.0 * float64(hits))
	if score > 1 {
		score = 1
	} else if score < -1 {
		score = -1
	}
	return score
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '#' && r != '@'
	})
}

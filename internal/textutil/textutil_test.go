package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseApproxCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"42", 42},
		{"1,234", 1234},
		{"3.2K", 3200},
		{"3.2k", 3200},
		{"1.4M", 1400000},
		{"2B", 2000000000},
		{" 15K ", 15000},
		{"", 0},
		{"n/a", 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseApproxCount(c.in), "input %q", c.in)
	}
}

func TestSentimentScorePositive(t *testing.T) {
	score := SentimentScore("what a great day, love this")
	assert.Greater(t, score, 0.05)
}

func TestSentimentScoreNegative(t *testing.T) {
	score := SentimentScore("terrible update, everything is broken")
	assert.Less(t, score, -0.05)
}

func TestSentimentScoreNeutralWithoutLexiconHits(t *testing.T) {
	assert.Zero(t, SentimentScore("the meeting is at noon tomorrow"))
	assert.Zero(t, SentimentScore(""))
}

func TestSentimentScoreNegationFlipsValence(t *testing.T) {
	plain := SentimentScore("this is good")
	negated := SentimentScore("this is not good")
	assert.Greater(t, plain, 0.0)
	assert.Less(t, negated, 0.0)
	assert.InDelta(t, -plain, negated, 1e-9)
}

func TestSentimentScoreBounded(t *testing.T) {
	score := SentimentScore("thrilled superb thrilled superb thrilled")
	assert.LessOrEqual(t, score, 1.0)
	assert.GreaterOrEqual(t, score, -1.0)
}

func TestExtractKeywordsFiltersShortAndStopwords(t *testing.T) {
	freq := ExtractKeywords("the quick brown fox and the lazy dog ran")
	assert.NotContains(t, freq, "the")
	assert.NotContains(t, freq, "and")
	assert.NotContains(t, freq, "fox") // below minimum length
	assert.Contains(t, freq, "quick")
	assert.Contains(t, freq, "brown")
	assert.Contains(t, freq, "lazy")
}

func TestExtractKeywordsKeepsHashtagsDropsMentions(t *testing.T) {
	freq := ExtractKeywords("shipping #golang updates with @someone #golang")
	assert.Equal(t, 2, freq["#golang"])
	assert.NotContains(t, freq, "@someone")
	assert.NotContains(t, freq, "someone")
}

func TestTopKeywordsOrdering(t *testing.T) {
	freq := map[string]int{"zebra": 3, "apple": 3, "mango": 5, "kiwi": 1}
	top := TopKeywords(freq, 3)
	require.Len(t, top, 3)
	assert.Equal(t, Keyword{Term: "mango", Count: 5}, top[0])
	// equal counts fall back to lexicographic order
	assert.Equal(t, Keyword{Term: "apple", Count: 3}, top[1])
	assert.Equal(t, Keyword{Term: "zebra", Count: 3}, top[2])
}

func TestExtractEntities(t *testing.T) {
	entities := ExtractEntities("we visited New York with @alice, loved it! #travel #nyc")
	assert.Equal(t, []string{"New York", "@alice", "#travel", "#nyc"}, entities)
}

func TestExtractEntitiesDeduplicates(t *testing.T) {
	entities := ExtractEntities("#go #go #go")
	assert.Equal(t, []string{"#go"}, entities)
}

func TestExtractEntitiesSkipsShortMarkers(t *testing.T) {
	entities := ExtractEntities("#a @b plain words only")
	assert.Empty(t, entities)
}

func TestStripHTMLToText(t *testing.T) {
	text := StripHTMLToText(`<p>Hello <a href="https://example.com">world</a></p><p>bye</p>`)
	assert.Contains(t, text, "Hello")
	assert.Contains(t, text, "world")
	assert.Contains(t, text, "bye")
	assert.NotContains(t, text, "<p>")
	assert.NotContains(t, text, "href")
}

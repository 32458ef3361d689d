package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluffyriot/profilescope/internal/textutil"
)

func TestInstagramMetaDescriptionRegex(t *testing.T) {
	desc := "3.2M Followers, 512 Following, 1,024 Posts - See Instagram photos from Alice"
	m := instagramMetaRe.FindStringSubmatch(desc)
	require.NotNil(t, m)
	assert.Equal(t, 3_200_000, textutil.ParseApproxCount(m[1]))
	assert.Equal(t, 512, textutil.ParseApproxCount(m[2]))
	assert.Equal(t, 1024, textutil.ParseApproxCount(m[3]))

	assert.Nil(t, instagramMetaRe.FindStringSubmatch("Log in to see photos"))
}

func TestTwitterMetaCountsRegex(t *testing.T) {
	desc := "14.5K Followers, 312 Following, 8,210 posts"
	matches := twitterCountsRe.FindAllStringSubmatch(desc, -1)
	require.Len(t, matches, 3)

	got := map[string]int{}
	for _, m := range matches {
		got[m[2]] = textutil.ParseApproxCount(m[1])
	}
	assert.Equal(t, 14_500, got["Followers"])
	assert.Equal(t, 312, got["Following"])
	assert.Equal(t, 8_210, got["posts"])
}

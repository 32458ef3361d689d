package fetcher

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiktokHydrationFixture = `{
  "__DEFAULT_SCOPE__": {
    "webapp.user-detail": {
      "statusCode": 0,
      "userInfo": {
        "user": {
          "nickname": "Alice",
          "signature": "dancing and code",
          "avatarLarger": "https://cdn.example.com/alice.jpg",
          "privateAccount": false,
          "verified": true
        },
        "stats": {
          "followerCount": 1200,
          "followingCount": 35,
          "videoCount": 80,
          "heartCount": 56000
        },
        "itemList": [
          {
            "id": "7301",
            "desc": "new dance #fyp",
            "createTime": 1700000000,
            "stats": {"diggCount": 150, "commentCount": 12}
          }
        ]
      }
    }
  }
}`

func TestParseTikTokUserDetail(t *testing.T) {
	res, err := parseTikTokUserDetail(tiktokHydrationFixture, "alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", res.Profile.Handle)
	assert.Equal(t, "Alice", res.Profile.DisplayName)
	assert.Equal(t, "dancing and code", res.Account.Bio)
	assert.Equal(t, 1200, res.Account.Followers)
	assert.Equal(t, int64(56000), res.Account.Hearts)
	assert.True(t, res.Account.Verified)

	require.Len(t, res.Posts, 1)
	assert.Equal(t, "7301", res.Posts[0].ExternalID)
	assert.Equal(t, "new dance #fyp", res.Posts[0].Content)
	assert.Equal(t, 150, res.Posts[0].Likes)
	assert.Equal(t, 12, res.Posts[0].Comments)
	assert.Equal(t, int64(1700000000), res.Posts[0].Timestamp.Unix())
}

func TestParseTikTokUserDetailStatusCodes(t *testing.T) {
	cases := []struct {
		code int
		kind ErrorKind
	}{
		{10202, KindNotFound},
		{10221, KindPermanentBlocked},
		{10222, KindPermanentBlocked},
		{99999, KindTransient},
	}
	for _, c := range cases {
		raw := `{"__DEFAULT_SCOPE__":{"webapp.user-detail":{"statusCode":` + strconv.Itoa(c.code) + `}}}`
		_, err := parseTikTokUserDetail(raw, "alice")
		var fe *FetchError
		require.ErrorAs(t, err, &fe, "statusCode %d", c.code)
		assert.Equal(t, c.kind, fe.Kind, "statusCode %d", c.code)
	}
}

func TestParseTikTokUserDetailMissingMarker(t *testing.T) {
	_, err := parseTikTokUserDetail(`{"unrelated": true}`, "alice")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, KindTransient, fe.Kind)
}

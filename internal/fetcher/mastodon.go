// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/fluffyriot/profilescope/internal/textutil"
)

func NewMastodonFetcher(c *Client) *SourceFetcher {
	return NewSourceFetcher(PlatformMastodon,
		&mastodonAPIStrategy{client: c},
	)
}

// mastodonAPIStrategy resolves user@domain through the instance's public
// API: account lookup first, then the statuses feed. Handles must carry the
// instance domain ("gargron@mastodon.social").
type mastodonAPIStrategy struct {
	client *Client
}

func (s *mastodonAPIStrategy) Label() string { return "mastodon-api" }

func (s *mastodonAPIStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	splits := strings.SplitN(handle, "@", 2)
	if len(splits) != 2 || splits[0] == "" || splits[1] == "" {
		return nil, NotFoundErr(fmt.Sprintf("mastodon handle %q must be user@domain", handle))
	}
	user, domain := splits[0], splits[1]

	lookupURL := fmt.Sprintf("https://%s/api/v1/accounts/lookup?acct=%s", domain, user)
	body, status, err := s.client.getBody(ctx, lookupURL, map[string]string{"Accept": "application/json"})
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("mastodon account %q not found on %s", user, domain))
	case status == http.StatusGone:
		return nil, BlockedErr(fmt.Sprintf("mastodon account %q was deleted", handle))
	case status == http.StatusTooManyRequests:
		return nil, RateLimitedErr(fmt.Sprintf("%s returned 429", domain))
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("%s returned %d", domain, status))
	}

	account := gjson.ParseBytes(body)
	id := account.Get("id").String()
	if id == "" {
		return nil, TransientErr("account id marker missing from lookup response")
	}
	if account.Get("suspended").Bool() {
		return nil, BlockedErr(fmt.Sprintf("mastodon account %q is suspended", handle))
	}

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: account.Get("display_name").String(),
			AvatarURL:   account.Get("avatar").String(),
		},
		Account: AccountFields{
			Bio:            textutil.StripHTMLToText(account.Get("note").String()),
			Followers:      int(account.Get("followers_count").Int()),
			Following:      int(account.Get("following_count").Int()),
			PostsCollected: int(account.Get("statuses_count").Int()),
			IsPrivate:      account.Get("locked").Bool(),
		},
	}
	if created := account.Get("created_at").String(); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			res.Profile.ExternalCreatedAt = &t
		}
	}

	feedURL := fmt.Sprintf("https://%s/api/v1/accounts/%s/statuses?exclude_replies=true&limit=40", domain, id)
	feed, status, err := s.client.getBody(ctx, feedURL, map[string]string{"Accept": "application/json"})
	if err != nil || status >= 400 {
		// profile without posts is still a usable result
		return res, nil
	}

	gjson.ParseBytes(feed).ForEach(func(_, st gjson.Result) bool {
		// count boosts toward cadence but attribute the text to the
		// original author, not this profile
		content := st.Get("content").String()
		if st.Get("reblog").Exists() && st.Get("reblog").Type != gjson.Null {
			content = ""
		}
		post := PostFields{
			ExternalID: st.Get("id").String(),
			Content:    textutil.StripHTMLToText(content),
			Likes:      int(st.Get("favourites_count").Int()),
			Comments:   int(st.Get("replies_count").Int()),
		}
		if created := st.Get("created_at").String(); created != "" {
			if t, err := time.Parse(time.RFC3339, created); err == nil {
				post.Timestamp = t
			}
		}
		res.Posts = append(res.Posts, post)
		return true
	})

	return res, nil
}

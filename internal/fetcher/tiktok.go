// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

func NewTikTokFetcher(c *Client) *SourceFetcher {
	return NewSourceFetcher(PlatformTikTok,
		&tiktokHydrationStrategy{client: c},
		&tiktokRenderStrategy{client: c},
	)
}

// tiktok status codes inside the hydration payload
const (
	tiktokUserNotFound   = 10202
	tiktokUserBanned     = 10221
	tiktokUserPrivateErr = 10222
)

func parseTikTokUserDetail(raw string, handle string) (*RawFetchResult, error) {
	detail := gjson.Get(raw, `__DEFAULT_SCOPE__.webapp\.user-detail`)
	if !detail.Exists() {
		return nil, TransientErr("user-detail marker missing from hydration payload")
	}

	switch detail.Get("statusCode").Int() {
	case 0:
		// ok
	case tiktokUserNotFound:
		return nil, NotFoundErr(fmt.Sprintf("tiktok handle %q does not exist", handle))
	case tiktokUserBanned:
		return nil, BlockedErr(fmt.Sprintf("tiktok account %q is banned", handle))
	case tiktokUserPrivateErr:
		return nil, BlockedErr(fmt.Sprintf("tiktok account %q is private", handle))
	default:
		return nil, TransientErr(fmt.Sprintf("tiktok user-detail statusCode %d", detail.Get("statusCode").Int()))
	}

	user := detail.Get("userInfo.user")
	stats := detail.Get("userInfo.stats")
	if !user.Exists() {
		return nil, TransientErr("userInfo.user marker missing")
	}

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: user.Get("nickname").String(),
			AvatarURL:   user.Get("avatarLarger").String(),
		},
		Account: AccountFields{
			Bio:            user.Get("signature").String(),
			Followers:      int(stats.Get("followerCount").Int()),
			Following:      int(stats.Get("followingCount").Int()),
			PostsCollected: int(stats.Get("videoCount").Int()),
			IsPrivate:      user.Get("privateAccount").Bool(),
			Verified:       user.Get("verified").Bool(),
			Hearts:         stats.Get("heartCount").Int(),
		},
	}

	// item-list rides along when the profile page was scraped whole
	gjson.Get(raw, `__DEFAULT_SCOPE__.webapp\.user-detail.userInfo.itemList`).ForEach(func(_, item gjson.Result) bool {
		post := PostFields{
			ExternalID: item.Get("id").String(),
			Content:    item.Get("desc").String(),
			Likes:      int(item.Get("stats.diggCount").Int()),
			Comments:   int(item.Get("stats.commentCount").Int()),
		}
		if ts := item.Get("createTime").Int(); ts > 0 {
			post.Timestamp = time.Unix(ts, 0).UTC()
		}
		res.Posts = append(res.Posts, post)
		return true
	})

	return res, nil
}

// tiktokHydrationStrategy pulls the SSR hydration JSON out of the static
// profile page, no browser needed.
type tiktokHydrationStrategy struct {
	client *Client
}

func (s *tiktokHydrationStrategy) Label() string { return "tiktok-hydration" }

func (s *tiktokHydrationStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	body, status, err := s.client.getBody(ctx, "https://www.tiktok.com/@"+handle, map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("tiktok handle %q does not exist", handle))
	case status == http.StatusTooManyRequests:
		return nil, RateLimitedErr("tiktok returned 429")
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("tiktok returned %d", status))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, TransientErr(err.Error())
	}

	raw := doc.Find(`script#__UNIVERSAL_DATA_FOR_REHYDRATION__`).Text()
	if raw == "" {
		return nil, TransientErr("hydration script marker missing (likely a captcha wall)")
	}

	return parseTikTokUserDetail(raw, handle)
}

// tiktokRenderStrategy loads the profile through the headless browser and
// reads the same hydration state after scripts ran, which gets past the
// no-JS interstitial.
type tiktokRenderStrategy struct {
	client *Client
}

func (s *tiktokRenderStrategy) Label() string { return "tiktok-render" }

func (s *tiktokRenderStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	if s.client.Renderer == nil {
		return nil, TransientErr("browser rendering disabled")
	}
	var raw string
	err := s.client.Renderer.Evaluate(ctx,
		"https://www.tiktok.com/@"+handle,
		`(function(){ const el = document.getElementById('__UNIVERSAL_DATA_FOR_REHYDRATION__'); return el ? el.textContent : ''; })()`,
		5*time.Second,
		&raw,
	)
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	if raw == "" {
		return nil, TransientErr("hydration script marker missing from rendered page")
	}

	return parseTikTokUserDetail(raw, handle)
}

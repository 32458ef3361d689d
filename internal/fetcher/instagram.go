// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/fluffyriot/profilescope/internal/textutil"
)

// App id the instagram web client itself sends; without it the profile
// endpoint answers with an HTML login wall.
const igAppID = "936619743392459"

func NewInstagramFetcher(c *Client) *SourceFetcher {
	return NewSourceFetcher(PlatformInstagram,
		&instagramAPIStrategy{client: c},
		&instagramMetaStrategy{client: c},
	)
}

// instagramAPIStrategy hits the web profile JSON endpoint, the richest
// source: bio, counters and the recent media edge in one response.
type instagramAPIStrategy struct {
	client *Client
}

func (s *instagramAPIStrategy) Label() string { return "instagram-web-api" }

func (s *instagramAPIStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	url := "https://i.instagram.com/api/v1/users/web_profile_info/?username=" + handle
	body, status, err := s.client.getBody(ctx, url, map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"X-IG-App-ID": igAppID,
		"Accept":      "application/json",
	})
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("instagram handle %q does not exist", handle))
	case status == http.StatusTooManyRequests:
		return nil, RateLimitedErr("instagram returned 429")
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("instagram returned %d", status))
	}

	root := gjson.ParseBytes(body)
	user := root.Get("data.user")
	if !user.Exists() {
		return nil, TransientErr("data.user marker missing from response")
	}
	if user.Type == gjson.Null {
		return nil, NotFoundErr(fmt.Sprintf("instagram handle %q does not exist", handle))
	}

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: user.Get("full_name").String(),
			AvatarURL:   user.Get("profile_pic_url_hd").String(),
		},
		Account: AccountFields{
			Bio:            user.Get("biography").String(),
			Followers:      int(user.Get("edge_followed_by.count").Int()),
			Following:      int(user.Get("edge_follow.count").Int()),
			PostsCollected: int(user.Get("edge_owner_to_timeline_media.count").Int()),
			IsPrivate:      user.Get("is_private").Bool(),
			Verified:       user.Get("is_verified").Bool(),
		},
	}

	user.Get("edge_owner_to_timeline_media.edges").ForEach(func(_, edge gjson.Result) bool {
		node := edge.Get("node")
		post := PostFields{
			ExternalID: node.Get("shortcode").String(),
			Content:    node.Get("edge_media_to_caption.edges.0.node.text").String(),
			Likes:      int(node.Get("edge_liked_by.count").Int()),
			Comments:   int(node.Get("edge_media_to_comment.count").Int()),
		}
		if ts := node.Get("taken_at_timestamp").Int(); ts > 0 {
			post.Timestamp = time.Unix(ts, 0).UTC()
		}
		res.Posts = append(res.Posts, post)
		return true
	})

	return res, nil
}

// instagramMetaStrategy parses the public profile page's description tag:
// "1,234 Followers, 56 Following, 78 Posts - ...". No post bodies, but it
// keeps counters flowing when the JSON endpoint is walled off.
type instagramMetaStrategy struct {
	client *Client
}

func (s *instagramMetaStrategy) Label() string { return "instagram-meta" }

var instagramMetaRe = regexp.MustCompile(`([\d.,]+[KMB]?)\s+Followers,\s+([\d.,]+[KMB]?)\s+Following,\s+([\d.,]+[KMB]?)\s+Posts`)

func (s *instagramMetaStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	body, status, err := s.client.getBody(ctx, "https://www.instagram.com/"+handle+"/", map[string]string{
		"User-Agent": "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("instagram handle %q does not exist", handle))
	case status == http.StatusTooManyRequests:
		return nil, RateLimitedErr("instagram returned 429")
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("instagram returned %d", status))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, TransientErr(err.Error())
	}

	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	m := instagramMetaRe.FindStringSubmatch(desc)
	if m == nil {
		return nil, TransientErr("follower counters marker missing from meta description")
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	avatar, _ := doc.Find(`meta[property="og:image"]`).Attr("content")

	displayName := title
	if i := strings.Index(title, " (@"); i > 0 {
		displayName = title[:i]
	}

	// Bio rides in the description after the counters block.
	bio := ""
	if i := strings.Index(desc, " - "); i >= 0 {
		bio = strings.TrimSpace(desc[i+3:])
	}

	return &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: displayName,
			AvatarURL:   avatar,
		},
		Account: AccountFields{
			Bio:            bio,
			Followers:      textutil.ParseApproxCount(m[1]),
			Following:      textutil.ParseApproxCount(m[2]),
			PostsCollected: textutil.ParseApproxCount(m[3]),
		},
	}, nil
}

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

	"github.com/fluffyriot/profilescope/internal/textutil"
)

func NewTwitterFetcher(c *Client) *SourceFetcher {
	return NewSourceFetcher(PlatformTwitter,
		&twitterMetaStrategy{client: c},
		&twitterRenderStrategy{client: c},
	)
}

// twitterMetaStrategy reads the static profile page the way a search
// crawler would and parses the OpenGraph tags. Cheap, no JS, no posts.
type twitterMetaStrategy struct {
	client *Client
}

func (s *twitterMetaStrategy) Label() string { return "twitter-meta" }

var twitterCountsRe = regexp.MustCompile(`([\d.,]+[KMB]?)\s+(Followers|Following|posts|Posts)`)

func (s *twitterMetaStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	body, status, err := s.client.getBody(ctx, "https://x.com/"+handle, map[string]string{
		"User-Agent": "Mozilla/5.0 (compatible; bingbot/2.0; +http://www.bing.com/bingbot.htm)",
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("twitter handle %q does not exist", handle))
	case status == http.StatusTooManyRequests:
		return nil, RateLimitedErr("twitter returned 429")
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("twitter returned %d", status))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, TransientErr(err.Error())
	}

	title, _ := doc.Find(`meta[property="og:title"]`).Attr("content")
	if title == "" {
		// no structured markup in the response; let the render strategy try
		return nil, TransientErr("og:title marker missing")
	}
	if strings.Contains(title, "Account suspended") {
		return nil, BlockedErr(fmt.Sprintf("twitter account %q is suspended", handle))
	}

	desc, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	avatar, _ := doc.Find(`meta[property="og:image"]`).Attr("content")

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: strings.TrimSpace(strings.TrimSuffix(title, fmt.Sprintf("(@%s) on X", handle))),
			AvatarURL:   avatar,
		},
		Account: AccountFields{Bio: desc},
	}

	for _, m := range twitterCountsRe.FindAllStringSubmatch(desc, -1) {
		n := textutil.ParseApproxCount(m[1])
		switch strings.ToLower(m[2]) {
		case "followers":
			res.Account.Followers = n
		case "following":
			res.Account.Following = n
		case "posts":
			res.Account.PostsCollected = n
		}
	}

	return res, nil
}

// twitterRenderStrategy drives the headless browser and parses the rendered
// timeline DOM, including recent tweets.
type twitterRenderStrategy struct {
	client *Client
}

func (s *twitterRenderStrategy) Label() string { return "twitter-render" }

func (s *twitterRenderStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	if s.client.Renderer == nil {
		return nil, TransientErr("browser rendering disabled")
	}
	html, err := s.client.Renderer.RenderHTML(ctx, "https://x.com/"+handle, 8*time.Second)
	if err != nil {
		return nil, TransientErr(err.Error())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, TransientErr(err.Error())
	}

	if doc.Find(`div[data-testid="emptyState"]`).Length() > 0 &&
		strings.Contains(html, "doesn’t exist") {
		return nil, NotFoundErr(fmt.Sprintf("twitter handle %q does not exist", handle))
	}

	nameSel := doc.Find(`div[data-testid="UserName"] span`).First()
	if nameSel.Length() == 0 {
		return nil, TransientErr("UserName marker missing from rendered page")
	}

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: strings.TrimSpace(nameSel.Text()),
		},
		Account: AccountFields{
			Bio: strings.TrimSpace(doc.Find(`div[data-testid="UserDescription"]`).Text()),
		},
	}

	if avatar, ok := doc.Find(`img[alt="Opens profile photo"]`).Attr("src"); ok {
		res.Profile.AvatarURL = avatar
	}
	if joined, ok := doc.Find(`div[data-testid="UserJoinDate"] time`).Attr("datetime"); ok {
		if t, err := time.Parse(time.RFC3339, joined); err == nil {
			res.Profile.ExternalCreatedAt = &t
		}
	}

	doc.Find(`a[href$="/verified_followers"] span`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if n := textutil.ParseApproxCount(sel.Text()); n > 0 {
			res.Account.Followers = n
			return false
		}
		return true
	})
	doc.Find(`a[href$="/following"] span`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if n := textutil.ParseApproxCount(sel.Text()); n > 0 {
			res.Account.Following = n
			return false
		}
		return true
	})

	if doc.Find(`div[data-testid="UserProtectedTimeline"]`).Length() > 0 {
		res.Account.IsPrivate = true
		return res, nil
	}

	doc.Find(`article[data-testid="tweet"]`).Each(func(_ int, article *goquery.Selection) {
		post := PostFields{
			Content: strings.TrimSpace(article.Find("div[lang]").Text()),
		}
		if ts, ok := article.Find("time").First().Attr("datetime"); ok {
			if t, err := time.Parse(time.RFC3339, ts); err == nil {
				post.Timestamp = t
			}
		}
		if href, ok := article.Find(`a[href*="/status/"]`).First().Attr("href"); ok {
			if i := strings.LastIndex(href, "/status/"); i >= 0 {
				post.ExternalID = href[i+len("/status/"):]
			}
		}
		post.Likes = textutil.ParseApproxCount(article.Find(`button[data-testid="like"] span`).First().Text())
		post.Comments = textutil.ParseApproxCount(article.Find(`button[data-testid="reply"] span`).First().Text())

		if post.Content != "" || post.ExternalID != "" {
			res.Posts = append(res.Posts, post)
		}
	})

	return res, nil
}

// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"github.com/fluffyriot/profilescope/internal/textutil"
)

func NewGitHubFetcher(c *Client) *SourceFetcher {
	return NewSourceFetcher(PlatformGitHub,
		&githubAPIStrategy{client: c},
		&githubHTMLStrategy{client: c},
	)
}

// githubAPIStrategy uses the public REST API. Commit messages from recent
// public push events stand in for posts, which gives the analysis engine
// text and timestamps to work with on a platform that has no feed.
type githubAPIStrategy struct {
	client *Client
}

func (s *githubAPIStrategy) Label() string { return "github-api" }

func (s *githubAPIStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	headers := map[string]string{
		"Accept":     "application/vnd.github+json",
		"User-Agent": "profilescope",
	}

	body, status, err := s.client.getBody(ctx, "https://api.github.com/users/"+handle, headers)
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("github user %q does not exist", handle))
	case status == http.StatusForbidden || status == http.StatusTooManyRequests:
		return nil, RateLimitedErr(fmt.Sprintf("github API rate limit (%d)", status))
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("github returned %d", status))
	}

	user := gjson.ParseBytes(body)
	if !user.Get("login").Exists() {
		return nil, TransientErr("login marker missing from github response")
	}

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: user.Get("name").String(),
			AvatarURL:   user.Get("avatar_url").String(),
		},
		Account: AccountFields{
			Bio:         user.Get("bio").String(),
			Followers:   int(user.Get("followers").Int()),
			Following:   int(user.Get("following").Int()),
			PublicRepos: int(user.Get("public_repos").Int()),
		},
	}
	if created := user.Get("created_at").String(); created != "" {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			res.Profile.ExternalCreatedAt = &t
		}
	}

	// best effort; profile data alone is still a successful fetch
	events, status, err := s.client.getBody(ctx, "https://api.github.com/users/"+handle+"/events/public", headers)
	if err != nil || status >= 400 {
		return res, nil
	}

	gjson.ParseBytes(events).ForEach(func(_, ev gjson.Result) bool {
		if ev.Get("type").String() != "PushEvent" {
			return true
		}
		ts, _ := time.Parse(time.RFC3339, ev.Get("created_at").String())
		repo := ev.Get("repo.name").String()
		ev.Get("payload.commits").ForEach(func(_, c gjson.Result) bool {
			msg := c.Get("message").String()
			if msg == "" {
				return true
			}
			res.Posts = append(res.Posts, PostFields{
				ExternalID: c.Get("sha").String(),
				Content:    fmt.Sprintf("%s (%s)", msg, repo),
				Timestamp:  ts,
			})
			return true
		})
		return true
	})

	res.Account.PostsCollected = len(res.Posts)
	return res, nil
}

// githubHTMLStrategy scrapes the profile page microformats when the API
// quota is gone.
type githubHTMLStrategy struct {
	client *Client
}

func (s *githubHTMLStrategy) Label() string { return "github-html" }

func (s *githubHTMLStrategy) Fetch(ctx context.Context, handle string) (*RawFetchResult, error) {
	body, status, err := s.client.getBody(ctx, "https://github.com/"+handle, map[string]string{
		"User-Agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":     "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	})
	if err != nil {
		return nil, TransientErr(err.Error())
	}
	switch {
	case status == http.StatusNotFound:
		return nil, NotFoundErr(fmt.Sprintf("github user %q does not exist", handle))
	case status == http.StatusTooManyRequests:
		return nil, RateLimitedErr("github returned 429")
	case status >= 400:
		return nil, TransientErr(fmt.Sprintf("github returned %d", status))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, TransientErr(err.Error())
	}

	name := strings.TrimSpace(doc.Find("span.p-name").First().Text())
	bio := strings.TrimSpace(doc.Find("div.p-note").First().Text())
	if name == "" && bio == "" {
		return nil, TransientErr("profile microformat markers missing")
	}

	res := &RawFetchResult{
		Profile: ProfileFields{
			Handle:      handle,
			DisplayName: name,
			AvatarURL:   fmt.Sprintf("https://github.com/%s.png", handle),
		},
		Account: AccountFields{Bio: bio},
	}

	doc.Find("a.Link--secondary span.text-bold").Each(func(i int, sel *goquery.Selection) {
		n := textutil.ParseApproxCount(sel.Text())
		switch i {
		case 0:
			res.Account.Followers = n
		case 1:
			res.Account.Following = n
		}
	})

	return res, nil
}

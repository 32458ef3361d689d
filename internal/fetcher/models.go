// SPDX-License-Identifier: AGPL-3.0-only
package fetcher

import "time"

type ProfileFields struct {
	Handle            string
	DisplayName       string
	AvatarURL         string
	ExternalCreatedAt *time.Time
}

type AccountFields struct {
	Bio            string
	Followers      int
	Following      int
	PostsCollected int
	IsPrivate      bool
	Verified       bool
	PublicRepos    int
	Hearts         int64
}

type PostFields struct {
	ExternalID string
	Content    string
	Timestamp  time.Time
	Likes      int
	Comments   int
}

// RawFetchResult is what one winning strategy produced for a handle.
// SourceLabel records which strategy won, for observability only.
type RawFetchResult struct {
	Profile     ProfileFields
	Account     AccountFields
	Posts       []PostFields
	SourceLabel string
}

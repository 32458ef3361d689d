// SPDX-License-Identifier: AGPL-3.0-only
package ingest

import (
	"context"
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/fetcher"
	"github.com/fluffyriot/profilescope/internal/textutil"
)

const (
	// posts without a stable upstream id dedup on this many leading chars
	dedupPrefixLen = 80
	// stored post text is capped; analysis never needs more
	maxContentLen = 500
)

type Store interface {
	UpsertProfile(ctx context.Context, arg database.UpsertProfileParams) (database.Profile, error)
	UpsertAccountSnapshot(ctx context.Context, arg database.UpsertAccountSnapshotParams) (database.AccountSnapshot, error)
	UpsertPost(ctx context.Context, arg database.UpsertPostParams) (database.UpsertPostRow, error)
	UpdateProfilePostsCount(ctx context.Context, id uuid.UUID) (int32, error)
}

// Normalizer converts raw fetch results into store records. Every write is
// an upsert keyed by natural identity, so re-ingesting the same result is a
// no-op for row counts.
type Normalizer struct {
	store Store
}

func NewNormalizer(store Store) *Normalizer {
	return &Normalizer{store: store}
}

type Result struct {
	Profile       database.Profile
	PostsUpserted int
}

func (n *Normalizer) Normalize(ctx context.Context, res *fetcher.RawFetchResult, platform string) (*Result, error) {
	var externalCreated sql.NullTime
	if res.Profile.ExternalCreatedAt != nil {
		externalCreated = sql.NullTime{Time: *res.Profile.ExternalCreatedAt, Valid: true}
	}

	profile, err := n.store.UpsertProfile(ctx, database.UpsertProfileParams{
		ID:                uuid.New(),
		Handle:            res.Profile.Handle,
		Platform:          platform,
		DisplayName:       res.Profile.DisplayName,
		AvatarUrl:         res.Profile.AvatarURL,
		ExternalCreatedAt: externalCreated,
	})
	if err != nil {
		return nil, err
	}

	_, err = n.store.UpsertAccountSnapshot(ctx, database.UpsertAccountSnapshotParams{
		ID:             uuid.New(),
		ProfileID:      profile.ID,
		Platform:       platform,
		Bio:            res.Account.Bio,
		Followers:      int32(res.Account.Followers),
		Following:      int32(res.Account.Following),
		PostsCollected: int32(res.Account.PostsCollected),
		IsPrivate:      res.Account.IsPrivate,
		Verified:       res.Account.Verified,
		PublicRepos:    int32(res.Account.PublicRepos),
		Hearts:         res.Account.Hearts,
	})
	if err != nil {
		return nil, err
	}

	upserted := 0
	for _, post := range res.Posts {
		content := truncateOnRuneBoundary(post.Content, maxContentLen)
		if content == "" && post.ExternalID == "" {
			continue
		}

		var externalID sql.NullString
		if post.ExternalID != "" {
			externalID = sql.NullString{String: post.ExternalID, Valid: true}
		}

		ts := post.Timestamp
		if ts.IsZero() {
			ts = time.Now().UTC()
		}

		_, err := n.store.UpsertPost(ctx, database.UpsertPostParams{
			ID:             uuid.New(),
			ProfileID:      profile.ID,
			Platform:       platform,
			ExternalID:     externalID,
			DedupKey:       dedupKey(post.ExternalID, content),
			Content:        content,
			PostedAt:       ts.UTC(),
			Likes:          int32(post.Likes),
			Comments:       int32(post.Comments),
			SentimentScore: textutil.SentimentScore(content),
		})
		if err != nil {
			return nil, err
		}
		upserted++
	}

	count, err := n.store.UpdateProfilePostsCount(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	profile.PostsCount = count

	return &Result{Profile: profile, PostsUpserted: upserted}, nil
}

// WritePlaceholder records a minimal profile and snapshot after a terminal
// fetch failure, so repeated searches for the handle resolve from the store
// instead of re-triggering doomed fetches.
func (n *Normalizer) WritePlaceholder(ctx context.Context, handle, platform string, private bool) (*database.Profile, error) {
	profile, err := n.store.UpsertProfile(ctx, database.UpsertProfileParams{
		ID:          uuid.New(),
		Handle:      handle,
		Platform:    platform,
		DisplayName: handle,
	})
	if err != nil {
		return nil, err
	}

	_, err = n.store.UpsertAccountSnapshot(ctx, database.UpsertAccountSnapshotParams{
		ID:        uuid.New(),
		ProfileID: profile.ID,
		Platform:  platform,
		IsPrivate: private,
	})
	if err != nil {
		return nil, err
	}

	return &profile, nil
}

// dedupKey approximates identity for posts across re-fetches: the upstream
// id when there is one, else a normalized content prefix.
func dedupKey(externalID, content string) string {
	if externalID != "" {
		return "id:" + externalID
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(content), " "))
	return "text:" + truncateOnRuneBoundary(normalized, dedupPrefixLen)
}

// truncateOnRuneBoundary caps s at n bytes without splitting a multi-byte
// rune; the column stays valid UTF-8 for Postgres.
func truncateOnRuneBoundary(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

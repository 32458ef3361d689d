package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const upsertAccountSnapshot = `
INSERT INTO account_snapshots (id, profile_id, platform, bio, followers, following, posts_collected, is_private, verified, public_repos, hearts, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (profile_id, platform) DO UPDATE SET
    bio = EXCLUDED.bio,
    followers = EXCLUDED.followers,
    following = EXCLUDED.following,
    posts_collected = EXCLUDED.posts_collected,
    is_private = EXCLUDED.is_private,
    verified = EXCLUDED.verified,
    public_repos = EXCLUDED.public_repos,
    hearts = EXCLUDED.hearts,
    updated_at = EXCLUDED.updated_at
RETURNING id, profile_id, platform, bio, followers, following, posts_collected, is_private, verified, public_repos, hearts, updated_at
`

type UpsertAccountSnapshotParams struct {
	ID             uuid.UUID
	ProfileID      uuid.UUID
	Platform       string
	Bio            string
	Followers      int32
	Following      int32
	PostsCollected int32
	IsPrivate      bool
	Verified       bool
	PublicRepos    int32
	Hearts         int64
}

func (q *Queries) UpsertAccountSnapshot(ctx context.Context, arg UpsertAccountSnapshotParams) (AccountSnapshot, error) {
	row := q.db.QueryRowContext(ctx, upsertAccountSnapshot,
		arg.ID, arg.ProfileID, arg.Platform, arg.Bio, arg.Followers, arg.Following,
		arg.PostsCollected, arg.IsPrivate, arg.Verified, arg.PublicRepos, arg.Hearts,
		time.Now().UTC())
	var s AccountSnapshot
	err := row.Scan(&s.ID, &s.ProfileID, &s.Platform, &s.Bio, &s.Followers, &s.Following,
		&s.PostsCollected, &s.IsPrivate, &s.Verified, &s.PublicRepos, &s.Hearts, &s.UpdatedAt)
	return s, err
}

const getAccountSnapshot = `
SELECT id, profile_id, platform, bio, followers, following, posts_collected, is_private, verified, public_repos, hearts, updated_at
FROM account_snapshots WHERE profile_id = $1 AND platform = $2
`

type GetAccountSnapshotParams struct {
	ProfileID uuid.UUID
	Platform  string
}

func (q *Queries) GetAccountSnapshot(ctx context.Context, arg GetAccountSnapshotParams) (AccountSnapshot, error) {
	row := q.db.QueryRowContext(ctx, getAccountSnapshot, arg.ProfileID, arg.Platform)
	var s AccountSnapshot
	err := row.Scan(&s.ID, &s.ProfileID, &s.Platform, &s.Bio, &s.Followers, &s.Following,
		&s.PostsCollected, &s.IsPrivate, &s.Verified, &s.PublicRepos, &s.Hearts, &s.UpdatedAt)
	return s, err
}

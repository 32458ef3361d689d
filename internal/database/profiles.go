package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const upsertProfile = `
INSERT INTO profiles (id, handle, platform, display_name, avatar_url, first_seen_at, last_refreshed_at, external_created_at, posts_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 0)
ON CONFLICT (handle, platform) DO UPDATE SET
    display_name = EXCLUDED.display_name,
    avatar_url = EXCLUDED.avatar_url,
    last_refreshed_at = EXCLUDED.last_refreshed_at,
    external_created_at = COALESCE(EXCLUDED.external_created_at, profiles.external_created_at)
RETURNING id, handle, platform, display_name, avatar_url, first_seen_at, last_refreshed_at, external_created_at, posts_count
`

type UpsertProfileParams struct {
	ID                uuid.UUID
	Handle            string
	Platform          string
	DisplayName       string
	AvatarUrl         string
	ExternalCreatedAt sql.NullTime
}

func (q *Queries) UpsertProfile(ctx context.Context, arg UpsertProfileParams) (Profile, error) {
	now := time.Now().UTC()
	row := q.db.QueryRowContext(ctx, upsertProfile,
		arg.ID, arg.Handle, arg.Platform, arg.DisplayName, arg.AvatarUrl, now, now, arg.ExternalCreatedAt)
	var p Profile
	err := row.Scan(&p.ID, &p.Handle, &p.Platform, &p.DisplayName, &p.AvatarUrl,
		&p.FirstSeenAt, &p.LastRefreshedAt, &p.ExternalCreatedAt, &p.PostsCount)
	return p, err
}

const getProfileByHandleAndPlatform = `
SELECT id, handle, platform, display_name, avatar_url, first_seen_at, last_refreshed_at, external_created_at, posts_count
FROM profiles WHERE handle = $1 AND platform = $2
`

type GetProfileByHandleAndPlatformParams struct {
	Handle   string
	Platform string
}

func (q *Queries) GetProfileByHandleAndPlatform(ctx context.Context, arg GetProfileByHandleAndPlatformParams) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfileByHandleAndPlatform, arg.Handle, arg.Platform)
	var p Profile
	err := row.Scan(&p.ID, &p.Handle, &p.Platform, &p.DisplayName, &p.AvatarUrl,
		&p.FirstSeenAt, &p.LastRefreshedAt, &p.ExternalCreatedAt, &p.PostsCount)
	return p, err
}

const getProfileById = `
SELECT id, handle, platform, display_name, avatar_url, first_seen_at, last_refreshed_at, external_created_at, posts_count
FROM profiles WHERE id = $1
`

func (q *Queries) GetProfileById(ctx context.Context, id uuid.UUID) (Profile, error) {
	row := q.db.QueryRowContext(ctx, getProfileById, id)
	var p Profile
	err := row.Scan(&p.ID, &p.Handle, &p.Platform, &p.DisplayName, &p.AvatarUrl,
		&p.FirstSeenAt, &p.LastRefreshedAt, &p.ExternalCreatedAt, &p.PostsCount)
	return p, err
}

const updateProfilePostsCount = `
UPDATE profiles SET posts_count = (SELECT COUNT(*) FROM posts WHERE posts.profile_id = $1)
WHERE id = $1
RETURNING posts_count
`

// UpdateProfilePostsCount sets posts_count to the stored-post total, not the
// count the upstream source reported (feeds are often truncated).
func (q *Queries) UpdateProfilePostsCount(ctx context.Context, id uuid.UUID) (int32, error) {
	var n int32
	err := q.db.QueryRowContext(ctx, updateProfilePostsCount, id).Scan(&n)
	return n, err
}

const deleteProfile = `
DELETE FROM profiles WHERE handle = $1 AND platform = $2
`

type DeleteProfileParams struct {
	Handle   string
	Platform string
}

// DeleteProfile removes a profile and, through ON DELETE CASCADE, its
// snapshot, posts and analysis. Returns whether anything existed.
func (q *Queries) DeleteProfile(ctx context.Context, arg DeleteProfileParams) (bool, error) {
	res, err := q.db.ExecContext(ctx, deleteProfile, arg.Handle, arg.Platform)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

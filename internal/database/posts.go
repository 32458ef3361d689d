package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const upsertPost = `
INSERT INTO posts (id, profile_id, platform, external_id, dedup_key, content, posted_at, likes, comments, sentiment_score, first_synced_at, last_synced_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
ON CONFLICT (profile_id, platform, dedup_key) DO UPDATE SET
    likes = EXCLUDED.likes,
    comments = EXCLUDED.comments,
    last_synced_at = EXCLUDED.last_synced_at
RETURNING id, profile_id, platform, external_id, dedup_key, content, posted_at, likes, comments, sentiment_score, first_synced_at, last_synced_at,
    (xmax = 0) AS inserted
`

type UpsertPostParams struct {
	ID             uuid.UUID
	ProfileID      uuid.UUID
	Platform       string
	ExternalID     sql.NullString
	DedupKey       string
	Content        string
	PostedAt       time.Time
	Likes          int32
	Comments       int32
	SentimentScore float64
}

type UpsertPostRow struct {
	Post
	Inserted bool
}

// UpsertPost treats a matching dedup key as the same logical post: metrics
// are refreshed, content and sentiment stay as first ingested.
func (q *Queries) UpsertPost(ctx context.Context, arg UpsertPostParams) (UpsertPostRow, error) {
	row := q.db.QueryRowContext(ctx, upsertPost,
		arg.ID, arg.ProfileID, arg.Platform, arg.ExternalID, arg.DedupKey, arg.Content,
		arg.PostedAt, arg.Likes, arg.Comments, arg.SentimentScore, time.Now().UTC())
	var r UpsertPostRow
	err := row.Scan(&r.ID, &r.ProfileID, &r.Platform, &r.ExternalID, &r.DedupKey, &r.Content,
		&r.PostedAt, &r.Likes, &r.Comments, &r.SentimentScore, &r.FirstSyncedAt, &r.LastSyncedAt,
		&r.Inserted)
	return r, err
}

const getPostsByProfile = `
SELECT id, profile_id, platform, external_id, dedup_key, content, posted_at, likes, comments, sentiment_score, first_synced_at, last_synced_at
FROM posts WHERE profile_id = $1 ORDER BY posted_at DESC
`

func (q *Queries) GetPostsByProfile(ctx context.Context, profileID uuid.UUID) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, getPostsByProfile, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		if err := rows.Scan(&p.ID, &p.ProfileID, &p.Platform, &p.ExternalID, &p.DedupKey, &p.Content,
			&p.PostedAt, &p.Likes, &p.Comments, &p.SentimentScore, &p.FirstSyncedAt, &p.LastSyncedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

const countPostsByProfile = `
SELECT COUNT(*) FROM posts WHERE profile_id = $1
`

func (q *Queries) CountPostsByProfile(ctx context.Context, profileID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countPostsByProfile, profileID).Scan(&n)
	return n, err
}

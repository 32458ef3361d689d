package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

const upsertBehaviorAnalysis = `
INSERT INTO behavior_analyses (id, profile_id, avg_post_hour, most_active_days, sentiment_score, positive_count, neutral_count, negative_count, top_keywords, network_size, influence_score, analyzed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (profile_id) DO UPDATE SET
    avg_post_hour = EXCLUDED.avg_post_hour,
    most_active_days = EXCLUDED.most_active_days,
    sentiment_score = EXCLUDED.sentiment_score,
    positive_count = EXCLUDED.positive_count,
    neutral_count = EXCLUDED.neutral_count,
    negative_count = EXCLUDED.negative_count,
    top_keywords = EXCLUDED.top_keywords,
    network_size = EXCLUDED.network_size,
    influence_score = EXCLUDED.influence_score,
    analyzed_at = EXCLUDED.analyzed_at
RETURNING id, profile_id, avg_post_hour, most_active_days, sentiment_score, positive_count, neutral_count, negative_count, top_keywords, network_size, influence_score, analyzed_at
`

type UpsertBehaviorAnalysisParams struct {
	ID             uuid.UUID
	ProfileID      uuid.UUID
	AvgPostHour    sql.NullInt32
	MostActiveDays string
	SentimentScore float64
	PositiveCount  int32
	NeutralCount   int32
	NegativeCount  int32
	TopKeywords    []byte
	NetworkSize    int32
	InfluenceScore float64
}

func (q *Queries) UpsertBehaviorAnalysis(ctx context.Context, arg UpsertBehaviorAnalysisParams) (BehaviorAnalysis, error) {
	row := q.db.QueryRowContext(ctx, upsertBehaviorAnalysis,
		arg.ID, arg.ProfileID, arg.AvgPostHour, arg.MostActiveDays, arg.SentimentScore,
		arg.PositiveCount, arg.NeutralCount, arg.NegativeCount, arg.TopKeywords,
		arg.NetworkSize, arg.InfluenceScore, time.Now().UTC())
	var a BehaviorAnalysis
	err := row.Scan(&a.ID, &a.ProfileID, &a.AvgPostHour, &a.MostActiveDays, &a.SentimentScore,
		&a.PositiveCount, &a.NeutralCount, &a.NegativeCount, &a.TopKeywords,
		&a.NetworkSize, &a.InfluenceScore, &a.AnalyzedAt)
	return a, err
}

const getBehaviorAnalysisByProfile = `
SELECT id, profile_id, avg_post_hour, most_active_days, sentiment_score, positive_count, neutral_count, negative_count, top_keywords, network_size, influence_score, analyzed_at
FROM behavior_analyses WHERE profile_id = $1
`

func (q *Queries) GetBehaviorAnalysisByProfile(ctx context.Context, profileID uuid.UUID) (BehaviorAnalysis, error) {
	row := q.db.QueryRowContext(ctx, getBehaviorAnalysisByProfile, profileID)
	var a BehaviorAnalysis
	err := row.Scan(&a.ID, &a.ProfileID, &a.AvgPostHour, &a.MostActiveDays, &a.SentimentScore,
		&a.PositiveCount, &a.NeutralCount, &a.NegativeCount, &a.TopKeywords,
		&a.NetworkSize, &a.InfluenceScore, &a.AnalyzedAt)
	return a, err
}

package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/textutil"
)

type fakeStore struct {
	profile  database.Profile
	posts    []database.Post
	snapshot database.AccountSnapshot
	snapErr  error
	saved    *database.UpsertBehaviorAnalysisParams
}

func (f *fakeStore) GetProfileById(ctx context.Context, id uuid.UUID) (database.Profile, error) {
	return f.profile, nil
}

func (f *fakeStore) GetPostsByProfile(ctx context.Context, profileID uuid.UUID) ([]database.Post, error) {
	return f.posts, nil
}

func (f *fakeStore) GetAccountSnapshot(ctx context.Context, arg database.GetAccountSnapshotParams) (database.AccountSnapshot, error) {
	if f.snapErr != nil {
		return database.AccountSnapshot{}, f.snapErr
	}
	return f.snapshot, nil
}

func (f *fakeStore) UpsertBehaviorAnalysis(ctx context.Context, arg database.UpsertBehaviorAnalysisParams) (database.BehaviorAnalysis, error) {
	f.saved = &arg
	return database.BehaviorAnalysis{
		ProfileID:      arg.ProfileID,
		AvgPostHour:    arg.AvgPostHour,
		MostActiveDays: arg.MostActiveDays,
		SentimentScore: arg.SentimentScore,
		PositiveCount:  arg.PositiveCount,
		NeutralCount:   arg.NeutralCount,
		NegativeCount:  arg.NegativeCount,
		TopKeywords:    arg.TopKeywords,
		NetworkSize:    arg.NetworkSize,
		InfluenceScore: arg.InfluenceScore,
	}, nil
}

// postAt builds a post on a fixed calendar: base is Monday 2024-01-01 UTC.
func postAt(day, hour int, content string, sentiment float64) database.Post {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return database.Post{
		Content:        content,
		PostedAt:       base.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour),
		SentimentScore: sentiment,
	}
}

func TestAnalyzeZeroPosts(t *testing.T) {
	store := &fakeStore{
		profile: database.Profile{ID: uuid.New(), Platform: "Twitter"},
	}
	engine := NewEngine(store, nil)

	got, err := engine.Analyze(context.Background(), store.profile.ID)
	require.NoError(t, err)

	assert.False(t, got.AvgPostHour.Valid, "no posts means no modal hour")
	assert.Empty(t, got.MostActiveDays)
	assert.Zero(t, got.SentimentScore)
	assert.Zero(t, got.PositiveCount+got.NeutralCount+got.NegativeCount)

	var kws []textutil.Keyword
	require.NoError(t, json.Unmarshal(got.TopKeywords, &kws))
	assert.Empty(t, kws)
}

func TestAnalyzeToleratesMissingSnapshot(t *testing.T) {
	store := &fakeStore{
		profile: database.Profile{ID: uuid.New(), Platform: "Twitter"},
		snapErr: sql.ErrNoRows,
		posts:   []database.Post{postAt(0, 9, "hello world", 0.2)},
	}
	engine := NewEngine(store, nil)

	got, err := engine.Analyze(context.Background(), store.profile.ID)
	require.NoError(t, err)
	assert.Zero(t, got.NetworkSize)
}

func TestSentimentDistributionVector(t *testing.T) {
	posts := []database.Post{
		{SentimentScore: 0.2},
		{SentimentScore: -0.3},
		{SentimentScore: 0.0},
		{SentimentScore: 0.06},
	}
	pos, neu, neg := sentimentDistribution(posts)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 1, neu)
	assert.Equal(t, 1, neg)

	aggregate := float64(pos-neg) / float64(len(posts))
	assert.InDelta(t, 0.25, aggregate, 1e-9)
}

func TestSentimentDistributionBuckets(t *testing.T) {
	posts := []database.Post{
		{SentimentScore: 0.3},
		{SentimentScore: 0.06},
		{SentimentScore: 0.05},  // boundary stays neutral
		{SentimentScore: -0.05}, // boundary stays neutral
		{SentimentScore: 0},
		{SentimentScore: -0.2},
	}
	pos, neu, neg := sentimentDistribution(posts)
	assert.Equal(t, 2, pos)
	assert.Equal(t, 3, neu)
	assert.Equal(t, 1, neg)
}

func TestPostingPatternModalHourAndDays(t *testing.T) {
	posts := []database.Post{
		postAt(0, 9, "", 0),  // Monday 09
		postAt(0, 9, "", 0),  // Monday 09
		postAt(1, 14, "", 0), // Tuesday 14
		postAt(2, 9, "", 0),  // Wednesday 09
		postAt(7, 21, "", 0), // Monday 21
	}
	hour, days := postingPattern(posts)
	require.True(t, hour.Valid)
	assert.Equal(t, int32(9), hour.Int32)
	assert.Equal(t, []string{"Monday", "Tuesday", "Wednesday"}, days)
}

func TestPostingPatternTieBreaksToSmallestHour(t *testing.T) {
	posts := []database.Post{
		postAt(0, 22, "", 0),
		postAt(0, 3, "", 0),
	}
	hour, _ := postingPattern(posts)
	require.True(t, hour.Valid)
	assert.Equal(t, int32(3), hour.Int32)
}

func TestPostingPatternSkipsZeroCountDays(t *testing.T) {
	posts := []database.Post{
		postAt(0, 10, "", 0),
		postAt(1, 10, "", 0),
	}
	_, days := postingPattern(posts)
	assert.Equal(t, []string{"Monday", "Tuesday"}, days)
}

func TestKeywordsIncludeBioOnlyWhenSparse(t *testing.T) {
	engine := NewEngine(&fakeStore{}, nil)

	sparse := []database.Post{
		{Content: "shipping code"},
		{Content: "shipping code again"},
	}
	kws := engine.keywords(sparse, "climbing enthusiast")
	terms := make(map[string]bool)
	for _, k := range kws {
		terms[k.Term] = true
	}
	assert.True(t, terms["climbing"], "bio terms join the pool below the post threshold")

	dense := make([]database.Post, sparsePostCount)
	for i := range dense {
		dense[i] = database.Post{Content: "shipping code"}
	}
	kws = engine.keywords(dense, "climbing enthusiast")
	terms = make(map[string]bool)
	for _, k := range kws {
		terms[k.Term] = true
	}
	assert.False(t, terms["climbing"])
}

func TestInfluenceScoreZeroInputs(t *testing.T) {
	engine := NewEngine(&fakeStore{}, nil)
	score := engine.influenceScore("Twitter", database.AccountSnapshot{}, nil)
	assert.Zero(t, score)
}

func TestInfluenceScoreBoundedAndWeighted(t *testing.T) {
	engine := NewEngine(&fakeStore{}, nil)

	snapshot := database.AccountSnapshot{Followers: 10_000_000}
	posts := []database.Post{{Likes: 2_000_000, Comments: 500_000}}

	score := engine.influenceScore("TikTok", snapshot, posts)
	assert.Greater(t, score, 0.0)
	assert.LessOrEqual(t, score, 100.0)

	// reach-heavy weighting scores the same account differently per platform
	twitterScore := engine.influenceScore("Twitter", snapshot, posts)
	assert.NotEqual(t, score, twitterScore)
}

func TestAnalyzePersistsAggregate(t *testing.T) {
	store := &fakeStore{
		profile:  database.Profile{ID: uuid.New(), Platform: "Mastodon"},
		snapshot: database.AccountSnapshot{Followers: 120, Following: 80, Bio: "gardening"},
		posts: []database.Post{
			postAt(0, 8, "wonderful morning in the garden #garden", 0.4),
			postAt(1, 8, "terrible slugs everywhere", -0.3),
			postAt(2, 8, "watering schedule update", 0),
		},
	}
	engine := NewEngine(store, nil)

	got, err := engine.Analyze(context.Background(), store.profile.ID)
	require.NoError(t, err)
	require.NotNil(t, store.saved)

	assert.Equal(t, int32(1), got.PositiveCount)
	assert.Equal(t, int32(1), got.NeutralCount)
	assert.Equal(t, int32(1), got.NegativeCount)
	assert.Equal(t, int32(200), got.NetworkSize)
	assert.InDelta(t, 0.0, got.SentimentScore, 1e-9) // (1-1)/3
	require.True(t, got.AvgPostHour.Valid)
	assert.Equal(t, int32(8), got.AvgPostHour.Int32)
}

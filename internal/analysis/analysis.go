// SPDX-License-Identifier: AGPL-3.0-only
package analysis

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fluffyriot/profilescope/internal/database"
	"github.com/fluffyriot/profilescope/internal/textutil"
)

const (
	sentimentPosThreshold = 0.05
	sentimentNegThreshold = -0.05
	topKeywordCount       = 15
	// below this many posts the bio text joins the keyword pool
	sparsePostCount = 5
)

type Store interface {
	GetProfileById(ctx context.Context, id uuid.UUID) (database.Profile, error)
	GetPostsByProfile(ctx context.Context, profileID uuid.UUID) ([]database.Post, error)
	GetAccountSnapshot(ctx context.Context, arg database.GetAccountSnapshotParams) (database.AccountSnapshot, error)
	UpsertBehaviorAnalysis(ctx context.Context, arg database.UpsertBehaviorAnalysisParams) (database.BehaviorAnalysis, error)
}

// Engine recomputes a profile's behavioral record wholesale from its stored
// posts and current snapshot. Zero posts is a valid input, not an error.
type Engine struct {
	store   Store
	weights map[string]InfluenceWeights
}

// InfluenceWeights shape the influence score per platform: reach-dominant
// platforms lean on follower count, engagement-dominant ones on per-post
// likes and comments. Tunable policy, not a fixed law.
type InfluenceWeights struct {
	Reach      float64
	Engagement float64
}

var defaultWeights = map[string]InfluenceWeights{
	"Twitter":   {Reach: 0.7, Engagement: 0.3},
	"Mastodon":  {Reach: 0.7, Engagement: 0.3},
	"GitHub":    {Reach: 0.8, Engagement: 0.2},
	"Instagram": {Reach: 0.4, Engagement: 0.6},
	"TikTok":    {Reach: 0.3, Engagement: 0.7},
}

func NewEngine(store Store, weights map[string]InfluenceWeights) *Engine {
	if weights == nil {
		weights = defaultWeights
	}
	return &Engine{store: store, weights: weights}
}

func (e *Engine) Analyze(ctx context.Context, profileID uuid.UUID) (database.BehaviorAnalysis, error) {
	profile, err := e.store.GetProfileById(ctx, profileID)
	if err != nil {
		return database.BehaviorAnalysis{}, fmt.Errorf("load profile %s: %w", profileID, err)
	}

	posts, err := e.store.GetPostsByProfile(ctx, profileID)
	if err != nil {
		return database.BehaviorAnalysis{}, err
	}

	var snapshot database.AccountSnapshot
	snap, err := e.store.GetAccountSnapshot(ctx, database.GetAccountSnapshotParams{
		ProfileID: profileID,
		Platform:  profile.Platform,
	})
	if err == nil {
		snapshot = snap
	} else if err != sql.ErrNoRows {
		return database.BehaviorAnalysis{}, err
	}

	pos, neu, neg := sentimentDistribution(posts)
	aggregate := round3(float64(pos-neg) / math.Max(1, float64(len(posts))))

	avgHour, activeDays := postingPattern(posts)

	keywords := e.keywords(posts, snapshot.Bio)
	keywordsJSON, err := json.Marshal(keywords)
	if err != nil {
		return database.BehaviorAnalysis{}, err
	}

	networkSize := snapshot.Followers + snapshot.Following

	arg := database.UpsertBehaviorAnalysisParams{
		ID:             uuid.New(),
		ProfileID:      profileID,
		AvgPostHour:    avgHour,
		MostActiveDays: strings.Join(activeDays, ","),
		SentimentScore: aggregate,
		PositiveCount:  int32(pos),
		NeutralCount:   int32(neu),
		NegativeCount:  int32(neg),
		TopKeywords:    keywordsJSON,
		NetworkSize:    networkSize,
		InfluenceScore: e.influenceScore(profile.Platform, snapshot, posts),
	}

	return e.store.UpsertBehaviorAnalysis(ctx, arg)
}

func sentimentDistribution(posts []database.Post) (pos, neu, neg int) {
	for _, p := range posts {
		switch {
		case p.SentimentScore > sentimentPosThreshold:
			pos++
		case p.SentimentScore < sentimentNegThreshold:
			neg++
		default:
			neu++
		}
	}
	return pos, neu, neg
}

// weekdayIndex orders Monday=0 .. Sunday=6 for deterministic tie-breaking.
func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}

var weekdayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// postingPattern returns the modal posting hour (ties to the smallest hour)
// and the top three weekdays by post count (ties to the earlier weekday).
func postingPattern(posts []database.Post) (sql.NullInt32, []string) {
	if len(posts) == 0 {
		return sql.NullInt32{}, nil
	}

	var hourCounts [24]int
	var dayCounts [7]int
	for _, p := range posts {
		ts := p.PostedAt.UTC()
		hourCounts[ts.Hour()]++
		dayCounts[weekdayIndex(ts.Weekday())]++
	}

	modeHour := 0
	for h := 1; h < 24; h++ {
		if hourCounts[h] > hourCounts[modeHour] {
			modeHour = h
		}
	}

	order := []int{0, 1, 2, 3, 4, 5, 6}
	sort.SliceStable(order, func(i, j int) bool {
		return dayCounts[order[i]] > dayCounts[order[j]]
	})

	var days []string
	for _, idx := range order[:3] {
		if dayCounts[idx] == 0 {
			break
		}
		days = append(days, weekdayNames[idx])
	}

	return sql.NullInt32{Int32: int32(modeHour), Valid: true}, days
}

func (e *Engine) keywords(posts []database.Post, bio string) []textutil.Keyword {
	if len(posts) == 0 {
		return []textutil.Keyword{}
	}

	var b strings.Builder
	for _, p := range posts {
		b.WriteString(p.Content)
		b.WriteString(" ")
	}
	if len(posts) < sparsePostCount {
		b.WriteString(bio)
	}

	return textutil.TopKeywords(textutil.ExtractKeywords(b.String()), topKeywordCount)
}

// influenceScore is a 0..100 weighted blend of reach (log-scaled followers)
// and engagement (per-post likes+comments relative to audience). All
// divisions are guarded; empty inputs yield 0, never an error.
func (e *Engine) influenceScore(platform string, snapshot database.AccountSnapshot, posts []database.Post) float64 {
	w, ok := e.weights[platform]
	if !ok {
		w = InfluenceWeights{Reach: 0.5, Engagement: 0.5}
	}

	followers := float64(snapshot.Followers)
	reach := math.Log10(followers+1) / 7.0 * 100.0
	if reach > 100 {
		reach = 100
	}

	engagement := 0.0
	if len(posts) > 0 {
		total := 0.0
		for _, p := range posts {
			total += float64(p.Likes + p.Comments)
		}
		perPost := total / float64(len(posts))
		rate := perPost / math.Max(1, followers) * 100.0
		// 10% engagement rate saturates the engagement term
		engagement = rate * 10
		if engagement > 100 {
			engagement = 100
		}
	}

	return round2(w.Reach*reach + w.Engagement*engagement)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// SPDX-License-Identifier: AGPL-3.0-only
package handlers

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fluffyriot/profilescope/internal/database"
)

type submitFetchRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Platform string `json:"platform" binding:"required"`
}

type jobResponse struct {
	ID             string    `json:"id"`
	Handle         string    `json:"handle"`
	Platform       string    `json:"platform"`
	JobType        string    `json:"job_type"`
	Status         string    `json:"status"`
	AttemptCount   int32     `json:"attempt_count"`
	LastError      string    `json:"last_error,omitempty"`
	NextEligibleAt time.Time `json:"next_eligible_at"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toJobResponse(j database.FetchJob) jobResponse {
	return jobResponse{
		ID:             j.ID.String(),
		Handle:         j.Handle,
		Platform:       j.Platform,
		JobType:        j.JobType,
		Status:         j.Status,
		AttemptCount:   j.AttemptCount,
		LastError:      j.LastError,
		NextEligibleAt: j.NextEligibleAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

type profileResponse struct {
	ID                string     `json:"id"`
	Handle            string     `json:"handle"`
	Platform          string     `json:"platform"`
	DisplayName       string     `json:"display_name"`
	AvatarUrl         string     `json:"avatar_url,omitempty"`
	FirstSeenAt       time.Time  `json:"first_seen_at"`
	LastRefreshedAt   time.Time  `json:"last_refreshed_at"`
	ExternalCreatedAt *time.Time `json:"external_created_at,omitempty"`
	PostsCount        int32      `json:"posts_count"`

	Bio            string `json:"bio,omitempty"`
	Followers      int32  `json:"followers"`
	Following      int32  `json:"following"`
	PostsCollected int32  `json:"posts_collected"`
	IsPrivate      bool   `json:"is_private"`
	Verified       bool   `json:"verified"`
	PublicRepos    int32  `json:"public_repos,omitempty"`
	Hearts         int64  `json:"hearts,omitempty"`

	Posts []postResponse `json:"posts"`
}

type postResponse struct {
	ID             string    `json:"id"`
	ExternalID     string    `json:"external_id,omitempty"`
	Content        string    `json:"content"`
	PostedAt       time.Time `json:"posted_at"`
	Likes          int32     `json:"likes"`
	Comments       int32     `json:"comments"`
	SentimentScore float64   `json:"sentiment_score"`
}

func toProfileResponse(p database.Profile, snap database.AccountSnapshot, posts []database.Post) profileResponse {
	resp := profileResponse{
		ID:              p.ID.String(),
		Handle:          p.Handle,
		Platform:        p.Platform,
		DisplayName:     p.DisplayName,
		AvatarUrl:       p.AvatarUrl,
		FirstSeenAt:     p.FirstSeenAt,
		LastRefreshedAt: p.LastRefreshedAt,
		PostsCount:      p.PostsCount,
		Bio:             snap.Bio,
		Followers:       snap.Followers,
		Following:       snap.Following,
		PostsCollected:  snap.PostsCollected,
		IsPrivate:       snap.IsPrivate,
		Verified:        snap.Verified,
		PublicRepos:     snap.PublicRepos,
		Hearts:          snap.Hearts,
		Posts:           make([]postResponse, 0, len(posts)),
	}
	if p.ExternalCreatedAt.Valid {
		t := p.ExternalCreatedAt.Time
		resp.ExternalCreatedAt = &t
	}
	for _, post := range posts {
		resp.Posts = append(resp.Posts, postResponse{
			ID:             post.ID.String(),
			ExternalID:     post.ExternalID.String,
			Content:        post.Content,
			PostedAt:       post.PostedAt,
			Likes:          post.Likes,
			Comments:       post.Comments,
			SentimentScore: post.SentimentScore,
		})
	}
	return resp
}

type analysisResponse struct {
	ProfileID      string          `json:"profile_id"`
	AvgPostHour    *int32          `json:"avg_post_hour"`
	MostActiveDays []string        `json:"most_active_days"`
	SentimentScore float64         `json:"sentiment_score"`
	PositiveCount  int32           `json:"positive_count"`
	NeutralCount   int32           `json:"neutral_count"`
	NegativeCount  int32           `json:"negative_count"`
	TopKeywords    json.RawMessage `json:"top_keywords"`
	NetworkSize    int32           `json:"network_size"`
	InfluenceScore float64         `json:"influence_score"`
	AnalyzedAt     time.Time       `json:"analyzed_at"`
}

func toAnalysisResponse(a database.BehaviorAnalysis) analysisResponse {
	resp := analysisResponse{
		ProfileID:      a.ProfileID.String(),
		SentimentScore: a.SentimentScore,
		PositiveCount:  a.PositiveCount,
		NeutralCount:   a.NeutralCount,
		NegativeCount:  a.NegativeCount,
		TopKeywords:    json.RawMessage(a.TopKeywords),
		NetworkSize:    a.NetworkSize,
		InfluenceScore: a.InfluenceScore,
		AnalyzedAt:     a.AnalyzedAt,
	}
	if a.AvgPostHour.Valid {
		h := a.AvgPostHour.Int32
		resp.AvgPostHour = &h
	}
	if a.MostActiveDays != "" {
		resp.MostActiveDays = strings.Split(a.MostActiveDays, ",")
	} else {
		resp.MostActiveDays = []string{}
	}
	if len(resp.TopKeywords) == 0 {
		resp.TopKeywords = json.RawMessage("[]")
	}
	return resp
}

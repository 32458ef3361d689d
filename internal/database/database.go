package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) DB() *sql.DB {
	return q.db
}

type Profile struct {
	ID                uuid.UUID
	Handle            string
	Platform          string
	DisplayName       string
	AvatarUrl         string
	FirstSeenAt       time.Time
	LastRefreshedAt   time.Time
	ExternalCreatedAt sql.NullTime
	PostsCount        int32
}

type AccountSnapshot struct {
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
	UpdatedAt      time.Time
}

type Post struct {
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
	FirstSyncedAt  time.Time
	LastSyncedAt   time.Time
}

type BehaviorAnalysis struct {
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
	AnalyzedAt     time.Time
}

type FetchJob struct {
	ID             uuid.UUID
	Handle         string
	Platform       string
	JobType        string
	Status         string
	AttemptCount   int32
	LastError      string
	NextEligibleAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

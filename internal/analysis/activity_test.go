package analysis

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluffyriot/profilescope/internal/database"
)

func TestActivityReportEmpty(t *testing.T) {
	engine := NewEngine(&fakeStore{}, nil)

	report, err := engine.ActivityReport(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, weekdayNames, report.HeatmapDays)
	assert.Empty(t, report.PostTimeline)
	assert.Empty(t, report.SentimentTimeline)
	assert.Empty(t, report.EngagementTimeline)
	for _, row := range report.Heatmap {
		for _, cell := range row {
			assert.Zero(t, cell)
		}
	}
}

func TestActivityReportAggregatesByDay(t *testing.T) {
	p1 := postAt(0, 9, "", 0.4) // Monday Jan 01
	p1.Likes = 10
	p1.Comments = 2
	p2 := postAt(0, 16, "", -0.2) // same day
	p2.Likes = 4
	p3 := postAt(2, 9, "", 0.3) // Wednesday Jan 03
	p3.Comments = 1

	store := &fakeStore{posts: []database.Post{p3, p1, p2}}
	engine := NewEngine(store, nil)

	report, err := engine.ActivityReport(context.Background(), uuid.New())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Heatmap[0][9]+report.Heatmap[0][16], "both Monday posts on the heatmap")
	assert.Equal(t, 1, report.Heatmap[2][9])

	require.Len(t, report.PostTimeline, 2)
	assert.Equal(t, CountPoint{Label: "Jan 01", Count: 2}, report.PostTimeline[0])
	assert.Equal(t, CountPoint{Label: "Jan 03", Count: 1}, report.PostTimeline[1])

	require.Len(t, report.EngagementTimeline, 2)
	assert.Equal(t, 16, report.EngagementTimeline[0].Count)
	assert.Equal(t, 1, report.EngagementTimeline[1].Count)

	require.Len(t, report.SentimentTimeline, 2)
	assert.InDelta(t, 0.1, report.SentimentTimeline[0].Value, 1e-9) // (0.4-0.2)/2
	assert.InDelta(t, 0.3, report.SentimentTimeline[1].Value, 1e-9)
}

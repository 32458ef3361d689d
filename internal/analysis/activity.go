// SPDX-License-Identifier: AGPL-3.0-only
package analysis

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

// ActivityReport is the dashboard-facing view of posting behavior: a
// weekday-by-hour heatmap plus per-day post, sentiment and engagement
// series. Day keys are "Jan 02" labels in chronological order.
type ActivityReport struct {
	Heatmap            [7][24]int    `json:"heatmap"`
	HeatmapDays        [7]string     `json:"heatmap_days"`
	PostTimeline       []CountPoint  `json:"post_timeline"`
	SentimentTimeline  []ValuePoint  `json:"sentiment_timeline"`
	EngagementTimeline []CountPoint  `json:"engagement_timeline"`
}

type CountPoint struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type ValuePoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (e *Engine) ActivityReport(ctx context.Context, profileID uuid.UUID) (*ActivityReport, error) {
	posts, err := e.store.GetPostsByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	report := &ActivityReport{HeatmapDays: weekdayNames}

	type dayAgg struct {
		posts      int
		engagement int
		sentiment  float64
	}
	byDay := make(map[time.Time]*dayAgg)

	for _, p := range posts {
		ts := p.PostedAt.UTC()
		report.Heatmap[weekdayIndex(ts.Weekday())][ts.Hour()]++

		day := ts.Truncate(24 * time.Hour)
		agg, ok := byDay[day]
		if !ok {
			agg = &dayAgg{}
			byDay[day] = agg
		}
		agg.posts++
		agg.engagement += int(p.Likes + p.Comments)
		agg.sentiment += p.SentimentScore
	}

	days := make([]time.Time, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	for _, day := range days {
		agg := byDay[day]
		label := day.Format("Jan 02")
		report.PostTimeline = append(report.PostTimeline, CountPoint{Label: label, Count: agg.posts})
		report.EngagementTimeline = append(report.EngagementTimeline, CountPoint{Label: label, Count: agg.engagement})
		report.SentimentTimeline = append(report.SentimentTimeline, ValuePoint{
			Label: label,
			Value: round3(agg.sentiment / float64(agg.posts)),
		})
	}

	return report, nil
}

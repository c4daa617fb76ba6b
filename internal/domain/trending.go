package domain

import (
	"time"

	"github.com/google/uuid"
)

// DestinationActivity is the raw per-destination input of the trending score.
type DestinationActivity struct {
	DestinationID uuid.UUID `db:"destination_id"`
	PostsLast24h  int64     `db:"posts_last_24h"`
	PostsLastWeek int64     `db:"posts_last_week"`
	Engagement    int64     `db:"engagement"`
}

type TrendingDestination struct {
	DestinationID  uuid.UUID `db:"destination_id" json:"-"`
	Score          float64   `db:"score" json:"score"`
	PostsLast24h   int64     `db:"posts_last_24h" json:"posts_last_24h"`
	PostsLastWeek  int64     `db:"posts_last_week" json:"posts_last_week"`
	EngagementRate float64   `db:"engagement_rate" json:"engagement_rate"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`

	Destination Destination `db:"destination" json:"destination"`
}

// TrendingWeights combine recency-weighted volume with engagement rate. All
// weights must be non-negative so the score never decreases when either input
// grows.
type TrendingWeights struct {
	Last24h        float64
	EarlierInWeek  float64
	EngagementRate float64
}

var DefaultTrendingWeights = TrendingWeights{
	Last24h:        3.0,
	EarlierInWeek:  1.0,
	EngagementRate: 0.5,
}

// ComputeTrending derives a trending row from raw activity; it is a pure
// function of its inputs.
func ComputeTrending(a DestinationActivity, w TrendingWeights, now time.Time) TrendingDestination {
	day := Floor(a.PostsLast24h)
	week := Floor(a.PostsLastWeek)
	if week < day {
		week = day
	}

	var rate float64
	if week > 0 {
		rate = float64(Floor(a.Engagement)) / float64(week)
	}

	volume := w.Last24h*float64(day) + w.EarlierInWeek*float64(week-day)
	return TrendingDestination{
		DestinationID:  a.DestinationID,
		Score:          volume + w.EngagementRate*rate,
		PostsLast24h:   day,
		PostsLastWeek:  week,
		EngagementRate: rate,
		UpdatedAt:      now,
	}
}

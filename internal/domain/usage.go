package domain

import (
	"context"
	"time"
)

// UsageEvent records the outcome of one generation request. It carries
// metadata only; prompts and image bytes are never stored.
type UsageEvent struct {
	RequestID string
	Occasion  string
	Provider  string
	Success   bool
	ErrorKind string
	LatencyMS int64
	Country   string
	CreatedAt time.Time
}

// UsageSummary aggregates usage events over a trailing window.
type UsageSummary struct {
	Window       time.Duration
	Requests     int64
	Succeeded    int64
	Failed       int64
	AvgLatencyMS int64
	TopOccasions []OccasionCount
}

// OccasionCount is one row of the occasion leaderboard.
type OccasionCount struct {
	Occasion string `json:"occasion"`
	Count    int64  `json:"count"`
}

// UsageRepository persists usage events.
type UsageRepository interface {
	Record(ctx context.Context, event UsageEvent) error
	Summary(ctx context.Context, window time.Duration) (*UsageSummary, error)
}

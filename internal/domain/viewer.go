package domain

import (
	"context"
	"time"
)

// ViewCounter is the global visit tally of one calendar day.
type ViewCounter struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Count     int64     `json:"count"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type StatsRange string

const (
	RangeToday StatsRange = "today"
	RangeWeek  StatsRange = "week"
	RangeMonth StatsRange = "month"
)

type StatsGroup string

const (
	GroupDay   StatsGroup = "day"
	GroupMonth StatsGroup = "month"
)

type StatPoint struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

type ViewerRepository interface {
	// Increment adds one view to the row of day, creating it with count 1 if absent.
	Increment(ctx context.Context, day time.Time) (*ViewCounter, error)
	// Aggregate sums counts of rows dated on or after start, bucketed by group
	// and ordered by label ascending.
	Aggregate(ctx context.Context, start time.Time, group StatsGroup) ([]StatPoint, error)
}

type ViewerUsecase interface {
	// Track records one view for today. Errors are logged, never returned.
	Track(ctx context.Context)
	Stats(ctx context.Context, rangeName, group string) ([]StatPoint, error)
}

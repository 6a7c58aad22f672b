package models

import (
	"errors"
	"time"
)

// ===========================================
// DATE RANGE
// ===========================================

// DateRange is an inclusive day-granular range.
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Validate checks range ordering.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("start_date and end_date are required")
	}
	if r.End.Before(r.Start) {
		return errors.New("end_date before start_date")
	}
	return nil
}

// Contains reports whether t falls inside the range, at day granularity.
func (r DateRange) Contains(t time.Time) bool {
	day := t.Truncate(24 * time.Hour)
	start := r.Start.Truncate(24 * time.Hour)
	end := r.End.Truncate(24 * time.Hour)
	return !day.Before(start) && !day.After(end)
}

// Days iterates the range day by day.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	start := r.Start.Truncate(24 * time.Hour)
	end := r.End.Truncate(24 * time.Hour)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// ===========================================
// PERFORMANCE REPORT
// ===========================================

// PlatformPerformance aggregates delivery metrics for one platform over
// the report range.
type PlatformPerformance struct {
	Platform    Platform `json:"platform"`
	Impressions int64    `json:"impressions"`
	Clicks      int64    `json:"clicks"`
	Engagements int64    `json:"engagements"`
	Spend       float64  `json:"spend"`

	CTR            float64 `json:"ctr"`
	EngagementRate float64 `json:"engagement_rate"`

	// OptimizationScore grades the platform in [0,1] from relative CTR,
	// engagement rate and the share of attributed conversions that
	// carried the discovery boost.
	OptimizationScore float64 `json:"optimization_score"`
}

// PerformanceReport is a time-ranged aggregation of delivery metrics and
// derived optimization/impact scores.
type PerformanceReport struct {
	Range     DateRange                         `json:"range"`
	Platforms map[Platform]*PlatformPerformance `json:"platforms"`

	TotalImpressions int64   `json:"total_impressions"`
	TotalClicks      int64   `json:"total_clicks"`
	TotalSpend       float64 `json:"total_spend"`
	OverallCTR       float64 `json:"overall_ctr"`

	// TrendImpactScore is the fraction of attributed conversions in the
	// range whose journeys matched at least one trending keyword.
	TrendImpactScore      float64 `json:"trend_impact_score"`
	AttributedConversions int     `json:"attributed_conversions"`

	DataIncomplete bool      `json:"data_incomplete"`
	GeneratedAt    time.Time `json:"generated_at"`
}

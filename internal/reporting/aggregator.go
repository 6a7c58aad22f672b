package reporting

import (
	"context"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/metrics"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/storage"
	"go.uber.org/zap"
)

// Optimization score component weights.
const (
	ctrWeight        = 0.5
	engagementWeight = 0.3
	discoveryWeight  = 0.2
)

// Aggregator builds performance reports from delivery metrics and stored
// attribution results. A missing or failing provider never fails the
// report; it yields a zero-filled report flagged data_incomplete.
type Aggregator struct {
	provider  DeliveryMetricsProvider
	results   storage.ResultStore
	discovery models.Platform
	logger    *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewAggregator constructs a report aggregator. provider, results and m
// may be nil.
func NewAggregator(provider DeliveryMetricsProvider, results storage.ResultStore, discovery models.Platform, logger *zap.Logger, m *metrics.Metrics) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{
		provider:  provider,
		results:   results,
		discovery: discovery,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
}

// Aggregate builds the performance report for the range.
func (a *Aggregator) Aggregate(ctx context.Context, rng models.DateRange) (*models.PerformanceReport, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}

	report := &models.PerformanceReport{
		Range:       rng,
		Platforms:   make(map[models.Platform]*models.PlatformPerformance),
		GeneratedAt: a.now().UTC(),
	}

	records, err := a.fetchDelivery(ctx, rng)
	if err != nil || len(records) == 0 {
		report.DataIncomplete = true
	}
	for _, rec := range records {
		perf, ok := report.Platforms[rec.Platform]
		if !ok {
			perf = &models.PlatformPerformance{Platform: rec.Platform}
			report.Platforms[rec.Platform] = perf
		}
		perf.Impressions += rec.Impressions
		perf.Clicks += rec.Clicks
		perf.Engagements += rec.Engagements
		perf.Spend += rec.Spend

		report.TotalImpressions += rec.Impressions
		report.TotalClicks += rec.Clicks
		report.TotalSpend += rec.Spend
	}

	for _, perf := range report.Platforms {
		if perf.Impressions > 0 {
			perf.CTR = float64(perf.Clicks) / float64(perf.Impressions)
			perf.EngagementRate = float64(perf.Engagements) / float64(perf.Impressions)
		}
	}
	if report.TotalImpressions > 0 {
		report.OverallCTR = float64(report.TotalClicks) / float64(report.TotalImpressions)
	}

	attributed, matched, boosted := a.countResults(ctx, rng)
	report.AttributedConversions = attributed
	if attributed > 0 {
		report.TrendImpactScore = float64(matched) / float64(attributed)
	}

	a.scorePlatforms(report, attributed, boosted)

	if a.metrics != nil {
		a.metrics.RecordReport(report.DataIncomplete)
	}
	a.logger.Debug("performance report built",
		zap.Time("start", rng.Start),
		zap.Time("end", rng.End),
		zap.Int("platforms", len(report.Platforms)),
		zap.Int("attributed_conversions", attributed),
		zap.Bool("data_incomplete", report.DataIncomplete),
	)
	return report, nil
}

func (a *Aggregator) fetchDelivery(ctx context.Context, rng models.DateRange) ([]CampaignDelivery, error) {
	if a.provider == nil {
		return nil, nil
	}
	records, err := a.provider.CampaignMetrics(ctx, rng)
	if err != nil {
		a.logger.Warn("delivery metrics unavailable", zap.Error(err))
		return nil, err
	}
	return records, nil
}

// countResults tallies attribution results in the range: total, those
// matching at least one trending keyword, and those that received the
// discovery boost.
func (a *Aggregator) countResults(ctx context.Context, rng models.DateRange) (attributed, matched, boosted int) {
	if a.results == nil {
		return 0, 0, 0
	}
	results, err := a.results.ListResults(ctx, rng)
	if err != nil {
		a.logger.Warn("failed to list attribution results", zap.Error(err))
		return 0, 0, 0
	}
	for _, res := range results {
		attributed++
		if res.Insights == nil {
			continue
		}
		if res.Insights.MatchedKeywords >= 1 {
			matched++
		}
		if res.Insights.DiscoveryBoosted {
			boosted++
		}
	}
	return attributed, matched, boosted
}

// scorePlatforms grades each platform: CTR relative to the account-wide
// average, engagement rate relative to the best in the report, and a
// discovery-share component that only the discovery platform earns. Each
// component is capped at 1 before weighting.
func (a *Aggregator) scorePlatforms(report *models.PerformanceReport, attributed, boosted int) {
	var maxEngagement float64
	for _, perf := range report.Platforms {
		if perf.EngagementRate > maxEngagement {
			maxEngagement = perf.EngagementRate
		}
	}

	var boostShare float64
	if attributed > 0 {
		boostShare = float64(boosted) / float64(attributed)
	}

	for _, perf := range report.Platforms {
		var ctrComponent, engagementComponent, discoveryComponent float64
		if report.OverallCTR > 0 {
			ctrComponent = clamp01(perf.CTR / report.OverallCTR)
		}
		if maxEngagement > 0 {
			engagementComponent = perf.EngagementRate / maxEngagement
		}
		if perf.Platform == a.discovery {
			discoveryComponent = boostShare
		}

		score := ctrWeight*ctrComponent + engagementWeight*engagementComponent + discoveryWeight*discoveryComponent
		perf.OptimizationScore = clamp01(score)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

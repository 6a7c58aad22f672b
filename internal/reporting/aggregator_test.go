package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var reportDay = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func reportRange() models.DateRange {
	return models.DateRange{Start: reportDay.AddDate(0, 0, -7), End: reportDay}
}

func deliveryFixture() []CampaignDelivery {
	return []CampaignDelivery{
		{Platform: models.PlatformPinterest, CampaignID: "pin-1", Date: reportDay.AddDate(0, 0, -2), Impressions: 10000, Clicks: 300, Engagements: 800, Spend: 120},
		{Platform: models.PlatformPinterest, CampaignID: "pin-2", Date: reportDay.AddDate(0, 0, -1), Impressions: 5000, Clicks: 100, Engagements: 350, Spend: 60},
		{Platform: models.PlatformMeta, CampaignID: "meta-1", Date: reportDay.AddDate(0, 0, -1), Impressions: 20000, Clicks: 400, Engagements: 500, Spend: 250},
	}
}

type failingProvider struct{}

func (failingProvider) CampaignMetrics(ctx context.Context, rng models.DateRange) ([]CampaignDelivery, error) {
	return nil, errors.New("warehouse offline")
}

func TestAggregateSumsPlatformMetrics(t *testing.T) {
	require := require.New(t)
	provider := NewInMemoryMetricsProvider()
	provider.Add(deliveryFixture()...)
	agg := NewAggregator(provider, nil, models.PlatformPinterest, zap.NewNop(), nil)

	report, err := agg.Aggregate(context.Background(), reportRange())
	require.NoError(err)
	require.False(report.DataIncomplete)

	pin := report.Platforms[models.PlatformPinterest]
	require.NotNil(pin)
	require.Equal(int64(15000), pin.Impressions)
	require.Equal(int64(400), pin.Clicks)
	require.Equal(int64(1150), pin.Engagements)
	require.InDelta(180.0, pin.Spend, 1e-9)
	require.InDelta(400.0/15000.0, pin.CTR, 1e-9)
	require.InDelta(1150.0/15000.0, pin.EngagementRate, 1e-9)

	require.Equal(int64(35000), report.TotalImpressions)
	require.Equal(int64(800), report.TotalClicks)
	require.InDelta(800.0/35000.0, report.OverallCTR, 1e-9)
}

func TestAggregateIncompleteWithoutProvider(t *testing.T) {
	require := require.New(t)
	agg := NewAggregator(nil, nil, models.PlatformPinterest, zap.NewNop(), nil)

	report, err := agg.Aggregate(context.Background(), reportRange())
	require.NoError(err)
	require.True(report.DataIncomplete)
	require.Empty(report.Platforms)
	require.Zero(report.TotalImpressions)
	require.Zero(report.OverallCTR)
}

func TestAggregateIncompleteOnProviderFailure(t *testing.T) {
	require := require.New(t)
	agg := NewAggregator(failingProvider{}, nil, models.PlatformPinterest, zap.NewNop(), nil)

	report, err := agg.Aggregate(context.Background(), reportRange())
	require.NoError(err)
	require.True(report.DataIncomplete)
}

func TestAggregateZeroImpressionsYieldsZeroCTR(t *testing.T) {
	require := require.New(t)
	provider := NewInMemoryMetricsProvider()
	provider.Add(CampaignDelivery{
		Platform:   models.PlatformTikTok,
		CampaignID: "tt-1",
		Date:       reportDay,
		Clicks:     0,
	})
	agg := NewAggregator(provider, nil, models.PlatformPinterest, zap.NewNop(), nil)

	report, err := agg.Aggregate(context.Background(), reportRange())
	require.NoError(err)
	require.Zero(report.OverallCTR)
	require.Zero(report.Platforms[models.PlatformTikTok].CTR)
}

func TestAggregateTrendImpactFromResults(t *testing.T) {
	require := require.New(t)
	provider := NewInMemoryMetricsProvider()
	provider.Add(deliveryFixture()...)

	results := storage.NewInMemoryResultStore()
	save := func(matched int, boosted bool) {
		err := results.SaveResult(context.Background(), &models.AttributionResult{
			ID:         "r",
			Model:      models.ModelDataDriven,
			ComputedAt: reportDay.AddDate(0, 0, -1),
			Insights:   &models.InsightMetadata{Available: true, MatchedKeywords: matched, DiscoveryBoosted: boosted},
		})
		require.NoError(err)
	}
	save(2, true)
	save(1, true)
	save(0, false)
	save(0, false)

	agg := NewAggregator(provider, results, models.PlatformPinterest, zap.NewNop(), nil)
	report, err := agg.Aggregate(context.Background(), reportRange())
	require.NoError(err)

	require.Equal(4, report.AttributedConversions)
	require.InDelta(0.5, report.TrendImpactScore, 1e-9)

	// only the discovery platform earns the boost-share component
	pin := report.Platforms[models.PlatformPinterest]
	meta := report.Platforms[models.PlatformMeta]
	require.Greater(pin.OptimizationScore, 0.0)
	require.LessOrEqual(pin.OptimizationScore, 1.0)
	require.LessOrEqual(meta.OptimizationScore, 1.0)
}

func TestAggregateRejectsInvalidRange(t *testing.T) {
	require := require.New(t)
	agg := NewAggregator(nil, nil, models.PlatformPinterest, zap.NewNop(), nil)

	_, err := agg.Aggregate(context.Background(), models.DateRange{Start: reportDay, End: reportDay.AddDate(0, 0, -1)})
	require.Error(err)
}

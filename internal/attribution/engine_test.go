package attribution

import (
	"context"
	"testing"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/insights"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/storage"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func workingTrends() insights.TrendProvider {
	return insights.TrendProviderFunc(func(ctx context.Context) ([]models.TrendingKeyword, error) {
		return trendingFixture(), nil
	})
}

func workingAudience() insights.AudienceProvider {
	return insights.AudienceProviderFunc(func(ctx context.Context) (*models.PersonaInsights, error) {
		return personaFixture(), nil
	})
}

func failingTrends() insights.TrendProvider {
	return insights.TrendProviderFunc(func(ctx context.Context) ([]models.TrendingKeyword, error) {
		return nil, ErrCollaboratorUnavailable
	})
}

func newTestEngine(trends insights.TrendProvider, audience insights.AudienceProvider, results storage.ResultStore) *Engine {
	return NewEngine(
		config.DefaultAttributionConfig(),
		config.DefaultDiscoveryConfig(),
		trends,
		audience,
		results,
		zap.NewNop(),
		nil,
	)
}

func TestEngineAppliesDiscoveryBoost(t *testing.T) {
	require := require.New(t)
	results := storage.NewInMemoryResultStore()
	engine := newTestEngine(workingTrends(), workingAudience(), results)

	journey := threePlatformJourney()
	baseline, err := NewCalculator(config.DefaultAttributionConfig()).Calculate(journey, models.ModelLinear)
	require.NoError(err)

	res, err := engine.CalculateAttribution(context.Background(), journey, models.ModelLinear)
	require.NoError(err)

	require.NotNil(res.Insights)
	require.True(res.Insights.Available)
	require.True(res.Insights.DiscoveryBoosted)
	require.Equal(2, res.Insights.MatchedKeywords)

	require.Greater(res.PlatformScores[models.PlatformPinterest], baseline.PlatformScores[models.PlatformPinterest])
	require.InDelta(1.0, scoreSum(res.PlatformScores), 1e-6)

	// confidence includes the insights bonus: 3/5 + 0.1
	require.InDelta(0.7, res.ConfidenceScore, 1e-9)
}

func TestEngineRecoversFromCollaboratorFailure(t *testing.T) {
	require := require.New(t)
	engine := newTestEngine(failingTrends(), workingAudience(), nil)

	journey := threePlatformJourney()
	baseline, err := NewCalculator(config.DefaultAttributionConfig()).Calculate(journey, models.ModelLinear)
	require.NoError(err)

	res, err := engine.CalculateAttribution(context.Background(), journey, models.ModelLinear)
	require.NoError(err)

	require.NotNil(res.Insights)
	require.False(res.Insights.Available)
	require.False(res.Insights.DiscoveryBoosted)
	require.Zero(res.Insights.MatchedKeywords)

	// scores stay at the unboosted model output
	for p, s := range baseline.PlatformScores {
		require.InDelta(s, res.PlatformScores[p], 1e-9)
	}

	// no insights bonus
	require.InDelta(0.6, res.ConfidenceScore, 1e-9)
}

func TestEngineWithoutProviders(t *testing.T) {
	require := require.New(t)
	engine := newTestEngine(nil, nil, nil)

	res, err := engine.CalculateAttribution(context.Background(), threePlatformJourney(), models.ModelFirstTouch)
	require.NoError(err)
	require.False(res.Insights.Available)
	require.InDelta(1.0, res.PlatformScores[models.PlatformPinterest], 1e-9)
}

func TestEnginePersistsResults(t *testing.T) {
	require := require.New(t)
	results := storage.NewInMemoryResultStore()
	engine := newTestEngine(workingTrends(), workingAudience(), results)

	_, err := engine.CalculateAttribution(context.Background(), threePlatformJourney(), models.ModelDataDriven)
	require.NoError(err)

	now := time.Now().UTC()
	stored, err := results.ListResults(context.Background(), models.DateRange{
		Start: now.AddDate(0, 0, -1),
		End:   now.AddDate(0, 0, 1),
	})
	require.NoError(err)
	require.Len(stored, 1)
	require.False(stored[0].ComputedAt.IsZero())
}

func TestEnginePropagatesCalculationErrors(t *testing.T) {
	require := require.New(t)
	engine := newTestEngine(workingTrends(), workingAudience(), nil)

	empty := models.CustomerJourney{UserID: "user-1", ConversionTimestamp: testConversionTime}
	_, err := engine.CalculateAttribution(context.Background(), empty, models.ModelLinear)
	var invalid *InvalidJourneyError
	require.ErrorAs(err, &invalid)

	_, err = engine.CalculateAttribution(context.Background(), threePlatformJourney(), models.AttributionModel("nope"))
	var unknown *UnknownModelError
	require.ErrorAs(err, &unknown)
}

func TestEngineSummary(t *testing.T) {
	require := require.New(t)
	engine := newTestEngine(nil, nil, nil)

	cfg := config.DefaultDiscoveryConfig()
	sum := engine.Summary()
	require.ElementsMatch(models.AllModels(), sum.AvailableModels)
	require.Equal(Version, sum.Version)

	require.Equal(models.PlatformPinterest, sum.Discovery.Platform)
	require.Equal(cfg.BaseBoost, sum.Discovery.BaseBoost)
	require.Equal(cfg.KeywordIncrement, sum.Discovery.KeywordIncrement)
	require.Equal(cfg.PersonaIncrement, sum.Discovery.PersonaIncrement)
	require.Equal(cfg.KeywordGrowthThreshold, sum.Discovery.KeywordGrowthThreshold)
	require.Equal(cfg.AffinityCategories, sum.Discovery.AffinityCategories)
}

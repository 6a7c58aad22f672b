package attribution

import (
	"testing"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/stretchr/testify/require"
)

func defaultScores() map[models.Platform]float64 {
	return map[models.Platform]float64{
		models.PlatformPinterest: 0.2,
		models.PlatformMeta:      0.5,
		models.PlatformGoogle:    0.3,
	}
}

func trendingFixture() []models.TrendingKeyword {
	return []models.TrendingKeyword{
		{Keyword: "fall decor", GrowthRate: 42},
		{Keyword: "gift guide", GrowthRate: 18},
		{Keyword: "home office", GrowthRate: 4}, // below threshold
	}
}

func personaFixture() *models.PersonaInsights {
	return &models.PersonaInsights{
		PersonaCategories: []string{"Home Decor", "travel"},
		AudienceSize:      125000,
	}
}

func TestOptimizeBoostsDiscoveryPlatform(t *testing.T) {
	require := require.New(t)
	opt := NewOptimizer(config.DefaultDiscoveryConfig())

	scores := defaultScores()
	out := opt.Optimize(scores, trendingFixture(), personaFixture())

	require.Greater(out[models.PlatformPinterest], scores[models.PlatformPinterest])
	require.InDelta(1.0, scoreSum(out), 1e-9)

	// non-discovery platforms keep their ratio
	require.InDelta(0.5/0.3, out[models.PlatformMeta]/out[models.PlatformGoogle], 1e-9)

	// input map untouched
	require.InDelta(0.2, scores[models.PlatformPinterest], 1e-12)
}

func TestOptimizeBoostFactors(t *testing.T) {
	require := require.New(t)
	cfg := config.DefaultDiscoveryConfig()
	opt := NewOptimizer(cfg)

	// two keywords clear the growth threshold, persona overlaps
	want := cfg.BaseBoost * (1 + cfg.KeywordIncrement*2) * (1 + cfg.PersonaIncrement)
	require.InDelta(want, opt.Boost(trendingFixture(), personaFixture()), 1e-9)

	// no signals: bare base boost
	require.InDelta(cfg.BaseBoost, opt.Boost(nil, nil), 1e-9)

	// persona without affinity overlap contributes nothing
	offTarget := &models.PersonaInsights{PersonaCategories: []string{"automotive"}}
	require.InDelta(cfg.BaseBoost, opt.Boost(nil, offTarget), 1e-9)
}

func TestOptimizeNoOpWhenDiscoveryScoreZero(t *testing.T) {
	require := require.New(t)
	opt := NewOptimizer(config.DefaultDiscoveryConfig())

	scores := map[models.Platform]float64{
		models.PlatformMeta:   0.6,
		models.PlatformGoogle: 0.4,
	}
	out := opt.Optimize(scores, trendingFixture(), personaFixture())
	require.Equal(scores, out)
}

func TestMatchingKeywordsThreshold(t *testing.T) {
	require := require.New(t)
	opt := NewOptimizer(config.DefaultDiscoveryConfig())

	require.Equal(2, opt.MatchingKeywords(trendingFixture()))
	require.Equal(0, opt.MatchingKeywords(nil))
}

func TestOptimizePreservesSumAcrossBoostStrengths(t *testing.T) {
	require := require.New(t)
	cfg := config.DefaultDiscoveryConfig()
	cfg.BaseBoost = 2.5
	opt := NewOptimizer(cfg)

	out := opt.Optimize(defaultScores(), trendingFixture(), personaFixture())
	require.InDelta(1.0, scoreSum(out), 1e-9)
	for _, s := range out {
		require.GreaterOrEqual(s, 0.0)
		require.LessOrEqual(s, 1.0)
	}
}

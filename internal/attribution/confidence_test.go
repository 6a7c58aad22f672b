package attribution

import (
	"testing"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/stretchr/testify/require"
)

func journeyWithTouchpoints(n int) models.CustomerJourney {
	tps := make([]models.Touchpoint, n)
	for i := range tps {
		tps[i] = models.Touchpoint{
			Platform:   models.PlatformPinterest,
			CampaignID: "c1",
			EventType:  models.EventClick,
			Timestamp:  testConversionTime.Add(-time.Duration(n-i) * time.Hour),
		}
	}
	return models.NewCustomerJourney("user-1", "", tps, 10, testConversionTime)
}

func TestConfidenceScalesWithJourneyLength(t *testing.T) {
	require := require.New(t)
	scorer := NewConfidenceScorer(config.DefaultAttributionConfig())

	require.InDelta(0.2, scorer.Score(journeyWithTouchpoints(1), false), 1e-9)
	require.InDelta(0.6, scorer.Score(journeyWithTouchpoints(3), false), 1e-9)
	require.InDelta(1.0, scorer.Score(journeyWithTouchpoints(5), false), 1e-9)

	// long journeys cap at the target
	require.InDelta(1.0, scorer.Score(journeyWithTouchpoints(12), false), 1e-9)
}

func TestConfidenceInsightsBonus(t *testing.T) {
	require := require.New(t)
	scorer := NewConfidenceScorer(config.DefaultAttributionConfig())

	require.InDelta(0.7, scorer.Score(journeyWithTouchpoints(3), true), 1e-9)

	// bonus never pushes past 1.0
	require.InDelta(1.0, scorer.Score(journeyWithTouchpoints(5), true), 1e-9)
}

func TestConfidenceZeroTargetFallsBack(t *testing.T) {
	require := require.New(t)
	cfg := config.DefaultAttributionConfig()
	cfg.TargetTouchpoints = 0
	scorer := NewConfidenceScorer(cfg)

	// falls back to the built-in target of 5
	require.InDelta(0.2, scorer.Score(journeyWithTouchpoints(1), false), 1e-9)
}

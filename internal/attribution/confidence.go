package attribution

import (
	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// ConfidenceScorer derives a [0,1] quality score for a computed
// attribution: longer journeys and successfully obtained external signals
// raise it.
type ConfidenceScorer struct {
	target int
	bonus  float64
}

// NewConfidenceScorer constructs a scorer from immutable configuration.
func NewConfidenceScorer(cfg config.AttributionConfig) *ConfidenceScorer {
	target := cfg.TargetTouchpoints
	if target <= 0 {
		target = 5
	}
	return &ConfidenceScorer{target: target, bonus: cfg.InsightsBonus}
}

// Score returns min(touchpoints/target, 1) plus the insights bonus when
// signals were obtained, clamped to [0,1].
func (s *ConfidenceScorer) Score(journey models.CustomerJourney, insightsPresent bool) float64 {
	score := float64(journey.TouchpointCount()) / float64(s.target)
	if score > 1 {
		score = 1
	}
	if insightsPresent {
		score += s.bonus
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

package attribution

import (
	"strings"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// Optimizer corrects the undercrediting of early-funnel engagement with
// the configured discovery platform by last-touch/linear-style models. It
// re-weights a normalized platform score set using external trend and
// persona signals. All methods are pure.
type Optimizer struct {
	cfg config.DiscoveryConfig

	// lowercase affinity set built once at construction
	affinity map[string]struct{}
}

// NewOptimizer constructs an Optimizer from immutable configuration.
func NewOptimizer(cfg config.DiscoveryConfig) *Optimizer {
	affinity := make(map[string]struct{}, len(cfg.AffinityCategories))
	for _, c := range cfg.AffinityCategories {
		affinity[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
	}
	return &Optimizer{cfg: cfg, affinity: affinity}
}

// Platform returns the configured discovery platform.
func (o *Optimizer) Platform() models.Platform {
	return o.cfg.Platform
}

// Optimize boosts the discovery platform's share and rescales the rest so
// the set still sums to 1.0 with non-discovery ratios preserved. When the
// discovery platform's current score is 0 the input is returned as an
// unchanged copy. The input map is never mutated.
func (o *Optimizer) Optimize(scores map[models.Platform]float64, keywords []models.TrendingKeyword, persona *models.PersonaInsights) map[models.Platform]float64 {
	out := make(map[models.Platform]float64, len(scores))

	current := scores[o.cfg.Platform]
	if current == 0 {
		for p, s := range scores {
			out[p] = s
		}
		return out
	}

	boost := o.Boost(keywords, persona)

	// Boosting d to d*boost and dividing everything by d*boost + (1-d)
	// keeps the total at 1.0 and shrinks every other platform by the same
	// factor, preserving their ratios among themselves.
	denom := current*boost + (1 - current)
	for p, s := range scores {
		if p == o.cfg.Platform {
			out[p] = s * boost / denom
		} else {
			out[p] = s / denom
		}
	}
	return out
}

// Boost computes the multiplicative discovery boost from the signals:
// base × (1 + kwInc × matches) × (1 + personaInc when persona interests
// overlap the affinity categories). Absent signals contribute neutrally.
func (o *Optimizer) Boost(keywords []models.TrendingKeyword, persona *models.PersonaInsights) float64 {
	boost := o.cfg.BaseBoost
	boost *= 1 + o.cfg.KeywordIncrement*float64(o.MatchingKeywords(keywords))
	if o.personaAffinity(persona) {
		boost *= 1 + o.cfg.PersonaIncrement
	}
	return boost
}

// MatchingKeywords counts trending keywords whose growth rate clears the
// configured threshold.
func (o *Optimizer) MatchingKeywords(keywords []models.TrendingKeyword) int {
	count := 0
	for _, kw := range keywords {
		if kw.GrowthRate >= o.cfg.KeywordGrowthThreshold {
			count++
		}
	}
	return count
}

func (o *Optimizer) personaAffinity(persona *models.PersonaInsights) bool {
	if persona == nil {
		return false
	}
	for _, cat := range persona.PersonaCategories {
		if _, ok := o.affinity[strings.ToLower(strings.TrimSpace(cat))]; ok {
			return true
		}
	}
	return false
}

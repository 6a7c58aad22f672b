package attribution

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// resultNamespace seeds deterministic v5 result IDs so identical inputs
// always produce identical output.
var resultNamespace = uuid.MustParse("6ba7b814-9dad-11d1-80b4-00c04fd430c8")

// Calculator is the attribution model registry. It maps a journey and a
// model variant to normalized platform/campaign credit. All methods are
// pure; a Calculator is safe for concurrent use.
type Calculator struct {
	cfg config.AttributionConfig
}

// NewCalculator constructs a Calculator with the given immutable
// parameters.
func NewCalculator(cfg config.AttributionConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// Calculate distributes the journey's conversion value across platforms
// and campaigns under the selected model. The returned platform scores
// sum to 1.0 within tolerance; a violation surfaces as a
// NormalizationError and is never corrected silently.
func (c *Calculator) Calculate(journey models.CustomerJourney, model models.AttributionModel) (*models.AttributionResult, error) {
	if err := validateJourney(journey); err != nil {
		return nil, err
	}

	weights, err := c.touchpointWeights(journey, model)
	if err != nil {
		return nil, err
	}

	// Duplicate platforms/campaigns within one journey aggregate
	// additively before normalization.
	platformScores := make(map[models.Platform]float64)
	campaignScores := make(map[string]float64)
	var total float64
	for i, tp := range journey.Touchpoints {
		platformScores[tp.Platform] += weights[i]
		campaignScores[tp.CampaignID] += weights[i]
		total += weights[i]
	}
	if total > 0 {
		for p := range platformScores {
			platformScores[p] /= total
		}
		for id := range campaignScores {
			campaignScores[id] /= total
		}
	}

	if err := c.checkNormalized(platformScores, model); err != nil {
		return nil, err
	}

	return &models.AttributionResult{
		ID:               resultID(journey, model),
		UserID:           journey.UserID,
		SessionID:        journey.SessionID,
		Model:            model,
		TotalAttribution: journey.ConversionValue,
		PlatformScores:   platformScores,
		CampaignScores:   campaignScores,
	}, nil
}

// touchpointWeights returns one weight per touchpoint, summing to 1.0.
func (c *Calculator) touchpointWeights(journey models.CustomerJourney, model models.AttributionModel) ([]float64, error) {
	n := len(journey.Touchpoints)
	switch model {
	case models.ModelFirstTouch:
		w := make([]float64, n)
		w[0] = 1.0
		return w, nil

	case models.ModelLastTouch:
		w := make([]float64, n)
		w[n-1] = 1.0
		return w, nil

	case models.ModelLinear:
		w := make([]float64, n)
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w, nil

	case models.ModelTimeDecay:
		return c.timeDecayWeights(journey), nil

	case models.ModelPositionBased:
		return c.positionWeights(n), nil

	case models.ModelDataDriven:
		// Heuristic blend standing in for a learned model. Each arm is
		// normalized before blending so the mix still sums to 1.0.
		decay := c.timeDecayWeights(journey)
		position := c.positionWeights(n)
		blend := c.cfg.DataDrivenBlend
		w := make([]float64, n)
		for i := range w {
			w[i] = blend*decay[i] + (1-blend)*position[i]
		}
		return w, nil

	default:
		return nil, &UnknownModelError{Model: model}
	}
}

// timeDecayWeights gives weight 2^(-age/halflife) per touchpoint, where
// age is measured back from the conversion, normalized to sum 1. A
// touchpoint closer to conversion never receives less weight than an
// older one.
func (c *Calculator) timeDecayWeights(journey models.CustomerJourney) []float64 {
	n := len(journey.Touchpoints)
	w := make([]float64, n)
	halfLife := c.cfg.HalfLife.Seconds()
	var total float64
	for i, tp := range journey.Touchpoints {
		age := journey.ConversionTimestamp.Sub(tp.Timestamp).Seconds()
		w[i] = math.Exp2(-age / halfLife)
		total += w[i]
	}
	if total == 0 {
		// All weights underflowed (journeys spanning centuries relative
		// to the half-life). Degrade to linear rather than divide by zero.
		for i := range w {
			w[i] = 1.0 / float64(n)
		}
		return w
	}
	for i := range w {
		w[i] /= total
	}
	return w
}

// positionWeights implements the U-shaped position_based split: a single
// touchpoint takes everything, two split evenly, three or more give the
// configured fixed share to the first and last with the remainder spread
// over the interior.
func (c *Calculator) positionWeights(n int) []float64 {
	w := make([]float64, n)
	switch {
	case n == 1:
		w[0] = 1.0
	case n == 2:
		w[0], w[1] = 0.5, 0.5
	default:
		first := c.cfg.PositionFirstPct
		last := c.cfg.PositionLastPct
		interior := (1.0 - first - last) / float64(n-2)
		w[0] = first
		w[n-1] = last
		for i := 1; i < n-1; i++ {
			w[i] = interior
		}
	}
	return w
}

// checkNormalized enforces the sum-to-one invariant on platform scores.
func (c *Calculator) checkNormalized(scores map[models.Platform]float64, model models.AttributionModel) error {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if math.Abs(sum-1.0) > c.cfg.Tolerance {
		return &NormalizationError{Model: model, Sum: sum}
	}
	return nil
}

// validateJourney enforces the journey preconditions: at least one
// touchpoint, ascending order, conversion at or after the last touch.
func validateJourney(journey models.CustomerJourney) error {
	if len(journey.Touchpoints) == 0 {
		return &InvalidJourneyError{UserID: journey.UserID, Reason: "journey has no touchpoints"}
	}
	for i := 1; i < len(journey.Touchpoints); i++ {
		if journey.Touchpoints[i].Timestamp.Before(journey.Touchpoints[i-1].Timestamp) {
			return &InvalidJourneyError{
				UserID: journey.UserID,
				Reason: fmt.Sprintf("touchpoints out of order at position %d", i+1),
			}
		}
	}
	last := journey.Touchpoints[len(journey.Touchpoints)-1]
	if journey.ConversionTimestamp.Before(last.Timestamp) {
		return &InvalidJourneyError{
			UserID: journey.UserID,
			Reason: "conversion precedes the last touchpoint",
		}
	}
	if journey.ConversionValue < 0 {
		return &InvalidJourneyError{UserID: journey.UserID, Reason: "negative conversion value"}
	}
	return nil
}

// resultID derives a deterministic v5 UUID from the journey content and
// model, so repeated calculations of the same input share an identity.
func resultID(journey models.CustomerJourney, model models.AttributionModel) string {
	var b strings.Builder
	b.WriteString(journey.UserID)
	b.WriteByte('|')
	b.WriteString(journey.SessionID)
	b.WriteByte('|')
	b.WriteString(string(model))
	b.WriteByte('|')
	b.WriteString(strconv.FormatInt(journey.ConversionTimestamp.UnixNano(), 36))
	for _, tp := range journey.Touchpoints {
		b.WriteByte('|')
		b.WriteString(string(tp.Platform))
		b.WriteByte(':')
		b.WriteString(tp.CampaignID)
		b.WriteByte(':')
		b.WriteString(strconv.FormatInt(tp.Timestamp.UnixNano(), 36))
	}
	return uuid.NewSHA1(resultNamespace, []byte(b.String())).String()
}

package attribution

import (
	"context"
	"math"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/insights"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/metrics"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/storage"
	"go.uber.org/zap"
)

// Version identifies the attribution engine release.
const Version = "1.2.0"

// Engine runs the full attribution pipeline: model calculation,
// discovery-phase optimization with external signals, and confidence
// scoring. It holds only immutable configuration and interface handles,
// so it is safe for concurrent use.
type Engine struct {
	calc      *Calculator
	optimizer *Optimizer
	scorer    *ConfidenceScorer
	tolerance float64
	discCfg   config.DiscoveryConfig

	trends   insights.TrendProvider
	audience insights.AudienceProvider
	results  storage.ResultStore

	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewEngine constructs the engine. trends, audience, results and m may be
// nil; the engine degrades to neutral defaults without them.
func NewEngine(
	attrCfg config.AttributionConfig,
	discCfg config.DiscoveryConfig,
	trends insights.TrendProvider,
	audience insights.AudienceProvider,
	results storage.ResultStore,
	logger *zap.Logger,
	m *metrics.Metrics,
) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		calc:      NewCalculator(attrCfg),
		optimizer: NewOptimizer(discCfg),
		scorer:    NewConfidenceScorer(attrCfg),
		tolerance: attrCfg.Tolerance,
		discCfg:   discCfg,
		trends:    trends,
		audience:  audience,
		results:   results,
		logger:    logger,
		metrics:   m,
	}
}

// CalculateAttribution runs the selected model over the journey, applies
// the discovery-phase optimization when external signals are available,
// and annotates the result with a confidence score. Collaborator failures
// degrade to neutral defaults and never fail the call; invariant
// violations always surface.
func (e *Engine) CalculateAttribution(ctx context.Context, journey models.CustomerJourney, model models.AttributionModel) (*models.AttributionResult, error) {
	start := time.Now()

	result, err := e.calc.Calculate(journey, model)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordAttributionFailure(failureReason(err))
		}
		return nil, err
	}

	keywords, persona, available := e.fetchInsights(ctx)

	meta := &models.InsightMetadata{Available: available}
	if available {
		meta.TrendingKeywords = keywords
		meta.Persona = persona
		meta.MatchedKeywords = e.optimizer.MatchingKeywords(keywords)

		before := result.PlatformScores[e.optimizer.Platform()]
		optimized := e.optimizer.Optimize(result.PlatformScores, keywords, persona)
		if err := e.checkSum(optimized, model); err != nil {
			return nil, err
		}
		result.PlatformScores = optimized

		if after := optimized[e.optimizer.Platform()]; after > before {
			meta.DiscoveryBoosted = true
			if e.metrics != nil {
				e.metrics.RecordDiscoveryBoost(string(e.optimizer.Platform()), e.optimizer.Boost(keywords, persona))
			}
		}
	}
	result.Insights = meta
	result.ConfidenceScore = e.scorer.Score(journey, available)

	if e.results != nil {
		if err := e.results.SaveResult(ctx, result); err != nil {
			e.logger.Warn("failed to store attribution result",
				zap.String("result_id", result.ID),
				zap.Error(err),
			)
		}
	}

	if e.metrics != nil {
		e.metrics.RecordAttribution(string(model), result.TotalAttribution, time.Since(start))
	}
	e.logger.Debug("attribution computed",
		zap.String("user_id", journey.UserID),
		zap.String("model", string(model)),
		zap.Int("touchpoints", journey.TouchpointCount()),
		zap.Float64("confidence", result.ConfidenceScore),
		zap.Bool("insights", available),
	)

	return result, nil
}

// OptimizeDiscoveryPhase exposes the discovery re-weighting step over an
// externally supplied score set.
func (e *Engine) OptimizeDiscoveryPhase(scores map[models.Platform]float64, keywords []models.TrendingKeyword, persona *models.PersonaInsights) map[models.Platform]float64 {
	return e.optimizer.Optimize(scores, keywords, persona)
}

// Summary describes the engine's capabilities and configuration.
type Summary struct {
	AvailableModels []models.AttributionModel `json:"available_models"`
	Discovery       DiscoverySummary          `json:"discovery_config"`
	Version         string                    `json:"version"`
}

// DiscoverySummary exposes the active discovery-phase parameters.
type DiscoverySummary struct {
	Platform               models.Platform `json:"platform"`
	BaseBoost              float64         `json:"base_boost"`
	KeywordIncrement       float64         `json:"keyword_increment"`
	PersonaIncrement       float64         `json:"persona_increment"`
	KeywordGrowthThreshold float64         `json:"keyword_growth_threshold"`
	AffinityCategories     []string        `json:"affinity_categories"`
}

// Summary returns the engine capability summary.
func (e *Engine) Summary() Summary {
	return Summary{
		AvailableModels: models.AllModels(),
		Discovery: DiscoverySummary{
			Platform:               e.discCfg.Platform,
			BaseBoost:              e.discCfg.BaseBoost,
			KeywordIncrement:       e.discCfg.KeywordIncrement,
			PersonaIncrement:       e.discCfg.PersonaIncrement,
			KeywordGrowthThreshold: e.discCfg.KeywordGrowthThreshold,
			AffinityCategories:     append([]string(nil), e.discCfg.AffinityCategories...),
		},
		Version: Version,
	}
}

// fetchInsights consults the trend and audience collaborators. Either
// failing marks insights unavailable; the engine then proceeds with a
// neutral (no-op) discovery phase.
func (e *Engine) fetchInsights(ctx context.Context) ([]models.TrendingKeyword, *models.PersonaInsights, bool) {
	if e.trends == nil || e.audience == nil {
		return nil, nil, false
	}

	keywords, err := e.trends.TrendingKeywords(ctx)
	if err != nil {
		e.logger.Warn("trend provider unavailable", zap.Error(err))
		if e.metrics != nil {
			e.metrics.RecordCollaboratorFailure("trends")
		}
		return nil, nil, false
	}

	persona, err := e.audience.AudienceInsights(ctx)
	if err != nil {
		e.logger.Warn("audience provider unavailable", zap.Error(err))
		if e.metrics != nil {
			e.metrics.RecordCollaboratorFailure("audience")
		}
		return nil, nil, false
	}

	return keywords, persona, true
}

func (e *Engine) checkSum(scores map[models.Platform]float64, model models.AttributionModel) error {
	var sum float64
	for _, s := range scores {
		sum += s
	}
	if math.Abs(sum-1.0) > e.tolerance {
		return &NormalizationError{Model: model, Sum: sum}
	}
	return nil
}

func failureReason(err error) string {
	switch err.(type) {
	case *InvalidJourneyError:
		return "invalid_journey"
	case *UnknownModelError:
		return "unknown_model"
	case *NormalizationError:
		return "normalization"
	default:
		return "internal"
	}
}

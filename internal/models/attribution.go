package models

import (
	"time"
)

// ===========================================
// ATTRIBUTION MODELS
// ===========================================

// AttributionModel names a weighting algorithm that distributes conversion
// credit across touchpoints.
type AttributionModel string

const (
	ModelFirstTouch    AttributionModel = "first_touch"
	ModelLastTouch     AttributionModel = "last_touch"
	ModelLinear        AttributionModel = "linear"
	ModelTimeDecay     AttributionModel = "time_decay"
	ModelPositionBased AttributionModel = "position_based"
	// ModelDataDriven is a heuristic blend of time_decay and
	// position_based outputs. It stands in for a learned model behind
	// the same interface.
	ModelDataDriven AttributionModel = "data_driven"
)

// AllModels returns every supported attribution model.
func AllModels() []AttributionModel {
	return []AttributionModel{
		ModelFirstTouch,
		ModelLastTouch,
		ModelLinear,
		ModelTimeDecay,
		ModelPositionBased,
		ModelDataDriven,
	}
}

// Valid reports whether m is a known model variant.
func (m AttributionModel) Valid() bool {
	switch m {
	case ModelFirstTouch, ModelLastTouch, ModelLinear, ModelTimeDecay, ModelPositionBased, ModelDataDriven:
		return true
	}
	return false
}

// ===========================================
// EXTERNAL SIGNALS
// ===========================================

// TrendingKeyword is one entry from the trends collaborator, ordered by
// relevance upstream.
type TrendingKeyword struct {
	Keyword    string  `json:"keyword"`
	GrowthRate float64 `json:"growth_rate"` // percent, e.g. 35.0 for +35%
}

// PersonaInsights describes the audience the converting user belongs to.
type PersonaInsights struct {
	PersonaCategories []string `json:"persona_categories"`
	AudienceSize      int64    `json:"audience_size"`
}

// InsightMetadata records which external signals fed an attribution.
// Available is false when the collaborators could not be reached and the
// computation fell back to neutral defaults.
type InsightMetadata struct {
	Available        bool              `json:"available"`
	TrendingKeywords []TrendingKeyword `json:"trending_keywords,omitempty"`
	Persona          *PersonaInsights  `json:"persona,omitempty"`
	MatchedKeywords  int               `json:"matched_keywords"`
	DiscoveryBoosted bool              `json:"discovery_boosted"`
}

// ===========================================
// ATTRIBUTION RESULT
// ===========================================

// AttributionResult is the per-journey output of the engine. Platform
// scores are fractional credits summing to 1.0; campaign scores likewise.
// The caller owns the result, the engine keeps no reference to it.
type AttributionResult struct {
	ID               string           `json:"id"`
	UserID           string           `json:"user_id"`
	SessionID        string           `json:"session_id,omitempty"`
	Model            AttributionModel `json:"model"`
	TotalAttribution float64          `json:"total_attribution"`

	PlatformScores map[Platform]float64 `json:"platform_scores"`
	CampaignScores map[string]float64   `json:"campaign_scores"`

	ConfidenceScore float64          `json:"confidence_score"`
	Insights        *InsightMetadata `json:"insights,omitempty"`
	ComputedAt      time.Time        `json:"computed_at"`
}

// PlatformCredit returns the currency amount credited to the platform.
func (r *AttributionResult) PlatformCredit(p Platform) float64 {
	return r.TotalAttribution * r.PlatformScores[p]
}

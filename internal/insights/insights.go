// Package insights defines the external trend/persona collaborator
// boundary. Providers may be latent or fail; the attribution engine never
// blocks its invariants on them and recovers failures with neutral
// defaults.
package insights

import (
	"context"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// TrendProvider supplies trending keywords ordered by relevance.
type TrendProvider interface {
	TrendingKeywords(ctx context.Context) ([]models.TrendingKeyword, error)
}

// AudienceProvider supplies persona categories and audience size for the
// account's converting audience.
type AudienceProvider interface {
	AudienceInsights(ctx context.Context) (*models.PersonaInsights, error)
}

// TrendProviderFunc adapts a function to the TrendProvider interface.
type TrendProviderFunc func(ctx context.Context) ([]models.TrendingKeyword, error)

func (f TrendProviderFunc) TrendingKeywords(ctx context.Context) ([]models.TrendingKeyword, error) {
	return f(ctx)
}

// AudienceProviderFunc adapts a function to the AudienceProvider interface.
type AudienceProviderFunc func(ctx context.Context) (*models.PersonaInsights, error)

func (f AudienceProviderFunc) AudienceInsights(ctx context.Context) (*models.PersonaInsights, error) {
	return f(ctx)
}

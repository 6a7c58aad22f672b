package insights

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"go.uber.org/zap"
)

const (
	trendsCacheKey  = "insights:trends"
	personaCacheKey = "insights:persona"
)

// CachedTrendProvider caches an upstream TrendProvider's answer in Redis.
// Cache failures fall through to the source; source failures propagate so
// the engine can apply its neutral defaults.
type CachedTrendProvider struct {
	source TrendProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedTrendProvider wraps source with a Redis cache.
func NewCachedTrendProvider(source TrendProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedTrendProvider {
	return &CachedTrendProvider{source: source, client: client, ttl: ttl, logger: logger}
}

// TrendingKeywords returns the cached keyword list, refreshing from the
// source on a miss.
func (c *CachedTrendProvider) TrendingKeywords(ctx context.Context) ([]models.TrendingKeyword, error) {
	if raw, err := c.client.Get(ctx, trendsCacheKey).Bytes(); err == nil {
		var cached []models.TrendingKeyword
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	} else if err != redis.Nil {
		c.logger.Debug("trends cache read failed", zap.Error(err))
	}

	keywords, err := c.source.TrendingKeywords(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(keywords); err == nil {
		if err := c.client.Set(ctx, trendsCacheKey, raw, c.ttl).Err(); err != nil {
			c.logger.Debug("trends cache write failed", zap.Error(err))
		}
	}
	return keywords, nil
}

// CachedAudienceProvider caches an upstream AudienceProvider in Redis with
// the same fall-through semantics as CachedTrendProvider.
type CachedAudienceProvider struct {
	source AudienceProvider
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedAudienceProvider wraps source with a Redis cache.
func NewCachedAudienceProvider(source AudienceProvider, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedAudienceProvider {
	return &CachedAudienceProvider{source: source, client: client, ttl: ttl, logger: logger}
}

// AudienceInsights returns the cached persona, refreshing on a miss.
func (c *CachedAudienceProvider) AudienceInsights(ctx context.Context) (*models.PersonaInsights, error) {
	if raw, err := c.client.Get(ctx, personaCacheKey).Bytes(); err == nil {
		var cached models.PersonaInsights
		if err := json.Unmarshal(raw, &cached); err == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		c.logger.Debug("persona cache read failed", zap.Error(err))
	}

	persona, err := c.source.AudienceInsights(ctx)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(persona); err == nil {
		if err := c.client.Set(ctx, personaCacheKey, raw, c.ttl).Err(); err != nil {
			c.logger.Debug("persona cache write failed", zap.Error(err))
		}
	}
	return persona, nil
}

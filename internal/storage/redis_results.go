package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// resultTTL keeps daily result lists long enough for a 30-day report with
// margin.
const resultTTL = 45 * 24 * time.Hour

// RedisResultStore implements ResultStore on Redis daily lists, one key
// per day (attr:results:<date>), each entry a JSON-encoded result.
type RedisResultStore struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisResultStore creates a Redis-backed result store.
func NewRedisResultStore(client *redis.Client) *RedisResultStore {
	return &RedisResultStore{client: client, now: time.Now}
}

func resultKey(day time.Time) string {
	return fmt.Sprintf("attr:results:%s", day.UTC().Format("2006-01-02"))
}

// SaveResult appends the result to its day's list.
func (s *RedisResultStore) SaveResult(ctx context.Context, res *models.AttributionResult) error {
	if res == nil {
		return nil
	}
	cp := *res
	if cp.ComputedAt.IsZero() {
		cp.ComputedAt = s.now().UTC()
	}

	raw, err := json.Marshal(&cp)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	key := resultKey(cp.ComputedAt)
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, raw)
	pipe.Expire(ctx, key, resultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store result: %w", err)
	}
	return nil
}

// ListResults walks the range day by day and decodes each day's list.
func (s *RedisResultStore) ListResults(ctx context.Context, rng models.DateRange) ([]*models.AttributionResult, error) {
	out := make([]*models.AttributionResult, 0)
	for _, day := range rng.Days() {
		entries, err := s.client.LRange(ctx, resultKey(day), 0, -1).Result()
		if err != nil && err != redis.Nil {
			return nil, fmt.Errorf("failed to read results for %s: %w", day.Format("2006-01-02"), err)
		}
		for _, raw := range entries {
			var res models.AttributionResult
			if err := json.Unmarshal([]byte(raw), &res); err != nil {
				continue
			}
			out = append(out, &res)
		}
	}
	return out, nil
}

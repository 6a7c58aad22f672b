package reporting

import (
	"context"
	"sync"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// CampaignDelivery is one day of delivery metrics for one campaign.
type CampaignDelivery struct {
	Platform    models.Platform `json:"platform"`
	CampaignID  string          `json:"campaign_id"`
	Date        time.Time       `json:"date"`
	Impressions int64           `json:"impressions"`
	Clicks      int64           `json:"clicks"`
	Engagements int64           `json:"engagements"`
	Spend       float64         `json:"spend"`
}

// DeliveryMetricsProvider exposes raw delivery metrics for a date range.
// Implementations must not return partial data together with an error.
type DeliveryMetricsProvider interface {
	CampaignMetrics(ctx context.Context, rng models.DateRange) ([]CampaignDelivery, error)
}

// InMemoryMetricsProvider serves delivery metrics from memory. Used when
// no analytics store is configured, and as a test fixture.
type InMemoryMetricsProvider struct {
	mu      sync.RWMutex
	records []CampaignDelivery
}

// NewInMemoryMetricsProvider constructs an empty provider.
func NewInMemoryMetricsProvider() *InMemoryMetricsProvider {
	return &InMemoryMetricsProvider{}
}

// Add records delivery rows.
func (p *InMemoryMetricsProvider) Add(records ...CampaignDelivery) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, records...)
}

// CampaignMetrics returns rows whose date falls inside the range.
func (p *InMemoryMetricsProvider) CampaignMetrics(ctx context.Context, rng models.DateRange) ([]CampaignDelivery, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]CampaignDelivery, 0)
	for _, rec := range p.records {
		if rng.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

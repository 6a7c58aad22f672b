package reporting

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// ClickHouseMetricsProvider reads daily delivery aggregates from the
// ad_delivery_daily table, which the delivery pipeline populates outside
// this service.
type ClickHouseMetricsProvider struct {
	conn driver.Conn
}

// NewClickHouseMetricsProvider creates a ClickHouse-backed provider.
func NewClickHouseMetricsProvider(conn driver.Conn) *ClickHouseMetricsProvider {
	return &ClickHouseMetricsProvider{conn: conn}
}

// CampaignMetrics aggregates delivery rows per platform, campaign and day
// over the range.
func (p *ClickHouseMetricsProvider) CampaignMetrics(ctx context.Context, rng models.DateRange) ([]CampaignDelivery, error) {
	rows, err := p.conn.Query(ctx, `
		SELECT
			platform,
			campaign_id,
			toStartOfDay(event_date) AS day,
			sum(impressions) AS impressions,
			sum(clicks) AS clicks,
			sum(engagements) AS engagements,
			sum(spend) AS spend
		FROM ad_delivery_daily
		WHERE event_date >= ? AND event_date <= ?
		GROUP BY platform, campaign_id, day
		ORDER BY day ASC
	`, rng.Start, rng.End)
	if err != nil {
		return nil, fmt.Errorf("failed to query delivery metrics: %w", err)
	}
	defer rows.Close()

	out := make([]CampaignDelivery, 0)
	for rows.Next() {
		var (
			rec      CampaignDelivery
			platform string
			day      time.Time
			imps     uint64
			clicks   uint64
			engs     uint64
		)
		if err := rows.Scan(&platform, &rec.CampaignID, &day, &imps, &clicks, &engs, &rec.Spend); err != nil {
			return nil, fmt.Errorf("failed to scan delivery row: %w", err)
		}
		rec.Platform = models.Platform(platform)
		rec.Date = day
		rec.Impressions = int64(imps)
		rec.Clicks = int64(clicks)
		rec.Engagements = int64(engs)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read delivery rows: %w", err)
	}
	return out, nil
}

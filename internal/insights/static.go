package insights

import (
	"context"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
)

// StaticTrendProvider serves a curated per-month keyword table. It stands
// in when no upstream trends API is configured so the discovery optimizer
// stays exercised in development.
type StaticTrendProvider struct {
	now func() time.Time
}

// NewStaticTrendProvider constructs a provider using wall-clock time.
func NewStaticTrendProvider() *StaticTrendProvider {
	return &StaticTrendProvider{now: time.Now}
}

// seasonal keyword tables, keyed by month
var seasonalKeywords = map[time.Month][]models.TrendingKeyword{
	time.January:   {{Keyword: "organization ideas", GrowthRate: 42}, {Keyword: "fitness routine", GrowthRate: 38}, {Keyword: "meal prep", GrowthRate: 24}},
	time.February:  {{Keyword: "valentines gifts", GrowthRate: 55}, {Keyword: "date night outfits", GrowthRate: 21}, {Keyword: "home office", GrowthRate: 8}},
	time.March:     {{Keyword: "spring cleaning", GrowthRate: 47}, {Keyword: "garden planning", GrowthRate: 33}, {Keyword: "easter decor", GrowthRate: 18}},
	time.April:     {{Keyword: "spring outfits", GrowthRate: 36}, {Keyword: "patio ideas", GrowthRate: 29}, {Keyword: "wedding season", GrowthRate: 25}},
	time.May:       {{Keyword: "mothers day gifts", GrowthRate: 51}, {Keyword: "summer recipes", GrowthRate: 22}, {Keyword: "travel outfits", GrowthRate: 17}},
	time.June:      {{Keyword: "summer fashion", GrowthRate: 34}, {Keyword: "bbq recipes", GrowthRate: 27}, {Keyword: "beach essentials", GrowthRate: 19}},
	time.July:      {{Keyword: "summer sale", GrowthRate: 31}, {Keyword: "outdoor living", GrowthRate: 16}, {Keyword: "back to school", GrowthRate: 12}},
	time.August:    {{Keyword: "back to school", GrowthRate: 49}, {Keyword: "fall transition", GrowthRate: 23}, {Keyword: "dorm decor", GrowthRate: 20}},
	time.September: {{Keyword: "fall fashion", GrowthRate: 44}, {Keyword: "halloween ideas", GrowthRate: 26}, {Keyword: "cozy home", GrowthRate: 15}},
	time.October:   {{Keyword: "halloween costumes", GrowthRate: 62}, {Keyword: "fall decor", GrowthRate: 30}, {Keyword: "gift guide", GrowthRate: 11}},
	time.November:  {{Keyword: "christmas gifts", GrowthRate: 58}, {Keyword: "black friday", GrowthRate: 46}, {Keyword: "holiday outfits", GrowthRate: 28}},
	time.December:  {{Keyword: "last minute gifts", GrowthRate: 53}, {Keyword: "new years outfit", GrowthRate: 32}, {Keyword: "winter decor", GrowthRate: 14}},
}

// TrendingKeywords returns the current month's table.
func (p *StaticTrendProvider) TrendingKeywords(ctx context.Context) ([]models.TrendingKeyword, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	month := p.now().Month()
	src := seasonalKeywords[month]
	out := make([]models.TrendingKeyword, len(src))
	copy(out, src)
	return out, nil
}

// StaticAudienceProvider serves a fixed persona fixture.
type StaticAudienceProvider struct {
	persona models.PersonaInsights
}

// NewStaticAudienceProvider constructs a provider with the default
// Pinterest-shopper persona.
func NewStaticAudienceProvider() *StaticAudienceProvider {
	return &StaticAudienceProvider{
		persona: models.PersonaInsights{
			PersonaCategories: []string{"home decor", "fashion", "diy"},
			AudienceSize:      125000,
		},
	}
}

// AudienceInsights returns a copy of the fixture.
func (p *StaticAudienceProvider) AudienceInsights(ctx context.Context) (*models.PersonaInsights, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	persona := models.PersonaInsights{
		PersonaCategories: append([]string(nil), p.persona.PersonaCategories...),
		AudienceSize:      p.persona.AudienceSize,
	}
	return &persona, nil
}

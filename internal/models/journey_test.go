package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewCustomerJourneySortsAndAssignsPositions(t *testing.T) {
	require := require.New(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	input := []Touchpoint{
		{Platform: PlatformGoogle, CampaignID: "c3", EventType: EventClick, Timestamp: base.Add(2 * time.Hour)},
		{Platform: PlatformPinterest, CampaignID: "c1", EventType: EventSave, Timestamp: base},
		{Platform: PlatformMeta, CampaignID: "c2", EventType: EventClick, Timestamp: base.Add(time.Hour)},
	}

	journey := NewCustomerJourney("user-1", "sess-1", input, 99.5, base.Add(3*time.Hour))

	require.Equal(PlatformPinterest, journey.Touchpoints[0].Platform)
	require.Equal(PlatformMeta, journey.Touchpoints[1].Platform)
	require.Equal(PlatformGoogle, journey.Touchpoints[2].Platform)
	for i, tp := range journey.Touchpoints {
		require.Equal(i+1, tp.Position)
	}

	// caller's slice is untouched
	require.Equal(PlatformGoogle, input[0].Platform)
	require.Zero(input[0].Position)
}

func TestTouchpointValidate(t *testing.T) {
	require := require.New(t)
	valid := Touchpoint{
		Platform:   PlatformPinterest,
		CampaignID: "c1",
		EventType:  EventClick,
		Timestamp:  time.Now(),
	}
	require.NoError(valid.Validate())

	bad := valid
	bad.Platform = "myspace"
	require.Error(bad.Validate())

	bad = valid
	bad.EventType = "swipe"
	require.Error(bad.Validate())

	bad = valid
	bad.CampaignID = ""
	require.Error(bad.Validate())

	bad = valid
	bad.Timestamp = time.Time{}
	require.Error(bad.Validate())
}

func TestDateRange(t *testing.T) {
	require := require.New(t)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC)
	rng := DateRange{Start: start, End: end}

	require.NoError(rng.Validate())
	require.Error(DateRange{Start: end, End: start}.Validate())
	require.Error(DateRange{}.Validate())

	require.Len(rng.Days(), 5)
	require.True(rng.Contains(start.Add(30*time.Hour)))
	require.False(rng.Contains(end.AddDate(0, 0, 1)))
}

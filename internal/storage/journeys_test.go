package storage

import (
	"context"
	"testing"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/stretchr/testify/require"
)

func TestInMemoryJourneyStoreSortsAndPositions(t *testing.T) {
	require := require.New(t)
	store := NewInMemoryJourneyStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	// insert out of order
	require.NoError(store.SaveTouchpoint(ctx, "user-1", "sess-1", models.Touchpoint{
		Platform: models.PlatformMeta, CampaignID: "c2", EventType: models.EventClick, Timestamp: base.Add(2 * time.Hour),
	}))
	require.NoError(store.SaveTouchpoint(ctx, "user-1", "sess-1", models.Touchpoint{
		Platform: models.PlatformPinterest, CampaignID: "c1", EventType: models.EventSave, Timestamp: base,
	}))

	tps, err := store.GetTouchpoints(ctx, "user-1")
	require.NoError(err)
	require.Len(tps, 2)
	require.Equal(models.PlatformPinterest, tps[0].Platform)
	require.Equal(1, tps[0].Position)
	require.Equal(models.PlatformMeta, tps[1].Platform)
	require.Equal(2, tps[1].Position)

	session, err := store.SessionID(ctx, "user-1")
	require.NoError(err)
	require.Equal("sess-1", session)
}

func TestInMemoryJourneyStoreUnknownUser(t *testing.T) {
	require := require.New(t)
	store := NewInMemoryJourneyStore()

	tps, err := store.GetTouchpoints(context.Background(), "nobody")
	require.NoError(err)
	require.Empty(tps)

	session, err := store.SessionID(context.Background(), "nobody")
	require.NoError(err)
	require.Empty(session)
}

package storage

import (
	"context"
	"testing"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/stretchr/testify/require"
)

func TestInMemoryResultStoreStampsComputedAt(t *testing.T) {
	require := require.New(t)
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	store := NewInMemoryResultStore()
	store.now = func() time.Time { return now }

	res := &models.AttributionResult{ID: "r1", Model: models.ModelLinear}
	require.NoError(store.SaveResult(context.Background(), res))

	// the caller's copy stays untouched
	require.True(res.ComputedAt.IsZero())

	stored, err := store.ListResults(context.Background(), models.DateRange{
		Start: now.AddDate(0, 0, -1),
		End:   now,
	})
	require.NoError(err)
	require.Len(stored, 1)
	require.Equal(now, stored[0].ComputedAt)
}

func TestInMemoryResultStoreFiltersByRange(t *testing.T) {
	require := require.New(t)
	store := NewInMemoryResultStore()
	ctx := context.Background()

	day := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(store.SaveResult(ctx, &models.AttributionResult{
			ID:         "r",
			Model:      models.ModelLinear,
			ComputedAt: day.AddDate(0, 0, i),
		}))
	}

	stored, err := store.ListResults(ctx, models.DateRange{
		Start: day.AddDate(0, 0, 1),
		End:   day.AddDate(0, 0, 3),
	})
	require.NoError(err)
	require.Len(stored, 3)
}

package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/infrastructure/persistence"
	"github.com/publisherradar/sellersync/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_UpsertSameDate(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSnapshotStore(testdb.New(t))
	date := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Upsert(ctx, seller.DailySnapshot{
		SnapshotDate: date,
		TotalCount:   100,
		NewCount:     10,
		RemovedCount: 2,
	}))

	// Same-day rerun replaces the counts instead of duplicating the row.
	require.NoError(t, store.Upsert(ctx, seller.DailySnapshot{
		SnapshotDate: date,
		TotalCount:   100,
		NewCount:     0,
		RemovedCount: 0,
	}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	snap, err := store.ForDate(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, int64(100), snap.TotalCount)
	assert.Equal(t, int64(0), snap.NewCount)
	assert.Equal(t, int64(0), snap.RemovedCount)
}

func TestSnapshotStore_DistinctDates(t *testing.T) {
	ctx := context.Background()
	store := persistence.NewSnapshotStore(testdb.New(t))

	day1 := time.Date(2026, 8, 26, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, store.Upsert(ctx, seller.DailySnapshot{SnapshotDate: day1, TotalCount: 1}))
	require.NoError(t, store.Upsert(ctx, seller.DailySnapshot{SnapshotDate: day2, TotalCount: 2}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

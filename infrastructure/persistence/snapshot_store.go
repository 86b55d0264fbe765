package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/internal/database"
	"gorm.io/gorm/clause"
)

// SnapshotStore implements seller.SnapshotStore using GORM.
type SnapshotStore struct {
	database.Repository[seller.DailySnapshot, DailySnapshotModel]
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db database.Database) SnapshotStore {
	return SnapshotStore{
		Repository: database.NewRepository[seller.DailySnapshot, DailySnapshotModel](db, SnapshotMapper{}, "daily snapshot"),
	}
}

// Upsert writes the snapshot for its date. A same-day rerun replaces the
// counts instead of adding a second row.
func (s SnapshotStore) Upsert(ctx context.Context, snapshot seller.DailySnapshot) error {
	model := SnapshotMapper{}.ToModel(snapshot)
	model.UpdatedAt = time.Now().UTC()

	result := s.DB(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_count", "new_count", "removed_count", "updated_at",
			}),
		}).
		Create(&model)
	if result.Error != nil {
		return fmt.Errorf("upsert daily snapshot: %w", result.Error)
	}
	return nil
}

// ForDate returns the snapshot row for a date, if any.
func (s SnapshotStore) ForDate(ctx context.Context, date time.Time) (seller.DailySnapshot, error) {
	var model DailySnapshotModel
	result := s.DB(ctx).
		Where("snapshot_date = ?", date.Format(snapshotDateFormat)).
		First(&model)
	if result.Error != nil {
		return seller.DailySnapshot{}, fmt.Errorf("load daily snapshot: %w", result.Error)
	}
	return SnapshotMapper{}.ToDomain(model), nil
}

package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/publisherradar/sellersync/internal/database"
	"gorm.io/gorm/clause"
)

// LeaseStore implements seller.LeaseStore using GORM. Leases keep two
// pipeline runs from mutating the store at the same time.
type LeaseStore struct {
	db database.Database
}

// NewLeaseStore creates a new LeaseStore.
func NewLeaseStore(db database.Database) LeaseStore {
	return LeaseStore{db: db}
}

// Acquire takes the named lease for owner until now+ttl. Returns false when
// another owner holds an unexpired lease. A lease past its expiry (the
// previous run crashed without releasing) is taken over.
func (s LeaseStore) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	now := time.Now().UTC()
	model := RunLeaseModel{
		Name:      name,
		Owner:     owner,
		ExpiresAt: now.Add(ttl),
		UpdatedAt: now,
	}

	// Fresh lease: the insert wins or conflicts atomically.
	insert := s.db.Session(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).
		Create(&model)
	if insert.Error != nil {
		return false, fmt.Errorf("acquire lease: %w", insert.Error)
	}
	if insert.RowsAffected == 1 {
		return true, nil
	}

	// Existing lease: take it over only if we already own it or it is
	// stale. The WHERE clause makes the takeover race-safe.
	update := s.db.Session(ctx).Model(&RunLeaseModel{}).
		Where("name = ? AND (owner = ? OR expires_at < ?)", name, owner, now).
		UpdateColumns(map[string]any{
			"owner":      owner,
			"expires_at": now.Add(ttl),
			"updated_at": now,
		})
	if update.Error != nil {
		return false, fmt.Errorf("acquire lease: %w", update.Error)
	}
	return update.RowsAffected == 1, nil
}

// Release frees the named lease if owner still holds it. Releasing a lease
// someone else stole is a no-op.
func (s LeaseStore) Release(ctx context.Context, name, owner string) error {
	result := s.db.Session(ctx).
		Where("name = ? AND owner = ?", name, owner).
		Delete(&RunLeaseModel{})
	if result.Error != nil {
		return fmt.Errorf("release lease: %w", result.Error)
	}
	return nil
}

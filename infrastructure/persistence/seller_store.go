package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/publisherradar/sellersync/domain/repository"
	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// insertBatchSize is the row count per bulk INSERT statement.
	insertBatchSize = 1000
	// stagingChunkSize is the row count per staging-table load statement.
	stagingChunkSize = 5000
	// stagingLogEvery is how often staging load progress is logged.
	stagingLogEvery = 100000
	// removedChunkSize bounds the IN clause of the removed-marking UPDATE.
	removedChunkSize = 1000
)

// SellerStore implements seller.Store using GORM.
type SellerStore struct {
	database.Repository[seller.Seller, SellerModel]
	db database.Database
}

// NewSellerStore creates a new SellerStore.
func NewSellerStore(db database.Database) SellerStore {
	return SellerStore{
		Repository: database.NewRepository[seller.Seller, SellerModel](db, SellerMapper{}, "seller"),
		db:         db,
	}
}

// CurrentIDs returns the set of all stored seller identifiers.
func (s SellerStore) CurrentIDs(ctx context.Context) (map[string]struct{}, error) {
	var ids []string
	result := s.DB(ctx).Model(&SellerModel{}).Pluck("seller_id", &ids)
	if result.Error != nil {
		return nil, fmt.Errorf("load current seller ids: %w", result.Error)
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, nil
}

// InsertNew bulk-inserts sellers with ON CONFLICT DO NOTHING on the
// identifier, so a row another writer got to first never errors the run.
// Returns the number of rows actually inserted (conflicts excluded).
func (s SellerStore) InsertNew(ctx context.Context, sellers []seller.Seller) (int64, error) {
	if len(sellers) == 0 {
		return 0, nil
	}

	now := time.Now().UTC()
	models := make([]SellerModel, len(sellers))
	for i, sl := range sellers {
		if sl.FirstSeenAt.IsZero() {
			sl.FirstSeenAt = now
		}
		if sl.UpdatedAt.IsZero() {
			sl.UpdatedAt = now
		}
		models[i] = SellerMapper{}.ToModel(sl)
	}

	result := s.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_id"}},
			DoNothing: true,
		}).
		CreateInBatches(&models, insertBatchSize)
	if result.Error != nil {
		return 0, fmt.Errorf("insert new sellers: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// UpdateChanged applies registry-side changes for sellers present on both
// sides. Row-by-row updates are round-trip bound at this scale, so the
// candidates are loaded into a transaction-scoped staging table in chunks
// and applied with one UPDATE ... FROM guarded by field-by-field inequality.
// Rows whose tracked fields all match are left untouched; updated rows get
// their updated_at stamped. Any failure rolls the whole transaction back.
func (s SellerStore) UpdateChanged(ctx context.Context, sellers []seller.Seller) error {
	if len(sellers) == 0 {
		return nil
	}

	isPostgres := s.db.IsPostgres()

	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		if err := createStagingTable(tx, isPostgres); err != nil {
			return fmt.Errorf("create staging table: %w", err)
		}

		loaded := 0
		for chunk := range slices.Chunk(sellers, stagingChunkSize) {
			rows := make([]stagingSellerModel, len(chunk))
			for i, sl := range chunk {
				rows[i] = stagingSellerModel{
					SellerID:       sl.SellerID,
					SellerType:     string(sl.SellerType),
					IsConfidential: sl.IsConfidential,
					Name:           sl.Name,
					Domain:         sl.Domain,
				}
			}
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("load staging chunk: %w", err)
			}
			before := loaded
			loaded += len(chunk)
			if loaded/stagingLogEvery > before/stagingLogEvery {
				slog.Info("staging load progress", "rows_loaded", loaded, "total", len(sellers))
			}
		}

		result := applyStagedUpdate(tx, isPostgres)
		if result.Error != nil {
			return fmt.Errorf("apply staged update: %w", result.Error)
		}

		if !isPostgres {
			// No ON COMMIT DROP outside postgres; clean up so the
			// connection can run another batch.
			if err := tx.Exec("DROP TABLE IF EXISTS staging_sellers").Error; err != nil {
				return fmt.Errorf("drop staging table: %w", err)
			}
		}

		slog.Info("bulk conditional update applied",
			"candidates", len(sellers),
			"rows_updated", result.RowsAffected,
		)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update changed sellers: %w", err)
	}
	return nil
}

func createStagingTable(tx *gorm.DB, isPostgres bool) error {
	ddl := `CREATE TEMPORARY TABLE staging_sellers (
		seller_id varchar(64) PRIMARY KEY,
		seller_type varchar(32),
		is_confidential boolean,
		name varchar(512),
		domain varchar(255)
	)`
	if isPostgres {
		return tx.Exec(ddl + " ON COMMIT DROP").Error
	}
	if err := tx.Exec("DROP TABLE IF EXISTS staging_sellers").Error; err != nil {
		return err
	}
	return tx.Exec(ddl).Error
}

func applyStagedUpdate(tx *gorm.DB, isPostgres bool) *gorm.DB {
	if isPostgres {
		return tx.Exec(`
			UPDATE sellers SET
				seller_type = st.seller_type,
				is_confidential = st.is_confidential,
				name = st.name,
				domain = st.domain,
				updated_at = NOW()
			FROM staging_sellers st
			WHERE sellers.seller_id = st.seller_id
			  AND (sellers.seller_type IS DISTINCT FROM st.seller_type
			    OR sellers.is_confidential IS DISTINCT FROM st.is_confidential
			    OR sellers.name IS DISTINCT FROM st.name
			    OR sellers.domain IS DISTINCT FROM st.domain)`)
	}
	return tx.Exec(`
		UPDATE sellers SET
			seller_type = st.seller_type,
			is_confidential = st.is_confidential,
			name = st.name,
			domain = st.domain,
			updated_at = ?
		FROM staging_sellers st
		WHERE sellers.seller_id = st.seller_id
		  AND (sellers.seller_type IS NOT st.seller_type
		    OR sellers.is_confidential IS NOT st.is_confidential
		    OR sellers.name IS NOT st.name
		    OR sellers.domain IS NOT st.domain)`,
		time.Now().UTC())
}

// MarkRemoved touches the updated_at timestamp of sellers that disappeared
// from the registry. Membership tracking only: rows, associations, and
// enrichment history are all preserved.
func (s SellerStore) MarkRemoved(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for chunk := range slices.Chunk(ids, removedChunkSize) {
		result := s.DB(ctx).Model(&SellerModel{}).
			Where("seller_id IN ?", chunk).
			UpdateColumn("updated_at", now)
		if result.Error != nil {
			return fmt.Errorf("mark removed sellers: %w", result.Error)
		}
	}
	return nil
}

// Total returns the total number of stored sellers.
func (s SellerStore) Total(ctx context.Context) (int64, error) {
	return s.Count(ctx)
}

// SellersDue returns the sellers an enrichment run should process, ordered
// by identifier for stable batching.
func (s SellerStore) SellersDue(ctx context.Context, sel seller.Selection) ([]seller.Seller, error) {
	options := []repository.Option{repository.WithOrderAsc("seller_id")}

	switch sel.Mode {
	case seller.ModeFillMissing:
		options = append(options, repository.WithUnchecked())
	case seller.ModeVerifyExisting:
		options = append(options, repository.WithChecked())
	case seller.ModeAll:
	default:
		return nil, fmt.Errorf("unknown enrichment mode: %q", sel.Mode)
	}

	if sel.Resume {
		options = append(options, repository.WithEnrichmentIncomplete())
	}
	if sel.Limit > 0 {
		options = append(options, repository.WithLimit(sel.Limit))
	}

	return s.Find(ctx, options...)
}

// UpdateEnrichmentStatus writes a seller's enrichment outcome.
func (s SellerStore) UpdateEnrichmentStatus(ctx context.Context, sellerID string, result seller.EnrichmentResult) error {
	res := s.DB(ctx).Model(&SellerModel{}).
		Where("seller_id = ?", sellerID).
		UpdateColumns(map[string]any{
			"adsense_api_checked":   true,
			"adsense_last_check":    result.CheckedAt,
			"adsense_check_status":  string(result.Status),
			"adsense_domain_count":  result.DomainCount,
			"adsense_error_message": result.ErrorMessage,
		})
	if res.Error != nil {
		return fmt.Errorf("update enrichment status: %w", res.Error)
	}
	return nil
}

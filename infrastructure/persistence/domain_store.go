package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/publisherradar/sellersync/domain/repository"
	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DomainStore implements seller.DomainStore using GORM.
type DomainStore struct {
	database.Repository[seller.SellerDomain, SellerDomainModel]
}

// NewDomainStore creates a new DomainStore.
func NewDomainStore(db database.Database) DomainStore {
	return DomainStore{
		Repository: database.NewRepository[seller.SellerDomain, SellerDomainModel](db, SellerDomainMapper{}, "seller domain"),
	}
}

var associationConflictTarget = []clause.Column{{Name: "seller_id"}, {Name: "domain"}}

// Upsert records an enrichment-discovered domain for a seller. A fresh pair
// is inserted as an adsense_api discovery at ConfidenceDiscovered. An
// existing registry-declared row upgrades to SourceBoth at
// ConfidenceConfirmed. Any other existing row only gets its updated_at
// refreshed: confidence and source never move down.
//
// Both statements resolve conflicts in SQL, so two runs racing on the same
// pair cannot trip the unique index; the loser just takes the update path.
func (s DomainStore) Upsert(ctx context.Context, sellerID, domain string, now time.Time) (seller.AssociationWrite, error) {
	model := SellerDomainModel{
		SellerID:        sellerID,
		Domain:          domain,
		DetectionSource: string(seller.SourceAdsenseAPI),
		ConfidenceScore: seller.ConfidenceDiscovered,
		FirstDetectedAt: now,
		UpdatedAt:       now,
	}
	res := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   associationConflictTarget,
		DoNothing: true,
	}).Create(&model)
	if res.Error != nil {
		return 0, fmt.Errorf("insert association: %w", res.Error)
	}
	if res.RowsAffected > 0 {
		return seller.AssociationNew, nil
	}

	// Existing pair. The CASE predicates see the pre-update row, so both
	// columns upgrade together or not at all.
	res = s.DB(ctx).Model(&SellerDomainModel{}).
		Where("seller_id = ? AND domain = ?", sellerID, domain).
		UpdateColumns(map[string]any{
			"detection_source": gorm.Expr(
				"CASE WHEN detection_source = ? THEN ? ELSE detection_source END",
				string(seller.SourceSellersJSON), string(seller.SourceBoth)),
			"confidence_score": gorm.Expr(
				"CASE WHEN detection_source = ? THEN ? ELSE confidence_score END",
				string(seller.SourceSellersJSON), seller.ConfidenceConfirmed),
			"updated_at": now,
		})
	if res.Error != nil {
		return 0, fmt.Errorf("update association: %w", res.Error)
	}
	return seller.AssociationVerified, nil
}

// ImportDeclared seeds associations from the domains sellers declare in the
// registry manifest, at full confidence. Pairs that already exist, whatever
// their source, are left untouched. Returns the number of rows inserted.
func (s DomainStore) ImportDeclared(ctx context.Context, sellers []seller.Seller, now time.Time) (int64, error) {
	models := make([]SellerDomainModel, 0, len(sellers))
	for _, sl := range sellers {
		if sl.Domain == "" {
			continue
		}
		models = append(models, SellerDomainModel{
			SellerID:        sl.SellerID,
			Domain:          sl.Domain,
			DetectionSource: string(seller.SourceSellersJSON),
			ConfidenceScore: seller.ConfidenceDeclared,
			FirstDetectedAt: now,
			UpdatedAt:       now,
		})
	}
	if len(models) == 0 {
		return 0, nil
	}

	res := s.DB(ctx).Clauses(clause.OnConflict{
		Columns:   associationConflictTarget,
		DoNothing: true,
	}).CreateInBatches(&models, insertBatchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("import declared domains: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// FindBySeller returns all associations for a seller.
func (s DomainStore) FindBySeller(ctx context.Context, sellerID string) ([]seller.SellerDomain, error) {
	return s.Find(ctx, repository.WithSellerID(sellerID))
}

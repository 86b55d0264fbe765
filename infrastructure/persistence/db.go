// Package persistence provides database storage implementations.
package persistence

import (
	"context"
	"fmt"

	"github.com/publisherradar/sellersync/internal/database"
)

// AutoMigrate runs GORM auto migration for all models.
func AutoMigrate(ctx context.Context, db database.Database) error {
	if err := db.Session(ctx).AutoMigrate(
		&SellerModel{},
		&SellerDomainModel{},
		&DailySnapshotModel{},
		&RunLeaseModel{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return postMigrate(ctx, db)
}

// postMigrate creates the materialized views the web layer reads. Each view
// gets a unique index because REFRESH ... CONCURRENTLY requires one.
// PostgreSQL only: SQLite has no materialized views, and the SQLite path is
// for tests and local development where the web layer is not served.
func postMigrate(ctx context.Context, db database.Database) error {
	if !db.IsPostgres() {
		return nil
	}

	gdb := db.Session(ctx)

	statements := []string{
		`CREATE MATERIALIZED VIEW IF NOT EXISTS publisher_list_view AS
			SELECT s.seller_id,
			       s.name,
			       s.domain,
			       s.seller_type,
			       s.is_confidential,
			       s.adsense_check_status,
			       COUNT(sd.id) AS verified_domain_count
			FROM sellers s
			LEFT JOIN seller_domains sd ON sd.seller_id = s.seller_id
			GROUP BY s.seller_id, s.name, s.domain, s.seller_type,
			         s.is_confidential, s.adsense_check_status`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_publisher_list_view_seller_id
			ON publisher_list_view (seller_id)`,

		`CREATE MATERIALIZED VIEW IF NOT EXISTS domain_aggregation_view AS
			SELECT sd.domain,
			       COUNT(DISTINCT sd.seller_id) AS seller_count,
			       MAX(sd.confidence_score) AS max_confidence,
			       MIN(sd.first_detected_at) AS first_detected_at
			FROM seller_domains sd
			GROUP BY sd.domain`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_domain_aggregation_view_domain
			ON domain_aggregation_view (domain)`,

		`CREATE MATERIALIZED VIEW IF NOT EXISTS tld_aggregation_view AS
			SELECT reverse(split_part(reverse(sd.domain), '.', 1)) AS tld,
			       COUNT(DISTINCT sd.seller_id) AS seller_count,
			       COUNT(DISTINCT sd.domain) AS domain_count
			FROM seller_domains sd
			WHERE sd.domain <> ''
			GROUP BY 1`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_tld_aggregation_view_tld
			ON tld_aggregation_view (tld)`,
	}

	for _, stmt := range statements {
		if err := gdb.Exec(stmt).Error; err != nil {
			return fmt.Errorf("post migrate: %w", err)
		}
	}
	return nil
}

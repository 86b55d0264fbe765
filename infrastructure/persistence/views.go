package persistence

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/publisherradar/sellersync/internal/database"
)

// aggregateViews lists the materialized views in refresh order. The views
// have no dependencies on each other, so the order is fixed only for
// predictable logs.
var aggregateViews = []string{
	"publisher_list_view",
	"domain_aggregation_view",
	"tld_aggregation_view",
}

// ViewRefresher rebuilds the aggregate materialized views after write
// batches so web-layer reads stay within an acceptable staleness window.
type ViewRefresher struct {
	db database.Database
}

// NewViewRefresher creates a ViewRefresher.
func NewViewRefresher(db database.Database) ViewRefresher {
	return ViewRefresher{db: db}
}

// RefreshAll refreshes every aggregate view in order. Refreshes run
// CONCURRENTLY so readers are never blocked. Each view is best-effort: a
// failed refresh is logged and the remaining views still run.
func (r ViewRefresher) RefreshAll(ctx context.Context) {
	if !r.db.IsPostgres() {
		slog.Debug("materialized view refresh skipped: not postgres")
		return
	}

	for _, view := range aggregateViews {
		start := time.Now()
		err := r.db.Session(ctx).Exec(
			fmt.Sprintf("REFRESH MATERIALIZED VIEW CONCURRENTLY %s", view),
		).Error
		if err != nil {
			slog.Warn("materialized view refresh failed",
				"view", view,
				"error", err,
			)
			continue
		}
		slog.Info("materialized view refreshed",
			"view", view,
			"duration", time.Since(start),
		)
	}
}

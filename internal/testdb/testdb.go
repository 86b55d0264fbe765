// Package testdb builds throwaway in-memory SQLite databases for tests.
package testdb

import (
	"testing"

	"github.com/publisherradar/sellersync/infrastructure/persistence"
	"github.com/publisherradar/sellersync/internal/database"
	"github.com/stretchr/testify/require"
)

// New opens an in-memory SQLite database with the full schema migrated.
// It is closed automatically when the test finishes.
func New(t *testing.T) database.Database {
	t.Helper()

	ctx := t.Context()
	db, err := database.NewDatabase(ctx, "sqlite:///:memory:")
	require.NoError(t, err, "open test database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, persistence.AutoMigrate(ctx, db), "migrate test database")
	return db
}

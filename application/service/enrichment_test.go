package service_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/publisherradar/sellersync/application/service"
	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/publisherradar/sellersync/infrastructure/adsense"
	"github.com/publisherradar/sellersync/infrastructure/persistence"
	"github.com/publisherradar/sellersync/internal/database"
	"github.com/publisherradar/sellersync/internal/testdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	outcomes map[string]adsense.Outcome
	err      error
}

func (f *fakeFetcher) GetDomains(_ context.Context, sellerID string) (adsense.Outcome, error) {
	if f.err != nil {
		return adsense.Outcome{}, f.err
	}
	outcome, ok := f.outcomes[sellerID]
	if !ok {
		return adsense.Outcome{Kind: adsense.OutcomeNotFound, StatusCode: http.StatusNotFound}, nil
	}
	return outcome, nil
}

func newEnrichment(t *testing.T, db database.Database, fetcher service.DomainFetcher) *service.Enrichment {
	t.Helper()
	return service.NewEnrichment(
		persistence.NewSellerStore(db),
		persistence.NewDomainStore(db),
		persistence.NewViewRefresher(db),
		fetcher,
		service.NewCheckpoint(filepath.Join(t.TempDir(), "checkpoint.json")),
	)
}

func seed(t *testing.T, db database.Database, ids ...string) persistence.SellerStore {
	t.Helper()
	store := persistence.NewSellerStore(db)
	sellers := make([]seller.Seller, len(ids))
	for i, id := range ids {
		sellers[i] = seller.Seller{SellerID: id}
	}
	_, err := store.InsertNew(context.Background(), sellers)
	require.NoError(t, err)
	return store
}

func TestEnrichment_DiscoversDomains(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := seed(t, db, "X")

	fetcher := &fakeFetcher{outcomes: map[string]adsense.Outcome{
		"X": {Kind: adsense.OutcomeSuccess, Domains: []string{"foo.com", "bar.com"}},
	}}

	stats, err := newEnrichment(t, db, fetcher).Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
	})
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 2, stats.NewDomains)

	domains, err := persistence.NewDomainStore(db).FindBySeller(ctx, "X")
	require.NoError(t, err)
	require.Len(t, domains, 2)
	for _, d := range domains {
		assert.Equal(t, seller.SourceAdsenseAPI, d.DetectionSource)
		assert.Equal(t, seller.ConfidenceDiscovered, d.ConfidenceScore)
	}

	sellers, err := store.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, seller.StatusSuccess, sellers[0].Status)
	assert.Equal(t, 2, sellers[0].DomainCount)
	assert.True(t, sellers[0].Checked)
}

func TestEnrichment_ConfirmsRegistryDeclared(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	seed(t, db, "Y")

	declared := persistence.SellerDomainModel{
		SellerID:        "Y",
		Domain:          "foo.com",
		DetectionSource: string(seller.SourceSellersJSON),
		ConfidenceScore: seller.ConfidenceDeclared,
		FirstDetectedAt: time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	require.NoError(t, db.Session(ctx).Create(&declared).Error)

	fetcher := &fakeFetcher{outcomes: map[string]adsense.Outcome{
		"Y": {Kind: adsense.OutcomeSuccess, Domains: []string{"foo.com"}},
	}}

	stats, err := newEnrichment(t, db, fetcher).Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.VerifiedDomains)
	assert.Equal(t, 0, stats.NewDomains)

	domains, err := persistence.NewDomainStore(db).FindBySeller(ctx, "Y")
	require.NoError(t, err)
	require.Len(t, domains, 1, "rediscovery must not duplicate the row")
	assert.Equal(t, seller.SourceBoth, domains[0].DetectionSource)
	assert.Equal(t, seller.ConfidenceConfirmed, domains[0].ConfidenceScore)
}

func TestEnrichment_NotFound(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := seed(t, db, "Z")

	fetcher := &fakeFetcher{outcomes: map[string]adsense.Outcome{
		"Z": {Kind: adsense.OutcomeNotFound, StatusCode: http.StatusNotFound},
	}}

	stats, err := newEnrichment(t, db, fetcher).Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotFound)

	sellers, err := store.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, seller.StatusNotFound, sellers[0].Status)
	assert.True(t, sellers[0].Checked)

	domains, err := persistence.NewDomainStore(db).FindBySeller(ctx, "Z")
	require.NoError(t, err)
	assert.Empty(t, domains)
}

func TestEnrichment_ZeroDomainsReportsNotFound(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := seed(t, db, "E")

	fetcher := &fakeFetcher{outcomes: map[string]adsense.Outcome{
		"E": {Kind: adsense.OutcomeSuccess, Domains: []string{}},
	}}

	stats, err := newEnrichment(t, db, fetcher).Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 0, stats.Successful)

	sellers, err := store.Find(ctx)
	require.NoError(t, err)
	assert.Equal(t, seller.StatusNotFound, sellers[0].Status)
}

func TestEnrichment_TerminalErrorIsCountedSeparately(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := seed(t, db, "F", "G")

	fetcher := &fakeFetcher{outcomes: map[string]adsense.Outcome{
		"F": {Kind: adsense.OutcomeError, StatusCode: http.StatusServiceUnavailable, Message: "server error"},
		"G": {Kind: adsense.OutcomeSuccess, Domains: []string{"ok.com"}},
	}}

	stats, err := newEnrichment(t, db, fetcher).Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
	})
	require.NoError(t, err, "a per-seller error never aborts the run")
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 1, stats.Errors)
	assert.Equal(t, 1, stats.Successful)

	sellers, err := store.Find(ctx)
	require.NoError(t, err)
	byID := map[string]seller.Seller{}
	for _, s := range sellers {
		byID[s.SellerID] = s
	}
	assert.Equal(t, seller.StatusError, byID["F"].Status)
	assert.Contains(t, byID["F"].ErrorMessage, "503")
	assert.Equal(t, seller.StatusSuccess, byID["G"].Status)
}

func TestEnrichment_DryRunWritesNothing(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	store := seed(t, db, "X")

	fetcher := &fakeFetcher{outcomes: map[string]adsense.Outcome{
		"X": {Kind: adsense.OutcomeSuccess, Domains: []string{"foo.com"}},
	}}

	checkpointPath := filepath.Join(t.TempDir(), "checkpoint.json")
	driver := service.NewEnrichment(
		store,
		persistence.NewDomainStore(db),
		persistence.NewViewRefresher(db),
		fetcher,
		service.NewCheckpoint(checkpointPath),
	)

	stats, err := driver.Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
		DryRun:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Successful, "classification still runs")

	domains, err := persistence.NewDomainStore(db).FindBySeller(ctx, "X")
	require.NoError(t, err)
	assert.Empty(t, domains)

	sellers, err := store.Find(ctx)
	require.NoError(t, err)
	assert.False(t, sellers[0].Checked)
	assert.Equal(t, seller.StatusUnset, sellers[0].Status)

	_, err = os.Stat(checkpointPath)
	assert.True(t, os.IsNotExist(err), "dry run writes no checkpoint")
}

func TestEnrichment_ContextCancelledBetweenSellers(t *testing.T) {
	db := testdb.New(t)
	seed(t, db, "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{}
	stats, err := newEnrichment(t, db, fetcher).Run(ctx, service.EnrichmentOptions{
		Selection: seller.Selection{Mode: seller.ModeFillMissing},
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, stats.Processed)
}

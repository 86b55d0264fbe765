package seller_test

import (
	"testing"

	"github.com/publisherradar/sellersync/domain/seller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(sellers []seller.Seller) []string {
	out := make([]string, len(sellers))
	for i, s := range sellers {
		out[i] = s.SellerID
	}
	return out
}

func TestDetectChanges_Partitions(t *testing.T) {
	fetched := []seller.Seller{
		{SellerID: "A"},
		{SellerID: "B"},
		{SellerID: "C"},
	}
	current := map[string]struct{}{
		"B": {},
		"C": {},
		"D": {},
	}

	cs := seller.DetectChanges(fetched, current)

	assert.Equal(t, []string{"A"}, ids(cs.New))
	assert.ElementsMatch(t, []string{"B", "C"}, ids(cs.Updated))
	assert.Equal(t, []string{"D"}, cs.RemovedIDs)
}

func TestDetectChanges_Disjoint(t *testing.T) {
	fetched := []seller.Seller{
		{SellerID: "1"}, {SellerID: "2"}, {SellerID: "3"}, {SellerID: "4"},
	}
	current := map[string]struct{}{
		"3": {}, "4": {}, "5": {}, "6": {},
	}

	cs := seller.DetectChanges(fetched, current)

	seen := map[string]int{}
	for _, id := range ids(cs.New) {
		seen[id]++
	}
	for _, id := range ids(cs.Updated) {
		seen[id]++
	}
	for _, id := range cs.RemovedIDs {
		seen[id]++
	}

	require.Len(t, seen, 6, "every identifier on either side is covered")
	for id, n := range seen {
		assert.Equal(t, 1, n, "identifier %s must appear in exactly one partition", id)
	}
}

func TestDetectChanges_EmptyStore(t *testing.T) {
	fetched := []seller.Seller{{SellerID: "A"}, {SellerID: "B"}}

	cs := seller.DetectChanges(fetched, map[string]struct{}{})

	assert.Len(t, cs.New, 2)
	assert.Empty(t, cs.Updated)
	assert.Empty(t, cs.RemovedIDs)
}

func TestDetectChanges_EmptySnapshot(t *testing.T) {
	cs := seller.DetectChanges(nil, map[string]struct{}{"A": {}})

	assert.Empty(t, cs.New)
	assert.Empty(t, cs.Updated)
	assert.Equal(t, []string{"A"}, cs.RemovedIDs)
}

func TestFieldsEqual_IgnoresEnrichmentFields(t *testing.T) {
	a := seller.Seller{SellerID: "A", SellerType: seller.TypePublisher, Name: "Acme", Domain: "acme.com"}
	b := a
	b.Checked = true
	b.Status = seller.StatusSuccess
	b.DomainCount = 3

	assert.True(t, a.FieldsEqual(b))

	b.Name = "Acme Media"
	assert.False(t, a.FieldsEqual(b))
}

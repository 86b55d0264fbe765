package seller

import (
	"context"
	"time"
)

// Mode selects which sellers an enrichment run processes.
type Mode string

const (
	// ModeFillMissing processes sellers that have never been checked.
	ModeFillMissing Mode = "fill-missing"
	// ModeVerifyExisting re-processes sellers that were checked before.
	ModeVerifyExisting Mode = "verify-existing"
	// ModeAll processes every seller.
	ModeAll Mode = "all"
)

// ValidMode reports whether m is a recognized enrichment mode.
func ValidMode(m Mode) bool {
	switch m {
	case ModeFillMissing, ModeVerifyExisting, ModeAll:
		return true
	}
	return false
}

// Selection describes which sellers an enrichment run should pick up.
type Selection struct {
	Mode Mode
	// Limit caps the number of sellers selected. 0 means no cap.
	Limit int
	// Resume skips sellers already terminally classified (success or
	// not_found) so an interrupted run can continue where it stopped.
	Resume bool
}

// AssociationWrite reports how a domain upsert resolved.
type AssociationWrite int

const (
	// AssociationNew means a fresh association row was inserted.
	AssociationNew AssociationWrite = iota
	// AssociationVerified means an existing row was upgraded or refreshed.
	AssociationVerified
)

// Store persists sellers and supports the bulk sync operations.
type Store interface {
	// CurrentIDs returns the set of all stored seller identifiers.
	CurrentIDs(ctx context.Context) (map[string]struct{}, error)

	// InsertNew bulk-inserts sellers, ignoring identifier conflicts.
	// Returns the number of rows actually inserted.
	InsertNew(ctx context.Context, sellers []Seller) (int64, error)

	// UpdateChanged applies registry-side field changes for sellers present
	// on both sides, touching only rows where at least one field differs.
	UpdateChanged(ctx context.Context, sellers []Seller) error

	// MarkRemoved touches the last-updated timestamp of sellers that
	// disappeared from the registry. Rows are never deleted.
	MarkRemoved(ctx context.Context, ids []string) error

	// Total returns the total number of stored sellers.
	Total(ctx context.Context) (int64, error)

	// SellersDue returns the sellers an enrichment run should process,
	// ordered by identifier.
	SellersDue(ctx context.Context, sel Selection) ([]Seller, error)

	// UpdateEnrichmentStatus writes a seller's enrichment outcome.
	UpdateEnrichmentStatus(ctx context.Context, sellerID string, result EnrichmentResult) error
}

// DomainStore persists seller-domain associations.
type DomainStore interface {
	// Upsert records that a domain was discovered for a seller via the
	// enrichment API, applying the confidence upgrade policy.
	Upsert(ctx context.Context, sellerID, domain string, now time.Time) (AssociationWrite, error)

	// ImportDeclared seeds associations from the domains sellers declare in
	// the registry manifest, leaving existing pairs untouched. Returns the
	// number of rows inserted.
	ImportDeclared(ctx context.Context, sellers []Seller, now time.Time) (int64, error)

	// FindBySeller returns all associations for a seller.
	FindBySeller(ctx context.Context, sellerID string) ([]SellerDomain, error)
}

// SnapshotStore persists daily aggregate snapshots.
type SnapshotStore interface {
	// Upsert writes the snapshot for its date, replacing any existing row
	// for the same date.
	Upsert(ctx context.Context, snapshot DailySnapshot) error
}

// ViewRefresher rebuilds the derived aggregate views after a write batch.
type ViewRefresher interface {
	// RefreshAll refreshes every aggregate view in a fixed order. Each view
	// is independent; a failed refresh is logged and does not stop the rest.
	RefreshAll(ctx context.Context)
}

// LeaseStore coordinates exclusive pipeline runs against a shared store.
type LeaseStore interface {
	// Acquire takes the named lease for owner until now+ttl. A lease held
	// past its expiry is considered stale and is taken over. Returns false
	// if another live owner holds the lease.
	Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)

	// Release frees the named lease if owner still holds it.
	Release(ctx context.Context, name, owner string) error
}

// Package seller holds the domain model for the publisher directory: sellers
// sourced from the external registry, their verified domain associations,
// daily aggregate snapshots, and the change-detection logic that drives the
// sync pipeline.
package seller

import "time"

// SellerType classifies the seller's role in the registry.
type SellerType string

const (
	// TypePublisher is a seller that publishes its own inventory.
	TypePublisher SellerType = "PUBLISHER"
	// TypeBoth is a seller acting as both publisher and intermediary.
	TypeBoth SellerType = "BOTH"
)

// EnrichmentStatus tracks where a seller is in the enrichment state machine.
type EnrichmentStatus string

const (
	// StatusUnset means the seller has never entered enrichment.
	StatusUnset EnrichmentStatus = ""
	// StatusPending means the seller is queued for enrichment.
	StatusPending EnrichmentStatus = "pending"
	// StatusSuccess means the enrichment lookup returned at least one domain.
	StatusSuccess EnrichmentStatus = "success"
	// StatusNotFound means the lookup found no domain data for the seller.
	StatusNotFound EnrichmentStatus = "not_found"
	// StatusError means the lookup terminally failed.
	StatusError EnrichmentStatus = "error"
)

// Seller is a registered party in the external registry. The SellerID is
// assigned by the registry, is unique, and is never reused. FirstSeenAt is
// set once at insert and never changes afterwards.
type Seller struct {
	SellerID       string
	SellerType     SellerType
	IsConfidential bool
	Name           string
	Domain         string

	FirstSeenAt time.Time
	UpdatedAt   time.Time

	Checked      bool
	LastCheckAt  *time.Time
	Status       EnrichmentStatus
	DomainCount  int
	ErrorMessage string
}

// FieldsEqual reports whether the registry-sourced fields of two sellers
// match. Enrichment fields and timestamps are deliberately excluded: only a
// registry-side change should trigger an update.
func (s Seller) FieldsEqual(other Seller) bool {
	return s.SellerType == other.SellerType &&
		s.IsConfidential == other.IsConfidential &&
		s.Name == other.Name &&
		s.Domain == other.Domain
}

// EnrichmentResult captures the outcome of one enrichment pass over a seller,
// to be written back as its new status.
type EnrichmentResult struct {
	Status       EnrichmentStatus
	DomainCount  int
	ErrorMessage string
	CheckedAt    time.Time
}

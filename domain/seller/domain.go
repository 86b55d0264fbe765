package seller

import "time"

// DetectionSource records how a seller-domain association was discovered.
type DetectionSource string

const (
	// SourceSellersJSON marks a domain declared in the registry manifest.
	SourceSellersJSON DetectionSource = "sellers_json"
	// SourceAdsenseAPI marks a domain discovered through the enrichment API.
	SourceAdsenseAPI DetectionSource = "adsense_api"
	// SourceBoth marks a domain confirmed by both the registry and the
	// enrichment API. Terminal: a source never downgrades from here.
	SourceBoth DetectionSource = "both"
)

// Confidence policy for associations. Scores only ever increase.
const (
	// ConfidenceDeclared is assigned to domains imported from the registry.
	ConfidenceDeclared = 1.0
	// ConfidenceDiscovered is assigned to domains the enrichment API found
	// that the registry did not declare.
	ConfidenceDiscovered = 0.95
	// ConfidenceConfirmed is assigned once registry and enrichment agree.
	ConfidenceConfirmed = 1.0
)

// SellerDomain associates a seller with a domain it operates. The
// (SellerID, Domain) pair is unique.
type SellerDomain struct {
	ID              int64
	SellerID        string
	Domain          string
	DetectionSource DetectionSource
	ConfidenceScore float64
	FirstDetectedAt time.Time
	UpdatedAt       time.Time
}

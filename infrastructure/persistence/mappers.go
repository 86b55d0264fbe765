package persistence

import (
	"time"

	"github.com/publisherradar/sellersync/domain/seller"
)

// snapshotDateFormat is the canonical encoding of a snapshot's calendar date.
const snapshotDateFormat = "2006-01-02"

// SellerMapper maps between domain Seller and persistence SellerModel.
type SellerMapper struct{}

// ToDomain converts a SellerModel to a domain Seller.
func (m SellerMapper) ToDomain(e SellerModel) seller.Seller {
	return seller.Seller{
		SellerID:       e.SellerID,
		SellerType:     seller.SellerType(e.SellerType),
		IsConfidential: e.IsConfidential,
		Name:           e.Name,
		Domain:         e.Domain,
		FirstSeenAt:    e.FirstSeenAt,
		UpdatedAt:      e.UpdatedAt,
		Checked:        e.AdsenseAPIChecked,
		LastCheckAt:    e.AdsenseLastCheck,
		Status:         seller.EnrichmentStatus(e.AdsenseCheckStatus),
		DomainCount:    e.AdsenseDomainCount,
		ErrorMessage:   e.AdsenseErrorMessage,
	}
}

// ToModel converts a domain Seller to a SellerModel.
func (m SellerMapper) ToModel(s seller.Seller) SellerModel {
	return SellerModel{
		SellerID:            s.SellerID,
		SellerType:          string(s.SellerType),
		IsConfidential:      s.IsConfidential,
		Name:                s.Name,
		Domain:              s.Domain,
		FirstSeenAt:         s.FirstSeenAt,
		UpdatedAt:           s.UpdatedAt,
		AdsenseAPIChecked:   s.Checked,
		AdsenseLastCheck:    s.LastCheckAt,
		AdsenseCheckStatus:  string(s.Status),
		AdsenseDomainCount:  s.DomainCount,
		AdsenseErrorMessage: s.ErrorMessage,
	}
}

// SellerDomainMapper maps between domain SellerDomain and SellerDomainModel.
type SellerDomainMapper struct{}

// ToDomain converts a SellerDomainModel to a domain SellerDomain.
func (m SellerDomainMapper) ToDomain(e SellerDomainModel) seller.SellerDomain {
	return seller.SellerDomain{
		ID:              e.ID,
		SellerID:        e.SellerID,
		Domain:          e.Domain,
		DetectionSource: seller.DetectionSource(e.DetectionSource),
		ConfidenceScore: e.ConfidenceScore,
		FirstDetectedAt: e.FirstDetectedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

// ToModel converts a domain SellerDomain to a SellerDomainModel.
func (m SellerDomainMapper) ToModel(d seller.SellerDomain) SellerDomainModel {
	return SellerDomainModel{
		ID:              d.ID,
		SellerID:        d.SellerID,
		Domain:          d.Domain,
		DetectionSource: string(d.DetectionSource),
		ConfidenceScore: d.ConfidenceScore,
		FirstDetectedAt: d.FirstDetectedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// SnapshotMapper maps between domain DailySnapshot and DailySnapshotModel.
type SnapshotMapper struct{}

// ToDomain converts a DailySnapshotModel to a domain DailySnapshot.
func (m SnapshotMapper) ToDomain(e DailySnapshotModel) seller.DailySnapshot {
	date, _ := time.Parse(snapshotDateFormat, e.SnapshotDate)
	return seller.DailySnapshot{
		SnapshotDate: date,
		TotalCount:   e.TotalCount,
		NewCount:     e.NewCount,
		RemovedCount: e.RemovedCount,
	}
}

// ToModel converts a domain DailySnapshot to a DailySnapshotModel.
func (m SnapshotMapper) ToModel(s seller.DailySnapshot) DailySnapshotModel {
	return DailySnapshotModel{
		SnapshotDate: s.SnapshotDate.Format(snapshotDateFormat),
		TotalCount:   s.TotalCount,
		NewCount:     s.NewCount,
		RemovedCount: s.RemovedCount,
	}
}

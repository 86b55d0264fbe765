package persistence

import "time"

// SellerModel represents a registry seller in the database.
type SellerModel struct {
	SellerID       string    `gorm:"column:seller_id;primaryKey;size:64"`
	SellerType     string    `gorm:"column:seller_type;index;size:32"`
	IsConfidential bool      `gorm:"column:is_confidential;default:false"`
	Name           string    `gorm:"column:name;size:512"`
	Domain         string    `gorm:"column:domain;index;size:255"`
	FirstSeenAt    time.Time `gorm:"column:first_seen_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime:false"`

	AdsenseAPIChecked   bool       `gorm:"column:adsense_api_checked;index;default:false"`
	AdsenseLastCheck    *time.Time `gorm:"column:adsense_last_check"`
	AdsenseCheckStatus  string     `gorm:"column:adsense_check_status;index;size:32"`
	AdsenseDomainCount  int        `gorm:"column:adsense_domain_count;default:0"`
	AdsenseErrorMessage string     `gorm:"column:adsense_error_message;type:text"`
}

// TableName returns the table name.
func (SellerModel) TableName() string {
	return "sellers"
}

// SellerDomainModel represents a seller-domain association in the database.
type SellerDomainModel struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	SellerID        string    `gorm:"column:seller_id;index;uniqueIndex:idx_seller_domain;size:64"`
	Domain          string    `gorm:"column:domain;index;uniqueIndex:idx_seller_domain;size:255"`
	DetectionSource string    `gorm:"column:detection_source;size:32"`
	ConfidenceScore float64   `gorm:"column:confidence_score"`
	FirstDetectedAt time.Time `gorm:"column:first_detected_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName returns the table name.
func (SellerDomainModel) TableName() string {
	return "seller_domains"
}

// DailySnapshotModel records aggregate counts for one calendar date.
// The date is stored as YYYY-MM-DD text so the primary key compares the
// same way on every engine.
type DailySnapshotModel struct {
	SnapshotDate string    `gorm:"column:snapshot_date;primaryKey;size:10"`
	TotalCount   int64     `gorm:"column:total_count"`
	NewCount     int64     `gorm:"column:new_count"`
	RemovedCount int64     `gorm:"column:removed_count"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName returns the table name.
func (DailySnapshotModel) TableName() string {
	return "daily_snapshots"
}

// RunLeaseModel coordinates exclusive pipeline runs.
type RunLeaseModel struct {
	Name      string    `gorm:"column:name;primaryKey;size:64"`
	Owner     string    `gorm:"column:owner;size:128"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName returns the table name.
func (RunLeaseModel) TableName() string {
	return "run_leases"
}

// stagingSellerModel is the transaction-scoped staging table used by the
// bulk conditional update. It carries only the registry-sourced fields.
type stagingSellerModel struct {
	SellerID       string `gorm:"column:seller_id;size:64"`
	SellerType     string `gorm:"column:seller_type;size:32"`
	IsConfidential bool   `gorm:"column:is_confidential"`
	Name           string `gorm:"column:name;size:512"`
	Domain         string `gorm:"column:domain;size:255"`
}

// TableName returns the table name.
func (stagingSellerModel) TableName() string {
	return "staging_sellers"
}

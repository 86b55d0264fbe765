package repository

// WithSellerID filters by the "seller_id" column.
func WithSellerID(id string) Option {
	return WithCondition("seller_id", id)
}

// WithSellerIDIn filters by the "seller_id" column using IN.
func WithSellerIDIn(ids []string) Option {
	return WithConditionIn("seller_id", ids)
}

// WithEnrichmentStatus filters by the "adsense_check_status" column.
func WithEnrichmentStatus(status string) Option {
	return WithCondition("adsense_check_status", status)
}

// WithUnchecked filters sellers that have never been through enrichment.
func WithUnchecked() Option {
	return WithWhere("(adsense_api_checked IS NULL OR adsense_api_checked = ?)", false)
}

// WithChecked filters sellers that have been through enrichment at least once.
func WithChecked() Option {
	return WithCondition("adsense_api_checked", true)
}

// WithEnrichmentIncomplete filters sellers not yet terminally classified,
// so a resumed run skips everything already settled.
func WithEnrichmentIncomplete() Option {
	return WithWhere(
		"(adsense_check_status IS NULL OR adsense_check_status NOT IN ?)",
		[]string{"success", "not_found"},
	)
}

// WithDomain filters by the "domain" column.
func WithDomain(domain string) Option {
	return WithCondition("domain", domain)
}

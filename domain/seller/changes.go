package seller

// ChangeSet partitions a freshly fetched registry snapshot against the
// identifiers currently stored. The three partitions are disjoint and
// together cover every identifier seen on either side.
type ChangeSet struct {
	// New are sellers present in the registry but not in the store.
	New []Seller
	// Updated are sellers present on both sides. Membership alone does not
	// imply changed fields; the conditional update filters on actual diffs.
	Updated []Seller
	// RemovedIDs are identifiers present in the store but absent from the
	// registry.
	RemovedIDs []string
}

// DetectChanges computes the ChangeSet for a fetched registry snapshot given
// the set of seller identifiers currently in the store.
func DetectChanges(fetched []Seller, currentIDs map[string]struct{}) ChangeSet {
	fetchedIDs := make(map[string]struct{}, len(fetched))

	var cs ChangeSet
	for _, s := range fetched {
		fetchedIDs[s.SellerID] = struct{}{}
		if _, ok := currentIDs[s.SellerID]; ok {
			cs.Updated = append(cs.Updated, s)
		} else {
			cs.New = append(cs.New, s)
		}
	}

	for id := range currentIDs {
		if _, ok := fetchedIDs[id]; !ok {
			cs.RemovedIDs = append(cs.RemovedIDs, id)
		}
	}

	return cs
}

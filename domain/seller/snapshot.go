package seller

import "time"

// DailySnapshot records aggregate counts for one calendar date. At most one
// snapshot exists per date; a same-day rerun overwrites the earlier row.
type DailySnapshot struct {
	SnapshotDate time.Time
	TotalCount   int64
	NewCount     int64
	RemovedCount int64
}

// Package service wires the pipeline: the daily sync orchestrator, the
// enrichment driver, checkpointing, cache revalidation, and scheduling.
package service

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Checkpoint persists cumulative run counters to a JSON file so an operator
// can observe a long-running enrichment without attaching to the process.
// The file is overwritten in place; it is never read back by the pipeline —
// which sellers still need enrichment is always re-derived from their
// persisted status fields.
type Checkpoint struct {
	path string
}

// NewCheckpoint creates a Checkpoint writing to the given path.
func NewCheckpoint(path string) Checkpoint {
	return Checkpoint{path: path}
}

// checkpointRecord is the on-disk shape of one checkpoint.
type checkpointRecord struct {
	Timestamp       time.Time `json:"timestamp"`
	Processed       int       `json:"processed"`
	Successful      int       `json:"successful"`
	NotFound        int       `json:"not_found"`
	Errors          int       `json:"errors"`
	NewDomains      int       `json:"new_domains"`
	VerifiedDomains int       `json:"verified_domains"`
}

// Write overwrites the checkpoint file with the current counters.
func (c Checkpoint) Write(stats EnrichmentStats) error {
	record := checkpointRecord{
		Timestamp:       time.Now().UTC(),
		Processed:       stats.Processed,
		Successful:      stats.Successful,
		NotFound:        stats.NotFound,
		Errors:          stats.Errors,
		NewDomains:      stats.NewDomains,
		VerifiedDomains: stats.VerifiedDomains,
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// maxIndividualRevalidations caps how many per-publisher cache keys get
// revalidated individually; above that the list-level revalidations cover it.
const maxIndividualRevalidations = 100

// Revalidator notifies the web layer that cached pages should be rebuilt
// after a sync run. Every notification is fire-and-forget: failures are
// logged and never fail the run.
type Revalidator struct {
	siteURL    string
	secret     string
	httpClient *http.Client
}

// NewRevalidator creates a Revalidator. An empty site URL or secret leaves
// it unconfigured, in which case NotifyAll is a logged no-op.
func NewRevalidator(siteURL, secret string) *Revalidator {
	return &Revalidator{
		siteURL:    siteURL,
		secret:     secret,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether notifications will actually be sent.
func (r *Revalidator) Configured() bool {
	return r.siteURL != "" && r.secret != ""
}

// NotifyAll revalidates the home and publisher caches, plus individual
// publisher pages when the new-publisher set is small enough to enumerate.
// The endpoint only accepts the types publisher, domain, tld, home, and all;
// a "publisher" notification without ids means the whole publisher listing.
func (r *Revalidator) NotifyAll(ctx context.Context, newIDs []string) {
	if !r.Configured() {
		slog.Debug("cache revalidation skipped: not configured")
		return
	}

	r.notify(ctx, "home", nil)
	r.notify(ctx, "publisher", nil)

	if len(newIDs) >= 1 && len(newIDs) <= maxIndividualRevalidations {
		r.notify(ctx, "publisher", newIDs)
	}
}

func (r *Revalidator) notify(ctx context.Context, kind string, ids []string) {
	payload := map[string]any{
		"secret": r.secret,
		"type":   kind,
	}
	if len(ids) > 0 {
		payload["ids"] = ids
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Warn("cache revalidation failed", "type", kind, "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/revalidate", r.siteURL), bytes.NewReader(body))
	if err != nil {
		slog.Warn("cache revalidation failed", "type", kind, "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		slog.Warn("cache revalidation failed", "type", kind, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Warn("cache revalidation rejected", "type", kind, "status", resp.StatusCode)
		return
	}
	slog.Info("cache revalidated", "type", kind, "ids", len(ids))
}

// Package adsense implements the client for the enrichment API: a bearer
// authenticated per-seller lookup that returns the domains an advertising
// account is known to operate.
package adsense

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/publisherradar/sellersync/internal/config"
	"github.com/publisherradar/sellersync/internal/ratelimit"
)

// ErrMissingAPIKey indicates the enrichment API credential is not configured.
var ErrMissingAPIKey = errors.New("enrichment api key not configured")

// ErrMissingBaseURL indicates the enrichment API URL is not configured.
var ErrMissingBaseURL = errors.New("enrichment api url not configured")

// maxErrorBody caps how much of an error response body gets captured into
// the outcome message.
const maxErrorBody = 512

// OutcomeKind is the terminal classification of one lookup.
type OutcomeKind int

const (
	// OutcomeSuccess means the lookup returned a (possibly empty) domain list.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeNotFound means the API has no record of the seller.
	OutcomeNotFound
	// OutcomeError means the lookup terminally failed. StatusCode carries
	// the HTTP status, or 0 when the transport itself failed.
	OutcomeError
)

// Outcome is the result of one domain lookup.
type Outcome struct {
	Kind       OutcomeKind
	Domains    []string
	StatusCode int
	Message    string
}

// domainsEnvelope is the wire shape of a successful lookup. The pointer
// distinguishes a missing field (malformed response) from an empty list.
type domainsEnvelope struct {
	Domains *[]string `json:"domains"`
}

// Client calls the enrichment API with rate limiting and retries.
type Client struct {
	baseURL    string
	apiKey     string
	maxRetries int
	httpClient *http.Client
	limiter    *ratelimit.Limiter
	backoff    *ratelimit.Backoff
}

// NewClient creates an enrichment client from endpoint configuration. The
// rate limiter and backoff are injected so that callers sharing one request
// budget pass the same limiter instance. Missing credentials fail here, at
// first use, rather than deep inside a run.
func NewClient(endpoint config.Endpoint, limiter *ratelimit.Limiter, backoff *ratelimit.Backoff) (*Client, error) {
	if endpoint.BaseURL() == "" {
		return nil, ErrMissingBaseURL
	}
	if endpoint.APIKey() == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		baseURL:    endpoint.BaseURL(),
		apiKey:     endpoint.APIKey(),
		maxRetries: endpoint.MaxRetries(),
		httpClient: &http.Client{Timeout: endpoint.Timeout()},
		limiter:    limiter,
		backoff:    backoff,
	}, nil
}

// GetDomains looks up the domains for one seller. Terminal classifications
// (not found, server error, malformed response) are reported in the Outcome;
// the error return is reserved for context cancellation.
func (c *Client) GetDomains(ctx context.Context, sellerID string) (Outcome, error) {
	attempt := 0
	for {
		if err := c.limiter.Acquire(ctx); err != nil {
			return Outcome{}, err
		}

		outcome, retry, err := c.doRequest(ctx, sellerID, attempt)
		if err != nil {
			return Outcome{}, err
		}
		if !retry {
			return outcome, nil
		}
		attempt++
	}
}

// doRequest performs a single HTTP attempt. retry=true means the caller
// should loop again; the sleep for the retry has already happened.
func (c *Client) doRequest(ctx context.Context, sellerID string, attempt int) (Outcome, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/domains/%s", c.baseURL, sellerID), nil)
	if err != nil {
		return Outcome{Kind: OutcomeError, Message: err.Error()}, false, nil
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Outcome{}, false, ctx.Err()
		}
		// Transport failure. StatusCode 0 distinguishes it from an HTTP
		// error once retries are exhausted.
		if attempt >= c.maxRetries {
			return Outcome{Kind: OutcomeError, StatusCode: 0, Message: err.Error()}, false, nil
		}
		if werr := c.backoff.Wait(ctx, attempt); werr != nil {
			return Outcome{}, false, werr
		}
		return Outcome{}, true, nil
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return c.parseSuccess(resp), false, nil

	case resp.StatusCode == http.StatusNotFound:
		return Outcome{Kind: OutcomeNotFound, StatusCode: resp.StatusCode}, false, nil

	case resp.StatusCode == http.StatusTooManyRequests:
		// Rate limited: always retried, preferring the server's hint.
		// Does not consume the transient-failure retry budget.
		delay := retryAfterDelay(resp)
		if delay > 0 {
			if werr := sleepCtx(ctx, delay); werr != nil {
				return Outcome{}, false, werr
			}
		} else if werr := c.backoff.Wait(ctx, attempt); werr != nil {
			return Outcome{}, false, werr
		}
		return Outcome{}, true, nil

	case resp.StatusCode >= 500:
		if attempt >= c.maxRetries {
			return Outcome{
				Kind:       OutcomeError,
				StatusCode: resp.StatusCode,
				Message:    fmt.Sprintf("server error after %d attempts", attempt+1),
			}, false, nil
		}
		if werr := c.backoff.Wait(ctx, attempt); werr != nil {
			return Outcome{}, false, werr
		}
		return Outcome{}, true, nil

	default:
		return Outcome{
			Kind:       OutcomeError,
			StatusCode: resp.StatusCode,
			Message:    readErrorBody(resp.Body),
		}, false, nil
	}
}

func (c *Client) parseSuccess(resp *http.Response) Outcome {
	var envelope domainsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Domains == nil {
		return Outcome{
			Kind:       OutcomeError,
			StatusCode: resp.StatusCode,
			Message:    "invalid response envelope: missing domains field",
		}
	}
	return Outcome{
		Kind:       OutcomeSuccess,
		StatusCode: resp.StatusCode,
		Domains:    *envelope.Domains,
	}
}

// BatchGetDomains looks up each seller in order, invoking onProgress after
// every lookup. Lookups are serial: pacing comes from the shared rate
// limiter, not parallel dispatch.
func (c *Client) BatchGetDomains(ctx context.Context, sellerIDs []string, onProgress func(done int, sellerID string, outcome Outcome)) (map[string]Outcome, error) {
	results := make(map[string]Outcome, len(sellerIDs))
	for i, id := range sellerIDs {
		outcome, err := c.GetDomains(ctx, id)
		if err != nil {
			return results, err
		}
		results[id] = outcome
		if onProgress != nil {
			onProgress(i+1, id, outcome)
		}
	}
	return results, nil
}

func retryAfterDelay(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	seconds, err := strconv.Atoi(header)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(body) == 0 {
		return "request failed"
	}
	return string(body)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

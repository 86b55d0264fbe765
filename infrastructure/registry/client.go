// Package registry fetches the external sellers.json manifest: one large
// JSON payload listing every registered seller.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/publisherradar/sellersync/domain/seller"
)

// ErrEmptyManifest indicates the manifest parsed but contained no sellers.
// An empty manifest would mark the entire directory as removed, so the sync
// treats it as a fetch failure.
var ErrEmptyManifest = errors.New("registry manifest contains no sellers")

// manifest is the wire shape of the sellers.json payload.
type manifest struct {
	Version string       `json:"version"`
	Sellers []wireSeller `json:"sellers"`
}

type wireSeller struct {
	SellerID       string   `json:"seller_id"`
	Name           string   `json:"name"`
	Domain         string   `json:"domain"`
	SellerType     string   `json:"seller_type"`
	IsConfidential boolFlag `json:"is_confidential"`
}

// boolFlag accepts both the numeric (0/1) and boolean encodings seen in
// published manifests.
type boolFlag bool

func (b *boolFlag) UnmarshalJSON(data []byte) error {
	switch strings.Trim(string(data), `"`) {
	case "1", "true":
		*b = true
	case "0", "false", "null":
		*b = false
	default:
		return fmt.Errorf("invalid confidential flag: %s", data)
	}
	return nil
}

// Client downloads and decodes the registry manifest.
type Client struct {
	url        string
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the HTTP client. Used by tests.
func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// NewClient creates a registry client for the given manifest URL. The
// timeout bounds the whole download; manifests run to hundreds of megabytes
// so it is much longer than a typical request timeout.
func NewClient(url string, timeout time.Duration, opts ...ClientOption) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch downloads the manifest and returns its sellers as domain entities.
// The download is a single attempt; a failed fetch aborts the whole run at
// the orchestrator level rather than retrying a multi-hundred-megabyte
// transfer.
func (c *Client) Fetch(ctx context.Context) ([]seller.Seller, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create registry request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch registry manifest: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch registry manifest: unexpected status %d", resp.StatusCode)
	}

	var m manifest
	if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode registry manifest: %w", err)
	}

	if len(m.Sellers) == 0 {
		return nil, ErrEmptyManifest
	}

	sellers := make([]seller.Seller, 0, len(m.Sellers))
	for _, w := range m.Sellers {
		if w.SellerID == "" {
			continue
		}
		sellers = append(sellers, seller.Seller{
			SellerID:       w.SellerID,
			SellerType:     seller.SellerType(strings.ToUpper(w.SellerType)),
			IsConfidential: bool(w.IsConfidential),
			Name:           w.Name,
			Domain:         strings.ToLower(w.Domain),
		})
	}
	return sellers, nil
}

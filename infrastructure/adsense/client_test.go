package adsense_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/publisherradar/sellersync/infrastructure/adsense"
	"github.com/publisherradar/sellersync/internal/config"
	"github.com/publisherradar/sellersync/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string) *adsense.Client {
	t.Helper()
	endpoint := config.NewEndpointWithOptions(
		config.WithBaseURL(baseURL),
		config.WithAPIKey("test-key"),
		config.WithMaxRetries(3),
		config.WithEndpointTimeout(5*time.Second),
	)
	limiter := ratelimit.NewLimiter(100000, 100000)
	backoff := ratelimit.NewBackoff(time.Millisecond, 5*time.Millisecond, 2.0,
		ratelimit.WithJitter(func() time.Duration { return 0 }))
	client, err := adsense.NewClient(endpoint, limiter, backoff)
	require.NoError(t, err)
	return client
}

func TestNewClient_MissingCredentials(t *testing.T) {
	limiter := ratelimit.NewLimiter(100, 100)
	backoff := ratelimit.NewBackoff(time.Second, time.Minute, 2.0)

	_, err := adsense.NewClient(config.NewEndpointWithOptions(
		config.WithBaseURL("https://api.example.com"),
	), limiter, backoff)
	assert.ErrorIs(t, err, adsense.ErrMissingAPIKey)

	_, err = adsense.NewClient(config.NewEndpointWithOptions(
		config.WithAPIKey("key"),
	), limiter, backoff)
	assert.ErrorIs(t, err, adsense.ErrMissingBaseURL)
}

func TestGetDomains_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "/domains/pub-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"domains": ["foo.com", "bar.com"]}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, []string{"foo.com", "bar.com"}, outcome.Domains)
}

func TestGetDomains_SuccessEmptyList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"domains": []}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeSuccess, outcome.Kind, "empty list is still a success at the client layer")
	assert.Empty(t, outcome.Domains)
}

func TestGetDomains_NotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeNotFound, outcome.Kind)
	assert.Equal(t, int32(1), calls.Load(), "404 is terminal, no retry")
}

func TestGetDomains_RetryAfterRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"domains": ["foo.com"]}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeSuccess, outcome.Kind)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetDomains_ServerErrorExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeError, outcome.Kind)
	assert.Equal(t, http.StatusServiceUnavailable, outcome.StatusCode)
	assert.Equal(t, int32(4), calls.Load(), "initial attempt plus three retries")
}

func TestGetDomains_ServerErrorThenRecovery(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"domains": ["foo.com"]}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeSuccess, outcome.Kind)
}

func TestGetDomains_MalformedEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"results": ["foo.com"]}`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeError, outcome.Kind)
	assert.Equal(t, http.StatusOK, outcome.StatusCode)
	assert.Contains(t, outcome.Message, "invalid response envelope")
}

func TestGetDomains_OtherClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`quota exceeded`))
	}))
	defer srv.Close()

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeError, outcome.Kind)
	assert.Equal(t, http.StatusForbidden, outcome.StatusCode)
	assert.Contains(t, outcome.Message, "quota exceeded")
}

func TestGetDomains_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {}))
	srv.Close() // connection refused from here on

	outcome, err := newTestClient(t, srv.URL).GetDomains(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.Equal(t, adsense.OutcomeError, outcome.Kind)
	assert.Equal(t, 0, outcome.StatusCode, "transport failures carry status 0")
}

func TestBatchGetDomains_Progress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/domains/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"domains": ["foo.com"]}`))
	}))
	defer srv.Close()

	var progress []int
	results, err := newTestClient(t, srv.URL).BatchGetDomains(context.Background(),
		[]string{"pub-1", "missing", "pub-2"},
		func(done int, _ string, _ adsense.Outcome) {
			progress = append(progress, done)
		})
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, progress)
	assert.Len(t, results, 3)
	assert.Equal(t, adsense.OutcomeNotFound, results["missing"].Kind)
	assert.Equal(t, adsense.OutcomeSuccess, results["pub-1"].Kind)
}

// Package config provides application configuration.
package config

import (
	"log/slog"
	"time"
)

// Default configuration values.
const (
	DefaultSellersJSONURL     = "https://storage.googleapis.com/adx-rtb-dictionaries/sellers.json"
	DefaultRegistryTimeout    = 5 * time.Minute
	DefaultRequestsPerMinute  = 100
	DefaultEndpointTimeout    = 30 * time.Second
	DefaultEndpointMaxRetries = 3
	DefaultBackoffInitial     = 1 * time.Second
	DefaultBackoffMax         = 30 * time.Second
	DefaultBackoffFactor      = 2.0
	DefaultSyncInterval       = 24 * time.Hour
	DefaultCheckpointPath     = "logs/enrichment-checkpoint.json"
	DefaultLogLevel           = "INFO"
	DefaultDBMaxOpenConns     = 10
	DefaultDBMaxIdleConns     = 5
	DefaultDBConnMaxLifetime  = 30 * time.Minute
)

// Endpoint configures the enrichment API endpoint.
type Endpoint struct {
	baseURL           string
	apiKey            string
	requestsPerMinute int
	timeout           time.Duration
	maxRetries        int
	initialDelay      time.Duration
	maxDelay          time.Duration
	backoffFactor     float64
}

// NewEndpoint creates a new Endpoint with defaults.
func NewEndpoint() Endpoint {
	return Endpoint{
		requestsPerMinute: DefaultRequestsPerMinute,
		timeout:           DefaultEndpointTimeout,
		maxRetries:        DefaultEndpointMaxRetries,
		initialDelay:      DefaultBackoffInitial,
		maxDelay:          DefaultBackoffMax,
		backoffFactor:     DefaultBackoffFactor,
	}
}

// BaseURL returns the base URL for the endpoint.
func (e Endpoint) BaseURL() string { return e.baseURL }

// APIKey returns the bearer token.
func (e Endpoint) APIKey() string { return e.apiKey }

// RequestsPerMinute returns the outbound request budget.
func (e Endpoint) RequestsPerMinute() int { return e.requestsPerMinute }

// Timeout returns the per-call request timeout.
func (e Endpoint) Timeout() time.Duration { return e.timeout }

// MaxRetries returns the maximum retry count for transient failures.
func (e Endpoint) MaxRetries() int { return e.maxRetries }

// InitialDelay returns the initial backoff delay.
func (e Endpoint) InitialDelay() time.Duration { return e.initialDelay }

// MaxDelay returns the backoff delay cap.
func (e Endpoint) MaxDelay() time.Duration { return e.maxDelay }

// BackoffFactor returns the backoff multiplier.
func (e Endpoint) BackoffFactor() float64 { return e.backoffFactor }

// IsConfigured returns true if the endpoint has required configuration.
func (e Endpoint) IsConfigured() bool {
	return e.baseURL != ""
}

// EndpointOption is a functional option for Endpoint.
type EndpointOption func(*Endpoint)

// WithBaseURL sets the base URL.
func WithBaseURL(url string) EndpointOption {
	return func(e *Endpoint) { e.baseURL = url }
}

// WithAPIKey sets the bearer token.
func WithAPIKey(key string) EndpointOption {
	return func(e *Endpoint) { e.apiKey = key }
}

// WithRequestsPerMinute sets the outbound request budget.
func WithRequestsPerMinute(n int) EndpointOption {
	return func(e *Endpoint) {
		if n > 0 {
			e.requestsPerMinute = n
		}
	}
}

// WithEndpointTimeout sets the per-call timeout.
func WithEndpointTimeout(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.timeout = d }
}

// WithMaxRetries sets the retry cap.
func WithMaxRetries(n int) EndpointOption {
	return func(e *Endpoint) { e.maxRetries = n }
}

// WithInitialDelay sets the initial backoff delay.
func WithInitialDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.initialDelay = d }
}

// WithMaxDelay sets the backoff delay cap.
func WithMaxDelay(d time.Duration) EndpointOption {
	return func(e *Endpoint) { e.maxDelay = d }
}

// WithBackoffFactor sets the backoff multiplier.
func WithBackoffFactor(f float64) EndpointOption {
	return func(e *Endpoint) { e.backoffFactor = f }
}

// NewEndpointWithOptions creates an Endpoint with functional options.
func NewEndpointWithOptions(opts ...EndpointOption) Endpoint {
	e := NewEndpoint()
	for _, opt := range opts {
		opt(&e)
	}
	return e
}

// AppConfig holds the main application configuration.
type AppConfig struct {
	dbURL             string
	sellersJSONURL    string
	registryTimeout   time.Duration
	enrichment        Endpoint
	siteURL           string
	revalidateSecret  string
	checkpointPath    string
	syncInterval      time.Duration
	logLevel          string
	logFormat         string
	dbMaxOpenConns    int
	dbMaxIdleConns    int
	dbConnMaxLifetime time.Duration
}

// NewAppConfig creates a new AppConfig with defaults.
func NewAppConfig() AppConfig {
	return AppConfig{
		sellersJSONURL:    DefaultSellersJSONURL,
		registryTimeout:   DefaultRegistryTimeout,
		enrichment:        NewEndpoint(),
		checkpointPath:    DefaultCheckpointPath,
		syncInterval:      DefaultSyncInterval,
		logLevel:          DefaultLogLevel,
		logFormat:         "pretty",
		dbMaxOpenConns:    DefaultDBMaxOpenConns,
		dbMaxIdleConns:    DefaultDBMaxIdleConns,
		dbConnMaxLifetime: DefaultDBConnMaxLifetime,
	}
}

// DBURL returns the database connection URL.
func (c AppConfig) DBURL() string { return c.dbURL }

// SellersJSONURL returns the external registry manifest URL.
func (c AppConfig) SellersJSONURL() string { return c.sellersJSONURL }

// RegistryTimeout returns the registry download timeout.
func (c AppConfig) RegistryTimeout() time.Duration { return c.registryTimeout }

// Enrichment returns the enrichment endpoint config.
func (c AppConfig) Enrichment() Endpoint { return c.enrichment }

// SiteURL returns the web layer base URL for revalidation notifications.
func (c AppConfig) SiteURL() string { return c.siteURL }

// RevalidateSecret returns the shared secret for revalidation notifications.
func (c AppConfig) RevalidateSecret() string { return c.revalidateSecret }

// CheckpointPath returns the enrichment checkpoint file path.
func (c AppConfig) CheckpointPath() string { return c.checkpointPath }

// SyncInterval returns the scheduler interval between full syncs.
func (c AppConfig) SyncInterval() time.Duration { return c.syncInterval }

// LogLevel returns the log level.
func (c AppConfig) LogLevel() string { return c.logLevel }

// LogFormat returns the log format.
func (c AppConfig) LogFormat() string { return c.logFormat }

// DBMaxOpenConns returns the connection pool size.
func (c AppConfig) DBMaxOpenConns() int { return c.dbMaxOpenConns }

// DBMaxIdleConns returns the idle connection count.
func (c AppConfig) DBMaxIdleConns() int { return c.dbMaxIdleConns }

// DBConnMaxLifetime returns the maximum connection lifetime.
func (c AppConfig) DBConnMaxLifetime() time.Duration { return c.dbConnMaxLifetime }

// AppConfigOption is a functional option for AppConfig.
type AppConfigOption func(*AppConfig)

// WithDBURL sets the database URL.
func WithDBURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.dbURL = url }
}

// WithSellersJSONURL sets the registry manifest URL.
func WithSellersJSONURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.sellersJSONURL = url }
}

// WithRegistryTimeout sets the registry download timeout.
func WithRegistryTimeout(d time.Duration) AppConfigOption {
	return func(c *AppConfig) { c.registryTimeout = d }
}

// WithEnrichment sets the enrichment endpoint config.
func WithEnrichment(e Endpoint) AppConfigOption {
	return func(c *AppConfig) { c.enrichment = e }
}

// WithSiteURL sets the web layer base URL.
func WithSiteURL(url string) AppConfigOption {
	return func(c *AppConfig) { c.siteURL = url }
}

// WithRevalidateSecret sets the revalidation shared secret.
func WithRevalidateSecret(secret string) AppConfigOption {
	return func(c *AppConfig) { c.revalidateSecret = secret }
}

// WithCheckpointPath sets the checkpoint file path.
func WithCheckpointPath(path string) AppConfigOption {
	return func(c *AppConfig) { c.checkpointPath = path }
}

// WithSyncInterval sets the scheduler interval.
func WithSyncInterval(d time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if d > 0 {
			c.syncInterval = d
		}
	}
}

// WithLogLevel sets the log level.
func WithLogLevel(level string) AppConfigOption {
	return func(c *AppConfig) { c.logLevel = level }
}

// WithLogFormat sets the log format.
func WithLogFormat(format string) AppConfigOption {
	return func(c *AppConfig) { c.logFormat = format }
}

// WithDBPool sets the connection pool parameters.
func WithDBPool(maxOpen, maxIdle int, maxLifetime time.Duration) AppConfigOption {
	return func(c *AppConfig) {
		if maxOpen > 0 {
			c.dbMaxOpenConns = maxOpen
		}
		if maxIdle > 0 {
			c.dbMaxIdleConns = maxIdle
		}
		if maxLifetime > 0 {
			c.dbConnMaxLifetime = maxLifetime
		}
	}
}

// NewAppConfigWithOptions creates an AppConfig with functional options.
func NewAppConfigWithOptions(opts ...AppConfigOption) AppConfig {
	c := NewAppConfig()
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// Apply returns a new AppConfig with the given options applied.
func (c AppConfig) Apply(opts ...AppConfigOption) AppConfig {
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// LogAttrs returns slog attributes for logging the configuration.
// Sensitive values are masked.
func (c AppConfig) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("db_url", maskDBURL(c.dbURL)),
		slog.String("sellers_json_url", c.sellersJSONURL),
		slog.String("enrichment_base_url", c.enrichment.BaseURL()),
		slog.Int("enrichment_requests_per_minute", c.enrichment.RequestsPerMinute()),
		slog.Bool("enrichment_api_key_set", c.enrichment.APIKey() != ""),
		slog.String("site_url", c.siteURL),
		slog.Bool("revalidate_secret_set", c.revalidateSecret != ""),
		slog.String("checkpoint_path", c.checkpointPath),
		slog.Duration("sync_interval", c.syncInterval),
		slog.String("log_level", c.logLevel),
	}
}

func maskDBURL(url string) string {
	if url == "" {
		return "(not configured)"
	}
	if len(url) >= 7 && url[:7] == "sqlite:" {
		return url
	}
	return "postgres://***@***"
}

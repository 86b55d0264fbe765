package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvConfig holds all environment-based configuration.
// Variables use the SELLERSYNC_ prefix (e.g. SELLERSYNC_DB_URL).
type EnvConfig struct {
	// DBURL is the database connection URL.
	// Env: SELLERSYNC_DB_URL
	DBURL string `envconfig:"DB_URL"`

	// SellersJSONURL is the external registry manifest URL.
	// Env: SELLERSYNC_SELLERS_JSON_URL
	SellersJSONURL string `envconfig:"SELLERS_JSON_URL"`

	// RegistryTimeout is the manifest download timeout in seconds.
	// Env: SELLERSYNC_REGISTRY_TIMEOUT (default: 300)
	RegistryTimeout float64 `envconfig:"REGISTRY_TIMEOUT" default:"300"`

	// Enrichment configures the enrichment API endpoint.
	Enrichment EndpointEnv `envconfig:"ADSENSE"`

	// SiteURL is the web layer base URL for cache revalidation.
	// Env: SELLERSYNC_SITE_URL
	SiteURL string `envconfig:"SITE_URL"`

	// RevalidateSecret guards the revalidation notification.
	// Env: SELLERSYNC_REVALIDATE_SECRET
	RevalidateSecret string `envconfig:"REVALIDATE_SECRET"`

	// CheckpointPath is the enrichment checkpoint file path.
	// Env: SELLERSYNC_CHECKPOINT_PATH
	CheckpointPath string `envconfig:"CHECKPOINT_PATH"`

	// SyncIntervalSeconds is the scheduler interval in seconds.
	// Env: SELLERSYNC_SYNC_INTERVAL_SECONDS (default: 86400)
	SyncIntervalSeconds float64 `envconfig:"SYNC_INTERVAL_SECONDS" default:"86400"`

	// LogLevel is the log verbosity level.
	// Env: SELLERSYNC_LOG_LEVEL (default: INFO)
	LogLevel string `envconfig:"LOG_LEVEL" default:"INFO"`

	// LogFormat is the log output format (pretty or json).
	// Env: SELLERSYNC_LOG_FORMAT (default: pretty)
	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	// DBMaxOpenConns is the connection pool size.
	// Env: SELLERSYNC_DB_MAX_OPEN_CONNS (default: 10)
	DBMaxOpenConns int `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`

	// DBMaxIdleConns is the idle connection count.
	// Env: SELLERSYNC_DB_MAX_IDLE_CONNS (default: 5)
	DBMaxIdleConns int `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
}

// EndpointEnv holds environment configuration for the enrichment endpoint.
type EndpointEnv struct {
	// APIURL is the base URL for the enrichment API.
	// Env: SELLERSYNC_ADSENSE_API_URL
	APIURL string `envconfig:"API_URL"`

	// APIKey is the bearer token for the enrichment API.
	// Env: SELLERSYNC_ADSENSE_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// RequestsPerMinute is the outbound request budget.
	// Env: SELLERSYNC_ADSENSE_REQUESTS_PER_MINUTE (default: 100)
	RequestsPerMinute int `envconfig:"REQUESTS_PER_MINUTE" default:"100"`

	// Timeout is the per-call timeout in seconds.
	// Env: SELLERSYNC_ADSENSE_TIMEOUT (default: 30)
	Timeout float64 `envconfig:"TIMEOUT" default:"30"`

	// MaxRetries is the retry cap for transient failures.
	// Env: SELLERSYNC_ADSENSE_MAX_RETRIES (default: 3)
	MaxRetries int `envconfig:"MAX_RETRIES" default:"3"`

	// InitialDelay is the initial backoff delay in seconds.
	// Env: SELLERSYNC_ADSENSE_INITIAL_DELAY (default: 1)
	InitialDelay float64 `envconfig:"INITIAL_DELAY" default:"1"`

	// MaxDelay is the backoff delay cap in seconds.
	// Env: SELLERSYNC_ADSENSE_MAX_DELAY (default: 30)
	MaxDelay float64 `envconfig:"MAX_DELAY" default:"30"`

	// BackoffFactor is the backoff multiplier.
	// Env: SELLERSYNC_ADSENSE_BACKOFF_FACTOR (default: 2.0)
	BackoffFactor float64 `envconfig:"BACKOFF_FACTOR" default:"2.0"`
}

// ToEndpoint converts EndpointEnv to an Endpoint.
func (e EndpointEnv) ToEndpoint() Endpoint {
	opts := []EndpointOption{
		WithBaseURL(e.APIURL),
		WithAPIKey(e.APIKey),
		WithRequestsPerMinute(e.RequestsPerMinute),
	}
	if e.Timeout > 0 {
		opts = append(opts, WithEndpointTimeout(secondsToDuration(e.Timeout)))
	}
	if e.MaxRetries > 0 {
		opts = append(opts, WithMaxRetries(e.MaxRetries))
	}
	if e.InitialDelay > 0 {
		opts = append(opts, WithInitialDelay(secondsToDuration(e.InitialDelay)))
	}
	if e.MaxDelay > 0 {
		opts = append(opts, WithMaxDelay(secondsToDuration(e.MaxDelay)))
	}
	if e.BackoffFactor > 0 {
		opts = append(opts, WithBackoffFactor(e.BackoffFactor))
	}
	return NewEndpointWithOptions(opts...)
}

// LoadFromEnv loads configuration from SELLERSYNC_-prefixed environment variables.
func LoadFromEnv() (EnvConfig, error) {
	var cfg EnvConfig
	if err := envconfig.Process("SELLERSYNC", &cfg); err != nil {
		return EnvConfig{}, err
	}
	return cfg, nil
}

// ToAppConfig converts EnvConfig to AppConfig.
func (e EnvConfig) ToAppConfig() AppConfig {
	cfg := NewAppConfig()

	if e.DBURL != "" {
		cfg = cfg.Apply(WithDBURL(e.DBURL))
	}
	if e.SellersJSONURL != "" {
		cfg = cfg.Apply(WithSellersJSONURL(e.SellersJSONURL))
	}
	if e.RegistryTimeout > 0 {
		cfg = cfg.Apply(WithRegistryTimeout(secondsToDuration(e.RegistryTimeout)))
	}
	cfg = cfg.Apply(WithEnrichment(e.Enrichment.ToEndpoint()))
	if e.SiteURL != "" {
		cfg = cfg.Apply(WithSiteURL(e.SiteURL))
	}
	if e.RevalidateSecret != "" {
		cfg = cfg.Apply(WithRevalidateSecret(e.RevalidateSecret))
	}
	if e.CheckpointPath != "" {
		cfg = cfg.Apply(WithCheckpointPath(e.CheckpointPath))
	}
	if e.SyncIntervalSeconds > 0 {
		cfg = cfg.Apply(WithSyncInterval(secondsToDuration(e.SyncIntervalSeconds)))
	}
	if e.LogLevel != "" {
		cfg = cfg.Apply(WithLogLevel(e.LogLevel))
	}
	if e.LogFormat != "" {
		cfg = cfg.Apply(WithLogFormat(e.LogFormat))
	}
	cfg = cfg.Apply(WithDBPool(e.DBMaxOpenConns, e.DBMaxIdleConns, 0))

	return cfg
}

// LoadConfig loads a .env file (if present) and builds the AppConfig from
// the environment.
func LoadConfig(envFile string) (AppConfig, error) {
	if err := LoadDotEnv(envFile); err != nil {
		return AppConfig{}, err
	}
	env, err := LoadFromEnv()
	if err != nil {
		return AppConfig{}, err
	}
	return env.ToAppConfig(), nil
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

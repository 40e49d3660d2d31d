package config

import (
	"errors"
	"time"

	"github.com/caarlos0/env/v6"
)

// WebhookConfig holds delivery settings for the outbound change webhook.
type WebhookConfig struct {
	// Endpoint receives one POST per emitted change event. Empty disables
	// webhook delivery.
	Endpoint string `env:"WEBHOOK_ENDPOINT"`

	// Secret signs the per-delivery bearer token.
	Secret string `env:"WEBHOOK_SECRET"`

	// Timeout bounds one delivery attempt.
	Timeout time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
}

// SyncConfig holds all configuration for the sync engine.
type SyncConfig struct {
	MongoDBURI   string `env:"MONGODB_URI"`
	DatabaseName string `env:"MONGODB_DATABASE" envDefault:"itemsync"`

	RedisAddr string `env:"REDIS_ADDR"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`
	// ChangeStream is the Redis Stream receiving emitted change events.
	ChangeStream string `env:"CHANGE_STREAM" envDefault:"itemsync:changes"`

	// ResolveCacheTTL bounds how long a freshly created record reference is
	// trusted over the store's eventually consistent search index.
	ResolveCacheTTL time.Duration `env:"RESOLVE_CACHE_TTL" envDefault:"5m"`

	Webhook WebhookConfig
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*SyncConfig, error) {
	cfg := &SyncConfig{}

	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load sync configuration from environment: " + err.Error())
	}
	if err := env.Parse(&cfg.Webhook); err != nil {
		return nil, errors.New("failed to load webhook configuration from environment: " + err.Error())
	}

	if cfg.MongoDBURI == "" {
		return nil, errors.New("MONGODB_URI environment variable is not set")
	}
	if cfg.Webhook.Endpoint != "" && cfg.Webhook.Secret == "" {
		return nil, errors.New("WEBHOOK_SECRET must be set when WEBHOOK_ENDPOINT is configured")
	}
	if cfg.ResolveCacheTTL <= 0 {
		cfg.ResolveCacheTTL = 5 * time.Minute
	}

	return cfg, nil
}

// DefaultSyncConfig returns a SyncConfig with local development defaults.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		MongoDBURI:      "mongodb://localhost:27017",
		DatabaseName:    "itemsync",
		ChangeStream:    "itemsync:changes",
		ResolveCacheTTL: 5 * time.Minute,
		Webhook: WebhookConfig{
			Timeout: 10 * time.Second,
		},
	}
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "itemsync", cfg.DatabaseName)
	assert.Equal(t, "itemsync:changes", cfg.ChangeStream)
	assert.Equal(t, 5*time.Minute, cfg.ResolveCacheTTL)
	assert.Equal(t, 10*time.Second, cfg.Webhook.Timeout)
}

func TestLoadConfig_MissingMongoURIFails(t *testing.T) {
	t.Setenv("MONGODB_URI", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGODB_URI")
}

func TestLoadConfig_WebhookEndpointRequiresSecret(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("WEBHOOK_ENDPOINT", "https://hooks.example.com/changes")
	t.Setenv("WEBHOOK_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_SECRET")
}

func TestLoadConfig_WebhookConfigured(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("WEBHOOK_ENDPOINT", "https://hooks.example.com/changes")
	t.Setenv("WEBHOOK_SECRET", "s3cret")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example.com/changes", cfg.Webhook.Endpoint)
	assert.Equal(t, 3*time.Second, cfg.Webhook.Timeout)
}

func TestDefaultSyncConfig(t *testing.T) {
	cfg := DefaultSyncConfig()
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDBURI)
	assert.Equal(t, 5*time.Minute, cfg.ResolveCacheTTL)
}

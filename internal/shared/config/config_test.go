package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	t.Run("reads values and keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		err := os.WriteFile(path, []byte(`
api:
  client_id: my-client
  scopes:
    - user:read:email
    - channel:read:subscriptions
cache:
  timeout: 5m
redis:
  address: localhost:6380
`), 0o600)
		require.NoError(t, err)

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "my-client", cfg.API.ClientID)
		assert.Equal(t, []string{"user:read:email", "channel:read:subscriptions"}, cfg.API.Scopes)
		assert.Equal(t, 5*time.Minute, cfg.Cache.Timeout)
		assert.Equal(t, "localhost:6380", cfg.Redis.Address)

		assert.Equal(t, ":8080", cfg.Server.Address)
		assert.Equal(t, uint32(5), cfg.Breaker.FailureThreshold)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("secrets come from environment", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("api:\n  client_secret: from-file\n"), 0o600))

		t.Setenv("APICLIENT_CLIENT_SECRET", "from-env")
		t.Setenv("APICLIENT_REDIS_PASSWORD", "redis-secret")

		cfg, err := LoadFile(path)
		require.NoError(t, err)

		assert.Equal(t, "from-env", cfg.API.ClientSecret)
		assert.Equal(t, "redis-secret", cfg.Redis.Password)
	})
}

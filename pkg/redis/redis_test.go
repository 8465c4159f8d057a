package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getTestRedisConfig() *Config {
	cfg := DefaultConfig()
	if host := os.Getenv("TEST_REDIS_HOST"); host != "" {
		cfg.Host = host
	}
	if password := os.Getenv("TEST_REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
	cfg.KeyPrefix = "passport-test:"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "localhost:6379", cfg.Addr())
	assert.Equal(t, "passport:", cfg.KeyPrefix)
}

func TestNewClient_Unreachable(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Port = 1
	cfg.DialTimeout = 200 * time.Millisecond
	cfg.MaxRetries = 0

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := NewClient(ctx, cfg)
	assert.Error(t, err)
}

func TestClient_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	ctx := context.Background()
	client, err := NewClient(ctx, getTestRedisConfig())
	require.NoError(t, err)
	defer client.Close()

	key := "snapshot:0xabc"
	defer client.Del(ctx, key)

	_, err = client.Get(ctx, key)
	assert.True(t, IsNil(err))

	require.NoError(t, client.Set(ctx, key, `{"stamps":[]}`, time.Minute))

	exists, err := client.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	value, err := client.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `{"stamps":[]}`, string(value))
}

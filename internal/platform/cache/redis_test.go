package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	redisModule "github.com/testcontainers/testcontainers-go/modules/redis"

	"gallery-portal/internal/config"
	"gallery-portal/internal/session"
)

func TestNewRedisClient(t *testing.T) {
	tests := []struct {
		name        string
		config      config.CacheConfig
		expectError bool
	}{
		{
			name: "cache disabled",
			config: config.CacheConfig{
				Enabled: false,
			},
			expectError: true,
		},
		{
			name: "invalid redis address",
			config: config.CacheConfig{
				Enabled:     true,
				Address:     "invalid:address:123",
				DialTimeout: 1 * time.Second,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := NewRedisClient(tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, client)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, client)
				if client != nil {
					client.Close()
				}
			}
		})
	}
}

func TestRedisClient_TokenStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Valkey container test in short mode")
	}

	client := startValkey(t)
	ctx := context.Background()

	repo := session.NewRepository(client)
	store, err := repo.Scope("sid-1")
	require.NoError(t, err)

	require.NoError(t, store.SetTokens(ctx, "access-1", "refresh-1"))
	access, err := store.AccessToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "access-1", access)

	ttl, err := client.TTL(ctx, "session:sid-1:accessToken")
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Hour)

	require.NoError(t, store.SetTokens(ctx, "access-2", ""))
	refresh, err := store.RefreshToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", refresh)
	refreshTTL, err := client.TTL(ctx, "session:sid-1:refreshToken")
	require.NoError(t, err)
	assert.Greater(t, refreshTTL, time.Duration(0), "refresh token keeps an expiry")

	require.NoError(t, store.Clear(ctx))
	_, ok, err := client.Get(ctx, "session:sid-1:refreshToken")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, client.Health(ctx))
}

func startValkey(t *testing.T) *RedisClient {
	t.Helper()
	ctx := context.Background()

	container, err := redisModule.Run(ctx, "valkey/valkey:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := NewRedisClient(config.CacheConfig{
		Enabled:     true,
		Address:     strings.TrimPrefix(endpoint, "redis://"),
		DefaultTTL:  time.Hour,
		DialTimeout: 5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

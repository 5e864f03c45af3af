package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisClient(t *testing.T) *RedisClient {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set, skipping Redis integration tests")
	}

	client, err := NewClient(&Config{Addr: addr, Password: os.Getenv("REDIS_PASSWORD")})
	if err != nil {
		t.Skipf("Skipping Redis tests: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisClient_Keys(t *testing.T) {
	client := setupRedisClient(t)
	ctx := context.Background()
	key := "test:revoked:" + uuid.NewString()

	exists, err := client.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, client.SetWithExpiry(ctx, key, "1", time.Minute))

	exists, err = client.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	value, err := client.GetClient().Get(ctx, key).Result()
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	// Non-positive TTLs are ignored rather than stored forever
	other := key + ":expired"
	require.NoError(t, client.SetWithExpiry(ctx, other, "1", 0))
	exists, err = client.Exists(ctx, other)
	require.NoError(t, err)
	assert.False(t, exists)

	t.Cleanup(func() { client.GetClient().Del(context.Background(), key) })
}

func TestRedisClient_Stream(t *testing.T) {
	client := setupRedisClient(t)
	ctx := context.Background()
	stream := "test:stream:" + uuid.NewString()
	t.Cleanup(func() { client.GetClient().Del(context.Background(), stream) })

	_, err := client.PublishEvent(ctx, stream, map[string]interface{}{"eventType": "BID_PLACED"})
	require.NoError(t, err)
	_, err = client.PublishEvent(ctx, stream, map[string]interface{}{"eventType": "BID_AMENDED"})
	require.NoError(t, err)

	length, err := client.GetStreamLength(ctx, stream)
	require.NoError(t, err)
	assert.Equal(t, int64(2), length)

	length, err = client.GetStreamLength(ctx, stream+":missing")
	require.NoError(t, err)
	assert.Zero(t, length)
}

package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisTokenBlacklist(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	ctx := context.Background()
	b := NewRedisTokenBlacklist(client)

	revoked, err := b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, b.Revoke(ctx, "jti-1", time.Minute))
	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, time.Minute, mr.TTL(revokedKeyPrefix+"jti-1"))

	mr.FastForward(2 * time.Minute)
	revoked, err = b.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Already expired tokens are not stored.
	require.NoError(t, b.Revoke(ctx, "jti-2", -time.Second))
	assert.False(t, mr.Exists(revokedKeyPrefix+"jti-2"))
}

func TestMemoryTokenBlacklist(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryTokenBlacklist()

	require.NoError(t, b.Revoke(ctx, "live", time.Hour))
	require.NoError(t, b.Revoke(ctx, "gone", time.Nanosecond))
	time.Sleep(time.Millisecond)

	revoked, err := b.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = b.IsRevoked(ctx, "gone")
	require.NoError(t, err)
	assert.False(t, revoked)

	revoked, err = b.IsRevoked(ctx, "never")
	require.NoError(t, err)
	assert.False(t, revoked)
}

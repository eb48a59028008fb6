package session_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/kyralabs/iamcore/internal/iam/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*session.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return session.NewRedisStoreFromClient(client), mr
}

func TestRedisStorePut(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "user-1", "fp-abc", time.Hour))

	got, err := mr.Get("session:user-1")
	require.NoError(t, err)
	require.Equal(t, "fp-abc", got)

	ttl := mr.TTL("session:user-1")
	require.Equal(t, time.Hour, ttl)
}

func TestRedisStorePutOverwritesExisting(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "user-1", "fp-old", time.Hour))
	require.NoError(t, store.Put(ctx, "user-1", "fp-new", 2*time.Hour))

	got, err := mr.Get("session:user-1")
	require.NoError(t, err)
	require.Equal(t, "fp-new", got)
	require.Equal(t, 2*time.Hour, mr.TTL("session:user-1"))
}

func TestRedisStoreInvalidate(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "user-1", "fp-abc", time.Hour))
	require.NoError(t, store.Invalidate(ctx, "user-1"))

	require.False(t, mr.Exists("session:user-1"))
}

func TestRedisStoreInvalidateMissingSessionIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	require.NoError(t, store.Invalidate(ctx, "never-logged-in"))
}

func TestRedisStoreSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store, mr := newTestStore(t)

	require.NoError(t, store.Put(ctx, "user-1", "fp-abc", time.Minute))

	mr.FastForward(2 * time.Minute)
	require.False(t, mr.Exists("session:user-1"))
}

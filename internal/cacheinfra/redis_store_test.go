package cacheinfra

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

type profile struct {
	Name string `msgpack:"name"`
	Age  int    `msgpack:"age"`
}

func TestRedisStore_SetGet(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, RedisConfig{Prefix: "test"}, time.Minute)
	ctx := context.Background()

	val, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, val)

	require.NoError(t, store.Set(ctx, "user:1", profile{Name: "alice", Age: 30}, time.Minute))

	val, found, err = store.Get(ctx, "user:1")
	require.NoError(t, err)
	require.True(t, found)

	payload, ok := val.(Encoded)
	require.True(t, ok, "expected Encoded payload, got %T", val)

	var got profile
	require.NoError(t, Decode(payload, &got))
	assert.Equal(t, profile{Name: "alice", Age: 30}, got)
}

func TestRedisStore_PrefixAndTTL(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, RedisConfig{Prefix: "app"}, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", "v", 2*time.Second))
	assert.True(t, mr.Exists("app:k"))
	assert.Equal(t, 2*time.Second, mr.TTL("app:k"))

	require.NoError(t, store.Set(ctx, "default", "v", 0))
	assert.Equal(t, time.Minute, mr.TTL("app:default"))

	mr.FastForward(3 * time.Second)

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_Delete(t *testing.T) {
	_, client := newTestRedis(t)
	store := NewRedisStore(client, RedisConfig{}, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never-set"))

	require.NoError(t, store.Set(ctx, "k", 1, 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisStore_ResetWithPrefix(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, RedisConfig{Prefix: "scoped"}, time.Minute)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, store.Set(ctx, k, k, 0))
	}
	require.NoError(t, mr.Set("other:key", "keep"))

	require.NoError(t, store.Reset(ctx))

	for _, k := range []string{"a", "b", "c"} {
		_, found, err := store.Get(ctx, k)
		require.NoError(t, err)
		assert.False(t, found, "expected %s to be cleared", k)
	}
	assert.True(t, mr.Exists("other:key"), "keys outside the prefix must survive reset")
}

func TestRedisStore_ResetWithoutPrefix(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	guarded := NewRedisStore(client, RedisConfig{}, time.Minute)
	require.NoError(t, guarded.Set(ctx, "k", "v", 0))
	assert.ErrorIs(t, guarded.Reset(ctx), ErrResetNotSupported)
	assert.True(t, mr.Exists("k"))

	flushing := NewRedisStore(client, RedisConfig{AllowFlush: true}, time.Minute)
	require.NoError(t, flushing.Reset(ctx))
	assert.False(t, mr.Exists("k"))
}

func TestRedisStore_ServerDown(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewRedisStore(client, RedisConfig{QueryTimeout: 200 * time.Millisecond}, time.Minute)
	ctx := context.Background()

	mr.Close()

	_, found, err := store.Get(ctx, "k")
	assert.Error(t, err)
	assert.False(t, found)
	assert.Error(t, store.Set(ctx, "k", "v", 0))
}

func TestOpenRedisStore_URL(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := OpenRedisStore(RedisConfig{URL: "redis://" + mr.Addr() + "/0"}, time.Minute)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Ping(context.Background()))
}

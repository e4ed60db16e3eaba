package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	now := time.Now()
	c.now = func() time.Time { return now }
	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	c.now = func() time.Time { return now.Add(2 * time.Minute) }
	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Delete(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, c.Delete(ctx, "k"))

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetJSON_RoundTrip(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	type snapshot struct {
		IDs []int `json:"ids"`
	}

	require.NoError(t, SetJSON(ctx, c, "snap", snapshot{IDs: []int{1, 2, 3}}, time.Minute))

	var out snapshot
	ok, err := GetJSON(ctx, c, "snap", &out)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, out.IDs)
}

func TestGetJSON_CorruptEntryIsMiss(t *testing.T) {
	c := NewMemory()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "snap", "{not json", time.Minute))

	var out map[string]interface{}
	ok, err := GetJSON(ctx, c, "snap", &out)
	require.NoError(t, err)
	assert.False(t, ok)

	// the corrupt entry is dropped
	_, found, err := c.Get(ctx, "snap")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisCache_SetGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedis(client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))

	val, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)
}

func TestRedisCache_MissingKey(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedis(client)

	_, ok, err := c.Get(context.Background(), "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCache_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedis(client)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

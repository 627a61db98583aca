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

func setupCache(t *testing.T) *miniredis.Miniredis {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })

	return mr
}

func TestAsideLoadsOnceAndCaches(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	loads := 0
	load := func() (string, error) {
		loads++
		return "hello", nil
	}

	v, err := Aside(ctx, PostKey("abc"), PostTTL, load)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	v, err = Aside(ctx, PostKey("abc"), PostTTL, load)
	require.NoError(t, err)
	assert.Equal(t, "hello", v)

	assert.Equal(t, 1, loads, "second read should be served from cache")
}

func TestInvalidatePostForcesReload(t *testing.T) {
	setupCache(t)
	ctx := context.Background()

	loads := 0
	load := func() (int, error) {
		loads++
		return loads, nil
	}

	v, err := Aside(ctx, PostKey("p1"), PostTTL, load)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	InvalidatePost(ctx, "p1")

	v, err = Aside(ctx, PostKey("p1"), PostTTL, load)
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestGetJSONMissAndDisabled(t *testing.T) {
	mr := setupCache(t)
	ctx := context.Background()

	var dest string
	assert.False(t, GetJSON(ctx, "nope", &dest))

	SetJSON(ctx, "k", "v", time.Minute)
	assert.True(t, GetJSON(ctx, "k", &dest))
	assert.Equal(t, "v", dest)

	// Disabled cache is a no-op, not an error.
	SetClient(nil)
	assert.False(t, GetJSON(ctx, "k", &dest))
	SetJSON(ctx, "k2", "v2", time.Minute)
	Invalidate(ctx, "k")

	_ = mr
}

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheSetGet(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	_, ok, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "building:oak", "id-123", time.Minute))
	val, ok, err := c.Get(ctx, "building:oak")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "id-123", val)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	current := time.Now()
	c.now = func() time.Time { return current }

	require.NoError(t, c.Set(context.Background(), "k", "v", 5*time.Minute))

	current = current.Add(6 * time.Minute)
	_, ok, err := c.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

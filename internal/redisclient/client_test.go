package redisclient

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return newClient(rdb, time.Minute), mr
}

func TestStockRoundTrip(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	_, err := c.GetStock(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.SetStock(ctx, 1, 10))

	stock, err := c.GetStock(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 10, stock)
	assert.Equal(t, time.Minute, mr.TTL("stock:1"))

	require.NoError(t, c.InvalidateStock(ctx, 1))
	_, err = c.GetStock(ctx, 1)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestAdjustStockOnlyTouchesCachedEntries(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	updated, err := c.AdjustStock(ctx, 2, -3)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.False(t, mr.Exists("stock:2"))

	require.NoError(t, c.SetStock(ctx, 2, 10))

	updated, err = c.AdjustStock(ctx, 2, -3)
	require.NoError(t, err)
	assert.True(t, updated)

	stock, err := c.GetStock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, stock)
}

func TestAdjustStockDropsNegativeEntries(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.SetStock(ctx, 3, 1))

	updated, err := c.AdjustStock(ctx, 3, -5)
	require.NoError(t, err)
	assert.False(t, updated)
	assert.False(t, mr.Exists("stock:3"))
}

func TestIdempotencyKeyLifecycle(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	_, found, err := c.LookupIdempotencyKey(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)

	claimed, err := c.ClaimIdempotencyKey(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = c.ClaimIdempotencyKey(ctx, "abc", time.Hour)
	require.NoError(t, err)
	assert.False(t, claimed)

	saleID, found, err := c.LookupIdempotencyKey(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Zero(t, saleID)

	require.NoError(t, c.CompleteIdempotencyKey(ctx, "abc", 42, time.Hour))

	saleID, found, err = c.LookupIdempotencyKey(ctx, "abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(42), saleID)

	require.NoError(t, c.ReleaseIdempotencyKey(ctx, "abc"))
	_, found, err = c.LookupIdempotencyKey(ctx, "abc")
	require.NoError(t, err)
	assert.False(t, found)
}

package redisclient

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/adjust_stock.lua
var adjustStockScript string

// ErrCacheMiss is returned when a key is not cached
var ErrCacheMiss = errors.New("cache miss")

type Client struct {
	rdb          *redis.Client
	adjustScript *redis.Script
	stockTTL     time.Duration
}

// NewClient creates a new Redis client and checks the connection
func NewClient(addr, password string, db int, stockTTL time.Duration) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return newClient(rdb, stockTTL), nil
}

func newClient(rdb *redis.Client, stockTTL time.Duration) *Client {
	return &Client{
		rdb:          rdb,
		adjustScript: redis.NewScript(adjustStockScript),
		stockTTL:     stockTTL,
	}
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func stockKey(productID int64) string {
	return fmt.Sprintf("stock:%d", productID)
}

// SetStock caches a product's stock
func (c *Client) SetStock(ctx context.Context, productID int64, stock int) error {
	key := stockKey(productID)

	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, key, "stock", stock)
	pipe.Expire(ctx, key, c.stockTTL)

	_, err := pipe.Exec(ctx)
	return err
}

// GetStock returns the cached stock of a product, or ErrCacheMiss
func (c *Client) GetStock(ctx context.Context, productID int64) (int, error) {
	val, err := c.rdb.HGet(ctx, stockKey(productID), "stock").Result()
	if err == redis.Nil {
		return 0, ErrCacheMiss
	}
	if err != nil {
		return 0, err
	}

	stock, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("corrupt stock entry for product %d: %w", productID, err)
	}
	return stock, nil
}

// AdjustStock atomically applies delta to a cached stock entry. Entries that
// are not cached stay uncached; the returned bool reports whether one was updated.
func (c *Client) AdjustStock(ctx context.Context, productID int64, delta int) (bool, error) {
	result, err := c.adjustScript.Run(ctx, c.rdb, []string{stockKey(productID)}, delta).Result()
	if err != nil {
		return false, fmt.Errorf("adjust stock script failed: %w", err)
	}

	stock, ok := result.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected script result type")
	}

	return stock >= 0, nil
}

// InvalidateStock drops a cached stock entry
func (c *Client) InvalidateStock(ctx context.Context, productID int64) error {
	return c.rdb.Del(ctx, stockKey(productID)).Err()
}

func idempotencyKey(key string) string {
	return fmt.Sprintf("idempotency:sale:%s", key)
}

// ClaimIdempotencyKey reserves an idempotency key. It returns false when the
// key is already claimed.
func (c *Client) ClaimIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, idempotencyKey(key), "", ttl).Result()
}

// CompleteIdempotencyKey records the sale created under a claimed key
func (c *Client) CompleteIdempotencyKey(ctx context.Context, key string, saleID int64, ttl time.Duration) error {
	return c.rdb.Set(ctx, idempotencyKey(key), saleID, ttl).Err()
}

// ReleaseIdempotencyKey frees a claimed key so the request can be retried
func (c *Client) ReleaseIdempotencyKey(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, idempotencyKey(key)).Err()
}

// LookupIdempotencyKey returns the sale id recorded under key. A claimed key
// whose sale is still in flight yields (0, true, nil).
func (c *Client) LookupIdempotencyKey(ctx context.Context, key string) (int64, bool, error) {
	val, err := c.rdb.Get(ctx, idempotencyKey(key)).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if val == "" {
		return 0, true, nil
	}

	saleID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt idempotency entry %q: %w", key, err)
	}
	return saleID, true, nil
}

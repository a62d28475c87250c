package service

import (
	"context"
	"errors"
	"fmt"

	"inventory-service/internal/apperr"
	"inventory-service/internal/models"
	"inventory-service/internal/redisclient"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"go.uber.org/zap"
)

// StockCache is the Redis-side view of product stock
type StockCache interface {
	SetStock(ctx context.Context, productID int64, stock int) error
	GetStock(ctx context.Context, productID int64) (int, error)
	AdjustStock(ctx context.Context, productID int64, delta int) (bool, error)
	InvalidateStock(ctx context.Context, productID int64) error
}

// StockService keeps the stock cache in line with the database. The
// database is always authoritative; cache failures are logged and swallowed.
type StockService struct {
	store  *store.Store
	cache  StockCache
	logger *zap.Logger
}

// NewStockService creates a new stock service
func NewStockService(store *store.Store, cache StockCache) *StockService {
	return &StockService{
		store:  store,
		cache:  cache,
		logger: util.GetLogger(),
	}
}

// GetStock returns a product's stock, serving from cache when possible
func (ss *StockService) GetStock(ctx context.Context, productID int64) (int, error) {
	ctx, span := util.StartSpan(ctx, "StockService.GetStock")
	defer span.End()

	stock, err := ss.cache.GetStock(ctx, productID)
	if err == nil {
		return stock, nil
	}
	if !errors.Is(err, redisclient.ErrCacheMiss) {
		ss.logger.Warn("Stock cache read failed, falling back to DB",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}

	product, err := ss.store.GetProductByID(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		return 0, apperr.NotFound("product", productID)
	}
	if err != nil {
		return 0, apperr.Internal("failed to read stock", err)
	}

	ss.cacheStock(ctx, productID, product.Stock)
	return product.Stock, nil
}

// ApplyMovements mirrors committed stock changes into the cache
func (ss *StockService) ApplyMovements(ctx context.Context, movements []models.StockMovement) {
	for _, m := range movements {
		if _, err := ss.cache.AdjustStock(ctx, m.ProductID, m.Delta); err != nil {
			util.StockCacheRefreshFailed.Inc()
			ss.logger.Warn("Failed to adjust cached stock",
				zap.Int64("product_id", m.ProductID),
				zap.Int("delta", m.Delta),
				zap.Error(err))
			ss.Invalidate(ctx, m.ProductID)
		}
	}
}

// RefreshStocks re-reads the given products from the database into the cache
func (ss *StockService) RefreshStocks(ctx context.Context, productIDs []int64) error {
	if len(productIDs) == 0 {
		return nil
	}

	stocks, err := ss.store.GetProductStocks(ctx, productIDs)
	if err != nil {
		return fmt.Errorf("failed to read stocks: %w", err)
	}

	for _, id := range productIDs {
		stock, ok := stocks[id]
		if !ok {
			ss.Invalidate(ctx, id)
			continue
		}
		ss.cacheStock(ctx, id, stock)
	}
	return nil
}

// SyncStockToCache loads every product's stock into the cache
func (ss *StockService) SyncStockToCache(ctx context.Context) error {
	ss.logger.Info("Starting stock sync to Redis")

	products, err := ss.store.ListProducts(ctx, "", "")
	if err != nil {
		return fmt.Errorf("failed to get products: %w", err)
	}

	for _, p := range products {
		ss.cacheStock(ctx, p.ID, p.Stock)
	}

	ss.logger.Info("Stock sync completed", zap.Int("count", len(products)))
	return nil
}

// Invalidate drops a product's cached stock
func (ss *StockService) Invalidate(ctx context.Context, productID int64) {
	if err := ss.cache.InvalidateStock(ctx, productID); err != nil {
		util.StockCacheRefreshFailed.Inc()
		ss.logger.Error("Failed to invalidate cached stock",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
}

func (ss *StockService) cacheStock(ctx context.Context, productID int64, stock int) {
	if err := ss.cache.SetStock(ctx, productID, stock); err != nil {
		util.StockCacheRefreshFailed.Inc()
		ss.logger.Warn("Failed to cache stock",
			zap.Int64("product_id", productID),
			zap.Error(err))
	}
}

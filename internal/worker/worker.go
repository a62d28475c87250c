package worker

import (
	"context"

	"inventory-service/internal/broker"
	"inventory-service/internal/models"
	"inventory-service/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// StockRefresher re-reads product stock from the database into the cache
type StockRefresher interface {
	RefreshStocks(ctx context.Context, productIDs []int64) error
}

// MessageSource yields sale event messages
type MessageSource interface {
	StartConsuming(ctx context.Context, handler broker.MessageHandler) error
	Close() error
}

// StockCacheWorker keeps this replica's stock cache in line with sales
// committed by any replica
type StockCacheWorker struct {
	consumer     MessageSource
	eventHandler *broker.EventHandler
	refresher    StockRefresher
	logger       *zap.Logger
}

// NewStockCacheWorker creates a new stock cache worker
func NewStockCacheWorker(consumer MessageSource, refresher StockRefresher) *StockCacheWorker {
	w := &StockCacheWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		refresher:    refresher,
		logger:       util.GetLogger(),
	}

	w.eventHandler.OnSaleCreated(func(ctx context.Context, e *models.SaleCreatedEvent) error {
		return w.refresh(ctx, e.SaleID, e.Movements)
	})
	w.eventHandler.OnSaleDeleted(func(ctx context.Context, e *models.SaleDeletedEvent) error {
		return w.refresh(ctx, e.SaleID, e.Movements)
	})

	return w
}

// Start consumes sale events until ctx is cancelled
func (w *StockCacheWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting stock cache worker")
	return w.consumer.StartConsuming(ctx, w.HandleMessage)
}

// HandleMessage applies one sale event
func (w *StockCacheWorker) HandleMessage(ctx context.Context, msg kafka.Message) error {
	return w.eventHandler.HandleMessage(ctx, msg)
}

// Stop stops the worker
func (w *StockCacheWorker) Stop() error {
	w.logger.Info("Stopping stock cache worker")
	return w.consumer.Close()
}

func (w *StockCacheWorker) refresh(ctx context.Context, saleID int64, movements []models.StockMovement) error {
	ids := make([]int64, 0, len(movements))
	for _, m := range movements {
		ids = append(ids, m.ProductID)
	}

	if err := w.refresher.RefreshStocks(ctx, ids); err != nil {
		util.StockCacheRefreshFailed.Inc()
		w.logger.Error("Failed to refresh stock cache",
			zap.Int64("sale_id", saleID),
			zap.Error(err))
		return err
	}

	w.logger.Debug("Stock cache refreshed",
		zap.Int64("sale_id", saleID),
		zap.Int("products", len(ids)))
	return nil
}

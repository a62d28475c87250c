package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"inventory-service/internal/apperr"
	"inventory-service/internal/models"
	"inventory-service/internal/store"
	"inventory-service/internal/util"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SaleEventPublisher publishes committed sale changes
type SaleEventPublisher interface {
	PublishSaleCreated(ctx context.Context, event *models.SaleCreatedEvent) error
	PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error
}

// IdempotencyStore remembers which sale a client request key produced
type IdempotencyStore interface {
	ClaimIdempotencyKey(ctx context.Context, key string, ttl time.Duration) (bool, error)
	CompleteIdempotencyKey(ctx context.Context, key string, saleID int64, ttl time.Duration) error
	ReleaseIdempotencyKey(ctx context.Context, key string) error
	LookupIdempotencyKey(ctx context.Context, key string) (int64, bool, error)
}

// SaleOptions tunes the sale service
type SaleOptions struct {
	Timeout        time.Duration
	IdempotencyTTL time.Duration
	DefaultStatus  string
}

// SaleService creates and deletes sales as single transactions over the
// sale header, its line items and product stock
type SaleService struct {
	store          *store.Store
	stock          *StockService
	idempotency    IdempotencyStore
	eventPublisher SaleEventPublisher
	logger         *zap.Logger
	opts           SaleOptions
	now            func() time.Time
}

// NewSaleService creates a new sale service
func NewSaleService(
	store *store.Store,
	stock *StockService,
	idempotency IdempotencyStore,
	eventPublisher SaleEventPublisher,
	opts SaleOptions,
) *SaleService {
	if opts.DefaultStatus == "" {
		opts.DefaultStatus = models.SaleStatusCompleted
	}
	return &SaleService{
		store:          store,
		stock:          stock,
		idempotency:    idempotency,
		eventPublisher: eventPublisher,
		logger:         util.GetLogger(),
		opts:           opts,
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateSaleRequest represents a request to create a sale
type CreateSaleRequest struct {
	CustomerID *int64            `json:"customer_id"`
	Products   []SaleLineRequest `json:"products"`
	Total      *decimal.Decimal  `json:"total"`
	Date       *time.Time        `json:"date"`
	Status     string            `json:"status"`
}

// SaleLineRequest represents one requested line. Price is the unit price to
// record; when omitted the product's current price is used.
type SaleLineRequest struct {
	ProductID int64            `json:"id"`
	Quantity  int              `json:"quantity"`
	Price     *decimal.Decimal `json:"price"`
}

func validateSaleRequest(req *CreateSaleRequest) error {
	if req == nil || len(req.Products) == 0 {
		return apperr.Validation("products must not be empty")
	}
	if req.CustomerID != nil && *req.CustomerID <= 0 {
		return apperr.Validation("customer_id must be positive")
	}
	if req.Total != nil && req.Total.IsNegative() {
		return apperr.Validation("total must not be negative")
	}
	for i, line := range req.Products {
		if line.ProductID <= 0 {
			return apperr.Validation("products[%d]: id must be positive", i)
		}
		if line.Quantity <= 0 {
			return apperr.Validation("products[%d]: quantity must be greater than 0", i)
		}
		if line.Price != nil && line.Price.IsNegative() {
			return apperr.Validation("products[%d]: price must not be negative", i)
		}
	}
	return nil
}

// CreateSale inserts the sale header and its line items and decrements stock,
// all in one transaction. Each line re-reads the product's stock under a row
// lock, so concurrent sales on the same product cannot both pass the check.
func (s *SaleService) CreateSale(ctx context.Context, req *CreateSaleRequest, idempotencyKey string) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.CreateSale")
	defer span.End()

	if err := validateSaleRequest(req); err != nil {
		util.SalesFailedTotal.WithLabelValues(apperr.KindValidation.String()).Inc()
		return nil, err
	}

	if idempotencyKey != "" {
		existing, err := s.claimIdempotencyKey(ctx, idempotencyKey)
		if err != nil || existing != nil {
			return existing, err
		}
	}

	start := time.Now()
	sale, err := s.createSaleTx(ctx, req)
	util.SaleTransactionLatency.WithLabelValues("create").Observe(time.Since(start).Seconds())

	if err != nil {
		if idempotencyKey != "" {
			s.releaseIdempotencyKey(ctx, idempotencyKey)
		}
		s.recordFailure("CreateSale", err)
		util.RecordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("sale.id", sale.ID))
	s.logger.Info("Sale created",
		zap.Int64("sale_id", sale.ID),
		zap.Int("lines", len(sale.Details)),
		zap.String("total", sale.Total.String()))

	if idempotencyKey != "" {
		if err := s.idempotency.CompleteIdempotencyKey(ctx, idempotencyKey, sale.ID, s.opts.IdempotencyTTL); err != nil {
			s.logger.Warn("Failed to record idempotency key", zap.String("key", idempotencyKey), zap.Error(err))
		}
	}

	movements := movementsOf(sale.Details, -1)
	units := 0
	for _, d := range sale.Details {
		units += d.Quantity
	}
	util.SalesCreatedTotal.Inc()
	util.StockUnitsSoldTotal.Add(float64(units))

	s.stock.ApplyMovements(ctx, movements)

	event := &models.SaleCreatedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleCreated,
			Timestamp: s.now(),
		},
		SaleID:     sale.ID,
		CustomerID: sale.CustomerID,
		Total:      sale.Total.String(),
		Movements:  movements,
	}
	if err := s.eventPublisher.PublishSaleCreated(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleCreated event", zap.Int64("sale_id", sale.ID), zap.Error(err))
	}

	full, err := s.store.GetSale(ctx, sale.ID)
	if err != nil {
		s.logger.Warn("Failed to re-read committed sale", zap.Int64("sale_id", sale.ID), zap.Error(err))
		return sale, nil
	}
	return full, nil
}

func (s *SaleService) createSaleTx(ctx context.Context, req *CreateSaleRequest) (*models.Sale, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var sale *models.Sale
	err := s.store.RunInTx(ctx, func(tx *store.Tx) error {
		if req.CustomerID != nil {
			exists, err := tx.CustomerExists(ctx, *req.CustomerID)
			if err != nil {
				return apperr.Internal("failed to look up customer", err)
			}
			if !exists {
				return apperr.NotFound("customer", *req.CustomerID)
			}
		}

		if err := tx.LockProducts(ctx, distinctProductIDs(req.Products)); err != nil {
			return apperr.Internal("failed to lock products", err)
		}

		sale = &models.Sale{
			CustomerID: req.CustomerID,
			Total:      decimal.Zero,
			Date:       s.now(),
			Status:     s.opts.DefaultStatus,
		}
		if req.Total != nil {
			sale.Total = *req.Total
		}
		if req.Date != nil {
			sale.Date = req.Date.UTC()
		}
		if req.Status != "" {
			sale.Status = req.Status
		}

		if err := tx.InsertSale(ctx, sale); err != nil {
			return apperr.Internal("failed to insert sale", err)
		}

		computed := decimal.Zero
		for _, line := range req.Products {
			level, err := tx.GetStockForUpdate(ctx, line.ProductID)
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("product", line.ProductID)
			}
			if err != nil {
				return apperr.Internal("failed to read stock", err)
			}

			if level.Stock < line.Quantity {
				return apperr.InsufficientStock(line.ProductID, line.Quantity, level.Stock)
			}

			price := level.Price
			if line.Price != nil {
				price = *line.Price
			}

			detail := models.SaleDetail{
				SaleID:    sale.ID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     price,
			}
			if err := tx.InsertSaleDetail(ctx, &detail); err != nil {
				return apperr.Internal("failed to insert sale detail", err)
			}

			if err := tx.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				return apperr.Internal("failed to decrement stock", err)
			}

			computed = computed.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			sale.Details = append(sale.Details, detail)
		}

		if req.Total == nil {
			sale.Total = computed
			if err := tx.UpdateSaleTotal(ctx, sale.ID, computed); err != nil {
				return apperr.Internal("failed to update sale total", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, asAppError("failed to create sale", err)
	}
	return sale, nil
}

// DeleteSale removes a sale and its line items and restores the stock they
// consumed, in one transaction
func (s *SaleService) DeleteSale(ctx context.Context, saleID int64) error {
	ctx, span := util.StartSpan(ctx, "SaleService.DeleteSale", attribute.Int64("sale.id", saleID))
	defer span.End()

	start := time.Now()
	details, err := s.deleteSaleTx(ctx, saleID)
	util.SaleTransactionLatency.WithLabelValues("delete").Observe(time.Since(start).Seconds())

	if err != nil {
		s.recordFailure("DeleteSale", err)
		util.RecordError(span, err)
		return err
	}

	util.SalesDeletedTotal.Inc()
	s.logger.Info("Sale deleted", zap.Int64("sale_id", saleID), zap.Int("lines", len(details)))

	movements := movementsOf(details, 1)
	s.stock.ApplyMovements(ctx, movements)

	event := &models.SaleDeletedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeSaleDeleted,
			Timestamp: s.now(),
		},
		SaleID:    saleID,
		Movements: movements,
	}
	if err := s.eventPublisher.PublishSaleDeleted(ctx, event); err != nil {
		s.logger.Error("Failed to publish SaleDeleted event", zap.Int64("sale_id", saleID), zap.Error(err))
	}

	return nil
}

func (s *SaleService) deleteSaleTx(ctx context.Context, saleID int64) ([]models.SaleDetail, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var details []models.SaleDetail
	err := s.store.RunInTx(ctx, func(tx *store.Tx) error {
		err := tx.LockSale(ctx, saleID)
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("sale", saleID)
		}
		if err != nil {
			return apperr.Internal("failed to lock sale", err)
		}

		details, err = tx.GetSaleDetailsForUpdate(ctx, saleID)
		if err != nil {
			return apperr.Internal("failed to read sale details", err)
		}

		for _, d := range details {
			if err := tx.AdjustStock(ctx, d.ProductID, d.Quantity); err != nil {
				return apperr.Internal("failed to restore stock", err)
			}
		}

		if err := tx.DeleteSaleDetails(ctx, saleID); err != nil {
			return apperr.Internal("failed to delete sale details", err)
		}

		if err := tx.DeleteSale(ctx, saleID); err != nil {
			return apperr.Internal("failed to delete sale", err)
		}
		return nil
	})
	if err != nil {
		return nil, asAppError("failed to delete sale", err)
	}
	return details, nil
}

// GetSale retrieves a sale with its line items
func (s *SaleService) GetSale(ctx context.Context, saleID int64) (*models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.GetSale")
	defer span.End()

	sale, err := s.store.GetSale(ctx, saleID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound("sale", saleID)
	}
	if err != nil {
		return nil, apperr.Internal("failed to get sale", err)
	}
	return sale, nil
}

// ListSales retrieves every sale, newest first
func (s *SaleService) ListSales(ctx context.Context) ([]models.Sale, error) {
	ctx, span := util.StartSpan(ctx, "SaleService.ListSales")
	defer span.End()

	sales, err := s.store.ListSales(ctx)
	if err != nil {
		return nil, apperr.Internal("failed to list sales", err)
	}
	return sales, nil
}

// claimIdempotencyKey returns the sale already created under key, if any.
// Cache failures degrade to processing the request without deduplication.
func (s *SaleService) claimIdempotencyKey(ctx context.Context, key string) (*models.Sale, error) {
	claimed, err := s.idempotency.ClaimIdempotencyKey(ctx, key, s.opts.IdempotencyTTL)
	if err != nil {
		s.logger.Warn("Idempotency check unavailable", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if claimed {
		return nil, nil
	}

	saleID, found, err := s.idempotency.LookupIdempotencyKey(ctx, key)
	if err != nil {
		s.logger.Warn("Idempotency lookup failed", zap.String("key", key), zap.Error(err))
		return nil, nil
	}
	if !found {
		return nil, nil
	}
	if saleID == 0 {
		return nil, apperr.Conflict("a sale with this idempotency key is already being processed", nil)
	}

	s.logger.Info("Duplicate sale request detected",
		zap.String("idempotency_key", key),
		zap.Int64("sale_id", saleID))
	return s.GetSale(ctx, saleID)
}

func (s *SaleService) releaseIdempotencyKey(ctx context.Context, key string) {
	if err := s.idempotency.ReleaseIdempotencyKey(ctx, key); err != nil {
		s.logger.Warn("Failed to release idempotency key", zap.String("key", key), zap.Error(err))
	}
}

func (s *SaleService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.Timeout)
}

func (s *SaleService) recordFailure(op string, err error) {
	kind := apperr.KindOf(err)
	util.SalesFailedTotal.WithLabelValues(kind.String()).Inc()

	if kind == apperr.KindInternal {
		s.logger.Error(op+" failed", zap.Error(err))
		return
	}
	s.logger.Info(op+" rejected", zap.String("reason", kind.String()), zap.Error(err))
}

// asAppError keeps classified errors and wraps the rest as internal
func asAppError(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(message, err)
}

func distinctProductIDs(lines []SaleLineRequest) []int64 {
	seen := make(map[int64]bool, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if !seen[line.ProductID] {
			seen[line.ProductID] = true
			ids = append(ids, line.ProductID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// movementsOf folds line items into one signed stock change per product
func movementsOf(details []models.SaleDetail, sign int) []models.StockMovement {
	index := make(map[int64]int, len(details))
	movements := make([]models.StockMovement, 0, len(details))
	for _, d := range details {
		if i, ok := index[d.ProductID]; ok {
			movements[i].Delta += sign * d.Quantity
			continue
		}
		index[d.ProductID] = len(movements)
		movements = append(movements, models.StockMovement{ProductID: d.ProductID, Delta: sign * d.Quantity})
	}
	return movements
}

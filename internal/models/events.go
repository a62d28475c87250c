package models

import "time"

// Event types
const (
	EventTypeSaleCreated = "SALE_CREATED"
	EventTypeSaleDeleted = "SALE_DELETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleCreatedEvent published after a sale commits
type SaleCreatedEvent struct {
	BaseEvent
	SaleID     int64           `json:"sale_id"`
	CustomerID *int64          `json:"customer_id,omitempty"`
	Total      string          `json:"total"`
	Movements  []StockMovement `json:"movements"`
}

// SaleDeletedEvent published after a sale is deleted and its stock restored
type SaleDeletedEvent struct {
	BaseEvent
	SaleID    int64           `json:"sale_id"`
	Movements []StockMovement `json:"movements"`
}

// StockMovement is a signed stock change on one product
type StockMovement struct {
	ProductID int64 `json:"product_id"`
	Delta     int   `json:"delta"`
}

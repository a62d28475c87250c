package broker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"inventory-service/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func message(t *testing.T, event interface{}) kafka.Message {
	value, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestHandleMessageRoutesSaleCreated(t *testing.T) {
	eh := NewEventHandler()

	var got *models.SaleCreatedEvent
	eh.OnSaleCreated(func(_ context.Context, e *models.SaleCreatedEvent) error {
		got = e
		return nil
	})
	eh.OnSaleDeleted(func(context.Context, *models.SaleDeletedEvent) error {
		t.Fatal("unexpected SaleDeleted dispatch")
		return nil
	})

	err := eh.HandleMessage(context.Background(), message(t, models.SaleCreatedEvent{
		BaseEvent: models.BaseEvent{EventID: "e1", EventType: models.EventTypeSaleCreated, Timestamp: time.Now()},
		SaleID:    12,
		Total:     "7.5",
		Movements: []models.StockMovement{{ProductID: 1, Delta: -3}},
	}))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(12), got.SaleID)
	assert.Equal(t, []models.StockMovement{{ProductID: 1, Delta: -3}}, got.Movements)
}

func TestHandleMessageRoutesSaleDeleted(t *testing.T) {
	eh := NewEventHandler()

	var got *models.SaleDeletedEvent
	eh.OnSaleDeleted(func(_ context.Context, e *models.SaleDeletedEvent) error {
		got = e
		return nil
	})

	err := eh.HandleMessage(context.Background(), message(t, models.SaleDeletedEvent{
		BaseEvent: models.BaseEvent{EventID: "e2", EventType: models.EventTypeSaleDeleted},
		SaleID:    12,
		Movements: []models.StockMovement{{ProductID: 1, Delta: 3}},
	}))

	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Movements[0].Delta)
}

func TestHandleMessageIgnoresUnknownTypes(t *testing.T) {
	eh := NewEventHandler()

	err := eh.HandleMessage(context.Background(), message(t, models.BaseEvent{EventType: "ORDER_PAID"}))

	assert.NoError(t, err)
}

func TestHandleMessageRejectsGarbage(t *testing.T) {
	eh := NewEventHandler()

	err := eh.HandleMessage(context.Background(), kafka.Message{Value: []byte("not json")})

	assert.Error(t, err)
}

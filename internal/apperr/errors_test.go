package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("create sale: %w", InsufficientStock(7, 5, 2))

	assert.Equal(t, KindInsufficientStock, KindOf(wrapped))
	assert.Equal(t, KindNotFound, KindOf(NotFound("product", 3)))
	assert.Equal(t, KindInternal, KindOf(errors.New("connection reset")))
	assert.True(t, Is(wrapped, KindInsufficientStock))
	assert.False(t, Is(wrapped, KindNotFound))
}

func TestPublicMessageHidesInternalDetails(t *testing.T) {
	err := Internal("failed to insert sale", errors.New(`pq: relation "sales" does not exist`))

	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("boom")))
	assert.Contains(t, err.Error(), "relation")
}

func TestPublicMessageForBusinessErrors(t *testing.T) {
	assert.Equal(t, "product 3 not found", PublicMessage(NotFound("product", 3)))
	assert.Equal(t,
		"insufficient stock for product 7: requested=5, available=2",
		PublicMessage(InsufficientStock(7, 5, 2)))
	assert.Equal(t, "products must not be empty", PublicMessage(Validation("products must not be empty")))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "insufficient_stock", KindInsufficientStock.String())
	assert.Equal(t, "internal", Kind(99).String())
}

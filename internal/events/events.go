package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CheckoutEvent is published after a checkout has committed, so that
// downstream consumers (e.g. a warehouse service) can pick the order.
// Publishing is best-effort: the stock deduction is already durable.
type CheckoutEvent struct {
	CartID uuid.UUID      `json:"cart_id"`
	Lines  []CheckoutLine `json:"lines"`
	At     time.Time      `json:"at"`
}

type CheckoutLine struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type Publisher interface {
	PublishCheckout(ctx context.Context, event CheckoutEvent) error
}

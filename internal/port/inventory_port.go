package port

import (
	"context"

	"github.com/google/uuid"
)

// InventoryRepository exposes two deliberately different views of the same
// ledger: GetAvailable is a plain read used for advisory checks at cart
// mutation time, DeductStock is the authoritative conditional write used
// only inside a checkout transaction. They must stay separate code paths.
type InventoryRepository interface {
	// GetAvailable reads the current available quantity without locking.
	// The second return value reports whether a ledger record exists.
	GetAvailable(ctx context.Context, productID uuid.UUID) (int, bool, error)

	// DeductStock decrements available stock by quantity only if enough
	// remains, as a single conditional update. Returns false when the
	// record is missing or stock is insufficient.
	DeductStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error)
}

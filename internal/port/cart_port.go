package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
)

type CartRepository interface {
	// GetCart loads the cart record and its lines. The second return value
	// reports whether a record exists for cartID.
	GetCart(ctx context.Context, cartID uuid.UUID) (domain.Cart, bool, error)

	// EnsureCart inserts the cart record if absent. Safe to call
	// concurrently for the same identifier.
	EnsureCart(ctx context.Context, cartID uuid.UUID) error

	// GetItem loads a single line, reporting whether it exists.
	GetItem(ctx context.Context, cartID, productID uuid.UUID) (domain.CartItem, bool, error)

	// UpsertItem sets the line for (cartID, productID) to exactly quantity,
	// creating it if absent, and stamps the line's update time.
	UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error

	// DeleteItem removes the line, reporting whether one existed.
	DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error)

	// ClearItems removes every line of the cart and reports how many lines
	// were actually deleted.
	ClearItems(ctx context.Context, cartID uuid.UUID) (int, error)

	// TouchCart stamps the cart's update time.
	TouchCart(ctx context.Context, cartID uuid.UUID) error
}

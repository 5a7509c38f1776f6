package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
)

// CartService is the boundary the HTTP layer talks to.
type CartService interface {
	AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (uuid.UUID, error)
	UpdateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (uuid.UUID, error)
	RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (uuid.UUID, error)
	ClearCart(ctx context.Context, cartID uuid.UUID) error
	GetCart(ctx context.Context, cartID uuid.UUID) (domain.PricedCart, error)
	Checkout(ctx context.Context, cartID uuid.UUID) error
	ListProducts(ctx context.Context) ([]domain.ProductListing, error)
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Cart is an anonymous shopping cart. The identifier is minted by the
// client; the first mutation naming it creates the record.
type Cart struct {
	ID    uuid.UUID
	Items []CartItem

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartItem is a single (cart, product) line. At most one line exists per
// product in a cart; a line with quantity zero is deleted, never stored.
type CartItem struct {
	ProductID uuid.UUID
	Quantity  int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricedCart is the read model returned by GetCart: cart lines joined
// with the current catalog name, price and image of each product.
type PricedCart struct {
	CartID uuid.UUID
	Items  []PricedItem
	Total  Money
}

type PricedItem struct {
	ProductID uuid.UUID
	Name      string
	UnitPrice Money
	Image     string
	Quantity  int
	LineTotal Money
}

package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
)

type ProductRepository interface {
	// ListProducts returns the catalog joined with current availability.
	ListProducts(ctx context.Context) ([]domain.ProductListing, error)

	// GetProducts loads catalog data for the given identifiers. Missing
	// products are simply absent from the result map.
	GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error)

	// CreateProduct inserts a product together with its initial stock.
	// Used by provisioning and tests; the cart core never calls it.
	CreateProduct(ctx context.Context, product domain.Product, stock int) error
}

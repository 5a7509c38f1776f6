package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/events"
	"github.com/nikolayk812/shopcart/internal/metrics"
	"github.com/nikolayk812/shopcart/internal/port"
)

// Service implements the cart operations. All stock checks performed here
// are advisory: they read current availability for early feedback but
// reserve nothing. Checkout (see checkout.go) is the only place where the
// no-oversell invariant is enforced.
type Service struct {
	store     port.Store
	publisher events.Publisher // optional
	metrics   *metrics.Metrics // optional
	logger    *slog.Logger
}

var _ port.CartService = (*Service)(nil)

func New(store port.Store, publisher events.Publisher, m *metrics.Metrics, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("store is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
	}, nil
}

// AddItem adds quantity units of a product to the cart, creating the cart
// record on first use. When a line for the product already exists the
// requested quantity is added on top of it.
func (s *Service) AddItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (uuid.UUID, error) {
	if quantity < 1 {
		return uuid.Nil, fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	err := s.store.InTx(ctx, func(tx port.Store) error {
		available, found, err := tx.Inventory().GetAvailable(ctx, productID)
		if err != nil {
			return fmt.Errorf("inventory.GetAvailable: %w", err)
		}
		if !found {
			return domain.Errorf(domain.CodeProductNotFound, "product %s not found", productID)
		}

		if err := tx.Carts().EnsureCart(ctx, cartID); err != nil {
			return fmt.Errorf("carts.EnsureCart: %w", err)
		}

		item, exists, err := tx.Carts().GetItem(ctx, cartID, productID)
		if err != nil {
			return fmt.Errorf("carts.GetItem: %w", err)
		}

		newTotal := quantity
		if exists {
			newTotal += item.Quantity
		}

		if newTotal > available {
			return domain.Errorf(domain.CodeStockInsufficient, "not enough stock for product %s", productID)
		}

		if err := tx.Carts().UpsertItem(ctx, cartID, productID, newTotal); err != nil {
			return fmt.Errorf("carts.UpsertItem: %w", err)
		}

		if err := tx.Carts().TouchCart(ctx, cartID); err != nil {
			return fmt.Errorf("carts.TouchCart: %w", err)
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return cartID, nil
}

// UpdateItem sets a line's quantity to an absolute value.
func (s *Service) UpdateItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) (uuid.UUID, error) {
	if quantity < 1 {
		return uuid.Nil, fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	err := s.store.InTx(ctx, func(tx port.Store) error {
		if err := requireCart(ctx, tx, cartID); err != nil {
			return err
		}

		_, exists, err := tx.Carts().GetItem(ctx, cartID, productID)
		if err != nil {
			return fmt.Errorf("carts.GetItem: %w", err)
		}
		if !exists {
			return domain.Errorf(domain.CodeCartItemNotFound, "product %s is not in cart %s", productID, cartID)
		}

		// a product with no ledger record cannot be carted at any quantity
		available, found, err := tx.Inventory().GetAvailable(ctx, productID)
		if err != nil {
			return fmt.Errorf("inventory.GetAvailable: %w", err)
		}
		if !found || quantity > available {
			return domain.Errorf(domain.CodeStockInsufficient, "not enough stock for product %s", productID)
		}

		if err := tx.Carts().UpsertItem(ctx, cartID, productID, quantity); err != nil {
			return fmt.Errorf("carts.UpsertItem: %w", err)
		}

		if err := tx.Carts().TouchCart(ctx, cartID); err != nil {
			return fmt.Errorf("carts.TouchCart: %w", err)
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return cartID, nil
}

// RemoveItem deletes a line. Removing a product that is not in the cart
// succeeds without touching anything.
func (s *Service) RemoveItem(ctx context.Context, cartID, productID uuid.UUID) (uuid.UUID, error) {
	err := s.store.InTx(ctx, func(tx port.Store) error {
		if err := requireCart(ctx, tx, cartID); err != nil {
			return err
		}

		deleted, err := tx.Carts().DeleteItem(ctx, cartID, productID)
		if err != nil {
			return fmt.Errorf("carts.DeleteItem: %w", err)
		}

		if deleted {
			if err := tx.Carts().TouchCart(ctx, cartID); err != nil {
				return fmt.Errorf("carts.TouchCart: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	return cartID, nil
}

// ClearCart removes every line. Clearing an already-empty cart succeeds.
func (s *Service) ClearCart(ctx context.Context, cartID uuid.UUID) error {
	return s.store.InTx(ctx, func(tx port.Store) error {
		if err := requireCart(ctx, tx, cartID); err != nil {
			return err
		}

		if _, err := tx.Carts().ClearItems(ctx, cartID); err != nil {
			return fmt.Errorf("carts.ClearItems: %w", err)
		}

		if err := tx.Carts().TouchCart(ctx, cartID); err != nil {
			return fmt.Errorf("carts.TouchCart: %w", err)
		}

		return nil
	})
}

// GetCart returns the cart's lines priced at current catalog prices.
// Read-only: it never mutates cart or stock state.
func (s *Service) GetCart(ctx context.Context, cartID uuid.UUID) (domain.PricedCart, error) {
	cart, found, err := s.store.Carts().GetCart(ctx, cartID)
	if err != nil {
		return domain.PricedCart{}, fmt.Errorf("carts.GetCart: %w", err)
	}
	if !found {
		return domain.PricedCart{}, domain.Errorf(domain.CodeCartNotFound, "cart %s not found", cartID)
	}

	ids := make([]uuid.UUID, 0, len(cart.Items))
	for _, item := range cart.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.store.Products().GetProducts(ctx, ids)
	if err != nil {
		return domain.PricedCart{}, fmt.Errorf("products.GetProducts: %w", err)
	}

	priced := domain.PricedCart{CartID: cartID}
	for _, item := range cart.Items {
		product, ok := products[item.ProductID]
		if !ok {
			// cart lines reference products with ON DELETE RESTRICT
			return domain.PricedCart{}, fmt.Errorf("product %s referenced by cart %s does not exist", item.ProductID, cartID)
		}

		lineTotal := product.Price.MulInt(item.Quantity)
		priced.Items = append(priced.Items, domain.PricedItem{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Image:     product.Image,
			Quantity:  item.Quantity,
			LineTotal: lineTotal,
		})

		if len(priced.Items) == 1 {
			priced.Total = lineTotal
			continue
		}
		priced.Total, err = priced.Total.Add(lineTotal)
		if err != nil {
			return domain.PricedCart{}, fmt.Errorf("total.Add: %w", err)
		}
	}

	return priced, nil
}

// ListProducts returns the catalog with current availability.
func (s *Service) ListProducts(ctx context.Context) ([]domain.ProductListing, error) {
	listings, err := s.store.Products().ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("products.ListProducts: %w", err)
	}

	return listings, nil
}

func requireCart(ctx context.Context, tx port.Store, cartID uuid.UUID) error {
	_, found, err := tx.Carts().GetCart(ctx, cartID)
	if err != nil {
		return fmt.Errorf("carts.GetCart: %w", err)
	}
	if !found {
		return domain.Errorf(domain.CodeCartNotFound, "cart %s not found", cartID)
	}

	return nil
}

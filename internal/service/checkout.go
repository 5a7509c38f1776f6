package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/events"
	"github.com/nikolayk812/shopcart/internal/port"
)

// checkoutAttempts bounds retries of the checkout transaction when the
// database reports a serialization failure or deadlock.
const checkoutAttempts = 3

// Checkout converts the cart's lines into permanent stock deductions and
// empties the cart, all inside one transaction. Each line is deducted via
// a conditional update (deduct only if enough remains), so two concurrent
// checkouts cannot both take the last units of a product. Any line
// failing the check aborts the whole transaction: no stock moves, the
// cart keeps its lines.
func (s *Service) Checkout(ctx context.Context, cartID uuid.UUID) error {
	var lines []domain.CartItem

	var txErr error
	for attempt := 1; attempt <= checkoutAttempts; attempt++ {
		txErr = s.store.InTx(ctx, func(tx port.Store) error {
			var err error
			lines, err = deductAndClear(ctx, tx, cartID)
			return err
		})
		if txErr == nil {
			break
		}

		if code, ok := domain.CodeOf(txErr); ok {
			s.metrics.RecordCheckout(string(code))
			return txErr
		}

		if !retryableTxError(txErr) {
			break
		}
		s.logger.Warn("retrying checkout transaction",
			"cart_id", cartID, "attempt", attempt, "error", txErr)
	}

	if txErr != nil {
		s.logger.Error("checkout transaction failed", "cart_id", cartID, "error", txErr)
		s.metrics.RecordCheckout(string(domain.CodeCheckoutFailed))
		return domain.Errorf(domain.CodeCheckoutFailed, "an error occurred during checkout")
	}

	s.metrics.RecordCheckout("success")
	s.publishCheckout(ctx, cartID, lines)

	return nil
}

// deductAndClear reads the cart's lines inside the transaction, so every
// attempt deducts exactly what it is about to clear. The final cleared-row
// count guards the read: a competing checkout of the same cart that
// committed in between leaves fewer lines to delete than were deducted,
// which aborts this transaction instead of deducting the cart twice.
func deductAndClear(ctx context.Context, tx port.Store, cartID uuid.UUID) ([]domain.CartItem, error) {
	cart, found, err := tx.Carts().GetCart(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("carts.GetCart: %w", err)
	}
	if !found {
		return nil, domain.Errorf(domain.CodeCartNotFound, "cart %s not found", cartID)
	}
	if len(cart.Items) == 0 {
		return nil, domain.Errorf(domain.CodeCartEmpty, "cannot checkout an empty cart")
	}

	// Ascending product order keeps the reported error deterministic when
	// several lines are short, and gives concurrent checkouts a common
	// lock order.
	items := slices.Clone(cart.Items)
	slices.SortFunc(items, func(a, b domain.CartItem) int {
		return bytes.Compare(a.ProductID[:], b.ProductID[:])
	})

	for _, item := range items {
		deducted, err := tx.Inventory().DeductStock(ctx, item.ProductID, item.Quantity)
		if err != nil {
			return nil, fmt.Errorf("inventory.DeductStock: %w", err)
		}
		if deducted {
			continue
		}

		// zero rows: either no ledger record or not enough stock
		_, exists, err := tx.Inventory().GetAvailable(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("inventory.GetAvailable: %w", err)
		}
		if !exists {
			return nil, domain.Errorf(domain.CodeProductNotFound, "product %s not found", item.ProductID)
		}
		return nil, domain.Errorf(domain.CodeStockInsufficient, "not enough stock for product %s", item.ProductID)
	}

	cleared, err := tx.Carts().ClearItems(ctx, cartID)
	if err != nil {
		return nil, fmt.Errorf("carts.ClearItems: %w", err)
	}
	if cleared != len(items) {
		return nil, fmt.Errorf("cart %s: cleared %d of %d lines, lost to a concurrent checkout", cartID, cleared, len(items))
	}

	if err := tx.Carts().TouchCart(ctx, cartID); err != nil {
		return nil, fmt.Errorf("carts.TouchCart: %w", err)
	}

	return items, nil
}

func (s *Service) publishCheckout(ctx context.Context, cartID uuid.UUID, items []domain.CartItem) {
	if s.publisher == nil {
		return
	}

	event := events.CheckoutEvent{
		CartID: cartID,
		At:     time.Now().UTC(),
	}
	for _, item := range items {
		event.Lines = append(event.Lines, events.CheckoutLine{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	// stock is already committed, a lost event must not fail the checkout
	if err := s.publisher.PublishCheckout(ctx, event); err != nil {
		s.logger.Warn("publishing checkout event failed", "cart_id", cartID, "error", err)
	}
}

func retryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// serialization_failure, deadlock_detected
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}

	return false
}

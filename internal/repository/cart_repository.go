package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nikolayk812/shopcart/internal/domain"
)

type cartRepository struct {
	db dbtx
}

func (r *cartRepository) GetCart(ctx context.Context, cartID uuid.UUID) (domain.Cart, bool, error) {
	if cartID == uuid.Nil {
		return domain.Cart{}, false, fmt.Errorf("cartID is empty")
	}

	cart := domain.Cart{ID: cartID}

	err := r.db.QueryRow(ctx,
		`SELECT created_at, updated_at FROM carts WHERE id = $1`,
		cartID,
	).Scan(&cart.CreatedAt, &cart.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Cart{}, false, nil
	}
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("select cart: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT product_id, quantity, created_at, updated_at
		 FROM cart_items
		 WHERE cart_id = $1
		 ORDER BY created_at, product_id`,
		cartID,
	)
	if err != nil {
		return domain.Cart{}, false, fmt.Errorf("select cart_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ProductID, &item.Quantity, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return domain.Cart{}, false, fmt.Errorf("scan cart_item: %w", err)
		}
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return domain.Cart{}, false, fmt.Errorf("rows.Err: %w", err)
	}

	return cart, true, nil
}

// EnsureCart is the get-or-insert half of implicit cart creation: run it
// inside the same transaction as the mutation that triggered it.
func (r *cartRepository) EnsureCart(ctx context.Context, cartID uuid.UUID) error {
	if cartID == uuid.Nil {
		return fmt.Errorf("cartID is empty")
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO carts (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		cartID,
	)
	if err != nil {
		return fmt.Errorf("insert cart: %w", err)
	}

	return nil
}

func (r *cartRepository) GetItem(ctx context.Context, cartID, productID uuid.UUID) (domain.CartItem, bool, error) {
	if cartID == uuid.Nil {
		return domain.CartItem{}, false, fmt.Errorf("cartID is empty")
	}

	item := domain.CartItem{ProductID: productID}

	err := r.db.QueryRow(ctx,
		`SELECT quantity, created_at, updated_at
		 FROM cart_items
		 WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	).Scan(&item.Quantity, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.CartItem{}, false, nil
	}
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("select cart_item: %w", err)
	}

	return item, true, nil
}

func (r *cartRepository) UpsertItem(ctx context.Context, cartID, productID uuid.UUID, quantity int) error {
	if cartID == uuid.Nil {
		return fmt.Errorf("cartID is empty")
	}
	if quantity < 1 {
		return fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	_, err := r.db.Exec(ctx,
		`INSERT INTO cart_items (cart_id, product_id, quantity)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (cart_id, product_id)
		 DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()`,
		cartID, productID, quantity,
	)
	if err != nil {
		return fmt.Errorf("upsert cart_item: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteItem(ctx context.Context, cartID, productID uuid.UUID) (bool, error) {
	if cartID == uuid.Nil {
		return false, fmt.Errorf("cartID is empty")
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`,
		cartID, productID,
	)
	if err != nil {
		return false, fmt.Errorf("delete cart_item: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *cartRepository) ClearItems(ctx context.Context, cartID uuid.UUID) (int, error) {
	if cartID == uuid.Nil {
		return 0, fmt.Errorf("cartID is empty")
	}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM cart_items WHERE cart_id = $1`,
		cartID,
	)
	if err != nil {
		return 0, fmt.Errorf("delete cart_items: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

func (r *cartRepository) TouchCart(ctx context.Context, cartID uuid.UUID) error {
	if cartID == uuid.Nil {
		return fmt.Errorf("cartID is empty")
	}

	_, err := r.db.Exec(ctx,
		`UPDATE carts SET updated_at = NOW() WHERE id = $1`,
		cartID,
	)
	if err != nil {
		return fmt.Errorf("update cart: %w", err)
	}

	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type inventoryRepository struct {
	db dbtx
}

// GetAvailable is the advisory read: no lock, no reservation. Cart
// mutations use it for early feedback only; checkout never trusts it.
func (r *inventoryRepository) GetAvailable(ctx context.Context, productID uuid.UUID) (int, bool, error) {
	if productID == uuid.Nil {
		return 0, false, fmt.Errorf("productID is empty")
	}

	var available int
	err := r.db.QueryRow(ctx,
		`SELECT available FROM product_stock WHERE product_id = $1`,
		productID,
	).Scan(&available)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("select product_stock: %w", err)
	}

	return available, true, nil
}

// DeductStock is the authoritative write: the WHERE clause makes the
// check and the decrement one atomic statement, so concurrent checkouts
// cannot both take the last units. Zero rows affected means either the
// record is missing or stock is short; callers distinguish the two with
// GetAvailable inside the same transaction.
func (r *inventoryRepository) DeductStock(ctx context.Context, productID uuid.UUID, quantity int) (bool, error) {
	if productID == uuid.Nil {
		return false, fmt.Errorf("productID is empty")
	}
	if quantity < 1 {
		return false, fmt.Errorf("quantity[%d] is not positive", quantity)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE product_stock
		 SET available = available - $2
		 WHERE product_id = $1 AND available >= $2`,
		productID, quantity,
	)
	if err != nil {
		return false, fmt.Errorf("update product_stock: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/shopcart/internal/port"
)

// dbtx is the subset of pgx satisfied by both *pgxpool.Pool and pgx.Tx,
// so the same repository code runs inside and outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	db   dbtx
	pool *pgxpool.Pool // nil when bound to an open transaction
}

func NewStore(pool *pgxpool.Pool) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is nil")
	}

	return &Store{db: pool, pool: pool}, nil
}

func newTxStore(tx pgx.Tx) *Store {
	return &Store{db: tx}
}

func (s *Store) Carts() port.CartRepository {
	return &cartRepository{db: s.db}
}

func (s *Store) Inventory() port.InventoryRepository {
	return &inventoryRepository{db: s.db}
}

func (s *Store) Products() port.ProductRepository {
	return &productRepository{db: s.db}
}

// InTx runs fn with all repositories bound to a single transaction.
// A Store that is already transactional reuses the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(port.Store) error) (txErr error) {
	if s.pool == nil {
		return fn(s)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pool.Begin: %w", err)
	}

	defer func() {
		if txErr != nil {
			rollbackErr := tx.Rollback(ctx)
			if rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				txErr = errors.Join(txErr, fmt.Errorf("tx.Rollback: %w", rollbackErr))
			}
		}
	}()

	if err := fn(newTxStore(tx)); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("tx.Commit: %w", err)
	}

	return nil
}

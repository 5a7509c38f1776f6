package port

import "context"

// Store bundles the repositories over one database handle and opens
// transactional scopes. Inside InTx all repositories of the passed Store
// are bound to the same transaction; returning an error rolls everything
// back. Calling InTx on an already transactional Store reuses the open
// transaction.
type Store interface {
	Carts() CartRepository
	Inventory() InventoryRepository
	Products() ProductRepository

	InTx(ctx context.Context, fn func(Store) error) error
}

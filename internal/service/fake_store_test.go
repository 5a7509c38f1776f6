package service_test

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
)

// fakeStore is an in-memory port.Store mirroring the SQL semantics:
// InTx serializes transactions with a mutex, takes a snapshot and
// restores it when fn fails, so all-or-nothing behavior is observable in
// tests without a database.
type fakeStore struct {
	mu   *sync.Mutex
	data *fakeData
	inTx bool
}

type fakeData struct {
	carts    map[uuid.UUID]*fakeCart
	stock    map[uuid.UUID]int // absence means no ledger record
	products map[uuid.UUID]domain.Product

	// deductErrs are returned by successive DeductStock calls, to
	// simulate infrastructure failures and retryable conflicts
	deductErrs []error
}

type fakeCart struct {
	createdAt time.Time
	updatedAt time.Time
	order     []uuid.UUID // insertion order of lines
	items     map[uuid.UUID]domain.CartItem
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		mu: &sync.Mutex{},
		data: &fakeData{
			carts:    make(map[uuid.UUID]*fakeCart),
			stock:    make(map[uuid.UUID]int),
			products: make(map[uuid.UUID]domain.Product),
		},
	}
}

func (f *fakeStore) addProduct(product domain.Product, stock int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data.products[product.ID] = product
	f.data.stock[product.ID] = stock
}

func (f *fakeStore) dropLedger(productID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.data.stock, productID)
}

func (f *fakeStore) available(productID uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.data.stock[productID]
}

func (f *fakeStore) failDeductions(errs ...error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data.deductErrs = append(f.data.deductErrs, errs...)
}

func (f *fakeStore) Carts() port.CartRepository          { return fakeCartRepo{f} }
func (f *fakeStore) Inventory() port.InventoryRepository { return fakeInventoryRepo{f} }
func (f *fakeStore) Products() port.ProductRepository    { return fakeProductRepo{f} }

func (f *fakeStore) InTx(_ context.Context, fn func(port.Store) error) error {
	if f.inTx {
		return fn(f)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	snapshot := f.data.clone()
	tx := &fakeStore{mu: f.mu, data: f.data, inTx: true}

	if err := fn(tx); err != nil {
		// roll back state but keep consumed injected errors consumed,
		// like the outside world changing between attempts
		remaining := f.data.deductErrs
		*f.data = *snapshot
		f.data.deductErrs = remaining
		return err
	}

	return nil
}

// unlock-noop inside a transaction, real lock outside
func (f *fakeStore) lock() func() {
	if f.inTx {
		return func() {}
	}
	f.mu.Lock()
	return f.mu.Unlock
}

func (d *fakeData) clone() *fakeData {
	carts := make(map[uuid.UUID]*fakeCart, len(d.carts))
	for id, cart := range d.carts {
		carts[id] = &fakeCart{
			createdAt: cart.createdAt,
			updatedAt: cart.updatedAt,
			order:     slices.Clone(cart.order),
			items:     maps.Clone(cart.items),
		}
	}

	return &fakeData{
		carts:      carts,
		stock:      maps.Clone(d.stock),
		products:   maps.Clone(d.products),
		deductErrs: slices.Clone(d.deductErrs),
	}
}

type fakeCartRepo struct{ s *fakeStore }

func (r fakeCartRepo) GetCart(_ context.Context, cartID uuid.UUID) (domain.Cart, bool, error) {
	defer r.s.lock()()

	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return domain.Cart{}, false, nil
	}

	result := domain.Cart{
		ID:        cartID,
		CreatedAt: cart.createdAt,
		UpdatedAt: cart.updatedAt,
	}
	for _, productID := range cart.order {
		result.Items = append(result.Items, cart.items[productID])
	}

	return result, true, nil
}

func (r fakeCartRepo) EnsureCart(_ context.Context, cartID uuid.UUID) error {
	defer r.s.lock()()

	if _, ok := r.s.data.carts[cartID]; !ok {
		now := time.Now()
		r.s.data.carts[cartID] = &fakeCart{
			createdAt: now,
			updatedAt: now,
			items:     make(map[uuid.UUID]domain.CartItem),
		}
	}

	return nil
}

func (r fakeCartRepo) GetItem(_ context.Context, cartID, productID uuid.UUID) (domain.CartItem, bool, error) {
	defer r.s.lock()()

	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return domain.CartItem{}, false, nil
	}

	item, ok := cart.items[productID]
	return item, ok, nil
}

func (r fakeCartRepo) UpsertItem(_ context.Context, cartID, productID uuid.UUID, quantity int) error {
	defer r.s.lock()()

	cart := r.s.data.carts[cartID]
	now := time.Now()

	if existing, ok := cart.items[productID]; ok {
		existing.Quantity = quantity
		existing.UpdatedAt = now
		cart.items[productID] = existing
		return nil
	}

	cart.items[productID] = domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	cart.order = append(cart.order, productID)

	return nil
}

func (r fakeCartRepo) DeleteItem(_ context.Context, cartID, productID uuid.UUID) (bool, error) {
	defer r.s.lock()()

	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return false, nil
	}

	if _, ok := cart.items[productID]; !ok {
		return false, nil
	}

	delete(cart.items, productID)
	cart.order = slices.DeleteFunc(cart.order, func(id uuid.UUID) bool { return id == productID })

	return true, nil
}

func (r fakeCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) (int, error) {
	defer r.s.lock()()

	cart, ok := r.s.data.carts[cartID]
	if !ok {
		return 0, nil
	}

	cleared := len(cart.items)
	cart.items = make(map[uuid.UUID]domain.CartItem)
	cart.order = nil

	return cleared, nil
}

func (r fakeCartRepo) TouchCart(_ context.Context, cartID uuid.UUID) error {
	defer r.s.lock()()

	if cart, ok := r.s.data.carts[cartID]; ok {
		cart.updatedAt = time.Now()
	}

	return nil
}

type fakeInventoryRepo struct{ s *fakeStore }

func (r fakeInventoryRepo) GetAvailable(_ context.Context, productID uuid.UUID) (int, bool, error) {
	defer r.s.lock()()

	available, ok := r.s.data.stock[productID]
	return available, ok, nil
}

func (r fakeInventoryRepo) DeductStock(_ context.Context, productID uuid.UUID, quantity int) (bool, error) {
	defer r.s.lock()()

	if len(r.s.data.deductErrs) > 0 {
		err := r.s.data.deductErrs[0]
		r.s.data.deductErrs = r.s.data.deductErrs[1:]
		return false, err
	}

	available, ok := r.s.data.stock[productID]
	if !ok || available < quantity {
		return false, nil
	}

	r.s.data.stock[productID] = available - quantity
	return true, nil
}

type fakeProductRepo struct{ s *fakeStore }

func (r fakeProductRepo) ListProducts(_ context.Context) ([]domain.ProductListing, error) {
	defer r.s.lock()()

	var listings []domain.ProductListing
	for id, product := range r.s.data.products {
		listings = append(listings, domain.ProductListing{
			Product:   product,
			Available: r.s.data.stock[id],
		})
	}
	slices.SortFunc(listings, func(a, b domain.ProductListing) int {
		return strings.Compare(a.Name, b.Name)
	})

	return listings, nil
}

func (r fakeProductRepo) GetProducts(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Product, error) {
	defer r.s.lock()()

	products := make(map[uuid.UUID]domain.Product, len(ids))
	for _, id := range ids {
		if product, ok := r.s.data.products[id]; ok {
			products[id] = product
		}
	}

	return products, nil
}

func (r fakeProductRepo) CreateProduct(_ context.Context, product domain.Product, stock int) error {
	defer r.s.lock()()

	r.s.data.products[product.ID] = product
	r.s.data.stock[product.ID] = stock

	return nil
}

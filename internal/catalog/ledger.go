package catalog

import "context"

// Ledger owns product stock counters. Decrement and increment are
// transactional per call: lock, check, mutate, commit as one unit.
type Ledger interface {
	GetProduct(ctx context.Context, id int64) (*Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	// DecrementStock fails with *InsufficientStockError when stock < quantity
	// and leaves the counter unchanged.
	DecrementStock(ctx context.Context, id int64, quantity int) (*Product, error)
	// IncrementStock is the compensation path: unconditional addition,
	// no ceiling check.
	IncrementStock(ctx context.Context, id int64, quantity int) (*Product, error)
}

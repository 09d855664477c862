package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemLedger keeps products in memory behind a mutex. The mutex plays the
// role of the row lock: read-check-write happens as one unit per call.
// Used by tests and local runs without Postgres.
type MemLedger struct {
	mu       sync.Mutex
	products map[int64]*Product
}

func NewMemLedger(products ...Product) *MemLedger {
	m := &MemLedger{products: make(map[int64]*Product, len(products))}
	for i := range products {
		p := products[i]
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}
		p.UpdatedAt = p.CreatedAt
		m.products[p.ID] = &p
	}
	return m
}

func (m *MemLedger) GetProduct(_ context.Context, id int64) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MemLedger) ListProducts(_ context.Context) ([]Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemLedger) DecrementStock(_ context.Context, id int64, quantity int) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	if p.Stock < quantity {
		return nil, &InsufficientStockError{ProductID: id, Available: p.Stock, Requested: quantity}
	}
	p.Stock -= quantity
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

func (m *MemLedger) IncrementStock(_ context.Context, id int64, quantity int) (*Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.products[id]
	if !ok {
		return nil, ErrProductNotFound
	}
	p.Stock += quantity
	p.UpdatedAt = time.Now().UTC()
	cp := *p
	return &cp, nil
}

package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProduct(id int64, stock int) Product {
	return Product{
		ID:    id,
		Name:  "Wireless Bluetooth Headphones",
		Price: decimal.RequireFromString("79.99"),
		Stock: stock,
	}
}

func TestDecrementStock(t *testing.T) {
	ledger := NewMemLedger(testProduct(1, 50))

	p, err := ledger.DecrementStock(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Stock)
}

func TestDecrementStock_Insufficient(t *testing.T) {
	ledger := NewMemLedger(testProduct(1, 5))

	_, err := ledger.DecrementStock(context.Background(), 1, 6)

	var ise *InsufficientStockError
	require.ErrorAs(t, err, &ise)
	assert.Equal(t, 5, ise.Available)
	assert.Equal(t, 6, ise.Requested)

	// rejected decrement leaves the counter unchanged
	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock)
}

func TestDecrementStock_NotFound(t *testing.T) {
	ledger := NewMemLedger()
	_, err := ledger.DecrementStock(context.Background(), 99, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestIncrementStock_NoCeiling(t *testing.T) {
	ledger := NewMemLedger(testProduct(1, 10))

	// compensation may push stock past any baseline
	p, err := ledger.IncrementStock(context.Background(), 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 1010, p.Stock)
}

func TestDecrementStock_ConcurrentRace(t *testing.T) {
	// Two simultaneous requests for 60 of 100 units: exactly one must win.
	ledger := NewMemLedger(testProduct(1, 100))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.DecrementStock(context.Background(), 1, 60)
		}(i)
	}
	wg.Wait()

	var insufficient *InsufficientStockError
	failures := 0
	for _, err := range errs {
		if err != nil {
			require.True(t, errors.As(err, &insufficient))
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one decrement must fail")

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Stock)
	assert.GreaterOrEqual(t, p.Stock, 0)
}

func TestListProducts_Ordered(t *testing.T) {
	ledger := NewMemLedger(testProduct(3, 1), testProduct(1, 1), testProduct(2, 1))

	ps, err := ledger.ListProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, ps, 3)
	assert.Equal(t, int64(1), ps[0].ID)
	assert.Equal(t, int64(3), ps[2].ID)
}

package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/catalog"
)

func newCatalogServer(products ...catalog.Product) (*httptest.Server, *catalog.MemLedger) {
	ledger := catalog.NewMemLedger(products...)
	router := NewRouter(zap.NewNop())
	h := &CatalogHandler{Ledger: ledger, Log: zap.NewNop()}
	h.Register(router)
	return httptest.NewServer(router), ledger
}

func decodeEnvelope(t *testing.T, resp *http.Response) envelope {
	t.Helper()
	defer resp.Body.Close()
	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return env
}

func headphones(stock int) catalog.Product {
	return catalog.Product{
		ID:    1,
		Name:  "Wireless Bluetooth Headphones",
		Price: decimal.RequireFromString("79.99"),
		Stock: stock,
	}
}

func TestGetProductEndpoint(t *testing.T) {
	srv, _ := newCatalogServer(headphones(50))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/products/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.True(t, env.Success)
}

func TestGetProductEndpoint_NotFound(t *testing.T) {
	srv, _ := newCatalogServer()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/products/123")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	assert.Equal(t, "Product not found", env.Message)
}

func TestDecrementStockEndpoint(t *testing.T) {
	srv, ledger := newCatalogServer(headphones(50))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/products/1/decrement-stock", "application/json",
		strings.NewReader(`{"quantity":20}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 30, p.Stock)
}

func TestDecrementStockEndpoint_Insufficient(t *testing.T) {
	srv, ledger := newCatalogServer(headphones(5))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/products/1/decrement-stock", "application/json",
		strings.NewReader(`{"quantity":6}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	env := decodeEnvelope(t, resp)
	assert.False(t, env.Success)
	require.NotNil(t, env.Available)
	require.NotNil(t, env.Requested)
	assert.Equal(t, 5, *env.Available)
	assert.Equal(t, 6, *env.Requested)

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 5, p.Stock, "rejected decrement must leave stock unchanged")
}

func TestDecrementStockEndpoint_BadQuantity(t *testing.T) {
	srv, _ := newCatalogServer(headphones(5))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/products/1/decrement-stock", "application/json",
		strings.NewReader(`{"quantity":0}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestIncrementStockEndpoint(t *testing.T) {
	srv, ledger := newCatalogServer(headphones(5))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/products/1/increment-stock", "application/json",
		strings.NewReader(`{"quantity":40}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	p, err := ledger.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 45, p.Stock)
}

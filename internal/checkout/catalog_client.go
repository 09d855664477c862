package checkout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/lrencallado/microservices-demo/internal/catalog"
)

// CatalogClient is the saga's remote view of the stock ledger. No automatic
// retries: a retried decrement would double-reserve, so any retry policy
// stays out of this contract.
type CatalogClient interface {
	GetProduct(ctx context.Context, id int64) (*catalog.Product, error)
	ValidateProductStock(ctx context.Context, id int64, quantity int) (*catalog.Product, error)
	DecrementStock(ctx context.Context, id int64, quantity int) (*catalog.Product, error)
	IncrementStock(ctx context.Context, id int64, quantity int) (*catalog.Product, error)
}

type catalogEnvelope struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Available *int             `json:"available,omitempty"`
	Requested *int             `json:"requested,omitempty"`
	Data      *catalog.Product `json:"data,omitempty"`
}

type httpResult struct {
	status int
	body   []byte
}

type HTTPCatalogClient struct {
	baseURL string
	hc      *http.Client
	cb      *gobreaker.CircuitBreaker[httpResult]
}

func NewHTTPCatalogClient(baseURL string) *HTTPCatalogClient {
	return &HTTPCatalogClient{
		baseURL: baseURL,
		hc:      &http.Client{Timeout: 5 * time.Second},
		cb: gobreaker.NewCircuitBreaker[httpResult](gobreaker.Settings{
			Name:    "catalog",
			Timeout: 10 * time.Second,
		}),
	}
}

// do runs one round-trip through the breaker. Only transport failures count
// against the breaker; 4xx responses are business outcomes mapped by the
// callers.
func (c *HTTPCatalogClient) do(ctx context.Context, op, method, path string, payload any) (*catalogEnvelope, int, error) {
	res, err := c.cb.Execute(func() (httpResult, error) {
		var body io.Reader
		if payload != nil {
			b, err := json.Marshal(payload)
			if err != nil {
				return httpResult{}, err
			}
			body = bytes.NewReader(b)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
		if err != nil {
			return httpResult{}, err
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.hc.Do(req)
		if err != nil {
			return httpResult{}, err
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return httpResult{}, err
		}
		return httpResult{status: resp.StatusCode, body: b}, nil
	})
	if err != nil {
		// transport failure, timeout or open breaker
		return nil, 0, &NetworkError{Op: op, Err: err}
	}

	var env catalogEnvelope
	if err := json.Unmarshal(res.body, &env); err != nil {
		return nil, 0, &NetworkError{Op: op, Err: fmt.Errorf("malformed catalog response: %w", err)}
	}
	if res.status >= 500 {
		return nil, 0, &NetworkError{Op: op, Err: fmt.Errorf("catalog returned %d: %s", res.status, env.Message)}
	}
	return &env, res.status, nil
}

func (c *HTTPCatalogClient) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	env, status, err := c.do(ctx, "get product", http.MethodGet, fmt.Sprintf("/products/%d", id), nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || env.Data == nil {
		return nil, catalog.ErrProductNotFound
	}
	return env.Data, nil
}

func (c *HTTPCatalogClient) ValidateProductStock(ctx context.Context, id int64, quantity int) (*catalog.Product, error) {
	p, err := c.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Stock < quantity {
		return nil, &catalog.InsufficientStockError{ProductID: id, Available: p.Stock, Requested: quantity}
	}
	return p, nil
}

type stockRequest struct {
	Quantity int `json:"quantity"`
}

func (c *HTTPCatalogClient) DecrementStock(ctx context.Context, id int64, quantity int) (*catalog.Product, error) {
	return c.mutateStock(ctx, "decrement stock", fmt.Sprintf("/products/%d/decrement-stock", id), id, quantity)
}

func (c *HTTPCatalogClient) IncrementStock(ctx context.Context, id int64, quantity int) (*catalog.Product, error) {
	return c.mutateStock(ctx, "increment stock", fmt.Sprintf("/products/%d/increment-stock", id), id, quantity)
}

func (c *HTTPCatalogClient) mutateStock(ctx context.Context, op, path string, id int64, quantity int) (*catalog.Product, error) {
	env, status, err := c.do(ctx, op, http.MethodPost, path, stockRequest{Quantity: quantity})
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound:
		return nil, catalog.ErrProductNotFound
	case status >= 400:
		ise := &catalog.InsufficientStockError{ProductID: id, Requested: quantity}
		if env.Available != nil {
			ise.Available = *env.Available
		}
		if env.Requested != nil {
			ise.Requested = *env.Requested
		}
		return nil, ise
	case env.Data == nil:
		return nil, &NetworkError{Op: op, Err: fmt.Errorf("catalog response missing product data")}
	}
	return env.Data, nil
}

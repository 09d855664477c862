package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/catalog"
)

// CatalogHandler exposes the stock ledger over HTTP: product reads for
// browsing, locked decrement/increment for the checkout saga.
type CatalogHandler struct {
	Ledger catalog.Ledger
	Log    *zap.Logger
}

func (h *CatalogHandler) Register(r *chi.Mux) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)
	r.Post("/products/{id}/decrement-stock", h.decrementStock)
	r.Post("/products/{id}/increment-stock", h.incrementStock)
}

type stockMutationReq struct {
	Quantity int `json:"quantity"`
}

func productID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *CatalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Ledger.ListProducts(r.Context())
	if err != nil {
		h.Log.Error("list products", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	writeData(w, http.StatusOK, ps)
}

func (h *CatalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	p, err := h.Ledger.GetProduct(r.Context(), id)
	if errors.Is(err, catalog.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}
	if err != nil {
		h.Log.Error("get product", zap.Int64("product_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch product")
		return
	}
	writeData(w, http.StatusOK, p)
}

func (h *CatalogHandler) decrementStock(w http.ResponseWriter, r *http.Request) {
	h.mutateStock(w, r, h.Ledger.DecrementStock)
}

func (h *CatalogHandler) incrementStock(w http.ResponseWriter, r *http.Request) {
	h.mutateStock(w, r, h.Ledger.IncrementStock)
}

func (h *CatalogHandler) mutateStock(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, id int64, quantity int) (*catalog.Product, error),
) {
	id, ok := productID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req stockMutationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Quantity < 1 {
		writeError(w, http.StatusBadRequest, "quantity must be at least 1")
		return
	}

	p, err := op(r.Context(), id, req.Quantity)
	if err != nil {
		var ise *catalog.InsufficientStockError
		switch {
		case errors.Is(err, catalog.ErrProductNotFound):
			writeError(w, http.StatusNotFound, "Product not found")
		case errors.As(err, &ise):
			writeJSON(w, http.StatusBadRequest, envelope{
				Success:   false,
				Message:   ise.Error(),
				Available: &ise.Available,
				Requested: &ise.Requested,
			})
		default:
			h.Log.Error("stock mutation", zap.Int64("product_id", id), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "stock update failed")
		}
		return
	}
	writeData(w, http.StatusOK, p)
}

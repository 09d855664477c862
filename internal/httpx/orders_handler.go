package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/checkout"
	"github.com/lrencallado/microservices-demo/internal/redisx"
)

const (
	maxOrderItems   = 50
	maxItemQuantity = 100
)

// OrderCreator is what the handler needs from the saga.
type OrderCreator interface {
	CreateOrder(ctx context.Context, email string, items []checkout.LineItem) (*checkout.Order, error)
}

type OrdersHandler struct {
	Saga  OrderCreator
	Store checkout.OrderStore
	Redis *redis.Client
	Log   *zap.Logger
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
}

type createOrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type createOrderReq struct {
	Email string            `json:"email"`
	Items []createOrderItem `json:"items"`
}

// validate rejects malformed requests before the saga takes any side effect.
func (req *createOrderReq) validate() error {
	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email == "" {
		return errors.New("email must be a valid address")
	}
	if len(req.Items) < 1 || len(req.Items) > maxOrderItems {
		return fmt.Errorf("items must contain between 1 and %d entries", maxOrderItems)
	}
	for i, it := range req.Items {
		if it.ProductID < 1 {
			return fmt.Errorf("items[%d].product_id must be a positive integer", i)
		}
		if it.Quantity < 1 || it.Quantity > maxItemQuantity {
			return fmt.Errorf("items[%d].quantity must be between 1 and %d", i, maxItemQuantity)
		}
	}
	return nil
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	items := make([]checkout.LineItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, checkout.LineItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.Saga.CreateOrder(r.Context(), req.Email, items)
	if err != nil && !errors.Is(err, checkout.ErrEventPublish) {
		writeError(w, http.StatusInternalServerError, "Failed to create order: "+err.Error())
		return
	}
	// ErrEventPublish: the order is completed, only the notification may not
	// fire. The client still gets its order.

	h.cacheOrder(r.Context(), order)
	writeData(w, http.StatusCreated, order)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	if orderID == "" {
		writeError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeData(w, http.StatusOK, json.RawMessage(s))
			return
		}
	}

	order, err := h.Store.GetOrder(ctx, orderID)
	if errors.Is(err, checkout.ErrOrderNotFound) {
		writeError(w, http.StatusNotFound, "Order not found")
		return
	}
	if err != nil {
		h.Log.Error("get order", zap.String("order_id", orderID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to fetch order")
		return
	}

	h.cacheOrder(ctx, order)
	writeData(w, http.StatusOK, order)
}

func (h *OrdersHandler) cacheOrder(ctx context.Context, order *checkout.Order) {
	if h.Redis == nil || order == nil {
		return
	}
	b, err := json.Marshal(order)
	if err != nil {
		return
	}
	key := fmt.Sprintf(redisx.KeyOrderStatus, order.ID)
	if err := h.Redis.Set(context.WithoutCancel(ctx), key, b, redisx.TTLStatusCache).Err(); err != nil {
		h.Log.Warn("order cache write failed", zap.String("order_id", order.ID), zap.Error(err))
	}
}

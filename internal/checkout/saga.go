package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Publisher hands a serialized event to the bus. Best-effort: an error means
// the transport-level send failed, nothing more.
type Publisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

type LineItem struct {
	ProductID int64
	Quantity  int
}

// Saga drives order creation across the catalog and order domains without a
// shared transaction: validate everything, open a pending order, reserve
// stock item by item, compensate in reverse on failure, finalize and publish
// on success.
type Saga struct {
	catalog   CatalogClient
	store     OrderStore
	publisher Publisher
	log       *zap.Logger
}

func NewSaga(catalog CatalogClient, store OrderStore, publisher Publisher, log *zap.Logger) *Saga {
	return &Saga{catalog: catalog, store: store, publisher: publisher, log: log}
}

// stockReservation is the in-flight record for one line item, alive only for
// the duration of a single CreateOrder call.
type stockReservation struct {
	productID   int64
	quantity    int
	decremented bool
}

// CreateOrder runs the full saga. On return either the order is completed
// and stock reflects every reservation, or the order never reached completed
// and each successful compensation restored its item's stock. A nil error
// other than ErrEventPublish means both the order and the event went through.
func (s *Saga) CreateOrder(ctx context.Context, email string, items []LineItem) (*Order, error) {
	if len(items) == 0 {
		return nil, errors.New("order has no items")
	}

	// Stage 1: validate every line item before any side effect. A failure
	// here needs no compensation: no lock taken, no row written.
	validated := make([]OrderItem, 0, len(items))
	for _, li := range items {
		p, err := s.catalog.ValidateProductStock(ctx, li.ProductID, li.Quantity)
		if err != nil {
			return nil, fmt.Errorf("validate product %d: %w", li.ProductID, err)
		}
		validated = append(validated, OrderItem{
			ProductID:   p.ID,
			ProductName: p.Name,
			Price:       p.Price,
			Quantity:    li.Quantity,
		})
	}

	// Stage 2: exact decimal total.
	total := decimal.Zero
	for _, it := range validated {
		total = total.Add(it.Subtotal())
	}

	// Stage 3: open the order as pending, items included, one transaction.
	order := &Order{
		ID:     uuid.NewString(),
		Email:  email,
		Total:  total,
		Status: StatusPending,
		Items:  validated,
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("open order: %w", err)
	}

	// Stage 4: reserve stock strictly sequentially. Compensation needs a
	// well-defined reverse order, so items are never decremented in parallel.
	reservations := make([]stockReservation, 0, len(validated))
	for _, it := range validated {
		if _, err := s.catalog.DecrementStock(ctx, it.ProductID, it.Quantity); err != nil {
			rerr := &ReservationError{
				ProductID:     it.ProductID,
				Cause:         err,
				Compensations: s.compensate(ctx, reservations),
			}
			s.markFailed(ctx, order)
			return nil, rerr
		}
		reservations = append(reservations, stockReservation{
			productID:   it.ProductID,
			quantity:    it.Quantity,
			decremented: true,
		})
	}

	// Stage 5: finalize. If the store cannot mark the order completed, the
	// reservations are released again and the order ends failed.
	if err := s.store.UpdateStatus(ctx, order.ID, StatusCompleted); err != nil {
		rerr := &ReservationError{
			Cause:         fmt.Errorf("finalize order: %w", err),
			Compensations: s.compensate(ctx, reservations),
		}
		s.markFailed(ctx, order)
		return nil, rerr
	}
	order.Status = StatusCompleted

	event := NewOrderCreatedEvent(order)
	payload, err := json.Marshal(event)
	if err != nil {
		return order, fmt.Errorf("%w: %v", ErrEventPublish, err)
	}
	if err := s.publisher.Publish(ctx, []byte(order.ID), payload); err != nil {
		// The order stays completed. Publishing covers notification only,
		// not the stock consistency guarantee.
		s.log.Warn("order completed but event publish failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return order, fmt.Errorf("%w: %v", ErrEventPublish, err)
	}

	return order, nil
}

// compensate rolls back reservations in reverse order. A failed increment is
// logged as a critical inconsistency and does not stop the remaining
// rollbacks. Runs detached from the caller's deadline: a timed-out saga
// still has to release what it reserved.
func (s *Saga) compensate(ctx context.Context, reservations []stockReservation) []CompensationOutcome {
	ctx = context.WithoutCancel(ctx)
	outcomes := make([]CompensationOutcome, 0, len(reservations))
	for i := len(reservations) - 1; i >= 0; i-- {
		r := reservations[i]
		if !r.decremented {
			continue
		}
		_, err := s.catalog.IncrementStock(ctx, r.productID, r.quantity)
		if err != nil {
			s.log.Error("stock compensation failed, manual correction required",
				zap.Int64("product_id", r.productID),
				zap.Int("quantity", r.quantity),
				zap.Error(err))
		}
		outcomes = append(outcomes, CompensationOutcome{
			ProductID: r.productID,
			Quantity:  r.quantity,
			Err:       err,
		})
	}
	return outcomes
}

// markFailed records the saga's truthful outcome; the order must not linger
// as pending after an abort.
func (s *Saga) markFailed(ctx context.Context, order *Order) {
	if err := s.store.UpdateStatus(context.WithoutCancel(ctx), order.ID, StatusFailed); err != nil {
		s.log.Error("could not mark order failed",
			zap.String("order_id", order.ID), zap.Error(err))
		return
	}
	order.Status = StatusFailed
}

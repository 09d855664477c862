package checkout

import (
	"time"

	"github.com/shopspring/decimal"
)

const TopicOrderCreated = "orders.created"

// OrderCreatedEvent is the bus payload for a completed order, built once at
// finalization and never mutated afterwards. There is no event id or dedup
// key: delivery is at-least-once and consumers see duplicates as-is.
type OrderCreatedEvent struct {
	OrderID   string          `json:"order_id"`
	Email     string          `json:"email"`
	Total     decimal.Decimal `json:"total"`
	Items     []EventItem     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

type EventItem struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	items := make([]EventItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, EventItem{
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}
	return OrderCreatedEvent{
		OrderID:   o.ID,
		Email:     o.Email,
		Total:     o.Total,
		Items:     items,
		CreatedAt: o.CreatedAt,
	}
}

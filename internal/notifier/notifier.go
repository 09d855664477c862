package notifier

import (
	"context"
	"encoding/json"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/checkout"
)

// Mailer is the notification side effect triggered per event.
type Mailer interface {
	SendOrderConfirmation(ctx context.Context, event checkout.OrderCreatedEvent) error
}

// Notifier turns OrderCreated events into confirmation emails. There is no
// dedup: at-least-once delivery means a redelivered event sends the email
// again. That is a known limitation of the event schema, which carries no
// idempotency key.
type Notifier struct {
	Mailer Mailer
	Log    *zap.Logger
}

// HandleOrderCreated is the consumer handler. Undecodable payloads are
// logged and skipped so the subscription loop never dies on bad input.
func (n *Notifier) HandleOrderCreated(ctx context.Context, m kafkago.Message) error {
	var event checkout.OrderCreatedEvent
	if err := json.Unmarshal(m.Value, &event); err != nil {
		n.Log.Warn("skipping undecodable order event",
			zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if event.Email == "" {
		n.Log.Warn("skipping order event without email",
			zap.String("order_id", event.OrderID))
		return nil
	}

	if err := n.Mailer.SendOrderConfirmation(ctx, event); err != nil {
		return err
	}
	n.Log.Info("order confirmation sent",
		zap.String("order_id", event.OrderID),
		zap.String("email", event.Email))
	return nil
}

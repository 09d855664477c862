package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lrencallado/microservices-demo/internal/checkout"
)

type fakeMailer struct {
	sent []checkout.OrderCreatedEvent
	err  error
}

func (f *fakeMailer) SendOrderConfirmation(_ context.Context, event checkout.OrderCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, event)
	return nil
}

func orderCreatedMessage(t *testing.T) kafkago.Message {
	t.Helper()
	event := checkout.OrderCreatedEvent{
		OrderID: "3d7c9a40-0000-4000-8000-000000000042",
		Email:   "a@b.com",
		Total:   decimal.RequireFromString("24.98"),
		Items: []checkout.EventItem{
			{ProductName: "Wireless Bluetooth Headphones", Quantity: 2, Price: decimal.RequireFromString("9.99")},
			{ProductName: "Laptop Stand Aluminum", Quantity: 1, Price: decimal.RequireFromString("5.00")},
		},
		CreatedAt: time.Now().UTC(),
	}
	b, err := json.Marshal(event)
	require.NoError(t, err)
	return kafkago.Message{Topic: checkout.TopicOrderCreated, Value: b}
}

func TestHandleOrderCreated(t *testing.T) {
	mailer := &fakeMailer{}
	n := &Notifier{Mailer: mailer, Log: zap.NewNop()}

	err := n.HandleOrderCreated(context.Background(), orderCreatedMessage(t))

	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@b.com", mailer.sent[0].Email)
	assert.Len(t, mailer.sent[0].Items, 2)
}

func TestHandleOrderCreated_DuplicateDeliverySendsTwice(t *testing.T) {
	// At-least-once delivery with no idempotency key on the event: a
	// redelivered message triggers the side effect again.
	mailer := &fakeMailer{}
	n := &Notifier{Mailer: mailer, Log: zap.NewNop()}
	msg := orderCreatedMessage(t)

	require.NoError(t, n.HandleOrderCreated(context.Background(), msg))
	require.NoError(t, n.HandleOrderCreated(context.Background(), msg))

	assert.Len(t, mailer.sent, 2)
}

func TestHandleOrderCreated_UndecodableIsSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	n := &Notifier{Mailer: mailer, Log: zap.NewNop()}

	err := n.HandleOrderCreated(context.Background(), kafkago.Message{Value: []byte("{not json")})

	assert.NoError(t, err, "bad payloads are skipped, never crash the loop")
	assert.Empty(t, mailer.sent)
}

func TestHandleOrderCreated_MissingEmailIsSkipped(t *testing.T) {
	mailer := &fakeMailer{}
	n := &Notifier{Mailer: mailer, Log: zap.NewNop()}

	err := n.HandleOrderCreated(context.Background(), kafkago.Message{Value: []byte(`{"order_id":"x"}`)})

	assert.NoError(t, err)
	assert.Empty(t, mailer.sent)
}

func TestHandleOrderCreated_MailerFailure(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("smtp relay down")}
	n := &Notifier{Mailer: mailer, Log: zap.NewNop()}

	err := n.HandleOrderCreated(context.Background(), orderCreatedMessage(t))

	assert.Error(t, err, "mail failures bubble up so the offset is not committed")
}

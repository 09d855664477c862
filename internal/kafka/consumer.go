package kafka

import (
	"context"
	"errors"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Handler returns nil only when the message was processed and its offset may
// be committed. Delivery is at-least-once: a handler may see the same
// message again.
type Handler func(ctx context.Context, m kafka.Message) error

type Consumer struct {
	r   *kafka.Reader
	log *zap.Logger
}

func NewConsumer(brokers []string, group, topic string, log *zap.Logger) *Consumer {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		GroupID:        group,
		Topic:          topic,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: 0, // manual commit
	})
	return &Consumer{r: r, log: log}
}

// Start consumes one message at a time, in arrival order, until ctx is
// cancelled. Handler errors are logged and the loop moves on; the offset is
// not committed, so the message may come back.
func (c *Consumer) Start(ctx context.Context, h Handler) error {
	defer c.r.Close()

	for {
		m, err := c.r.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if err := h(ctx, m); err != nil {
			c.log.Error("handler failed",
				zap.String("topic", m.Topic),
				zap.Int64("offset", m.Offset),
				zap.Error(err))
			continue
		}
		if err := c.r.CommitMessages(ctx, m); err != nil {
			c.log.Error("commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
		}
	}
}

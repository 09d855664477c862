package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/lrencallado/microservices-demo/internal/checkout"
)

// SMTPMailer sends plain-text confirmations through a relay. Template
// rendering lives with the email service, not here.
type SMTPMailer struct {
	Addr string
	From string
}

func (s *SMTPMailer) SendOrderConfirmation(_ context.Context, event checkout.OrderCreatedEvent) error {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.From)
	fmt.Fprintf(&b, "To: %s\r\n", event.Email)
	fmt.Fprintf(&b, "Subject: Order Confirmation %s\r\n\r\n", event.OrderID)
	fmt.Fprintf(&b, "Thank you for your order!\r\n\r\n")
	for _, it := range event.Items {
		fmt.Fprintf(&b, "  %dx %s @ %s\r\n", it.Quantity, it.ProductName, it.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "\r\nTotal: %s\r\n", event.Total.StringFixed(2))

	if err := smtp.SendMail(s.Addr, nil, s.From, []string{event.Email}, []byte(b.String())); err != nil {
		return fmt.Errorf("send confirmation for order %s: %w", event.OrderID, err)
	}
	return nil
}

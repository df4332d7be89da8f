package email

import (
	"context"
	"fmt"

	"bistrobook/internal/kafka"
)

type Sender struct{}

func NewSender() *Sender {
	return &Sender{}
}

func (s *Sender) SendBooking(ctx context.Context, event kafka.BookingEvent) error {
	if event.Email == "" {
		return nil
	}
	fmt.Printf("send email to %s about %s for table %d at %s\n", event.Email, event.Type, event.TableID, event.BookingTime)
	return nil
}

func (s *Sender) SendOrder(ctx context.Context, event kafka.OrderEvent) error {
	if event.Email == "" {
		return nil
	}
	fmt.Printf("send email to %s about %s for order %d, total %s\n", event.Email, event.Type, event.OrderID, event.Total)
	return nil
}

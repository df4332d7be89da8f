package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
)

// EventHandler receives decoded notification events. A nil callback means
// that event family is ignored.
type EventHandler struct {
	Booking func(ctx context.Context, event BookingEvent) error
	Order   func(ctx context.Context, event OrderEvent) error
}

type Consumer struct {
	reader *kafka.Reader
	log    *logrus.Logger
}

func NewConsumer(brokers []string, groupID, topic string, log *logrus.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           groupID,
			Topic:             topic,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
		log: log,
	}
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads until the context is canceled or the reader fails. A message
// that cannot be decoded or handled is logged and skipped; one bad event
// must not stall the notification stream.
func (c *Consumer) Consume(ctx context.Context, handler EventHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		if err := dispatch(ctx, msg.Value, handler); err != nil {
			c.log.WithError(err).WithField("topic", msg.Topic).Warn("failed to handle event")
		}
	}
}

// dispatch routes a raw payload to the matching handler by the event type
// prefix ("booking_created", "order_created", ...).
func dispatch(ctx context.Context, payload []byte, handler EventHandler) error {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return fmt.Errorf("decode event envelope: %w", err)
	}

	switch {
	case strings.HasPrefix(envelope.Type, "booking_"):
		if handler.Booking == nil {
			return nil
		}
		var event BookingEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("decode booking event: %w", err)
		}
		return handler.Booking(ctx, event)
	case strings.HasPrefix(envelope.Type, "order_"):
		if handler.Order == nil {
			return nil
		}
		var event OrderEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("decode order event: %w", err)
		}
		return handler.Order(ctx, event)
	}
	return fmt.Errorf("unknown event type %q", envelope.Type)
}

package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

type BookingEvent struct {
	EventID     string    `json:"event_id"`
	Type        string    `json:"type"`
	BookingID   int64     `json:"booking_id"`
	TableID     int64     `json:"table_id"`
	CustomerID  int64     `json:"customer_id"`
	Email       string    `json:"email"`
	BookingTime time.Time `json:"booking_time"`
	Guests      int       `json:"guests"`
	Status      string    `json:"status"`
}

type OrderEvent struct {
	EventID    string `json:"event_id"`
	Type       string `json:"type"`
	OrderID    int64  `json:"order_id"`
	CustomerID int64  `json:"customer_id"`
	Email      string `json:"email"`
	Total      string `json:"total"`
	Status     string `json:"status"`
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

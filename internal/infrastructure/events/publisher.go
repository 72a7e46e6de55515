// Package events publishes sale and payment events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventType names a sale lifecycle event
type EventType string

const (
	EventSaleCreated     EventType = "sale.created"
	EventSaleUpdated     EventType = "sale.updated"
	EventSaleCancelled   EventType = "sale.cancelled"
	EventSaleDeleted     EventType = "sale.deleted"
	EventPaymentRecorded EventType = "payment.recorded"
)

// Event is the message written to the sales topic
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	SaleID    string          `json:"sale_id"`
	UserID    string          `json:"user_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewEvent builds an event with a fresh ID. data is marshalled to JSON.
func NewEvent(eventType EventType, saleID, userID uuid.UUID, data any) (*Event, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SaleID:    saleID.String(),
		UserID:    userID.String(),
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}, nil
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) Publisher {
	if len(cfg.Brokers) == 0 {
		logger.Info("kafka brokers not configured, sale events are disabled")
		return NoopPublisher{}
	}
	return NewKafkaPublisher(cfg, logger)
}

// KafkaPublisher writes events to a Kafka topic keyed by sale ID
type KafkaPublisher struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewKafkaPublisher creates a new Kafka-based event publisher
func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.SalesTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}
	return &KafkaPublisher{writer: writer, logger: logger}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event *Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SaleID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return err
	}

	p.logger.Debug("event published",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.String("sale_id", event.SaleID),
	)
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NoopPublisher discards every event
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, *Event) error { return nil }

func (NoopPublisher) Close() error { return nil }

package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

// Publishing runs on the request path; a slow or unreachable cluster costs a
// caller at most PublishTimeout before the event is dropped.
const (
	PublishTimeout = 2 * time.Second
	MaxAttempts    = 3
)

// Writer is the subset of *kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Publisher forwards shipment domain events to a Kafka topic, keyed by shipment id
// so events of one shipment stay ordered within a partition.
type Publisher struct {
	writer  Writer
	timeout time.Duration
}

// NewPublisher dials the given brokers lazily; nothing is sent until Publish.
func NewPublisher(brokers []string, topic string) (*Publisher, error) {
	addrs := make([]string, 0, len(brokers))
	for _, b := range brokers {
		if b = strings.TrimSpace(b); b != "" {
			addrs = append(addrs, b)
		}
	}
	if len(addrs) == 0 {
		return nil, errors.New("at least one kafka broker is required")
	}
	if strings.TrimSpace(topic) == "" {
		return nil, errors.New("kafka topic is required")
	}
	return NewPublisherWithWriter(&kafka.Writer{
		Addr:         kafka.TCP(addrs...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
		WriteTimeout: PublishTimeout,
		ReadTimeout:  PublishTimeout,
		MaxAttempts:  MaxAttempts,
	}), nil
}

// NewPublisherWithWriter wraps an existing writer.
func NewPublisherWithWriter(w Writer) *Publisher {
	return &Publisher{writer: w, timeout: PublishTimeout}
}

type envelope struct {
	Name    string       `json:"name"`
	Payload domain.Event `json:"payload"`
}

// Publish writes all events in one batch within PublishTimeout.
func (p *Publisher) Publish(ctx context.Context, events ...domain.Event) error {
	if p == nil || p.writer == nil {
		return errors.New("kafka publisher not configured")
	}
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, event := range events {
		value, err := json.Marshal(envelope{Name: event.EventName(), Payload: event})
		if err != nil {
			return fmt.Errorf("encode %s: %w", event.EventName(), err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(event.AggregateID()),
			Value: value,
			Time:  event.OccurredAt(),
			Headers: []kafka.Header{
				{Key: "event-name", Value: []byte(event.EventName())},
			},
		})
	}
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write shipment events: %w", err)
	}
	return nil
}

// Close flushes and closes the writer.
func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

var _ ports.EventPublisher = (*Publisher)(nil)

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/segmentio/kafka-go"
)

const (
	DefaultTopic = "storefront-checkout"

	EventCheckoutCompleted = "CheckoutCompleted"
)

// Publisher announces completed checkouts to downstream consumers.
type Publisher interface {
	PublishCheckout(ctx context.Context, r domain.Receipt) error
	Close() error
}

// MessageWriter is the part of *kafka.Writer the publisher uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type CheckoutCompleted struct {
	ReceiptID   string            `json:"receipt_id"`
	SessionID   string            `json:"session_id"`
	Items       []domain.CartLine `json:"items"`
	TotalItems  int               `json:"total_items"`
	TotalPrice  string            `json:"total_price"`
	CompletedAt time.Time         `json:"completed_at"`
}

type KafkaPublisher struct {
	writer MessageWriter
}

// NewKafkaPublisher writes to topic on brokers. errorLogger receives the
// writer's internal errors and may be nil.
func NewKafkaPublisher(topic string, brokers []string, errorLogger kafka.Logger) *KafkaPublisher {
	if topic == "" {
		topic = DefaultTopic
	}
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
		WriteTimeout:           10 * time.Second,
		ErrorLogger:            errorLogger,
	}
	return NewPublisherWithWriter(w)
}

func NewPublisherWithWriter(w MessageWriter) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

func (p *KafkaPublisher) PublishCheckout(ctx context.Context, r domain.Receipt) error {
	payload, err := json.Marshal(CheckoutCompleted{
		ReceiptID:   r.ID,
		SessionID:   r.SessionID,
		Items:       r.Lines,
		TotalItems:  r.TotalItems,
		TotalPrice:  r.TotalPrice.StringFixed(2),
		CompletedAt: r.CompletedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal checkout event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(r.SessionID), // keeps one session's events ordered
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(EventCheckoutCompleted)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish checkout event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// NopPublisher is used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) PublishCheckout(context.Context, domain.Receipt) error { return nil }
func (NopPublisher) Close() error                                        { return nil }

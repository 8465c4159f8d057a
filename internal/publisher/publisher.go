package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prohmpiriya/career-passport/pkg/kafka"
)

// Domain event types
const (
	EventCreated             = "event.created"
	EventUpdated             = "event.updated"
	EventDeleted             = "event.deleted"
	ApplicationSubmitted     = "application.submitted"
	ApplicationStatusChanged = "application.status_changed"
	MessageSent              = "message.sent"
	MatchCreated             = "match.created"
	MatchStatusChanged       = "match.status_changed"
)

// Envelope is the JSON body of every published domain event
type Envelope struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`
	Key        string      `json:"key"`
	OccurredAt time.Time   `json:"occurredAt"`
	Payload    interface{} `json:"payload"`
}

// Publisher fans domain events out to downstream consumers
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload interface{}) error
	Close(ctx context.Context) error
}

// Producer is the subset of the Kafka producer the publisher needs
type Producer interface {
	Produce(ctx context.Context, msg kafka.Message) error
	Close(ctx context.Context) error
}

// KafkaPublisher writes envelopes to Kafka keyed by entity id
type KafkaPublisher struct {
	producer Producer
	topic    string
	now      func() time.Time
}

// NewKafkaPublisher wraps producer. An empty topic uses the producer default.
func NewKafkaPublisher(producer Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, now: time.Now}
}

func (p *KafkaPublisher) Publish(ctx context.Context, eventType, key string, payload interface{}) error {
	env := Envelope{
		ID:         uuid.New().String(),
		Type:       eventType,
		Key:        key,
		OccurredAt: p.now().UTC(),
		Payload:    payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", eventType, err)
	}

	err = p.producer.Produce(ctx, kafka.Message{
		Topic: p.topic,
		Key:   key,
		Value: value,
		Headers: map[string]string{
			"event-type": eventType,
			"event-id":   env.ID,
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}
	return nil
}

func (p *KafkaPublisher) Close(ctx context.Context) error {
	return p.producer.Close(ctx)
}

// Noop discards every event
type Noop struct{}

func (Noop) Publish(context.Context, string, string, interface{}) error { return nil }

func (Noop) Close(context.Context) error { return nil }

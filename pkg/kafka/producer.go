package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"
)

// Config holds producer settings
type Config struct {
	Brokers      []string
	ClientID     string
	Topic        string
	Linger       time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns local development defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:      []string{"localhost:9092"},
		ClientID:     "career-passport",
		Topic:        "career-passport.events",
		Linger:       5 * time.Millisecond,
		WriteTimeout: 10 * time.Second,
	}
}

// Message is one record to produce
type Message struct {
	Topic   string // empty uses the producer's default topic
	Key     string
	Value   []byte
	Headers map[string]string
}

// Producer wraps a franz-go client configured for producing
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer creates the client and checks that a broker is reachable
func NewProducer(ctx context.Context, cfg *Config) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka: at least one broker is required")
	}

	opts := []kgo.Opt{
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ClientID(cfg.ClientID),
		kgo.DefaultProduceTopic(cfg.Topic),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(cfg.Linger),
	}
	if cfg.WriteTimeout > 0 {
		opts = append(opts, kgo.ProduceRequestTimeout(cfg.WriteTimeout))
	}

	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka client: %w", err)
	}

	if err := client.Ping(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach kafka brokers %v: %w", cfg.Brokers, err)
	}

	return &Producer{client: client, topic: cfg.Topic}, nil
}

// NewRecord converts a Message into a kgo record
func NewRecord(msg Message) *kgo.Record {
	rec := &kgo.Record{
		Topic: msg.Topic,
		Value: msg.Value,
	}
	if msg.Key != "" {
		rec.Key = []byte(msg.Key)
	}
	for k, v := range msg.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return rec
}

// Produce writes msg and waits for the broker acknowledgement
func (p *Producer) Produce(ctx context.Context, msg Message) error {
	rec := NewRecord(msg)
	if rec.Topic == "" {
		rec.Topic = p.topic
	}
	if err := p.client.ProduceSync(ctx, rec).FirstErr(); err != nil {
		return fmt.Errorf("failed to produce to %s: %w", rec.Topic, err)
	}
	return nil
}

// Ping checks broker connectivity
func (p *Producer) Ping(ctx context.Context) error {
	return p.client.Ping(ctx)
}

// Close flushes buffered records and closes the client
func (p *Producer) Close(ctx context.Context) error {
	err := p.client.Flush(ctx)
	p.client.Close()
	return err
}

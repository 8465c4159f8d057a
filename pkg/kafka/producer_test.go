package kafka

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	rec := NewRecord(Message{
		Key:     "evt-1",
		Value:   []byte(`{"type":"event.created"}`),
		Headers: map[string]string{"event-type": "event.created"},
	})

	assert.Equal(t, []byte("evt-1"), rec.Key)
	assert.Equal(t, `{"type":"event.created"}`, string(rec.Value))
	require.Len(t, rec.Headers, 1)
	assert.Equal(t, "event-type", rec.Headers[0].Key)
	assert.Equal(t, "event.created", string(rec.Headers[0].Value))
	assert.Empty(t, rec.Topic)
}

func TestNewRecord_NoKey(t *testing.T) {
	rec := NewRecord(Message{Topic: "other", Value: []byte("x")})
	assert.Nil(t, rec.Key)
	assert.Equal(t, "other", rec.Topic)
}

func TestNewProducer_NoBrokers(t *testing.T) {
	_, err := NewProducer(context.Background(), &Config{})
	assert.Error(t, err)
}

func TestProducer_Integration(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test. Set INTEGRATION_TEST=true to run")
	}

	cfg := DefaultConfig()
	if brokers := os.Getenv("TEST_KAFKA_BROKERS"); brokers != "" {
		cfg.Brokers = strings.Split(brokers, ",")
	}
	cfg.Topic = "career-passport.test"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	p, err := NewProducer(ctx, cfg)
	require.NoError(t, err)
	defer p.Close(ctx)

	require.NoError(t, p.Produce(ctx, Message{Key: "k", Value: []byte("v")}))
}

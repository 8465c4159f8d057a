package logger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("nonsense"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestWithContext_ContextValues(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewWithCore(core, "career-passport")

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = ContextWithWallet(ctx, "0xabc")
	log.WithContext(ctx).Info("hello")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "career-passport", fields["service"])
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "0xabc", fields["wallet_address"])
	assert.NotContains(t, fields, "trace_id")
}

func TestWithContext_SpanWins(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := NewWithCore(core, "svc")

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	ctx := context.WithValue(context.Background(), TraceIDKey, "from-value")
	ctx, span := tp.Tracer("test").Start(ctx, "op")
	defer span.End()

	log.WithContext(ctx).Info("traced")

	fields := logs.All()[0].ContextMap()
	assert.Equal(t, span.SpanContext().TraceID().String(), fields["trace_id"])
	assert.Equal(t, span.SpanContext().SpanID().String(), fields["span_id"])
}

func TestWithContext_NothingToAdd(t *testing.T) {
	log := NewNop()
	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(&Config{Level: "debug", ServiceName: "svc", OutputPath: path})
	require.NoError(t, err)
	assert.Equal(t, "svc", log.ServiceName())
	log.Debug("written")
	require.NoError(t, log.Sync())
}

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func setupTelemetryDisabled(t *testing.T) {
	t.Helper()
	_, err := Init(context.Background(), &Config{Enabled: false, ServiceName: "test-service"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Shutdown(context.Background()) })
}

func TestInit_Disabled(t *testing.T) {
	ctx := context.Background()

	tel, err := Init(ctx, nil)
	require.NoError(t, err)
	assert.NotNil(t, tel.Tracer())
	assert.NotNil(t, tel.Meter())

	cfg := &Config{Enabled: false, ServiceName: "test-service"}
	tel, err = Init(ctx, cfg)
	require.NoError(t, err)
	assert.Nil(t, tel.tracerProvider)
	assert.Nil(t, tel.meterProvider)
	assert.Equal(t, tel, Get())
}

func TestShutdown_NilGlobal(t *testing.T) {
	globalTelemetry = nil
	assert.NoError(t, Shutdown(context.Background()))
}

func TestStartSpan_NilGlobal(t *testing.T) {
	globalTelemetry = nil
	ctx := context.Background()

	newCtx, span := StartSpan(ctx, "test-span")
	require.NotNil(t, span)
	assert.Equal(t, span, trace.SpanFromContext(newCtx))
	assert.NotPanics(t, func() { EndSpan(span, nil) })
}

func TestStartSpan_RecordsOnTracer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	globalTelemetry = &Telemetry{tracer: provider.Tracer("test")}
	t.Cleanup(func() { globalTelemetry = nil })

	ctx, span := StartSpan(context.Background(), "passport.read", trace.WithAttributes(WalletAttr("0xabc")))
	assert.True(t, trace.SpanContextFromContext(ctx).HasTraceID())
	EndSpan(span, errors.New("rpc down"))

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "passport.read", ended[0].Name())
	assert.Equal(t, otelcodes.Error, ended[0].Status().Code)
	assert.Contains(t, ended[0].Attributes(), attribute.String(AttrWallet, "0xabc"))
}

func TestEndSpan_Ok(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := provider.Tracer("test").Start(context.Background(), "ok")

	EndSpan(span, nil)

	require.Len(t, recorder.Ended(), 1)
	assert.Equal(t, otelcodes.Ok, recorder.Ended()[0].Status().Code)
}

func TestConfig_ServiceName(t *testing.T) {
	var nilCfg *Config
	assert.Equal(t, "career-passport", nilCfg.serviceName())
	assert.Equal(t, "career-passport", (&Config{}).serviceName())
	assert.Equal(t, "passport-api", (&Config{ServiceName: "passport-api"}).serviceName())
}

func TestGetMeter_NilGlobal(t *testing.T) {
	globalTelemetry = nil
	assert.NotNil(t, GetMeter())
}

func TestSampler(t *testing.T) {
	assert.Equal(t, sdktrace.AlwaysSample().Description(), sampler(1).Description())
	assert.Equal(t, sdktrace.NeverSample().Description(), sampler(0).Description())
	assert.Equal(t, sdktrace.TraceIDRatioBased(0.5).Description(), sampler(0.5).Description())
}

func TestMetricWrappers_Disabled(t *testing.T) {
	setupTelemetryDisabled(t)
	ctx := context.Background()

	counter, err := NewCounter(MetricOpts{Name: "test_counter", Unit: "1"})
	require.NoError(t, err)
	counter.Inc(ctx, WalletAttr("0xabc"))
	counter.Add(ctx, 3)

	histogram, err := NewHistogram(MetricOpts{Name: "test_histogram", Unit: "s"})
	require.NoError(t, err)
	histogram.Record(ctx, 0.25, PathAttr("/api/events"))

	updown, err := NewUpDownCounter(MetricOpts{Name: "test_updown", Unit: "1"})
	require.NoError(t, err)
	updown.Inc(ctx)
	updown.Dec(ctx)
}

func TestGetMetrics(t *testing.T) {
	setupTelemetryDisabled(t)

	m, err := GetMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.NotNil(t, m.RequestDuration)
	assert.NotNil(t, m.ApplicationsSubmitted)
	assert.NotNil(t, m.ChainReadRecoveries)
	assert.NotNil(t, m.CacheFallbacks)

	again, err := GetMetrics()
	require.NoError(t, err)
	assert.Same(t, m, again)
}

func TestAttributeHelpers(t *testing.T) {
	tests := []struct {
		name     string
		got      attribute.KeyValue
		expected attribute.KeyValue
	}{
		{"MethodAttr", MethodAttr("GET"), attribute.String(AttrMethod, "GET")},
		{"PathAttr", PathAttr("/api/events"), attribute.String(AttrPath, "/api/events")},
		{"StatusCodeAttr", StatusCodeAttr(201), attribute.Int(AttrStatusCode, 201)},
		{"ErrorTypeAttr", ErrorTypeAttr("validation"), attribute.String(AttrErrorType, "validation")},
		{"EventIDAttr", EventIDAttr("evt_1"), attribute.String(AttrEventID, "evt_1")},
		{"WalletAttr", WalletAttr("0xdef"), attribute.String(AttrWallet, "0xdef")},
		{"ApplicationStatusAttr", ApplicationStatusAttr("pending"), attribute.String(AttrApplication, "pending")},
		{"RecoveryStageAttr", RecoveryStageAttr("pinned"), attribute.String(AttrRecoveryStage, "pinned")},
		{"ChainMethodAttr", ChainMethodAttr("ownerOf"), attribute.String(AttrChainMethod, "ownerOf")},
		{"ReadSourceAttr", ReadSourceAttr("cache"), attribute.String(AttrReadSource, "cache")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected.Key, tt.got.Key)
			assert.Equal(t, tt.expected.Value, tt.got.Value)
		})
	}
}

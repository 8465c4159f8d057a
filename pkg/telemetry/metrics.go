package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// MetricOpts holds options for creating metrics
type MetricOpts struct {
	Name        string
	Description string
	Unit        string
}

// Counter wraps an OTel counter for easier use
type Counter struct {
	counter metric.Int64Counter
}

// NewCounter creates a new counter metric
func NewCounter(opts MetricOpts) (*Counter, error) {
	counter, err := GetMeter().Int64Counter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Counter{counter: counter}, nil
}

// Add increments the counter by the given value
func (c *Counter) Add(ctx context.Context, value int64, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

// Inc increments the counter by 1
func (c *Counter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Histogram wraps an OTel histogram for easier use
type Histogram struct {
	histogram metric.Float64Histogram
}

// NewHistogram creates a new histogram metric
func NewHistogram(opts MetricOpts) (*Histogram, error) {
	histogram, err := GetMeter().Float64Histogram(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &Histogram{histogram: histogram}, nil
}

// Record records a value in the histogram
func (h *Histogram) Record(ctx context.Context, value float64, attrs ...attribute.KeyValue) {
	h.histogram.Record(ctx, value, metric.WithAttributes(attrs...))
}

// UpDownCounter wraps an OTel up-down counter for easier use
type UpDownCounter struct {
	counter metric.Int64UpDownCounter
}

// NewUpDownCounter creates a new up-down counter metric
func NewUpDownCounter(opts MetricOpts) (*UpDownCounter, error) {
	counter, err := GetMeter().Int64UpDownCounter(
		opts.Name,
		metric.WithDescription(opts.Description),
		metric.WithUnit(opts.Unit),
	)
	if err != nil {
		return nil, err
	}
	return &UpDownCounter{counter: counter}, nil
}

// Inc increments the counter by 1
func (c *UpDownCounter) Inc(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// Dec decrements the counter by 1
func (c *UpDownCounter) Dec(ctx context.Context, attrs ...attribute.KeyValue) {
	c.counter.Add(ctx, -1, metric.WithAttributes(attrs...))
}

// Metric names
const (
	MetricHTTPRequestDuration     = "passport_http_request_duration_seconds"
	MetricHTTPInflight            = "passport_http_requests_inflight"
	MetricApplicationsSubmitted   = "passport_applications_submitted_total"
	MetricChainReadRecoveries     = "passport_chain_read_recoveries_total"
	MetricCacheFallbacks          = "passport_cache_fallbacks_total"
	MetricDomainEventsPublishFail = "passport_domain_events_publish_failures_total"
)

// Common metric attribute keys
const (
	AttrMethod        = "http.method"
	AttrPath          = "http.path"
	AttrStatusCode    = "http.status_code"
	AttrErrorType     = "error.type"
	AttrEventID       = "event.id"
	AttrWallet        = "wallet.address"
	AttrApplication   = "application.status"
	AttrRecoveryStage = "chain.recovery_stage"
	AttrChainMethod   = "chain.method"
	AttrReadSource    = "passport.source"
)

func MethodAttr(method string) attribute.KeyValue {
	return attribute.String(AttrMethod, method)
}

func PathAttr(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

func StatusCodeAttr(code int) attribute.KeyValue {
	return attribute.Int(AttrStatusCode, code)
}

func ErrorTypeAttr(errType string) attribute.KeyValue {
	return attribute.String(AttrErrorType, errType)
}

func EventIDAttr(eventID string) attribute.KeyValue {
	return attribute.String(AttrEventID, eventID)
}

func WalletAttr(wallet string) attribute.KeyValue {
	return attribute.String(AttrWallet, wallet)
}

func ApplicationStatusAttr(status string) attribute.KeyValue {
	return attribute.String(AttrApplication, status)
}

func RecoveryStageAttr(stage string) attribute.KeyValue {
	return attribute.String(AttrRecoveryStage, stage)
}

func ChainMethodAttr(method string) attribute.KeyValue {
	return attribute.String(AttrChainMethod, method)
}

func ReadSourceAttr(source string) attribute.KeyValue {
	return attribute.String(AttrReadSource, source)
}

// Metrics is the set of instruments the API records
type Metrics struct {
	RequestDuration       *Histogram
	Inflight              *UpDownCounter
	ApplicationsSubmitted *Counter
	ChainReadRecoveries   *Counter
	CacheFallbacks        *Counter
	PublishFailures       *Counter
}

var (
	metricsOnce sync.Once
	metrics     *Metrics
	metricsErr  error
)

// GetMetrics builds the instruments on first use against the current meter
func GetMetrics() (*Metrics, error) {
	metricsOnce.Do(func() {
		metrics, metricsErr = newMetrics()
	})
	return metrics, metricsErr
}

func newMetrics() (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.RequestDuration, err = NewHistogram(MetricOpts{
		Name:        MetricHTTPRequestDuration,
		Description: "HTTP request latency",
		Unit:        "s",
	}); err != nil {
		return nil, err
	}
	if m.Inflight, err = NewUpDownCounter(MetricOpts{
		Name:        MetricHTTPInflight,
		Description: "HTTP requests currently being served",
		Unit:        "1",
	}); err != nil {
		return nil, err
	}
	if m.ApplicationsSubmitted, err = NewCounter(MetricOpts{
		Name:        MetricApplicationsSubmitted,
		Description: "Event applications accepted",
		Unit:        "1",
	}); err != nil {
		return nil, err
	}
	if m.ChainReadRecoveries, err = NewCounter(MetricOpts{
		Name:        MetricChainReadRecoveries,
		Description: "Chain reads that needed a recovery stage",
		Unit:        "1",
	}); err != nil {
		return nil, err
	}
	if m.CacheFallbacks, err = NewCounter(MetricOpts{
		Name:        MetricCacheFallbacks,
		Description: "Passport reads served from the snapshot cache",
		Unit:        "1",
	}); err != nil {
		return nil, err
	}
	if m.PublishFailures, err = NewCounter(MetricOpts{
		Name:        MetricDomainEventsPublishFail,
		Description: "Domain events that could not be published",
		Unit:        "1",
	}); err != nil {
		return nil, err
	}
	return m, nil
}

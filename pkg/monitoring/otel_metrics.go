package monitoring

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Marketplace-specific attributes live under the "marketplace." namespace.
// HTTP metrics use the standard semantic conventions instead.
const (
	attrBusinessAction    = "marketplace.business.action"
	attrBusinessOutcome   = "marketplace.business.outcome"
	attrExternalTarget    = "marketplace.external.target"
	attrExternalOperation = "marketplace.external.operation"
)

var defaultDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var (
	httpRequestsCounter   metric.Int64Counter
	httpRequestDuration   metric.Float64Histogram
	externalCallsCounter  metric.Int64Counter
	externalCallErrors    metric.Int64Counter
	externalCallDuration  metric.Float64Histogram
	businessEventsCounter metric.Int64Counter
	metricsHandler        http.Handler
	initialized           int32
	otelInitOnce          sync.Once
)

// Config holds the configuration for OpenTelemetry metrics
type Config struct {
	// ExporterType can be "prometheus", "otlp", or "none" (disabled)
	ExporterType   string
	ServiceName    string
	ServiceVersion string
	// OTLPEndpoint is the OTLP endpoint URL, e.g. "https://otel.example.com:4318"
	OTLPEndpoint string
	OTLPHeaders  map[string]string
	// OTLPTLSInsecure allows plain HTTP to the collector (development only)
	OTLPTLSInsecure bool
	// HistogramBuckets are duration bucket boundaries in seconds
	HistogramBuckets []float64
}

// DefaultConfig returns a configuration read from the standard OTEL_* variables
func DefaultConfig(serviceName string) Config {
	return Config{
		ExporterType:     getEnvOrDefault("OTEL_METRICS_EXPORTER", "prometheus"),
		ServiceName:      serviceName,
		ServiceVersion:   getEnvOrDefault("SERVICE_VERSION", "dev"),
		OTLPEndpoint:     getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPHeaders:      parseHeaders(getEnvOrDefault("OTEL_EXPORTER_OTLP_HEADERS", "")),
		OTLPTLSInsecure:  getEnvBoolOrDefault("OTEL_EXPORTER_OTLP_INSECURE", false),
		HistogramBuckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}
}

// Initialize sets up OpenTelemetry metrics with the given configuration.
// Only the first call performs initialization; later calls return nil.
func Initialize(config Config) error {
	var initErr error
	otelInitOnce.Do(func() {
		initErr = initializeInternal(context.Background(), config)
		if initErr == nil {
			atomic.StoreInt32(&initialized, 1)
		}
	})
	return initErr
}

func initializeInternal(ctx context.Context, config Config) error {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(config.ServiceName),
			semconv.ServiceVersion(config.ServiceVersion),
		),
	)
	if err != nil {
		return fmt.Errorf("build metrics resource: %w", err)
	}

	reader, handler, err := newReader(ctx, config)
	if err != nil {
		return err
	}
	metricsHandler = handler

	buckets := config.HistogramBuckets
	if len(buckets) == 0 {
		buckets = defaultDurationBuckets
	}
	opts := []sdkmetric.Option{sdkmetric.WithResource(res), sdkmetric.WithReader(reader)}
	for _, name := range []string{"http_request_duration_seconds", "external_call_duration_seconds"} {
		opts = append(opts, sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: name},
			sdkmetric.Stream{Aggregation: sdkmetric.AggregationExplicitBucketHistogram{Boundaries: buckets}},
		)))
	}

	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	// Goroutine, heap and GC metrics
	if err := otelruntime.Start(
		otelruntime.WithMeterProvider(mp),
		otelruntime.WithMinimumReadMemStatsInterval(10*time.Second),
	); err != nil {
		return fmt.Errorf("start runtime metrics: %w", err)
	}
	return registerInstruments(mp.Meter("cpt-bid-marketplace"))
}

// newReader builds the metric reader for the configured exporter together
// with the handler served on the metrics endpoint
func newReader(ctx context.Context, config Config) (sdkmetric.Reader, http.Handler, error) {
	switch config.ExporterType {
	case "prometheus", "":
		reg := prometheus.NewRegistry()
		exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
		if err != nil {
			return nil, nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		slog.Info("Metrics exported for Prometheus scraping", "service", config.ServiceName)
		return exporter, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil

	case "otlp":
		opts, err := otlpOptions(config)
		if err != nil {
			return nil, nil, err
		}
		exporter, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("create OTLP exporter: %w", err)
		}
		slog.Info("Metrics pushed to OTLP collector", "service", config.ServiceName, "endpoint", config.OTLPEndpoint)
		return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(15*time.Second)),
			staticMetricsHandler("# Metrics exported via OTLP\n"), nil

	case "none":
		slog.Info("Metrics collection disabled", "service", config.ServiceName)
		return sdkmetric.NewManualReader(), staticMetricsHandler("# Metrics disabled\n"), nil
	}
	return nil, nil, fmt.Errorf("unsupported metrics exporter %q (want prometheus, otlp or none)", config.ExporterType)
}

// otlpOptions requires an https collector unless plain HTTP was explicitly allowed
func otlpOptions(config Config) ([]otlpmetrichttp.Option, error) {
	if config.OTLPEndpoint == "" {
		return nil, fmt.Errorf("OTEL_EXPORTER_OTLP_ENDPOINT must be set for the otlp exporter")
	}
	endpoint, err := url.Parse(config.OTLPEndpoint)
	if err != nil {
		return nil, fmt.Errorf("parse OTLP endpoint: %w", err)
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint.Host)}
	switch {
	case endpoint.Scheme == "https":
	case config.OTLPTLSInsecure:
		slog.Warn("OTLP metrics sent without TLS", "endpoint", config.OTLPEndpoint)
		opts = append(opts, otlpmetrichttp.WithInsecure())
	default:
		return nil, fmt.Errorf("OTLP endpoint scheme %q is not https; set OTEL_EXPORTER_OTLP_INSECURE=true to allow it", endpoint.Scheme)
	}
	if len(config.OTLPHeaders) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(config.OTLPHeaders))
	}
	return opts, nil
}

func registerInstruments(meter metric.Meter) error {
	var err error
	counters := []struct {
		dst         *metric.Int64Counter
		name, usage string
	}{
		{&httpRequestsCounter, "http_requests_total", "Requests served, by route pattern and status"},
		{&externalCallsCounter, "external_calls_total", "Calls made to backing stores"},
		{&externalCallErrors, "external_call_errors_total", "Failed calls to backing stores"},
		{&businessEventsCounter, "business_events_total", "Marketplace events, by action and outcome"},
	}
	for _, c := range counters {
		if *c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.usage), metric.WithUnit("1")); err != nil {
			return fmt.Errorf("register %s: %w", c.name, err)
		}
	}

	if httpRequestDuration, err = meter.Float64Histogram("http_request_duration_seconds",
		metric.WithDescription("Request latency, by route pattern"), metric.WithUnit("s")); err != nil {
		return fmt.Errorf("register http_request_duration_seconds: %w", err)
	}
	if externalCallDuration, err = meter.Float64Histogram("external_call_duration_seconds",
		metric.WithDescription("Backing store call latency"), metric.WithUnit("s")); err != nil {
		return fmt.Errorf("register external_call_duration_seconds: %w", err)
	}
	return nil
}

func staticMetricsHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(body))
	})
}

func otelHandler() http.Handler {
	if atomic.LoadInt32(&initialized) == 0 || metricsHandler == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("# Metrics not initialized\n"))
		})
	}
	return metricsHandler
}

func otelRecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if atomic.LoadInt32(&initialized) == 0 {
		return
	}

	ctx := context.Background()
	httpRequestsCounter.Add(ctx, 1,
		metric.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			semconv.HTTPRouteKey.String(route),
			semconv.HTTPResponseStatusCodeKey.Int(status),
		),
	)
	httpRequestDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			semconv.HTTPRequestMethodKey.String(method),
			semconv.HTTPRouteKey.String(route),
		),
	)
}

func otelRecordExternalCall(target, operation string, duration time.Duration, err error) {
	if atomic.LoadInt32(&initialized) == 0 {
		return
	}

	ctx := context.Background()
	attrs := metric.WithAttributes(
		attribute.String(attrExternalTarget, target),
		attribute.String(attrExternalOperation, operation),
	)
	externalCallsCounter.Add(ctx, 1, attrs)
	externalCallDuration.Record(ctx, duration.Seconds(), attrs)
	if err != nil {
		externalCallErrors.Add(ctx, 1, attrs)
	}
}

func otelRecordBusinessEvent(action, outcome string) {
	if atomic.LoadInt32(&initialized) == 0 {
		return
	}

	businessEventsCounter.Add(context.Background(), 1,
		metric.WithAttributes(
			attribute.String(attrBusinessAction, action),
			attribute.String(attrBusinessOutcome, outcome),
		),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseHeaders parses "key1=value1,key2=value2"
func parseHeaders(headerStr string) map[string]string {
	headers := make(map[string]string)
	if headerStr == "" {
		return headers
	}
	for _, pair := range strings.Split(headerStr, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) == 2 {
			headers[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
		}
	}
	return headers
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	value = strings.ToLower(strings.TrimSpace(value))
	return value == "true" || value == "1" || value == "yes" || value == "on"
}

package metrics

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
)

type (
	// OTelClient implements Client on top of the OTEL metrics SDK with a
	// Prometheus reader, so Handler can expose the usual scrape endpoint.
	// Instruments for unseen keys are created on first use: integer values
	// become counters, float and duration values become histograms.
	OTelClient struct {
		provider *sdkmetric.MeterProvider
		meter    metric.Meter
		registry *prometheus.Registry

		mu                sync.RWMutex
		int64Counters     map[string]metric.Int64Counter
		int64Histograms   map[string]metric.Int64Histogram
		int64Gauges       map[string]metric.Int64Gauge
		float64Histograms map[string]metric.Float64Histogram
	}

	OTelClientOption func(*OTelClient) error
)

// WithInt64Counter pre registers a counter so it carries the given
// description and unit instead of the lazy defaults.
func WithInt64Counter(name string, descriptor Descriptor) OTelClientOption {
	return func(c *OTelClient) error {
		counter, err := RegisterInt64Counter(c.meter, descriptor, name)
		if err != nil {
			return err
		}

		c.int64Counters[name] = counter

		return nil
	}
}

func WithInt64Histogram(name string, descriptor Descriptor) OTelClientOption {
	return func(c *OTelClient) error {
		histogram, err := RegisterInt64Histogram(c.meter, descriptor, name)
		if err != nil {
			return err
		}

		c.int64Histograms[name] = histogram

		return nil
	}
}

func WithInt64Gauge(name string, descriptor Descriptor) OTelClientOption {
	return func(c *OTelClient) error {
		gauge, err := RegisterInt64Gauge(c.meter, descriptor, name)
		if err != nil {
			return err
		}

		c.int64Gauges[name] = gauge

		return nil
	}
}

func WithFloat64Histogram(name string, descriptor Descriptor) OTelClientOption {
	return func(c *OTelClient) error {
		histogram, err := RegisterFloat64Histogram(c.meter, descriptor, name)
		if err != nil {
			return err
		}

		c.float64Histograms[name] = histogram

		return nil
	}
}

func NewOTelClient(serviceName, serviceVersion string, opts ...OTelClientOption) (*OTelClient, error) {
	registry := prometheus.NewRegistry()

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	client := &OTelClient{
		provider:          provider,
		meter:             provider.Meter(serviceName),
		registry:          registry,
		int64Counters:     make(map[string]metric.Int64Counter),
		int64Histograms:   make(map[string]metric.Int64Histogram),
		int64Gauges:       make(map[string]metric.Int64Gauge),
		float64Histograms: make(map[string]metric.Float64Histogram),
	}

	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}

	return client, nil
}

// Inc records value against the instrument registered under key. Values with
// no matching or derivable instrument are dropped, recording must never fail
// the calling request.
func (c *OTelClient) Inc(ctx context.Context, key string, value any, attributes ...attribute.KeyValue) {
	option := metric.WithAttributes(attributes...)

	c.mu.RLock()

	if counter, ok := c.int64Counters[key]; ok {
		c.mu.RUnlock()

		if n, ok := asInt64(value); ok {
			counter.Add(ctx, n, option)
		}

		return
	}

	if histogram, ok := c.int64Histograms[key]; ok {
		c.mu.RUnlock()

		if n, ok := asInt64(value); ok {
			histogram.Record(ctx, n, option)
		}

		return
	}

	if gauge, ok := c.int64Gauges[key]; ok {
		c.mu.RUnlock()

		if n, ok := asInt64(value); ok {
			gauge.Record(ctx, n, option)
		}

		return
	}

	if histogram, ok := c.float64Histograms[key]; ok {
		c.mu.RUnlock()

		if f, ok := asFloat64(value); ok {
			histogram.Record(ctx, f, option)
		}

		return
	}

	c.mu.RUnlock()

	switch value.(type) {
	case time.Duration, float32, float64:
		f, _ := asFloat64(value)

		histogram, err := c.lazyFloat64Histogram(key)
		if err != nil {
			return
		}

		histogram.Record(ctx, f, option)
	default:
		n, ok := asInt64(value)
		if !ok {
			return
		}

		counter, err := c.lazyInt64Counter(key)
		if err != nil {
			return
		}

		counter.Add(ctx, n, option)
	}
}

func (c *OTelClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *OTelClient) Shutdown(ctx context.Context) error {
	return c.provider.Shutdown(ctx)
}

func (c *OTelClient) lazyInt64Counter(key string) (metric.Int64Counter, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if counter, ok := c.int64Counters[key]; ok {
		return counter, nil
	}

	counter, err := RegisterInt64Counter(c.meter, Descriptor{Description: key}, key)
	if err != nil {
		return nil, err
	}

	c.int64Counters[key] = counter

	return counter, nil
}

func (c *OTelClient) lazyFloat64Histogram(key string) (metric.Float64Histogram, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if histogram, ok := c.float64Histograms[key]; ok {
		return histogram, nil
	}

	histogram, err := RegisterFloat64Histogram(c.meter, Descriptor{Description: key, Unit: "s"}, key)
	if err != nil {
		return nil, err
	}

	c.float64Histograms[key] = histogram

	return histogram, nil
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(min(v, uint64(1<<63-1))), true
	default:
		return 0, false
	}
}

func asFloat64(value any) (float64, bool) {
	switch v := value.(type) {
	case time.Duration:
		return v.Seconds(), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	default:
		return 0, false
	}
}

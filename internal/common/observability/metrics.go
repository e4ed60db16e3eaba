package observability

import (
	"context"
	"log"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"sisustusbot/internal/common/metrics"
)

type Observability struct {
	registry       *promclient.Registry
	meterProvider  *metric.MeterProvider
	meter          otelmetric.Meter
	chatCounter    otelmetric.Int64Counter
	chatDuration   otelmetric.Float64Histogram
	assistFallback otelmetric.Int64Counter
	cacheLookups   otelmetric.Int64Counter
}

// New builds an Observability with its own Prometheus registry. Instances
// never touch the global default registry, so several servers in one process
// can each expose their own /metrics.
func New(serviceName string) *Observability {
	registry := promclient.NewRegistry()
	metrics.Register(registry)

	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		log.Printf("Failed to create Prometheus exporter: %v", err)
		return &Observability{registry: registry}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	meter := provider.Meter(serviceName)

	chatCounter, _ := meter.Int64Counter(
		"chat.turns",
		otelmetric.WithDescription("Number of chat turns processed"),
	)

	chatDuration, _ := meter.Float64Histogram(
		"chat.duration",
		otelmetric.WithDescription("Chat turn processing duration"),
		otelmetric.WithUnit("ms"),
	)

	assistFallback, _ := meter.Int64Counter(
		"assist.fallbacks",
		otelmetric.WithDescription("Number of AI assist calls that fell back to deterministic logic"),
	)

	cacheLookups, _ := meter.Int64Counter(
		"cache.lookups",
		otelmetric.WithDescription("Cache lookups by outcome"),
	)

	return &Observability{
		registry:       registry,
		meterProvider:  provider,
		meter:          meter,
		chatCounter:    chatCounter,
		chatDuration:   chatDuration,
		assistFallback: assistFallback,
		cacheLookups:   cacheLookups,
	}
}

// MetricsHandler serves this instance's registry.
func (o *Observability) MetricsHandler() http.Handler {
	if o == nil || o.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

func (o *Observability) RecordChatTurn(ctx context.Context, intent string) {
	if o.chatCounter != nil {
		o.chatCounter.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("intent", intent),
		))
	}
}

func (o *Observability) RecordChatDuration(ctx context.Context, duration time.Duration, intent string) {
	if o.chatDuration != nil {
		o.chatDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
			attribute.String("intent", intent),
		))
	}
}

func (o *Observability) RecordAssistFallback(ctx context.Context, task string) {
	if o.assistFallback != nil {
		o.assistFallback.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("task", task),
		))
	}
}

func (o *Observability) RecordCacheLookup(ctx context.Context, name string, hit bool) {
	if o.cacheLookups != nil {
		outcome := "miss"
		if hit {
			outcome = "hit"
		}
		o.cacheLookups.Add(ctx, 1, otelmetric.WithAttributes(
			attribute.String("cache", name),
			attribute.String("outcome", outcome),
		))
	}
}

func (o *Observability) Shutdown() {
	if o.meterProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		o.meterProvider.Shutdown(ctx)
	}
}

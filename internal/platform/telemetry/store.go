package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Load sources reported on quotify.store.loads.
const (
	LoadSourceCache    = "cache"
	LoadSourceNetwork  = "network"
	LoadSourcePartial  = "partial"
	LoadSourceFallback = "fallback"
)

// StoreMetrics records batch store activity.
type StoreMetrics struct {
	loads         metric.Int64Counter
	fallbackPages metric.Int64Counter
}

// NewStoreMetrics creates store instruments on the global meter provider.
func NewStoreMetrics() (*StoreMetrics, error) {
	return newStoreMetrics(otel.Meter(instrumentationName))
}

func newStoreMetrics(meter metric.Meter) (*StoreMetrics, error) {

	loads, err := meter.Int64Counter(
		"quotify.store.loads",
		metric.WithDescription("Completed batch loads by source"),
	)
	if err != nil {
		return nil, err
	}

	fallbackPages, err := meter.Int64Counter(
		"quotify.store.fallback_pages",
		metric.WithDescription("Pages served from the static fallback table"),
	)
	if err != nil {
		return nil, err
	}

	return &StoreMetrics{loads: loads, fallbackPages: fallbackPages}, nil
}

// RecordLoad counts one completed load. A nil receiver is a no-op.
func (m *StoreMetrics) RecordLoad(ctx context.Context, source string, fallbackPages int) {
	if m == nil {
		return
	}

	m.loads.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))

	if fallbackPages > 0 {
		m.fallbackPages.Add(ctx, int64(fallbackPages))
	}
}

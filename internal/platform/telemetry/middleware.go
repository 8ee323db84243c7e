package telemetry

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/jsamuelsen/quotify/telemetry"

// HeaderTraceID echoes the server span's trace ID to the caller.
const HeaderTraceID = "X-Trace-ID"

// probePrefix marks liveness, readiness and metrics routes; they are not measured.
const probePrefix = "/-/"

// unmatchedRoute labels requests that hit no route, keeping route cardinality bounded.
const unmatchedRoute = "unmatched"

type serverMetrics struct {
	duration metric.Float64Histogram
	requests metric.Int64Counter
	inFlight metric.Int64UpDownCounter
}

func newServerMetrics(meter metric.Meter) (*serverMetrics, error) {
	var (
		m   serverMetrics
		err error
	)

	m.duration, err = meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("http.server.request.duration: %w", err)
	}

	m.requests, err = meter.Int64Counter(
		"http.server.request.total",
		metric.WithDescription("Completed HTTP requests"),
	)
	if err != nil {
		return nil, fmt.Errorf("http.server.request.total: %w", err)
	}

	m.inFlight, err = meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("HTTP requests in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("http.server.active_requests: %w", err)
	}

	return &m, nil
}

// Middleware measures API requests on the global meter provider and echoes
// the trace ID in X-Trace-ID. It must run after TracingMiddleware.
func Middleware() gin.HandlerFunc {
	return middleware(otel.Meter(instrumentationName))
}

func middleware(meter metric.Meter) gin.HandlerFunc {
	m, err := newServerMetrics(meter)
	if err != nil {
		otel.Handle(err)
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Headers must be set before the handler writes the body.
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			c.Header(HeaderTraceID, sc.TraceID().String())
		}

		if m == nil || strings.HasPrefix(c.Request.URL.Path, probePrefix) {
			c.Next()
			return
		}

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}

		base := []attribute.KeyValue{
			attribute.String("http.request.method", c.Request.Method),
			attribute.String("http.route", route),
		}

		start := time.Now()
		m.inFlight.Add(ctx, 1, metric.WithAttributes(base...))
		defer m.inFlight.Add(ctx, -1, metric.WithAttributes(base...))

		c.Next()

		done := metric.WithAttributes(append(base, attribute.Int("http.response.status_code", c.Writer.Status()))...)
		m.duration.Record(ctx, time.Since(start).Seconds(), done)
		m.requests.Add(ctx, 1, done)
	}
}

// TracingMiddleware starts a server span per request with otelgin.
func TracingMiddleware(serviceName string, opts ...otelgin.Option) gin.HandlerFunc {
	return otelgin.Middleware(serviceName, opts...)
}

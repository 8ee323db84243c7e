package clients

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotify/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotify/internal/platform/config"
	"github.com/jsamuelsen/quotify/internal/platform/logging"
)

const (
	instrumentationName = "github.com/jsamuelsen/quotify/internal/adapters/clients"

	defaultTimeout             = 10 * time.Second
	defaultJitterFactor        = 0.25
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultIdleConnTimeout     = 90 * time.Second
)

// Values of the "result" attribute on client metrics.
const (
	resultCircuitOpen = "circuit_open"
	resultCanceled    = "canceled"
	resultError       = "error"
)

// Config configures an HTTP client instance.
type Config struct {
	// BaseURL is prefixed to every request path, e.g. "https://api.quotable.io".
	BaseURL string

	// ServiceName identifies the downstream service in logs, spans and metrics.
	ServiceName string

	// UserAgent is sent on every request when set.
	UserAgent string

	// Timeout bounds each attempt, not the whole call.
	Timeout time.Duration

	Retry     config.RetryConfig
	Circuit   config.CircuitBreakerConfig
	Transport config.TransportConfig

	// Logger is optional; slog.Default() is used when nil.
	Logger *slog.Logger
}

// Client is an instrumented HTTP client for a single downstream service.
//
// Calls pass through the circuit breaker and are traced and measured.
// Transport errors, 5xx and 429 responses are retried with exponential
// backoff; a 429 waits for Retry-After when the server sends one.
// A call abandoned by its caller is not held against the downstream.
type Client struct {
	http        *http.Client
	baseURL     string
	serviceName string
	cfg         *Config
	logger      *slog.Logger
	cb          *CircuitBreaker

	tracer trace.Tracer

	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
}

// New creates a new instrumented HTTP client.
func New(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	if cfg.ServiceName == "" {
		return nil, errors.New("service name is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	cfg.Retry.MaxAttempts = max(cfg.Retry.MaxAttempts, 1)

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "clients.Client"),
		slog.String("downstream", cfg.ServiceName),
	)

	cb := NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:   cfg.Circuit.MaxFailures,
		Timeout:       cfg.Circuit.Timeout,
		HalfOpenLimit: cfg.Circuit.HalfOpenLimit,
	})
	cb.OnStateChange(func(from, to State) {
		logger.Warn("circuit breaker state changed",
			slog.String("from", from.String()),
			slog.String("to", to.String()),
		)
	})

	meter := otel.Meter(instrumentationName)

	requestDuration, err := meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("Duration of calls to the downstream, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration metric: %w", err)
	}

	requestTotal, err := meter.Int64Counter(
		"http.client.request.total",
		metric.WithDescription("Calls to the downstream by result"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating request counter: %w", err)
	}

	return &Client{
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: newTransport(cfg.Transport),
		},
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		serviceName:     cfg.ServiceName,
		cfg:             cfg,
		logger:          logger,
		cb:              cb,
		tracer:          otel.Tracer(instrumentationName),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
	}, nil
}

func newTransport(tc config.TransportConfig) *http.Transport {
	t := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        defaultMaxIdleConns,
		MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
		IdleConnTimeout:     defaultIdleConnTimeout,
	}

	if tc.MaxIdleConns > 0 {
		t.MaxIdleConns = tc.MaxIdleConns
	}
	if tc.MaxIdleConnsPerHost > 0 {
		t.MaxIdleConnsPerHost = tc.MaxIdleConnsPerHost
	}
	if tc.IdleConnTimeout > 0 {
		t.IdleConnTimeout = tc.IdleConnTimeout
	}

	return t
}

// statusError is a response status worth retrying.
type statusError struct {
	code       int
	retryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("downstream returned %d %s", e.code, http.StatusText(e.code))
}

// call is one logical request and its attempts.
type call struct {
	client *Client
	req    *http.Request
	logger *slog.Logger
	start  time.Time
}

// Do executes req with circuit breaking, retries, tracing and logging.
// Only body-less requests are retried safely; quotify issues GETs only.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	cl := &call{
		client: c,
		req:    req,
		start:  time.Now(),
		logger: logging.FromContext(ctx).With(
			slog.String("downstream", c.serviceName),
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
		),
	}

	if !c.cb.Allow() {
		c.recordMetrics(ctx, req.Method, 0, 0, resultCircuitOpen)
		cl.logger.Warn("request blocked by circuit breaker")
		return nil, ErrCircuitOpen
	}

	c.injectHeaders(ctx, req)

	ctx, span := c.tracer.Start(ctx, "HTTP "+req.Method+" "+c.serviceName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", req.Method),
			attribute.String("url.full", req.URL.String()),
			attribute.String("peer.service", c.serviceName),
		),
	)
	defer span.End()

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := cl.run(ctx, span)
	cl.finish(ctx, span, resp, err)

	return resp, err
}

// run makes up to MaxAttempts attempts and returns the first final outcome.
func (cl *call) run(ctx context.Context, span trace.Span) (*http.Response, error) {
	attempts := cl.client.cfg.Retry.MaxAttempts

	var lastErr error

	for attempt := range attempts {
		if attempt > 0 {
			wait := cl.client.backoffAfter(attempt, lastErr)
			cl.logger.Debug("retrying request",
				slog.Int("attempt", attempt+1),
				slog.Duration("backoff", wait),
				slog.Any("previous_error", lastErr),
			)

			if err := sleep(ctx, wait); err != nil {
				return nil, err
			}
		}

		span.SetAttributes(attribute.Int("http.request.resend_count", attempt))

		resp, err := cl.client.http.Do(cl.req.WithContext(ctx))

		retry, attemptErr := cl.retryable(resp, err)
		if !retry {
			return resp, err
		}

		lastErr = attemptErr
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetriesExceeded, attempts, lastErr)
}

// retryable classifies an attempt. A response that will be retried has its
// body closed here.
func (cl *call) retryable(resp *http.Response, err error) (bool, error) {
	if err != nil {
		return isRetryableError(err), err
	}

	if resp.StatusCode < http.StatusInternalServerError && resp.StatusCode != http.StatusTooManyRequests {
		return false, nil
	}

	serr := &statusError{code: resp.StatusCode, retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"), time.Now())}

	if closeErr := resp.Body.Close(); closeErr != nil {
		cl.logger.Debug("failed to close response body", slog.Any("error", closeErr))
	}

	return true, serr
}

// finish records the outcome on the breaker, the span, the metrics and the log.
func (cl *call) finish(ctx context.Context, span trace.Span, resp *http.Response, err error) {
	c := cl.client
	duration := time.Since(cl.start)

	switch {
	case err != nil && ctx.Err() != nil:
		c.cb.Release()
		span.SetStatus(codes.Error, resultCanceled)
		c.recordMetrics(ctx, cl.req.Method, 0, duration, resultCanceled)
		cl.logger.Debug("request abandoned by caller",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

	case err != nil:
		c.cb.RecordFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.recordMetrics(ctx, cl.req.Method, 0, duration, resultError)
		cl.logger.Warn("request failed",
			slog.Duration("duration", duration),
			slog.Any("error", err),
		)

	default:
		c.cb.RecordSuccess()
		span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
		if resp.StatusCode >= http.StatusBadRequest {
			span.SetStatus(codes.Error, resp.Status)
		}

		c.recordMetrics(ctx, cl.req.Method, resp.StatusCode, duration, strconv.Itoa(resp.StatusCode/100)+"xx")
		cl.logger.Log(ctx, logging.LevelTrace, "request completed",
			slog.Int("status", resp.StatusCode),
			slog.Duration("duration", duration),
		)
	}
}

// Get performs an HTTP GET of path with the given query parameters (may be nil).
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path, query), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	return c.Do(ctx, req)
}

// CircuitState returns the current state of the circuit breaker.
func (c *Client) CircuitState() State {
	return c.cb.State()
}

// ServiceName returns the downstream service name.
func (c *Client) ServiceName() string {
	return c.serviceName
}

// injectHeaders forwards request and correlation IDs and sets the user agent.
func (c *Client) injectHeaders(ctx context.Context, req *http.Request) {
	if requestID := middleware.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set(middleware.HeaderRequestID, requestID)
	}

	if correlationID := middleware.CorrelationIDFromContext(ctx); correlationID != "" {
		req.Header.Set(middleware.HeaderCorrelationID, correlationID)
	}

	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

func (c *Client) buildURL(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	return u
}

// backoffAfter is the wait before attempt. A rate-limited previous attempt
// waits what the server asked for, capped at MaxInterval.
func (c *Client) backoffAfter(attempt int, prev error) time.Duration {
	var serr *statusError
	if errors.As(prev, &serr) && serr.retryAfter > 0 {
		return min(serr.retryAfter, c.cfg.Retry.MaxInterval)
	}

	return c.calculateBackoff(attempt - 1)
}

// calculateBackoff returns initial*multiplier^attempt capped at MaxInterval,
// with symmetric jitter of ±JitterFactor.
func (c *Client) calculateBackoff(attempt int) time.Duration {
	r := c.cfg.Retry

	backoff := min(
		float64(r.InitialInterval)*math.Pow(r.Multiplier, float64(attempt)),
		float64(r.MaxInterval),
	)

	jitter := r.JitterFactor
	if jitter <= 0 {
		jitter = defaultJitterFactor
	}

	backoff *= 1 + jitter*(2*rand.Float64()-1) //nolint:gosec // jitter needs no crypto randomness

	return time.Duration(backoff)
}

func (c *Client) recordMetrics(ctx context.Context, method string, statusCode int, duration time.Duration, result string) {
	attrs := []attribute.KeyValue{
		attribute.String("http.request.method", method),
		attribute.String("peer.service", c.serviceName),
		attribute.String("result", result),
	}

	if statusCode > 0 {
		attrs = append(attrs, attribute.Int("http.response.status_code", statusCode))
	}

	set := metric.WithAttributes(attrs...)
	c.requestDuration.Record(ctx, duration.Seconds(), set)
	c.requestTotal.Add(ctx, 1, set)
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date.
// Missing, malformed or past values yield zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil {
		return max(time.Duration(secs)*time.Second, 0)
	}

	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0)
	}

	return 0
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// isRetryableError reports whether err is a transient network failure.
// Context cancellation and deadline errors are never retried.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var opErr *net.OpError

	return errors.As(err, &opErr)
}

package clients

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotify/internal/adapters/http/middleware"
	"github.com/jsamuelsen/quotify/internal/platform/config"
)

func defaultConfig() *Config {
	return &Config{
		ServiceName: "quotable",
		UserAgent:   "quotify-test/1.0",
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     100 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   5,
			Timeout:       time.Second,
			HalfOpenLimit: 2,
		},
	}
}

// closeBody is a test helper that closes the response body and fails the test on error.
func closeBody(t *testing.T, resp *http.Response) {
	t.Helper()
	if err := resp.Body.Close(); err != nil {
		t.Errorf("failed to close response body: %v", err)
	}
}

func newTestClient(t *testing.T, serverURL string, mutate func(*Config)) *Client {
	t.Helper()

	cfg := defaultConfig()
	cfg.BaseURL = serverURL
	if mutate != nil {
		mutate(cfg)
	}

	client, err := New(cfg)
	require.NoError(t, err)

	return client
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}

func TestNew_RequiresServiceName(t *testing.T) {
	cfg := defaultConfig()
	cfg.ServiceName = ""

	_, err := New(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service name is required")
}

func TestNew_Defaults(t *testing.T) {
	cfg := defaultConfig()
	cfg.BaseURL = "https://api.quotable.io/"
	cfg.Timeout = 0
	cfg.Retry.MaxAttempts = 0

	client, err := New(cfg)
	require.NoError(t, err)

	assert.Equal(t, "https://api.quotable.io", client.baseURL)
	assert.Equal(t, defaultTimeout, client.http.Timeout)
	assert.Equal(t, 1, client.cfg.Retry.MaxAttempts)
	assert.Equal(t, "quotable", client.ServiceName())
}

func TestClient_HeaderPropagation(t *testing.T) {
	var got http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	ctx := middleware.ContextWithRequestID(context.Background(), "req-123")
	ctx = middleware.ContextWithCorrelationID(ctx, "corr-456")

	resp, err := client.Get(ctx, "/quotes/random", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "req-123", got.Get(middleware.HeaderRequestID))
	assert.Equal(t, "corr-456", got.Get(middleware.HeaderCorrelationID))
	assert.Equal(t, "quotify-test/1.0", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
}

func TestClient_GetWithQuery(t *testing.T) {
	var gotURL string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotURL = r.URL.RequestURI()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	resp, err := client.Get(context.Background(), "quotes/random", url.Values{"limit": {"20"}})
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, "/quotes/random?limit=20", gotURL)
}

func TestClient_RetryOnServerError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	resp, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	resp, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestClient_MaxRetriesExceeded(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.Get(context.Background(), "/test", nil)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestClient_CircuitBreakerShortCircuitsWhenOpen(t *testing.T) {
	var calls atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Retry.MaxAttempts = 1
		cfg.Circuit.MaxFailures = 2
	})

	_, _ = client.Get(context.Background(), "/test", nil)
	assert.Equal(t, StateClosed, client.CircuitState())

	_, _ = client.Get(context.Background(), "/test", nil)
	assert.Equal(t, StateOpen, client.CircuitState())

	before := calls.Load()

	_, err := client.Get(context.Background(), "/test", nil)
	require.ErrorIs(t, err, ErrCircuitOpen)
	assert.Equal(t, before, calls.Load(), "open circuit must not reach the server")
}

func TestClient_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Timeout = 50 * time.Millisecond
		cfg.Retry.MaxAttempts = 1
	})

	_, err := client.Get(context.Background(), "/test", nil)
	require.Error(t, err)
}

func TestClient_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, "/test", nil)
	require.Error(t, err)
}

func TestClient_CancellationDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(cfg *Config) {
		cfg.Circuit.MaxFailures = 1
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, "/test", nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
	assert.Equal(t, StateClosed, client.CircuitState())
}

func TestClient_RateLimitedHonorsRetryAfter(t *testing.T) {
	var attempts atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	resp, err := client.Get(context.Background(), "/test", nil)
	require.NoError(t, err)
	defer closeBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), attempts.Load())
}

func TestClient_NonRetryableErrorIsNotWrapped(t *testing.T) {
	client := newTestClient(t, "http://127.0.0.1:1", nil)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, "unsupported://quotes", http.NoBody)
	require.NoError(t, err)

	_, err = client.Do(context.Background(), req)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrMaxRetriesExceeded)
}

func TestClient_BackoffAfterRetryAfter(t *testing.T) {
	client := newTestClient(t, "https://api.quotable.io", nil)

	rateLimited := &statusError{code: http.StatusTooManyRequests, retryAfter: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, client.backoffAfter(1, rateLimited))

	rateLimited.retryAfter = time.Hour
	assert.Equal(t, client.cfg.Retry.MaxInterval, client.backoffAfter(1, rateLimited), "capped at max interval")
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value string
		want  time.Duration
	}{
		{"empty", "", 0},
		{"seconds", "3", 3 * time.Second},
		{"negative seconds", "-4", 0},
		{"http date", now.Add(90 * time.Second).Format(http.TimeFormat), 90 * time.Second},
		{"past date", now.Add(-time.Minute).Format(http.TimeFormat), 0},
		{"garbage", "soon", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseRetryAfter(tt.value, now))
		})
	}
}

func TestClient_BuildURL(t *testing.T) {
	client := newTestClient(t, "https://api.quotable.io", nil)

	assert.Equal(t, "https://api.quotable.io/quotes", client.buildURL("/quotes", nil))
	assert.Equal(t, "https://api.quotable.io/quotes", client.buildURL("quotes", nil))
	assert.Equal(t, "https://api.quotable.io/quotes/random?limit=5",
		client.buildURL("/quotes/random", url.Values{"limit": {"5"}}))
}

func TestCalculateBackoff(t *testing.T) {
	client := newTestClient(t, "https://api.quotable.io", func(cfg *Config) {
		cfg.Retry.InitialInterval = 100 * time.Millisecond
		cfg.Retry.Multiplier = 2.0
		cfg.Retry.MaxInterval = time.Second
		cfg.Retry.JitterFactor = 0.1
	})

	assert.InDelta(t, 100*time.Millisecond, client.calculateBackoff(0), float64(10*time.Millisecond))
	assert.InDelta(t, 200*time.Millisecond, client.calculateBackoff(1), float64(20*time.Millisecond))
	assert.InDelta(t, 400*time.Millisecond, client.calculateBackoff(2), float64(40*time.Millisecond))
	assert.LessOrEqual(t, client.calculateBackoff(10), 1100*time.Millisecond)
}

// testNetError is a stub net.Error.
type testNetError struct {
	timeout bool
}

func (e testNetError) Error() string   { return "test net error" }
func (e testNetError) Timeout() bool   { return e.timeout }
func (e testNetError) Temporary() bool { return true }

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil error", nil, false},
		{"context canceled", context.Canceled, false},
		{"context deadline exceeded", context.DeadlineExceeded, false},
		{"net error with timeout", testNetError{timeout: true}, true},
		{"net error without timeout", testNetError{timeout: false}, false},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}

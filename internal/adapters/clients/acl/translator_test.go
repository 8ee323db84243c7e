package acl

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotify/internal/adapters/clients"
	"github.com/jsamuelsen/quotify/internal/domain"
)

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestMapHTTPError_Status(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		checkFn func(error) bool
		message string
	}{
		{"not found", http.StatusNotFound, "", domain.IsNotFound, "not found"},
		{"unauthorized", http.StatusUnauthorized, "", domain.IsForbidden, "access denied"},
		{"forbidden with body", http.StatusForbidden, `{"message":"no"}`, domain.IsForbidden, "no"},
		{"rate limited", http.StatusTooManyRequests, "", domain.IsUnavailable, "rate limit exceeded"},
		{"bad gateway", http.StatusBadGateway, "", domain.IsUnavailable, "fetch quote page failed with status 502"},
		{"quotable message", http.StatusBadRequest, `{"statusCode":400,"statusMessage":"limit must be <= 50"}`, domain.IsValidation, "limit must be <= 50"},
		{"unknown 4xx", http.StatusTeapot, "", domain.IsValidation, "status 418"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(response(tt.status, tt.body), nil, "quotable", "fetch quote page")

			require.Error(t, err)
			assert.True(t, tt.checkFn(err), "unexpected error class: %v", err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestMapHTTPError_ClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{"circuit open", clients.ErrCircuitOpen, "circuit breaker open during fetch quote page"},
		{"retries exhausted", clients.ErrMaxRetriesExceeded, "max retries exceeded during fetch quote page"},
		{"retries exhausted wrapped", fmt.Errorf("%w after 3 attempts: 503", clients.ErrMaxRetriesExceeded), "after 3 attempts"},
		{"other", errors.New("dial tcp: refused"), "fetch quote page failed: dial tcp: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := MapHTTPError(nil, tt.err, "quotable", "fetch quote page")

			assert.True(t, domain.IsUnavailable(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestMapHTTPError_SuccessReturnsNil(t *testing.T) {
	assert.NoError(t, MapHTTPError(response(http.StatusOK, ""), nil, "quotable", "op"))
}

func TestMapHTTPError_NilResponse(t *testing.T) {
	err := MapHTTPError(nil, nil, "quotable", "op")

	assert.True(t, domain.IsUnavailable(err))
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		body     io.Reader
		expected string
	}{
		{"quotable format", strings.NewReader(`{"statusCode":404,"statusMessage":"nothing"}`), "nothing"},
		{"message format", strings.NewReader(`{"message":"boom"}`), "boom"},
		{"both prefer quotable", strings.NewReader(`{"statusMessage":"a","message":"b"}`), "a"},
		{"empty object", strings.NewReader(`{}`), ""},
		{"invalid json", strings.NewReader(`<html>`), ""},
		{"nil body", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, errorMessage(tt.body))
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		got, err := decodeJSON[[]quotableQuote](io.NopCloser(strings.NewReader(`[{"content":"c","author":"a"}]`)))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "c", got[0].Content)
	})

	t.Run("invalid json", func(t *testing.T) {
		_, err := decodeJSON[[]quotableQuote](io.NopCloser(strings.NewReader(`nope`)))
		assert.ErrorContains(t, err, "decoding response")
	})

	t.Run("nil body", func(t *testing.T) {
		_, err := decodeJSON[[]quotableQuote](nil)
		assert.Error(t, err)
	})
}

func TestTranslateEach(t *testing.T) {
	double := func(n *int) (int, error) {
		if *n < 0 {
			return 0, domain.NewValidationError("n", "must not be negative")
		}
		return *n * 2, nil
	}

	t.Run("all valid", func(t *testing.T) {
		got, err := translateEach([]int{1, 2}, double)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 4}, got)
	})

	t.Run("skips invalid", func(t *testing.T) {
		got, err := translateEach([]int{1, -1, 3}, double)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Contains(t, err.Error(), "item 1")
		assert.Equal(t, []int{2, 6}, got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := translateEach([]int{}, double)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestRequired(t *testing.T) {
	require.NoError(t, required("x", "field"))

	err := required("", "author")
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "author")
}

package acl

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/jsamuelsen/quotify/internal/adapters/clients"
	"github.com/jsamuelsen/quotify/internal/domain"
)

// errorBody is what quotable.io sends with a failed request, e.g.
// {"statusCode":404,"statusMessage":"Could not find any matching quotes"}.
// Proxies in front of it tend to send {"message": "..."} instead.
type errorBody struct {
	StatusMessage string `json:"statusMessage"`
	Message       string `json:"message"`
}

// errorMessage extracts the message of an error body, or "" when r is nil,
// not JSON, or carries no message.
func errorMessage(r io.Reader) string {
	if r == nil {
		return ""
	}

	var body errorBody
	if err := json.NewDecoder(io.LimitReader(r, 64<<10)).Decode(&body); err != nil {
		return ""
	}

	if body.StatusMessage != "" {
		return body.StatusMessage
	}

	return body.Message
}

// MapHTTPError turns a failed exchange with service into a domain error.
// A client error wins over resp; a 2xx response is not an error.
//
//	client failure, 429, 5xx  -> Unavailable
//	404                       -> NotFound
//	401, 403                  -> Forbidden
//	other 4xx                 -> Validation
func MapHTTPError(resp *http.Response, clientErr error, service, operation string) error {
	switch {
	case clientErr != nil:
		return domain.NewUnavailableError(service, describeClientError(clientErr, operation))
	case resp == nil:
		return domain.NewUnavailableError(service, "no response received")
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	}

	status := resp.StatusCode

	msg := errorMessage(resp.Body)
	if msg == "" {
		msg = fallbackMessage(status, operation)
	}

	switch {
	case status == http.StatusNotFound:
		return domain.NewNotFoundError(service+" resource", operation)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return domain.NewForbiddenError(operation, msg)
	case status == http.StatusTooManyRequests:
		return domain.NewUnavailableError(service, "rate limit exceeded")
	case status >= http.StatusInternalServerError:
		return domain.NewUnavailableError(service, msg)
	default:
		return domain.NewValidationError("", msg)
	}
}

func describeClientError(err error, operation string) string {
	switch {
	case errors.Is(err, clients.ErrCircuitOpen):
		return "circuit breaker open during " + operation
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return fmt.Sprintf("max retries exceeded during %s: %v", operation, err)
	default:
		return fmt.Sprintf("%s failed: %v", operation, err)
	}
}

func fallbackMessage(status int, operation string) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusUnauthorized, http.StatusForbidden:
		return "access denied"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("%s failed with status %d", operation, status)
	}
}

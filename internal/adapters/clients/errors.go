// Package clients provides the instrumented HTTP client used to reach the quote API.
package clients

import "errors"

// Infrastructure failures of the HTTP client layer. The ACL translates them
// into domain errors before they reach the application.
var (
	// ErrCircuitOpen is returned without issuing a request while the breaker is open.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last attempt's error once retries are exhausted.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")
)

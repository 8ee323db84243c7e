// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, ErrStorage)
package ports

import (
	"context"

	"github.com/jsamuelsen/quotify/internal/domain"
)

// QuoteSource fetches pages of quotations from a remote service.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport and status failures to domain.ErrUnavailable
//   - Translate external DTOs to domain.Quote
type QuoteSource interface {
	// FetchPage returns up to limit quotes. A page may be shorter than limit;
	// callers decide how to fill the gap.
	FetchPage(ctx context.Context, limit int) ([]domain.Quote, error)
}

// PersistentCache is a durable key/value store for the cached batch.
// The key space is small and fixed; values are opaque bytes.
type PersistentCache interface {
	// Get retrieves a value.
	// Returns domain.ErrNotFound if the key does not exist and
	// domain.ErrStorage if the backend could not be read.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value, overwriting any previous one (last writer wins).
	// Returns domain.ErrStorage if the backend could not be written.
	Set(ctx context.Context, key string, value []byte) error
}

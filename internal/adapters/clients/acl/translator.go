package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"

	"github.com/jsamuelsen/quotify/internal/adapters/clients"
	"github.com/jsamuelsen/quotify/internal/domain"
)

// get issues a GET and hands back the body of a 2xx response; the caller closes it.
// Every other outcome is already a domain error.
func get(ctx context.Context, client *clients.Client, path string, query url.Values, operation string) (io.ReadCloser, error) {
	resp, err := client.Get(ctx, path, query)
	if err != nil {
		return nil, MapHTTPError(nil, err, client.ServiceName(), operation)
	}

	if mapped := MapHTTPError(resp, nil, client.ServiceName(), operation); mapped != nil {
		_ = resp.Body.Close()
		return nil, mapped
	}

	return resp.Body, nil
}

// decodeJSON reads one JSON value of type T from body and closes it.
func decodeJSON[T any](body io.ReadCloser) (T, error) {
	var v T

	if body == nil {
		return v, errors.New("decoding response: no body")
	}
	defer func() { _ = body.Close() }()

	if err := json.NewDecoder(body).Decode(&v); err != nil {
		return v, fmt.Errorf("decoding response: %w", err)
	}

	return v, nil
}

// required is a ValidationError naming field when value is blank.
func required(value, field string) error {
	if value == "" {
		return domain.NewValidationError(field, "is required")
	}

	return nil
}

// translateEach converts every item it can. Rejected items are left out and
// their errors joined; the error is nil when nothing was rejected.
func translateEach[E, D any](items []E, translate func(*E) (D, error)) ([]D, error) {
	out := make([]D, 0, len(items))

	var rejected []error

	for i := range items {
		d, err := translate(&items[i])
		if err != nil {
			rejected = append(rejected, fmt.Errorf("item %d: %w", i, err))
			continue
		}

		out = append(out, d)
	}

	return out, errors.Join(rejected...)
}

package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// DefaultLimit is the page size when the request names none.
const DefaultLimit = 20

// MaxLimit caps the page size.
const MaxLimit = 60

// Cursor errors.
var (
	ErrInvalidCursor = errors.New("invalid cursor")

	// ErrNoCursor signals a first-page request; it is not a failure.
	ErrNoCursor = errors.New("no cursor provided")
)

// PaginationRequest is bound from the query string.
type PaginationRequest struct {
	// Cursor is the NextCursor of a previous page.
	Cursor string `form:"cursor" json:"cursor"`
	Limit  int    `form:"limit"  json:"limit"  validate:"omitempty,gte=1,lte=60"`
}

// GetLimit returns the limit with defaults applied.
func (p *PaginationRequest) GetLimit() int {
	if p.Limit <= 0 {
		return DefaultLimit
	}

	return min(p.Limit, MaxLimit)
}

// DecodeCursor decodes the request cursor, or returns ErrNoCursor.
func (p *PaginationRequest) DecodeCursor() (*CursorData, error) {
	return DecodeCursor(p.Cursor)
}

// CursorData locates a page inside one specific batch. Version is the batch's
// fetch time in epoch millis, so a cursor outlives neither a refresh nor a
// reload.
type CursorData struct {
	Offset  int   `json:"o"`
	Version int64 `json:"v"`
}

// EncodeCursor encodes cursor data as URL-safe base64 JSON.
func EncodeCursor(data *CursorData) string {
	if data == nil {
		return ""
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}

	return base64.URLEncoding.EncodeToString(raw)
}

// DecodeCursor reverses EncodeCursor.
func DecodeCursor(encoded string) (*CursorData, error) {
	if encoded == "" {
		return nil, ErrNoCursor
	}

	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, ErrInvalidCursor
	}

	var data CursorData
	if err := json.Unmarshal(raw, &data); err != nil || data.Offset < 0 {
		return nil, ErrInvalidCursor
	}

	return &data, nil
}

// PaginatedResponse is one page of a listing.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is empty on the last page.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
	Total      int    `json:"total"`
}

// NewPaginatedResponse builds the page holding items, which start at offset
// within a listing of total entries identified by version.
func NewPaginatedResponse[T any](items []T, offset, total int, version int64) *PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}

	next := offset + len(items)
	resp := &PaginatedResponse[T]{
		Items:   items,
		HasMore: next < total,
		Total:   total,
	}

	if resp.HasMore {
		resp.NextCursor = EncodeCursor(&CursorData{Offset: next, Version: version})
	}

	return resp
}

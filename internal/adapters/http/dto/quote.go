package dto

import (
	"time"

	"github.com/jsamuelsen/quotify/internal/domain"
)

// QuoteResponse is a single quotation.
type QuoteResponse struct {
	Text   string `json:"text"`
	Author string `json:"author"`
}

// PositionResponse locates the cursor within the batch.
type PositionResponse struct {
	// Index is zero based.
	Index       int  `json:"index"`
	Total       int  `json:"total"`
	HasPrevious bool `json:"hasPrevious"`
	HasNext     bool `json:"hasNext"`
}

// CurrentQuoteResponse is returned by the navigation endpoints.
type CurrentQuoteResponse struct {
	Quote     QuoteResponse    `json:"quote"`
	Position  PositionResponse `json:"position"`
	FetchedAt *time.Time       `json:"fetchedAt,omitempty"`
}

// ShareResponse carries the copy text and the share-intent link.
type ShareResponse struct {
	Text     string           `json:"text"`
	ShareURL string           `json:"shareUrl"`
	Quote    QuoteResponse    `json:"quote"`
	Position PositionResponse `json:"position"`
}

// NewQuoteResponse converts a domain quote.
func NewQuoteResponse(q domain.Quote) QuoteResponse {
	return QuoteResponse{Text: q.Text, Author: q.Author}
}

// NewQuoteResponses converts a batch.
func NewQuoteResponses(b domain.Batch) []QuoteResponse {
	out := make([]QuoteResponse, len(b))
	for i, q := range b {
		out[i] = NewQuoteResponse(q)
	}

	return out
}

// NewPositionResponse converts a domain position.
func NewPositionResponse(p domain.Position) PositionResponse {
	return PositionResponse{
		Index:       p.Index,
		Total:       p.Total,
		HasPrevious: p.HasPrevious(),
		HasNext:     p.HasNext(),
	}
}

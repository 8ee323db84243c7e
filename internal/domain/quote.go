// Package domain contains core business entities and rules.
package domain

// Quote is a quotation with its author.
// It has no knowledge of where it came from (live API or fallback table).
type Quote struct {
	// Text is the body of the quotation.
	Text string `json:"text"`

	// Author is who said or wrote it.
	Author string `json:"author"`
}

// Format renders the quote the way it is copied or shared: "<text> - <author>".
func (q Quote) Format() string {
	if q.Author == "" {
		return q.Text
	}

	return q.Text + " - " + q.Author
}

// Batch is the ordered, fixed-size set of quotes available for navigation.
type Batch []Quote

// Clone returns a copy that does not share backing storage with b.
func (b Batch) Clone() Batch {
	if b == nil {
		return nil
	}

	out := make(Batch, len(b))
	copy(out, b)

	return out
}

// Position reports where the cursor sits inside the current batch.
type Position struct {
	Index int `json:"index"`
	Total int `json:"total"`
}

// HasPrevious reports whether Retreat would move the cursor.
func (p Position) HasPrevious() bool {
	return p.Total > 0 && p.Index > 0
}

// HasNext reports whether Advance would move the cursor.
func (p Position) HasNext() bool {
	return p.Total > 0 && p.Index < p.Total-1
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote_Format(t *testing.T) {
	tests := []struct {
		name     string
		quote    Quote
		expected string
	}{
		{
			name:     "text and author",
			quote:    Quote{Text: "Well done is better than well said.", Author: "Benjamin Franklin"},
			expected: "Well done is better than well said. - Benjamin Franklin",
		},
		{
			name:     "anonymous",
			quote:    Quote{Text: "Dream big."},
			expected: "Dream big.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.quote.Format())
		})
	}
}

func TestBatch_Clone(t *testing.T) {
	original := Batch{{Text: "a", Author: "b"}}
	clone := original.Clone()

	clone[0].Text = "changed"

	assert.Equal(t, "a", original[0].Text)
	assert.Nil(t, Batch(nil).Clone())
}

func TestPosition_Boundaries(t *testing.T) {
	tests := []struct {
		name         string
		pos          Position
		wantPrevious bool
		wantNext     bool
	}{
		{name: "empty", pos: Position{}, wantPrevious: false, wantNext: false},
		{name: "first", pos: Position{Index: 0, Total: 60}, wantPrevious: false, wantNext: true},
		{name: "middle", pos: Position{Index: 30, Total: 60}, wantPrevious: true, wantNext: true},
		{name: "last", pos: Position{Index: 59, Total: 60}, wantPrevious: true, wantNext: false},
		{name: "single", pos: Position{Index: 0, Total: 1}, wantPrevious: false, wantNext: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantPrevious, tt.pos.HasPrevious())
			assert.Equal(t, tt.wantNext, tt.pos.HasNext())
		})
	}
}

func TestFallbackQuotes(t *testing.T) {
	all := FallbackQuotes()

	assert.Len(t, all, 60)
	assert.Equal(t, FallbackSize, len(all))
	assert.Equal(t, "Nelson Mandela", all[0].Author)

	for i, q := range all {
		assert.NotEmpty(t, q.Text, "entry %d", i)
		assert.NotEmpty(t, q.Author, "entry %d", i)
	}
}

func TestFallbackSlice(t *testing.T) {
	all := FallbackQuotes()

	assert.Equal(t, all[20:40], FallbackSlice(20, 40))
	assert.Len(t, FallbackSlice(50, 80), 10)
	assert.Empty(t, FallbackSlice(70, 90))
	assert.Empty(t, FallbackSlice(10, 5))

	page := FallbackSlice(0, 1)
	page[0].Text = "mutated"
	assert.NotEqual(t, "mutated", FallbackQuotes()[0].Text)
}

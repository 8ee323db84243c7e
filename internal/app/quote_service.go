package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/quotify/internal/domain"
)

// ShareLinker renders a share-intent link for a quote.
type ShareLinker interface {
	URL(q domain.Quote) string
}

// DefaultLoadTimeout bounds a load started on behalf of a caller.
const DefaultLoadTimeout = 30 * time.Second

// QuoteService orchestrates the quote use cases exposed by the HTTP API and
// the CLI. It loads the batch lazily on first use.
//
// Loads are detached from the caller's cancellation: a batch is persisted for
// a whole TTL, so a client that goes away mid-load must not leave a batch of
// fallback quotes behind. LoadTimeout still bounds them.
type QuoteService struct {
	store       *QuoteBatchStore
	share       ShareLinker
	loadTimeout time.Duration
	logger      *slog.Logger
}

// QuoteServiceConfig contains the dependencies of a QuoteService.
type QuoteServiceConfig struct {
	Store       *QuoteBatchStore
	Share       ShareLinker
	LoadTimeout time.Duration
	Logger      *slog.Logger
}

// SharedQuote is the copy text and share link for the current quote.
type SharedQuote struct {
	View

	Text string
	URL  string
}

// BatchPage is a window of the current batch.
type BatchPage struct {
	Quotes    domain.Batch
	Offset    int
	Total     int
	FetchedAt time.Time
}

// NewQuoteService creates a quote service. It panics if Store or Share is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("QuoteService: Store is required")
	}
	if cfg.Share == nil {
		panic("QuoteService: Share is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	timeout := cfg.LoadTimeout
	if timeout <= 0 {
		timeout = DefaultLoadTimeout
	}

	return &QuoteService{
		store:       cfg.Store,
		share:       cfg.Share,
		loadTimeout: timeout,
		logger:      logger.With(slog.String("component", "app.QuoteService")),
	}
}

// loadContext keeps ctx's values but not its cancellation.
func (s *QuoteService) loadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.loadTimeout)
}

// ensureLoaded loads the batch if nothing has been loaded yet.
func (s *QuoteService) ensureLoaded(ctx context.Context) {
	if s.store.Position().Total > 0 {
		return
	}

	s.logger.DebugContext(ctx, "no batch in memory, loading")

	loadCtx, cancel := s.loadContext(ctx)
	defer cancel()

	_, _ = s.store.Load(loadCtx)
}

// Current returns the quote under the cursor.
func (s *QuoteService) Current(ctx context.Context) (View, error) {
	s.ensureLoaded(ctx)

	return s.store.View()
}

// Next advances to the following quote.
func (s *QuoteService) Next(ctx context.Context) (View, error) {
	return s.Step(ctx, 1)
}

// Previous steps back to the preceding quote.
func (s *QuoteService) Previous(ctx context.Context) (View, error) {
	return s.Step(ctx, -1)
}

// Step moves the cursor by delta places.
func (s *QuoteService) Step(ctx context.Context, delta int) (View, error) {
	s.ensureLoaded(ctx)

	return s.store.Step(delta)
}

// Refresh discards the current batch, fetches a new one and returns its first quote.
func (s *QuoteService) Refresh(ctx context.Context) (View, error) {
	loadCtx, cancel := s.loadContext(ctx)
	_, _ = s.store.Refresh(loadCtx)
	cancel()

	v, err := s.store.View()
	if err != nil {
		return View{}, err
	}

	s.logger.InfoContext(ctx, "batch refreshed",
		slog.Int("size", v.Position.Total),
		slog.Time("fetched_at", v.FetchedAt),
	)

	return v, nil
}

// Share returns the copy text and share link for the current quote.
func (s *QuoteService) Share(ctx context.Context) (SharedQuote, error) {
	v, err := s.Current(ctx)
	if err != nil {
		return SharedQuote{}, err
	}

	return SharedQuote{
		View: v,
		Text: v.Quote.Format(),
		URL:  s.share.URL(v.Quote),
	}, nil
}

// Page returns up to limit quotes of the current batch starting at offset.
func (s *QuoteService) Page(ctx context.Context, offset, limit int) (BatchPage, error) {
	if offset < 0 {
		return BatchPage{}, domain.NewValidationError("offset", "must not be negative")
	}
	if limit < 1 {
		return BatchPage{}, domain.NewValidationError("limit", "must be at least 1")
	}

	s.ensureLoaded(ctx)

	batch, fetchedAt := s.store.snapshot()
	if len(batch) == 0 {
		return BatchPage{}, errEmpty()
	}

	start := min(offset, len(batch))
	end := min(start+limit, len(batch))

	return BatchPage{
		Quotes:    batch[start:end],
		Offset:    start,
		Total:     len(batch),
		FetchedAt: fetchedAt,
	}, nil
}

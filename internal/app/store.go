// Package app contains the application services that orchestrate quotify's use cases.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen/quotify/internal/domain"
	"github.com/jsamuelsen/quotify/internal/platform/logging"
	"github.com/jsamuelsen/quotify/internal/platform/telemetry"
	"github.com/jsamuelsen/quotify/internal/ports"
)

// Persistent cache keys. The batch is a JSON array of {text, author};
// the timestamp is decimal epoch milliseconds.
const (
	BatchKey     = "quotify.batch"
	FetchedAtKey = "quotify.fetched_at"
)

// staleTimestamp is older than any TTL; it marks a batch write in progress.
const staleTimestamp = "0"

// Batch defaults.
const (
	DefaultTargetSize = 60
	DefaultPageSize   = 20
	DefaultTTL        = 24 * time.Hour
)

// StoreConfig wires a QuoteBatchStore.
type StoreConfig struct {
	Source ports.QuoteSource
	Cache  ports.PersistentCache

	// TargetSize is the batch length, at most domain.FallbackSize.
	TargetSize int
	PageSize   int
	TTL        time.Duration

	// Now defaults to time.Now.
	Now func() time.Time

	Logger  *slog.Logger
	Metrics *telemetry.StoreMetrics
}

// QuoteBatchStore holds the current quote batch and a cursor into it.
//
// Load fills the batch from the persistent cache when it is fresh, otherwise
// from the quote source page by page. It never fails: pages that cannot be
// fetched are filled from the static fallback table. Overlapping loads share
// a single execution. Navigation is safe for concurrent use.
type QuoteBatchStore struct {
	source  ports.QuoteSource
	cache   ports.PersistentCache
	target  int
	page    int
	ttl     time.Duration
	now     func() time.Time
	logger  *slog.Logger
	metrics *telemetry.StoreMetrics

	loads singleflight.Group

	mu        sync.RWMutex
	batch     domain.Batch
	cursor    int
	fetchedAt time.Time
}

// NewQuoteBatchStore creates an empty store. It panics if Source or Cache is nil.
// Zero sizes and TTL take the package defaults.
func NewQuoteBatchStore(cfg StoreConfig) *QuoteBatchStore {
	if cfg.Source == nil {
		panic("QuoteBatchStore: Source is required")
	}
	if cfg.Cache == nil {
		panic("QuoteBatchStore: Cache is required")
	}

	target := cfg.TargetSize
	if target <= 0 {
		target = DefaultTargetSize
	}
	target = min(target, domain.FallbackSize)

	page := cfg.PageSize
	if page <= 0 {
		page = DefaultPageSize
	}
	page = min(page, target)

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteBatchStore{
		source:  cfg.Source,
		cache:   cfg.Cache,
		target:  target,
		page:    page,
		ttl:     ttl,
		now:     now,
		logger:  logger.With(slog.String("component", "app.QuoteBatchStore")),
		metrics: cfg.Metrics,
	}
}

// Load makes a batch of TargetSize quotes current and resets the cursor.
// A cached batch younger than the TTL is used as is; otherwise a new batch is
// fetched and persisted. The returned error is always nil.
func (s *QuoteBatchStore) Load(ctx context.Context) (domain.Batch, error) {
	return s.coalesce(ctx, "load", false), nil
}

// Refresh is Load without the freshness check: it always fetches.
func (s *QuoteBatchStore) Refresh(ctx context.Context) (domain.Batch, error) {
	return s.coalesce(ctx, "refresh", true), nil
}

// coalesce runs at most one load per key at a time; concurrent callers
// receive the in-flight result.
func (s *QuoteBatchStore) coalesce(ctx context.Context, key string, force bool) domain.Batch {
	v, _, _ := s.loads.Do(key, func() (any, error) {
		return s.load(ctx, force), nil
	})

	return v.(domain.Batch).Clone()
}

func (s *QuoteBatchStore) load(ctx context.Context, force bool) domain.Batch {
	if !force {
		if batch, fetchedAt, ok := s.readCache(ctx); ok {
			s.install(batch, fetchedAt)
			s.metrics.RecordLoad(ctx, telemetry.LoadSourceCache, 0)
			s.logger.DebugContext(ctx, "batch served from cache",
				slog.Time("fetched_at", fetchedAt),
				slog.Int("size", len(batch)),
			)
			return batch
		}
	}

	batch, fallbackPages := s.fetchBatch(ctx)
	fetchedAt := s.now()

	s.writeCache(ctx, batch, fetchedAt)
	s.install(batch, fetchedAt)

	source := s.loadSource(fallbackPages)
	s.metrics.RecordLoad(ctx, source, fallbackPages)
	s.logger.InfoContext(ctx, "batch loaded",
		slog.String("source", source),
		slog.Int("size", len(batch)),
		slog.Int("fallback_pages", fallbackPages),
	)

	return batch
}

func (s *QuoteBatchStore) pageCount() int {
	return (s.target + s.page - 1) / s.page
}

func (s *QuoteBatchStore) loadSource(fallbackPages int) string {
	switch fallbackPages {
	case 0:
		return telemetry.LoadSourceNetwork
	case s.pageCount():
		return telemetry.LoadSourceFallback
	default:
		return telemetry.LoadSourcePartial
	}
}

// fetchBatch requests the pages in order, one at a time. Page i covers
// positions [i*page, i*page+limit); whatever the source does not supply for
// that range is taken from the same range of the fallback table.
func (s *QuoteBatchStore) fetchBatch(ctx context.Context) (domain.Batch, int) {
	batch := make(domain.Batch, 0, s.target)
	fallbackPages := 0

	for i := range s.pageCount() {
		start := i * s.page
		limit := min(s.page, s.target-start)

		quotes, err := s.source.FetchPage(logging.With(ctx, slog.Int("batch_page", i)), limit)
		if err != nil {
			s.logger.WarnContext(ctx, "quote page fetch failed, using fallback",
				slog.Int("page", i),
				slog.Any("error", err),
			)
			quotes = nil
		}

		if len(quotes) > limit {
			quotes = quotes[:limit]
		}

		if len(quotes) < limit {
			fallbackPages++
			if err == nil {
				s.logger.DebugContext(ctx, "short quote page, backfilling",
					slog.Int("page", i),
					slog.Int("received", len(quotes)),
					slog.Int("want", limit),
				)
			}
		}

		batch = append(batch, quotes...)
		batch = append(batch, domain.FallbackSlice(start+len(quotes), start+limit)...)
	}

	return batch, fallbackPages
}

// readCache returns the cached batch when both keys are present, well formed,
// of the target length and younger than the TTL. Anything else is a miss.
func (s *QuoteBatchStore) readCache(ctx context.Context) (domain.Batch, time.Time, bool) {
	rawTS, err := s.cache.Get(ctx, FetchedAtKey)
	if err != nil {
		s.logCacheMiss(ctx, FetchedAtKey, err)
		return nil, time.Time{}, false
	}

	millis, err := strconv.ParseInt(string(rawTS), 10, 64)
	if err != nil {
		s.logger.WarnContext(ctx, "cached timestamp unparseable", slog.String("value", string(rawTS)))
		return nil, time.Time{}, false
	}
	fetchedAt := time.UnixMilli(millis)

	if age := s.now().Sub(fetchedAt); age >= s.ttl {
		s.logger.DebugContext(ctx, "cached batch stale", slog.Duration("age", age))
		return nil, time.Time{}, false
	}

	rawBatch, err := s.cache.Get(ctx, BatchKey)
	if err != nil {
		s.logCacheMiss(ctx, BatchKey, err)
		return nil, time.Time{}, false
	}

	var batch domain.Batch
	if err := json.Unmarshal(rawBatch, &batch); err != nil {
		s.logger.WarnContext(ctx, "cached batch undecodable", slog.Any("error", err))
		return nil, time.Time{}, false
	}

	if len(batch) != s.target {
		s.logger.WarnContext(ctx, "cached batch has wrong size",
			slog.Int("size", len(batch)),
			slog.Int("want", s.target),
		)
		return nil, time.Time{}, false
	}

	return batch, fetchedAt, true
}

func (s *QuoteBatchStore) logCacheMiss(ctx context.Context, key string, err error) {
	if errors.Is(err, domain.ErrNotFound) {
		s.logger.DebugContext(ctx, "cache miss", slog.String("key", key))
		return
	}

	s.logger.WarnContext(ctx, "cache read failed", slog.String("key", key), slog.Any("error", err))
}

// writeCache marks the timestamp stale, writes the batch, then records
// fetchedAt. A failed write leaves either the previous pair or a stale one.
// Failures are logged only.
func (s *QuoteBatchStore) writeCache(ctx context.Context, batch domain.Batch, fetchedAt time.Time) {
	data, err := json.Marshal(batch)
	if err != nil {
		s.logger.WarnContext(ctx, "encoding batch failed", slog.Any("error", err))
		return
	}

	writes := []struct {
		key   string
		value []byte
	}{
		{FetchedAtKey, []byte(staleTimestamp)},
		{BatchKey, data},
		{FetchedAtKey, []byte(strconv.FormatInt(fetchedAt.UnixMilli(), 10))},
	}

	for _, w := range writes {
		if err := s.cache.Set(ctx, w.key, w.value); err != nil {
			s.logger.WarnContext(ctx, "cache write failed", slog.String("key", w.key), slog.Any("error", err))
			return
		}
	}
}

func (s *QuoteBatchStore) install(batch domain.Batch, fetchedAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batch = batch
	s.cursor = 0
	s.fetchedAt = fetchedAt
}

// errEmpty is returned by navigation before the first Load.
func errEmpty() error {
	return domain.NewNotFoundError("quote batch", "")
}

// View is the quote under the cursor together with where it sits and when
// its batch was fetched.
type View struct {
	Quote     domain.Quote
	Position  domain.Position
	FetchedAt time.Time
}

// Current returns the quote under the cursor.
func (s *QuoteBatchStore) Current() (domain.Quote, error) {
	v, err := s.View()
	return v.Quote, err
}

// View returns the quote under the cursor with its position and fetch time.
func (s *QuoteBatchStore) View() (View, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.viewLocked()
}

// Advance moves the cursor forward one place, stopping at the last quote.
func (s *QuoteBatchStore) Advance() (domain.Quote, error) {
	v, err := s.Step(1)
	return v.Quote, err
}

// Retreat moves the cursor back one place, stopping at the first quote.
func (s *QuoteBatchStore) Retreat() (domain.Quote, error) {
	v, err := s.Step(-1)
	return v.Quote, err
}

// Step moves the cursor by delta places, clamped to the batch.
func (s *QuoteBatchStore) Step(delta int) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.batch) == 0 {
		return View{}, errEmpty()
	}

	// cursor+delta can overflow, so compare against the room left instead.
	last := len(s.batch) - 1
	switch {
	case delta > last-s.cursor:
		s.cursor = last
	case delta < -s.cursor:
		s.cursor = 0
	default:
		s.cursor += delta
	}

	return s.viewLocked()
}

func (s *QuoteBatchStore) viewLocked() (View, error) {
	if len(s.batch) == 0 {
		return View{}, errEmpty()
	}

	return View{
		Quote:     s.batch[s.cursor],
		Position:  domain.Position{Index: s.cursor, Total: len(s.batch)},
		FetchedAt: s.fetchedAt,
	}, nil
}

// Position reports the cursor and batch length; {0, 0} before the first Load.
func (s *QuoteBatchStore) Position() domain.Position {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return domain.Position{Index: s.cursor, Total: len(s.batch)}
}

// CachedAt reports when the current batch was fetched.
func (s *QuoteBatchStore) CachedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.fetchedAt, len(s.batch) > 0
}

// Batch returns a copy of the current batch; empty before the first Load.
func (s *QuoteBatchStore) Batch() domain.Batch {
	batch, _ := s.snapshot()
	return batch
}

func (s *QuoteBatchStore) snapshot() (domain.Batch, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.batch.Clone(), s.fetchedAt
}

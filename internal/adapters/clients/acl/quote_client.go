package acl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/jsamuelsen/quotify/internal/adapters/clients"
	"github.com/jsamuelsen/quotify/internal/domain"
	"github.com/jsamuelsen/quotify/internal/platform/logging"
	"github.com/jsamuelsen/quotify/internal/ports"
)

const (
	randomQuotesPath = "/quotes/random"

	// quotable rejects limits above 50.
	maxPageLimit = 50

	healthCheckName = "quote-service"
)

var (
	_ ports.QuoteSource   = (*QuoteClient)(nil)
	_ ports.HealthChecker = (*QuoteClient)(nil)
)

// QuoteClientConfig contains configuration for the quote client.
type QuoteClientConfig struct {
	// Client must have its BaseURL set to the quotable API root.
	Client *clients.Client

	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// QuoteClient fetches pages of random quotes from quotable.io.
type QuoteClient struct {
	client *clients.Client
	logger *slog.Logger
}

// NewQuoteClient creates a new quote client adapter. It panics if Client is nil.
func NewQuoteClient(cfg QuoteClientConfig) *QuoteClient {
	if cfg.Client == nil {
		panic("QuoteClient: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteClient{
		client: cfg.Client,
		logger: logger.With(slog.String("component", "acl.QuoteClient")),
	}
}

// quotableQuote is one element of the /quotes/random response array.
type quotableQuote struct {
	ID      string   `json:"_id"`
	Content string   `json:"content"`
	Author  string   `json:"author"`
	Tags    []string `json:"tags"`
}

// FetchPage requests up to limit random quotes. Malformed entries are dropped,
// so the page may be shorter than limit; callers backfill short pages.
func (c *QuoteClient) FetchPage(ctx context.Context, limit int) ([]domain.Quote, error) {
	if limit < 1 {
		return nil, domain.NewValidationError("limit", "must be positive")
	}

	limit = min(limit, maxPageLimit)
	query := url.Values{"limit": {strconv.Itoa(limit)}}

	c.logger.Log(ctx, logging.LevelTrace, "fetching quote page", slog.Int("limit", limit))

	body, err := get(ctx, c.client, randomQuotesPath, query, "fetch quote page")
	if err != nil {
		return nil, err
	}

	page, err := decodeJSON[[]quotableQuote](body)
	if err != nil {
		return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
	}

	quotes, err := translateEach(page, translateQuote)
	if err != nil {
		c.logger.DebugContext(ctx, "dropped malformed quotes",
			slog.Int("received", len(page)),
			slog.Int("kept", len(quotes)),
			slog.Any("error", err),
		)
	}

	if len(quotes) > limit {
		quotes = quotes[:limit]
	}

	return quotes, nil
}

func translateQuote(ext *quotableQuote) (domain.Quote, error) {
	text := strings.TrimSpace(ext.Content)
	author := strings.TrimSpace(ext.Author)

	if err := errors.Join(
		required(text, "content"),
		required(author, "author"),
	); err != nil {
		return domain.Quote{}, err
	}

	return domain.Quote{Text: text, Author: author}, nil
}

// ServiceName is the downstream name used in errors and telemetry.
func (c *QuoteClient) ServiceName() string {
	return c.client.ServiceName()
}

// Name implements ports.HealthChecker.
func (c *QuoteClient) Name() string {
	return healthCheckName
}

// Check fetches a single quote to verify the API is reachable.
func (c *QuoteClient) Check(ctx context.Context) error {
	body, err := get(ctx, c.client, randomQuotesPath, url.Values{"limit": {"1"}}, "health check")
	if err != nil {
		return err
	}

	if err := body.Close(); err != nil {
		return fmt.Errorf("closing health check body: %w", err)
	}

	return nil
}

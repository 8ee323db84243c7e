// Package share builds share-intent links for quotes.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/jsamuelsen/quotify/internal/domain"
	"github.com/jsamuelsen/quotify/internal/platform/config"
)

// Default intent endpoint and hashtags.
const (
	DefaultIntentURL = "https://twitter.com/intent/tweet"
)

// DefaultHashtags are appended to every share link unless configured otherwise.
var DefaultHashtags = []string{"Quotify", "Inspiration"}

// Builder renders share-intent URLs.
type Builder struct {
	intent   *url.URL
	hashtags string
}

// New creates a Builder from share configuration.
// An empty intent URL falls back to DefaultIntentURL and nil hashtags to
// DefaultHashtags. An empty, non-nil hashtag list disables hashtags.
func New(cfg config.ShareConfig) (*Builder, error) {
	raw := cfg.IntentURL
	if raw == "" {
		raw = DefaultIntentURL
	}

	intent, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing share intent url: %w", err)
	}

	if intent.Scheme == "" || intent.Host == "" {
		return nil, fmt.Errorf("share intent url %q must be absolute", raw)
	}

	tags := cfg.Hashtags
	if tags == nil {
		tags = DefaultHashtags
	}

	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}

	return &Builder{intent: intent, hashtags: strings.Join(cleaned, ",")}, nil
}

// URL returns the share link for q. Existing query parameters on the intent
// URL are preserved; text and hashtags are overwritten.
func (b *Builder) URL(q domain.Quote) string {
	u := *b.intent

	query := u.Query()
	query.Set("text", q.Format())

	if b.hashtags != "" {
		query.Set("hashtags", b.hashtags)
	} else {
		query.Del("hashtags")
	}

	u.RawQuery = query.Encode()

	return u.String()
}

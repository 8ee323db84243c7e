package logging

import (
	"log/slog"
	"regexp"

	"github.com/m-mizutani/masq"
)

// Values that can carry credentials into the logs: auth headers forwarded by
// the HTTP client, and a quote API base URL pointing at a private mirror
// with userinfo or a keyed query string.
var (
	authSchemePattern = regexp.MustCompile(`(?i)^(bearer|basic)\s+\S+`)
	userinfoPattern   = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://[^/?#@\s]+:[^/?#@\s]*@`)
	keyedQueryPattern = regexp.MustCompile(`(?i)[?&](api_?key|token|access_token|signature)=`)
)

func redactOptions() []masq.Option {
	return []masq.Option{
		masq.WithFieldName("authorization"),
		masq.WithFieldName("cookie"),
		masq.WithFieldName("password"),
		masq.WithFieldName("token"),
		masq.WithFieldName("api_key"),
		masq.WithFieldName("apiKey"),
		masq.WithFieldPrefix("secret"),
		masq.WithRegex(authSchemePattern),
		masq.WithRegex(userinfoPattern),
		masq.WithRegex(keyedQueryPattern),
	}
}

// NewReplaceAttr returns a slog ReplaceAttr that masks credentials.
// extra adds to the built-in rules.
func NewReplaceAttr(extra ...masq.Option) func(groups []string, a slog.Attr) slog.Attr {
	return masq.New(append(redactOptions(), extra...)...)
}

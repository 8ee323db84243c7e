// Package acl is the anti-corruption layer between quotify and the quotable.io API.
//
// The quotable wire format never leaves this package. Failed exchanges become
// domain errors through [MapHTTPError], and only validated domain.Quote
// values reach the application. [QuoteClient] is the production
// ports.QuoteSource and the quote API health check.
package acl

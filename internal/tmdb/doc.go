// Package tmdb provides the small TMDB API client used to decorate
// recommendations with poster images.
//
// The client fetches movie details by id and turns the returned poster path
// into a full image URL. Outgoing calls share a token-bucket rate limiter and
// a circuit breaker that stops hammering TMDB after consecutive failures.
// Resolved URLs are kept in an LRU cache keyed by movie id. Options allow
// tests to supply custom HTTP clients without modifying production code.
package tmdb

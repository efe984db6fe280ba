// Package api defines the transport types and the recommendation service
// shared by the CLI and the HTTP server.
//
// # Key Types
//
// RecommendService: wraps a loaded model and an optional poster source.
// Recommend ranks similar titles and decorates them with posters, Titles
// backs the title picker, and Suggestions offers alternatives after an
// unknown-title error.
//
// RecommendResponse/RecommendationCard: ranked results with 1-based rank,
// score and an optional poster URL or per-card poster error.
//
// SessionResponse, Credentials, ErrorResponse, HealthResponse: HTTP bodies.
//
// # Design Notes
//
// DTOs use camelCase JSON tags for JavaScript consumers. Poster failures are
// reported per card and never fail the whole response.
package api

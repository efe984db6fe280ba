// Package posters decorates ranked recommendations with poster URLs.
//
// Lookups fan out concurrently with a bounded worker count and each result
// lands in its ranked slot, so display order never depends on which request
// finishes first.
package posters

// Package recommend turns a selected title into a ranked list of similar
// titles.
//
// Ranking pairs every score in the title's similarity row with its catalog
// position, sorts by score descending with ties kept in catalog order, drops
// the query's own position wherever it lands, and keeps the first k. Unknown
// titles surface catalog.ErrNotFound instead of an empty list.
package recommend

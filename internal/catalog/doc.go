// Package catalog holds the ordered movie list that the similarity matrix is
// indexed against.
//
// Entries keep artifact order: position i in the catalog is row and column i
// of the matrix. Titles resolve through an exact-match index, and Suggest
// offers case-folded substring matches for interactive lookups. Closest
// ranks titles by TF-IDF word overlap for "did you mean" hints. Load reads
// CSV tables and the two JSON layouts produced by dataframe exports.
package catalog

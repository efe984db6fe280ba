// Package similarity stores the precomputed square score matrix used for
// recommendations.
//
// Matrices are backed by gonum dense storage and validated on construction:
// they must be square, non-empty, and contain only finite scores. Artifacts
// load from nested JSON arrays or from the compact gonum binary encoding,
// which Write produces.
package similarity

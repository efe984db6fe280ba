// Package textutil turns short strings such as movie titles into weighted
// token vectors and compares them.
//
// Tokens are Unicode case-folded runs of letters and digits; runs shorter
// than three runes are dropped. A Corpus gathers document frequencies so
// common words ("the", "of") can be discounted with IDF weights before
// cosine comparison.
package textutil

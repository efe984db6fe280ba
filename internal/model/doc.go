// Package model loads the catalog and similarity artifacts as one unit and
// refuses pairs whose sizes disagree.
package model

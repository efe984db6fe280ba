package catalog

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"golang.org/x/text/cases"

	"marquee/internal/textutil"
)

var (
	// ErrNotFound reports a title that has no entry in the catalog.
	ErrNotFound = errors.New("title not found in catalog")
	// ErrIndexOutOfRange reports a position outside the catalog. It indicates
	// mismatched artifacts and is not recoverable.
	ErrIndexOutOfRange = errors.New("catalog index out of range")
)

// Entry is a single movie record. Fields carries any auxiliary columns from
// the artifact (genres, overview, tags) untouched.
type Entry struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Catalog is an ordered, immutable list of entries with an exact-title index.
// Position i corresponds to row and column i of the similarity matrix.
type Catalog struct {
	entries []Entry
	byTitle map[string]int

	// TF-IDF title vectors for Closest, parallel to entries.
	fingerprints []*textutil.Fingerprint
	idf          map[string]float64
}

// New builds a catalog from entries in artifact order. Titles must be
// non-empty; when a title repeats, lookups resolve to its first position.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, errors.New("catalog is empty")
	}
	c := &Catalog{
		entries: make([]Entry, len(entries)),
		byTitle: make(map[string]int, len(entries)),
	}
	for i, entry := range entries {
		if strings.TrimSpace(entry.Title) == "" {
			return nil, fmt.Errorf("catalog entry %d (id %d): title is empty", i, entry.ID)
		}
		c.entries[i] = Entry{ID: entry.ID, Title: entry.Title, Fields: copyFields(entry.Fields)}
		if _, seen := c.byTitle[entry.Title]; !seen {
			c.byTitle[entry.Title] = i
		}
	}
	c.indexTitles()
	return c, nil
}

func (c *Catalog) indexTitles() {
	raw := make([]*textutil.Fingerprint, len(c.entries))
	corpus := textutil.NewCorpus()
	for i, entry := range c.entries {
		raw[i] = textutil.NewFingerprint(entry.Title)
		corpus.Add(raw[i])
	}
	c.idf = corpus.IDF()
	c.fingerprints = make([]*textutil.Fingerprint, len(raw))
	for i, fp := range raw {
		c.fingerprints[i] = fp.WithIDF(c.idf)
	}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// FindIndexByTitle returns the position of the entry whose title matches
// exactly. The error wraps ErrNotFound when no entry matches.
func (c *Catalog) FindIndexByTitle(title string) (int, error) {
	idx, ok := c.byTitle[title]
	if !ok {
		return -1, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	return idx, nil
}

// EntryAt returns the entry at position index.
func (c *Catalog) EntryAt(index int) (Entry, error) {
	if index < 0 || index >= len(c.entries) {
		return Entry{}, fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(c.entries))
	}
	entry := c.entries[index]
	entry.Fields = copyFields(entry.Fields)
	return entry, nil
}

// Titles returns every title in catalog order.
func (c *Catalog) Titles() []string {
	titles := make([]string, len(c.entries))
	for i, entry := range c.entries {
		titles[i] = entry.Title
	}
	return titles
}

// Suggest returns up to limit entries whose title contains query, compared
// with Unicode case folding, in catalog order. An empty query matches every
// entry. A limit <= 0 means no limit.
func (c *Catalog) Suggest(query string, limit int) []Entry {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(query))

	var matches []Entry
	for _, entry := range c.entries {
		if needle != "" && !strings.Contains(fold.String(entry.Title), needle) {
			continue
		}
		matches = append(matches, Entry{ID: entry.ID, Title: entry.Title, Fields: copyFields(entry.Fields)})
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches
}

// Closest returns up to limit entries whose titles share weighted words with
// query, best match first. Words common to many titles count for less. Ties
// keep catalog order. A limit <= 0 means no limit.
func (c *Catalog) Closest(query string, limit int) []Entry {
	needle := textutil.NewFingerprint(query).WithIDF(c.idf)
	if needle == nil {
		return nil
	}
	type scored struct {
		index int
		score float64
	}
	var hits []scored
	for i, fp := range c.fingerprints {
		if score := textutil.CosineSimilarity(needle, fp); score > 0 {
			hits = append(hits, scored{index: i, score: score})
		}
	}
	slices.SortStableFunc(hits, func(a, b scored) int {
		return cmp.Compare(b.score, a.score)
	})
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	matches := make([]Entry, len(hits))
	for i, hit := range hits {
		entry := c.entries[hit.index]
		matches[i] = Entry{ID: entry.ID, Title: entry.Title, Fields: copyFields(entry.Fields)}
	}
	return matches
}

func copyFields(fields map[string]string) map[string]string {
	if len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

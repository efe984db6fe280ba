package recommend

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"marquee/internal/catalog"
)

// DefaultK is the number of results returned when the caller has no preference.
const DefaultK = 10

var (
	// ErrMismatch reports a catalog and matrix that do not describe the same
	// items. It means the artifacts are corrupt or out of sync.
	ErrMismatch = errors.New("catalog and similarity matrix are misaligned")
	// ErrInvalidCount reports a non-positive result count.
	ErrInvalidCount = errors.New("recommendation count must be positive")
)

// Index resolves titles to catalog positions and back.
type Index interface {
	Len() int
	FindIndexByTitle(title string) (int, error)
	EntryAt(index int) (catalog.Entry, error)
}

// Scores exposes one similarity row per catalog position.
type Scores interface {
	Size() int
	RowFor(index int) ([]float64, error)
}

// Recommendation is one ranked result.
type Recommendation struct {
	Title string  `json:"title"`
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// Recommender ranks catalog entries by precomputed similarity. It holds only
// read-only state and is safe for concurrent use.
type Recommender struct {
	index  Index
	scores Scores
}

// New pairs a catalog with its similarity matrix. Sizes must agree.
func New(index Index, scores Scores) (*Recommender, error) {
	if index == nil || scores == nil {
		return nil, errors.New("recommender requires a catalog and a similarity matrix")
	}
	if index.Len() != scores.Size() {
		return nil, fmt.Errorf("%w: catalog has %d entries, matrix is %dx%[3]d", ErrMismatch, index.Len(), scores.Size())
	}
	return &Recommender{index: index, scores: scores}, nil
}

// Size returns the number of catalog entries.
func (r *Recommender) Size() int {
	return r.index.Len()
}

// Recommend returns up to k entries most similar to title, best first. The
// title itself never appears. The error wraps catalog.ErrNotFound when title
// is not in the catalog.
func (r *Recommender) Recommend(title string, k int) ([]Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, k)
	}
	position, err := r.index.FindIndexByTitle(title)
	if err != nil {
		return nil, err
	}
	return r.RecommendAt(position, k)
}

// RecommendAt ranks against the entry at position. It is Recommend without
// the title lookup.
func (r *Recommender) RecommendAt(position, k int) ([]Recommendation, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCount, k)
	}
	row, err := r.scores.RowFor(position)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
	}
	if len(row) != r.index.Len() {
		return nil, fmt.Errorf("%w: row %d has %d scores for %d entries", ErrMismatch, position, len(row), r.index.Len())
	}

	ranked := make([]candidate, len(row))
	for i, score := range row {
		ranked[i] = candidate{position: i, score: score}
	}
	// cmp.Compare orders NaN below every number, so NaN scores rank last.
	slices.SortStableFunc(ranked, func(a, b candidate) int {
		return cmp.Compare(b.score, a.score)
	})

	results := make([]Recommendation, 0, min(k, len(ranked)-1))
	for _, c := range ranked {
		if c.position == position {
			continue
		}
		if len(results) == k {
			break
		}
		entry, err := r.index.EntryAt(c.position)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMismatch, err)
		}
		results = append(results, Recommendation{Title: entry.Title, ID: entry.ID, Score: c.score})
	}
	return results, nil
}

type candidate struct {
	position int
	score    float64
}

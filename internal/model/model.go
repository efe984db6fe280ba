package model

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/recommend"
	"marquee/internal/similarity"
)

// Model is a loaded catalog and matrix pair plus the recommender over them.
type Model struct {
	Catalog     *catalog.Catalog
	Matrix      *similarity.Matrix
	Recommender *recommend.Recommender
}

// Load reads the artifacts named in the [model] section.
func Load(cfg *config.Config, logger *slog.Logger) (*Model, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	return LoadPaths(cfg.Model.CatalogPath, cfg.Model.MatrixPath, logger)
}

// LoadPaths reads a catalog and matrix and checks that they line up.
func LoadPaths(catalogPath, matrixPath string, logger *slog.Logger) (*Model, error) {
	logger = logging.NewComponentLogger(logger, "model")
	start := time.Now()

	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	matrix, err := similarity.Load(matrixPath)
	if err != nil {
		return nil, fmt.Errorf("load similarity matrix: %w", err)
	}
	rec, err := recommend.New(cat, matrix)
	if err != nil {
		return nil, fmt.Errorf("%w (catalog %s, matrix %s)", err, catalogPath, matrixPath)
	}

	logger.Info("model loaded",
		logging.Int("entries", cat.Len()),
		logging.String("catalog_path", catalogPath),
		logging.String("matrix_path", matrixPath),
		logging.Duration("elapsed", time.Since(start)),
	)
	return &Model{Catalog: cat, Matrix: matrix, Recommender: rec}, nil
}

// Report summarizes artifact health. None of the findings block loading.
type Report struct {
	Entries         int      `json:"entries"`
	Symmetric       bool     `json:"symmetric"`
	SelfNotMaximal  []int    `json:"self_not_maximal,omitempty"`
	DuplicateTitles []string `json:"duplicate_titles,omitempty"`
}

// Healthy reports whether the check found nothing worth flagging.
func (r Report) Healthy() bool {
	return r.Symmetric && len(r.SelfNotMaximal) == 0 && len(r.DuplicateTitles) == 0
}

// Check inspects the loaded artifacts. tol bounds the symmetry comparison.
func (m *Model) Check(tol float64) (Report, error) {
	report := Report{Entries: m.Catalog.Len(), Symmetric: m.Matrix.Symmetric(tol)}

	for i := range m.Matrix.Size() {
		row, err := m.Matrix.RowFor(i)
		if err != nil {
			return Report{}, err
		}
		for j, score := range row {
			if j != i && score > row[i] {
				report.SelfNotMaximal = append(report.SelfNotMaximal, i)
				break
			}
		}
	}

	seen := make(map[string]int, report.Entries)
	for _, title := range m.Catalog.Titles() {
		seen[title]++
		if seen[title] == 2 {
			report.DuplicateTitles = append(report.DuplicateTitles, title)
		}
	}
	return report, nil
}

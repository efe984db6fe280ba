package testsupport

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/similarity"
)

// FixtureEntries is the catalog written by WriteArtifacts, in matrix order.
var FixtureEntries = []catalog.Entry{
	{ID: 348, Title: "Alien"},
	{ID: 679, Title: "Aliens"},
	{ID: 949, Title: "Heat"},
	{ID: 8195, Title: "Ronin"},
	{ID: 862, Title: "Toy Story"},
}

// FixtureScores is the symmetric matrix written by WriteArtifacts.
var FixtureScores = [][]float64{
	{1, 0.8, 0.2, 0.3, 0.1},
	{0.8, 1, 0.25, 0.35, 0.1},
	{0.2, 0.25, 1, 0.7, 0.05},
	{0.3, 0.35, 0.7, 1, 0.05},
	{0.1, 0.1, 0.05, 0.05, 1},
}

// WriteArtifacts writes the fixture catalog as CSV and the fixture matrix in
// binary form to the paths named by cfg.
func WriteArtifacts(t testing.TB, cfg *config.Config) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(cfg.Model.CatalogPath), 0o755); err != nil {
		t.Fatalf("mkdir for catalog: %v", err)
	}
	var b strings.Builder
	b.WriteString("id,title\n")
	for _, entry := range FixtureEntries {
		fmt.Fprintf(&b, "%d,%s\n", entry.ID, entry.Title)
	}
	if err := os.WriteFile(cfg.Model.CatalogPath, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	m, err := similarity.New(FixtureScores)
	if err != nil {
		t.Fatalf("build fixture matrix: %v", err)
	}
	if err := similarity.Write(cfg.Model.MatrixPath, m); err != nil {
		t.Fatalf("write matrix: %v", err)
	}
}

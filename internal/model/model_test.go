package model_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/model"
	"marquee/internal/recommend"
	"marquee/internal/testsupport"
)

func TestLoadFromConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteArtifacts(t, cfg)

	m, err := model.Load(cfg, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if m.Catalog.Len() != m.Matrix.Size() {
		t.Fatalf("catalog/matrix size mismatch: %d vs %d", m.Catalog.Len(), m.Matrix.Size())
	}
	recs, err := m.Recommender.Recommend("Alien", 2)
	if err != nil {
		t.Fatalf("Recommend returned error: %v", err)
	}
	if len(recs) != 2 || recs[0].Title != "Aliens" {
		t.Fatalf("unexpected recommendations %+v", recs)
	}
}

func TestLoadRejectsMismatchedArtifacts(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "movies.csv")
	matrixPath := filepath.Join(dir, "similarity.json")
	if err := os.WriteFile(catalogPath, []byte("id,title\n1,A\n2,B\n3,C\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if err := os.WriteFile(matrixPath, []byte("[[1,0.5],[0.5,1]]"), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}

	if _, err := model.LoadPaths(catalogPath, matrixPath, nil); !errors.Is(err, recommend.ErrMismatch) {
		t.Fatalf("expected ErrMismatch, got %v", err)
	}
}

func TestCheckFlagsProblems(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "movies.csv")
	matrixPath := filepath.Join(dir, "similarity.json")
	if err := os.WriteFile(catalogPath, []byte("id,title\n1,A\n2,B\n3,A\n"), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	if err := os.WriteFile(matrixPath, []byte("[[0.1,0.9,0.5],[0.9,1,0.5],[0.5,0.4,1]]"), 0o644); err != nil {
		t.Fatalf("write matrix: %v", err)
	}

	m, err := model.LoadPaths(catalogPath, matrixPath, nil)
	if err != nil {
		t.Fatalf("LoadPaths returned error: %v", err)
	}
	report, err := m.Check(1e-9)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if report.Healthy() {
		t.Fatal("expected unhealthy report")
	}
	if report.Symmetric {
		t.Fatal("expected asymmetry to be detected")
	}
	if len(report.SelfNotMaximal) != 1 || report.SelfNotMaximal[0] != 0 {
		t.Fatalf("expected row 0 flagged, got %v", report.SelfNotMaximal)
	}
	if len(report.DuplicateTitles) != 1 || report.DuplicateTitles[0] != "A" {
		t.Fatalf("expected duplicate A, got %v", report.DuplicateTitles)
	}
}

func TestCheckHealthyFixture(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.WriteArtifacts(t, cfg)
	m, err := model.Load(cfg, nil)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	report, err := m.Check(1e-9)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if !report.Healthy() {
		t.Fatalf("expected healthy fixture, got %+v", report)
	}
}

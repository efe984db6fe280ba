package catalog_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/catalog"
)

func writeArtifact(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadCSV(t *testing.T) {
	path := writeArtifact(t, "movies.csv", "movie_id,title,tags\n19995,Avatar,\"action, sci-fi\"\n285,Pirates,adventure\n")

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cat.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cat.Len())
	}
	entry, _ := cat.EntryAt(0)
	if entry.ID != 19995 || entry.Title != "Avatar" {
		t.Fatalf("unexpected first entry %#v", entry)
	}
	if entry.Fields["tags"] != "action, sci-fi" {
		t.Fatalf("expected tags field to be kept, got %#v", entry.Fields)
	}
}

func TestLoadCSVIDColumnAliases(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		wantID int64
	}{
		{name: "id after title", body: "title,genre,id\nHeat,crime,949\n", wantID: 949},
		{name: "movie_id with bom", body: "\ufeffMovie_ID,Title\n8195,Ronin\n", wantID: 8195},
		{name: "float id", body: "id,title\n348.0,Alien\n", wantID: 348},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cat, err := catalog.Load(writeArtifact(t, "movies.csv", tt.body))
			if err != nil {
				t.Fatalf("Load returned error: %v", err)
			}
			entry, err := cat.EntryAt(0)
			if err != nil {
				t.Fatalf("EntryAt returned error: %v", err)
			}
			if entry.ID != tt.wantID {
				t.Fatalf("expected id %d, got %d", tt.wantID, entry.ID)
			}
			if _, ok := entry.Fields["id"]; ok {
				t.Fatalf("id column leaked into fields: %#v", entry.Fields)
			}
		})
	}
}

func TestLoadCSVMissingTitleColumn(t *testing.T) {
	path := writeArtifact(t, "movies.csv", "id,name\n1,A\n")
	if _, err := catalog.Load(path); err == nil || !strings.Contains(err.Error(), "title") {
		t.Fatalf("expected missing title column error, got %v", err)
	}
}

func TestLoadCSVBadID(t *testing.T) {
	path := writeArtifact(t, "movies.csv", "id,title\nabc,A\n")
	if _, err := catalog.Load(path); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestLoadCSVHeaderOnly(t *testing.T) {
	path := writeArtifact(t, "movies.csv", "id,title\n")
	if _, err := catalog.Load(path); err == nil {
		t.Fatal("expected error for catalog without rows")
	}
}

func TestLoadJSONRecords(t *testing.T) {
	path := writeArtifact(t, "movies.json", `[{"movie_id": 1, "title": "A", "year": 1999}, {"movie_id": 2.0, "title": "B"}]`)

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	first, _ := cat.EntryAt(0)
	second, _ := cat.EntryAt(1)
	if first.ID != 1 || first.Fields["year"] != "1999" {
		t.Fatalf("unexpected first entry %#v", first)
	}
	if second.ID != 2 || second.Title != "B" {
		t.Fatalf("unexpected second entry %#v", second)
	}
}

func TestLoadJSONColumns(t *testing.T) {
	body := `{
  "movie_id": {"0": 10, "1": 20, "10": 30},
  "title": {"0": "A", "1": "B", "10": "C"}
}`
	path := writeArtifact(t, "movies.json", body)

	cat, err := catalog.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := []string{"A", "B", "C"}
	got := cat.Titles()
	if len(got) != len(want) {
		t.Fatalf("expected %d titles, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q (rows must follow numeric order)", i, got[i], want[i])
		}
	}
	last, _ := cat.EntryAt(2)
	if last.ID != 30 {
		t.Fatalf("expected id 30, got %d", last.ID)
	}
}

func TestLoadJSONRejectsFractionalID(t *testing.T) {
	path := writeArtifact(t, "movies.json", `[{"id": 1.5, "title": "A"}]`)
	if _, err := catalog.Load(path); err == nil {
		t.Fatal("expected error for fractional id")
	}
}

func TestLoadJSONRejectsBadRowKey(t *testing.T) {
	path := writeArtifact(t, "movies.json", `{"id": {"x": 1}, "title": {"x": "A"}}`)
	if _, err := catalog.Load(path); err == nil {
		t.Fatal("expected error for non-integer row key")
	}
}

func TestLoadJSONRejectsPaddedRowKey(t *testing.T) {
	path := writeArtifact(t, "movies.json", `{"id": {"0": 1, "01": 2}, "title": {"0": "A", "01": "B"}}`)
	_, err := catalog.Load(path)
	if err == nil || !strings.Contains(err.Error(), `"01"`) {
		t.Fatalf("expected padded row key to be rejected by name, got %v", err)
	}
}

func TestLoadUnsupportedExtension(t *testing.T) {
	path := writeArtifact(t, "movies.pkl", "binary")
	if _, err := catalog.Load(path); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := catalog.Load(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

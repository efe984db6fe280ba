package catalog_test

import (
	"errors"
	"testing"

	"marquee/internal/catalog"
)

func mustCatalog(t *testing.T, titles ...string) *catalog.Catalog {
	t.Helper()
	entries := make([]catalog.Entry, len(titles))
	for i, title := range titles {
		entries[i] = catalog.Entry{ID: int64(100 + i), Title: title}
	}
	cat, err := catalog.New(entries)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	return cat
}

func TestNewRejectsEmptyCatalog(t *testing.T) {
	if _, err := catalog.New(nil); err == nil {
		t.Fatal("expected error for empty catalog")
	}
}

func TestNewRejectsBlankTitle(t *testing.T) {
	_, err := catalog.New([]catalog.Entry{{ID: 1, Title: "A"}, {ID: 2, Title: "  "}})
	if err == nil {
		t.Fatal("expected error for blank title")
	}
}

func TestFindIndexByTitle(t *testing.T) {
	cat := mustCatalog(t, "Avatar", "Titanic", "Alien")

	idx, err := cat.FindIndexByTitle("Titanic")
	if err != nil {
		t.Fatalf("FindIndexByTitle returned error: %v", err)
	}
	if idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}

	if _, err := cat.FindIndexByTitle("titanic"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for case mismatch, got %v", err)
	}
	if _, err := cat.FindIndexByTitle("Nope"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDuplicateTitleResolvesToFirstPosition(t *testing.T) {
	cat := mustCatalog(t, "Heat", "Dune", "Heat")
	idx, err := cat.FindIndexByTitle("Heat")
	if err != nil {
		t.Fatalf("FindIndexByTitle returned error: %v", err)
	}
	if idx != 0 {
		t.Fatalf("expected first position 0, got %d", idx)
	}
	if cat.Len() != 3 {
		t.Fatalf("expected duplicates to be kept, got len %d", cat.Len())
	}
}

func TestEntryAt(t *testing.T) {
	cat := mustCatalog(t, "A", "B")

	entry, err := cat.EntryAt(1)
	if err != nil {
		t.Fatalf("EntryAt returned error: %v", err)
	}
	if entry.Title != "B" || entry.ID != 101 {
		t.Fatalf("unexpected entry %#v", entry)
	}

	for _, idx := range []int{-1, 2} {
		if _, err := cat.EntryAt(idx); !errors.Is(err, catalog.ErrIndexOutOfRange) {
			t.Fatalf("EntryAt(%d): expected ErrIndexOutOfRange, got %v", idx, err)
		}
	}
}

func TestEntryAtReturnsCopyOfFields(t *testing.T) {
	cat, err := catalog.New([]catalog.Entry{{ID: 1, Title: "A", Fields: map[string]string{"genre": "drama"}}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	entry, _ := cat.EntryAt(0)
	entry.Fields["genre"] = "horror"

	again, _ := cat.EntryAt(0)
	if again.Fields["genre"] != "drama" {
		t.Fatalf("catalog mutated through returned entry: %#v", again.Fields)
	}
}

func TestSuggest(t *testing.T) {
	cat := mustCatalog(t, "The Dark Knight", "Dark City", "Amélie", "AMÉLIE II", "Heat")

	tests := []struct {
		name  string
		query string
		limit int
		want  []string
	}{
		{name: "case folded", query: "dark", want: []string{"The Dark Knight", "Dark City"}},
		{name: "unicode fold", query: "amélie", want: []string{"Amélie", "AMÉLIE II"}},
		{name: "limit", query: "a", limit: 2, want: []string{"The Dark Knight", "Dark City"}},
		{name: "no match", query: "zzz", want: nil},
		{name: "empty query", query: "", limit: 1, want: []string{"The Dark Knight"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cat.Suggest(tt.query, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d matches, got %d (%v)", len(tt.want), len(got), got)
			}
			for i, entry := range got {
				if entry.Title != tt.want[i] {
					t.Fatalf("match %d: expected %q, got %q", i, tt.want[i], entry.Title)
				}
			}
		})
	}
}

func TestClosestRanksByWeightedWords(t *testing.T) {
	cat := mustCatalog(t, "Dark City", "The Dark Knight", "The Thing", "The Shining", "Heat")

	got := cat.Closest("the dark knight rises", 0)
	want := []string{"The Dark Knight", "Dark City", "The Thing", "The Shining"}
	if len(got) != len(want) {
		t.Fatalf("expected %d matches, got %v", len(want), got)
	}
	for i := range want {
		if got[i].Title != want[i] {
			t.Fatalf("rank %d: expected %q, got %q", i, want[i], got[i].Title)
		}
	}

	if got := cat.Closest("the dark knight rises", 1); len(got) != 1 || got[0].Title != "The Dark Knight" {
		t.Fatalf("limit not applied: %v", got)
	}
	if got := cat.Closest("Up", 0); got != nil {
		t.Fatalf("expected nil for a query with no usable words, got %v", got)
	}
	if got := cat.Closest("zzz unknown", 0); len(got) != 0 {
		t.Fatalf("expected no matches, got %v", got)
	}
}

func TestTitlesPreserveOrder(t *testing.T) {
	cat := mustCatalog(t, "C", "A", "B")
	got := cat.Titles()
	want := []string{"C", "A", "B"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("titles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

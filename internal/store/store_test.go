package store

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"codescout/internal/extract"
)

func testUnit(id, name string, line int) extract.Unit {
	return extract.Unit{
		ID:         id,
		FilePath:   "src/app.py",
		Name:       name,
		StartLine:  line,
		EndLine:    line + 3,
		SourceCode: "def " + name + "(): pass",
	}
}

func openTestIndex(t *testing.T, dir string) *Index {
	t.Helper()
	idx, err := Open(filepath.Join(dir, "index.json"), nil)
	if err != nil {
		t.Fatalf("open index: %v", err)
	}
	return idx
}

func TestCosine(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero left", []float32{0, 0}, []float32{1, 2}, 0},
		{"zero right", []float32{1, 2}, []float32{0, 0}, 0},
		{"scaled", []float32{1, 1}, []float32{5, 5}, 1},
	}
	for _, tc := range cases {
		if got := Cosine(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAddBatchMismatchRejected(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, t.TempDir())
	units := []extract.Unit{testUnit("a", "a", 1), testUnit("b", "b", 5)}
	if err := idx.AddBatch(units, [][]float32{{1, 0}}); err == nil {
		t.Fatal("mismatched batch accepted")
	}
	if s := idx.Stats(); s.TotalEntries != 0 {
		t.Fatalf("index mutated on rejected batch: %d entries", s.TotalEntries)
	}
}

func TestSearchTopKAndOrdering(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, t.TempDir())
	units := []extract.Unit{
		testUnit("a", "a", 1),
		testUnit("b", "b", 10),
		testUnit("c", "c", 20),
	}
	embeddings := [][]float32{
		{1, 0, 0},
		{0.9, 0.1, 0},
		{0, 0, 1},
	}
	if err := idx.AddBatch(units, embeddings); err != nil {
		t.Fatal(err)
	}

	results := idx.Search([]float32{1, 0, 0}, 2)
	if len(results) != 2 {
		t.Fatalf("topK bound violated: got %d results", len(results))
	}
	if results[0].ID != "a" || results[1].ID != "b" {
		t.Errorf("unexpected order: %s, %s", results[0].ID, results[1].ID)
	}
	if results[0].Similarity < results[1].Similarity {
		t.Error("results not sorted descending")
	}
	if math.Abs(results[0].Similarity-1) > 1e-9 {
		t.Errorf("self similarity = %v, want 1", results[0].Similarity)
	}
}

func TestSearchEmptyIndex(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, t.TempDir())
	if got := idx.Search([]float32{1, 0}, 5); len(got) != 0 {
		t.Fatalf("empty index returned %d results", len(got))
	}
}

func TestSearchTiesKeepInsertionOrder(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, t.TempDir())
	units := []extract.Unit{
		testUnit("first", "first", 1),
		testUnit("second", "second", 5),
	}
	// Identical embeddings: similarity ties, insertion order decides.
	embeddings := [][]float32{{1, 1}, {1, 1}}
	if err := idx.AddBatch(units, embeddings); err != nil {
		t.Fatal(err)
	}
	results := idx.Search([]float32{1, 1}, 2)
	if results[0].ID != "first" || results[1].ID != "second" {
		t.Errorf("tie order broken: %s, %s", results[0].ID, results[1].ID)
	}
}

func TestAddBatchOverwritesSameID(t *testing.T) {
	t.Parallel()

	idx := openTestIndex(t, t.TempDir())
	u := testUnit("x", "x", 1)
	if err := idx.AddBatch([]extract.Unit{u}, [][]float32{{1, 0}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.AddBatch([]extract.Unit{u}, [][]float32{{0, 1}}); err != nil {
		t.Fatal(err)
	}
	if s := idx.Stats(); s.TotalEntries != 1 {
		t.Fatalf("overwrite created duplicate: %d entries", s.TotalEntries)
	}
	results := idx.Search([]float32{0, 1}, 1)
	if math.Abs(results[0].Similarity-1) > 1e-9 {
		t.Error("overwritten embedding not in effect")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	units := []extract.Unit{
		testUnit("a", "a", 1),
		testUnit("b", "b", 10),
	}
	embeddings := [][]float32{{0.2, 0.4, 0.6}, {0.9, 0.1, 0.3}}

	idx := openTestIndex(t, dir)
	if err := idx.AddBatch(units, embeddings); err != nil {
		t.Fatal(err)
	}
	if err := idx.Close(); err != nil {
		t.Fatal(err)
	}

	// A fresh instance over the same snapshot must reconstruct the index.
	reloaded := openTestIndex(t, dir)
	if s := reloaded.Stats(); s.TotalEntries != 2 {
		t.Fatalf("reloaded %d entries, want 2", s.TotalEntries)
	}
	for i, u := range units {
		results := reloaded.Search(embeddings[i], 1)
		if len(results) != 1 || results[0].ID != u.ID {
			t.Fatalf("unit %s not top result after reload", u.ID)
		}
		if math.Abs(results[0].Similarity-1) > 1e-6 {
			t.Errorf("unit %s self-similarity = %v", u.ID, results[0].Similarity)
		}
		if results[0].Unit != u {
			t.Errorf("unit %s metadata changed across reload", u.ID)
		}
	}
}

func TestClearPersists(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	if err := idx.AddBatch([]extract.Unit{testUnit("a", "a", 1)}, [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}
	if err := idx.Clear(); err != nil {
		t.Fatal(err)
	}

	reloaded := openTestIndex(t, dir)
	if s := reloaded.Stats(); s.TotalEntries != 0 {
		t.Fatalf("cleared index resurrected %d entries", s.TotalEntries)
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "index.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	idx, err := Open(path, nil)
	if err != nil {
		t.Fatalf("corrupt snapshot should not be fatal: %v", err)
	}
	if s := idx.Stats(); s.TotalEntries != 0 {
		t.Fatalf("corrupt snapshot produced %d entries", s.TotalEntries)
	}
}

func TestSnapshotCarriesLocator(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	idx := openTestIndex(t, dir)
	idx.SetLocator("https://github.com/user/repo")
	if err := idx.AddBatch([]extract.Unit{testUnit("a", "a", 1)}, [][]float32{{1}}); err != nil {
		t.Fatal(err)
	}

	reloaded := openTestIndex(t, dir)
	if got := reloaded.Locator(); got != "https://github.com/user/repo" {
		t.Fatalf("locator = %q", got)
	}

	if err := reloaded.Clear(); err != nil {
		t.Fatal(err)
	}
	if got := openTestIndex(t, dir).Locator(); got != "" {
		t.Fatalf("cleared locator resurrected as %q", got)
	}
}

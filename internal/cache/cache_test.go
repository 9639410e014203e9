package cache

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"codescout/internal/extract"
)

const testRepo = "https://github.com/example/project"

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	return s
}

func sampleAnalysis() ([]extract.Unit, [][]float32) {
	units := []extract.Unit{
		{ID: "app.py::run:1", FilePath: "app.py", Name: "run", StartLine: 1, EndLine: 4, SourceCode: "def run(): pass"},
		{ID: "app.py:Server:stop:8", FilePath: "app.py", Name: "stop", ClassName: "Server", StartLine: 8, EndLine: 12, Docstring: "Stops.", SourceCode: "def stop(self): pass"},
	}
	embeddings := [][]float32{{0.1, 0.2, 0.3}, {0.4, 0.5, 0.6}}
	return units, embeddings
}

func TestHashDeterministic(t *testing.T) {
	t.Parallel()

	a, b := Hash(testRepo), Hash(testRepo)
	if a != b {
		t.Fatalf("hash not deterministic: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("hash length %d, want 16", len(a))
	}
	if Hash("https://github.com/other/repo") == a {
		t.Fatal("distinct locators share a hash")
	}
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	units, embeddings := sampleAnalysis()

	if s.IsCached(testRepo) {
		t.Fatal("empty cache reports a record")
	}
	if err := s.Save(testRepo, units, embeddings); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !s.IsCached(testRepo) {
		t.Fatal("saved record not reported as cached")
	}

	gotUnits, gotEmbeddings, err := s.Load(testRepo)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(gotUnits, units) {
		t.Errorf("units changed across round-trip:\n got %+v\nwant %+v", gotUnits, units)
	}
	if !reflect.DeepEqual(gotEmbeddings, embeddings) {
		t.Errorf("embeddings changed across round-trip:\n got %v\nwant %v", gotEmbeddings, embeddings)
	}
}

func TestSaveOverwrites(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	units, embeddings := sampleAnalysis()
	if err := s.Save(testRepo, units, embeddings); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(testRepo, units[:1], embeddings[:1]); err != nil {
		t.Fatal(err)
	}
	gotUnits, _, err := s.Load(testRepo)
	if err != nil {
		t.Fatal(err)
	}
	if len(gotUnits) != 1 {
		t.Fatalf("overwrite kept %d units, want 1", len(gotUnits))
	}
}

func TestLoadMissing(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	if _, _, err := s.Load(testRepo); err != ErrNoRecord {
		t.Fatalf("expected ErrNoRecord, got %v", err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	path := filepath.Join(s.dir, Hash(testRepo)+".json")
	if err := os.WriteFile(path, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := s.Load(testRepo); err == nil || err == ErrNoRecord {
		t.Fatalf("corrupt record should fail with a decode error, got %v", err)
	}
}

func TestClear(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	units, embeddings := sampleAnalysis()
	other := "https://github.com/example/other"
	if err := s.Save(testRepo, units, embeddings); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(other, units, embeddings); err != nil {
		t.Fatal(err)
	}

	if err := s.Clear(testRepo); err != nil {
		t.Fatalf("clear one: %v", err)
	}
	if s.IsCached(testRepo) || !s.IsCached(other) {
		t.Fatal("single clear removed the wrong record")
	}

	// Clearing a missing record is a no-op.
	if err := s.Clear(testRepo); err != nil {
		t.Fatalf("idempotent clear: %v", err)
	}

	if err := s.Clear(""); err != nil {
		t.Fatalf("clear all: %v", err)
	}
	if s.IsCached(other) {
		t.Fatal("clear all left a record")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	units, embeddings := sampleAnalysis()
	if err := s.Save(testRepo, units, embeddings); err != nil {
		t.Fatal(err)
	}
	st, err := s.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if st.Count != 1 || st.TotalSize == 0 || st.Location != s.dir {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"codescout/internal/extract"
)

// Index holds embeddings and metadata for every indexed unit and answers
// top-k nearest-neighbor queries by cosine similarity over a linear scan.
// That is O(n·D) per query, which is fine at single-repository scale.
//
// The in-memory state is authoritative for the process lifetime; each
// mutation persists a full snapshot to disk on a best-effort basis.
type Index struct {
	mu      sync.RWMutex
	path    string
	log     *slog.Logger
	entries map[string]Entry
	order   []string // insertion order of ids, drives tie-breaking
	locator string
}

// Open creates an index backed by the snapshot file at path. An existing
// snapshot is loaded; a missing or corrupt one starts the index empty.
func Open(path string, logger *slog.Logger) (*Index, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index directory: %w", err)
	}
	idx := &Index{
		path:    path,
		log:     logger,
		entries: make(map[string]Entry),
	}
	idx.load()
	return idx, nil
}

// AddBatch inserts one entry per (unit, embedding) pair, overwriting entries
// that share a unit id. The slices must be the same length and 1:1 aligned;
// a mismatch fails without mutating the index. After mutation the snapshot
// is rewritten; a persistence failure is logged but does not roll back the
// in-memory state.
func (idx *Index) AddBatch(units []extract.Unit, embeddings [][]float32) error {
	if len(units) != len(embeddings) {
		return fmt.Errorf("mismatched batch: %d units, %d embeddings", len(units), len(embeddings))
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()
	for i, u := range units {
		if _, exists := idx.entries[u.ID]; !exists {
			idx.order = append(idx.order, u.ID)
		}
		idx.entries[u.ID] = Entry{
			Embedding: embeddings[i],
			Unit:      u,
			Text:      u.SourceCode,
		}
	}

	if err := idx.persist(); err != nil {
		idx.log.Error("index snapshot write failed", "path", idx.path, "error", err)
	}
	return nil
}

// SetLocator records which repository the entries belong to. It is written
// out with the next snapshot.
func (idx *Index) SetLocator(locator string) {
	idx.mu.Lock()
	idx.locator = locator
	idx.mu.Unlock()
}

// Locator reports the repository recorded in the snapshot, if any.
func (idx *Index) Locator() string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return idx.locator
}

// Search returns up to topK entries ranked by cosine similarity to query,
// descending, with ties broken by insertion order. An empty index yields an
// empty result.
func (idx *Index) Search(query []float32, topK int) []SearchResult {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 || len(idx.entries) == 0 {
		return nil
	}

	results := make([]SearchResult, 0, len(idx.order))
	for _, id := range idx.order {
		e := idx.entries[id]
		results = append(results, SearchResult{
			ID:         id,
			Similarity: Cosine(query, e.Embedding),
			Unit:       e.Unit,
			Text:       e.Text,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Clear drops all entries and persists the empty state so a cleared index
// does not resurrect on reload.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries = make(map[string]Entry)
	idx.order = nil
	idx.locator = ""
	if err := idx.persist(); err != nil {
		idx.log.Error("index snapshot write failed", "path", idx.path, "error", err)
		return err
	}
	return nil
}

// Stats reports entry count and snapshot size.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	var size int64
	if fi, err := os.Stat(idx.path); err == nil {
		size = fi.Size()
	}
	return Stats{
		TotalEntries: len(idx.entries),
		StorageSize:  size,
		Location:     idx.path,
	}
}

// Close writes a final snapshot.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.persist()
}

// persist writes the full snapshot to a temp file and renames it into place,
// so a concurrent reader sees either the old or the new complete snapshot.
// Callers hold the lock.
func (idx *Index) persist() error {
	snap := snapshot{Entries: idx.entries, KnownIDs: idx.order, Locator: idx.locator}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	tmp := idx.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, idx.path); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// load restores the most recent snapshot. Malformed records are rejected
// rather than half-loaded; corruption is logged, never fatal.
func (idx *Index) load() {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			idx.log.Warn("index snapshot unreadable, starting empty", "path", idx.path, "error", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		idx.log.Warn("index snapshot corrupt, starting empty", "path", idx.path, "error", err)
		return
	}

	idx.locator = snap.Locator
	for _, id := range snap.KnownIDs {
		e, ok := snap.Entries[id]
		if !ok || id == "" || e.Unit.ID != id || len(e.Embedding) == 0 {
			idx.log.Warn("rejecting malformed snapshot entry", "id", id)
			continue
		}
		idx.entries[id] = e
		idx.order = append(idx.order, id)
	}
}

// Cosine is the normalized dot product of two vectors. A zero-magnitude
// vector on either side yields 0.
func Cosine(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		magA += float64(v) * float64(v)
	}
	for _, v := range b {
		magB += float64(v) * float64(v)
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Package cache persists completed repository analyses so re-analyzing an
// unchanged repository is a single lookup instead of a clone, parse, and
// embed run.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"codescout/internal/extract"
)

// ErrNoRecord is returned by Load when nothing is cached for a locator.
var ErrNoRecord = errors.New("no cached analysis")

// record is the persisted cache entry for one repository locator.
type record struct {
	RepoURL    string         `json:"repo_url"`
	Timestamp  time.Time      `json:"timestamp"`
	UnitCount  int            `json:"unit_count"`
	Units      []extract.Unit `json:"units"`
	Embeddings [][]float32    `json:"embeddings"`
}

// Stats summarizes the cache directory.
type Stats struct {
	Count     int
	TotalSize int64
	Location  string
}

// Store is a content-addressed analysis cache: one JSON record per
// repository locator, named by a truncated digest of the locator.
type Store struct {
	dir string
	log *slog.Logger
}

// Open creates the cache directory if needed and returns a store over it.
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir, log: logger}, nil
}

// Hash derives the fixed-length record key for a locator: a SHA-256 digest
// truncated to 16 hex characters. Filesystem-safe and length-bounded; not a
// security boundary.
func Hash(locator string) string {
	sum := sha256.Sum256([]byte(locator))
	return hex.EncodeToString(sum[:])[:16]
}

func (s *Store) recordPath(locator string) string {
	return filepath.Join(s.dir, Hash(locator)+".json")
}

// IsCached reports whether a record exists for the locator.
func (s *Store) IsCached(locator string) bool {
	_, err := os.Stat(s.recordPath(locator))
	return err == nil
}

// Save writes the analysis record for a locator, overwriting any prior one.
// The unit and embedding slices must be 1:1 aligned.
func (s *Store) Save(locator string, units []extract.Unit, embeddings [][]float32) error {
	if len(units) != len(embeddings) {
		return fmt.Errorf("mismatched record: %d units, %d embeddings", len(units), len(embeddings))
	}
	data, err := json.Marshal(record{
		RepoURL:    locator,
		Timestamp:  time.Now().UTC(),
		UnitCount:  len(units),
		Units:      units,
		Embeddings: embeddings,
	})
	if err != nil {
		return fmt.Errorf("marshal cache record: %w", err)
	}
	if err := os.WriteFile(s.recordPath(locator), data, 0o644); err != nil {
		return fmt.Errorf("write cache record: %w", err)
	}
	return nil
}

// Load returns the cached units and embeddings for a locator, order
// preserved and 1:1 aligned. ErrNoRecord means nothing is cached; any other
// error means the record exists but could not be used.
func (s *Store) Load(locator string) ([]extract.Unit, [][]float32, error) {
	data, err := os.ReadFile(s.recordPath(locator))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, ErrNoRecord
		}
		return nil, nil, fmt.Errorf("read cache record: %w", err)
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, nil, fmt.Errorf("decode cache record: %w", err)
	}
	if len(rec.Units) != len(rec.Embeddings) {
		return nil, nil, fmt.Errorf("malformed cache record: %d units, %d embeddings",
			len(rec.Units), len(rec.Embeddings))
	}
	return rec.Units, rec.Embeddings, nil
}

// Clear deletes the record for one locator, or every record when locator is
// empty. Missing records are a no-op.
func (s *Store) Clear(locator string) error {
	if locator != "" {
		if err := os.Remove(s.recordPath(locator)); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete cache record: %w", err)
		}
		return nil
	}
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("delete cache record: %w", err)
		}
	}
	return nil
}

// Stats reports record count and total size on disk.
func (s *Store) Stats() (Stats, error) {
	paths, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return Stats{}, err
	}
	st := Stats{Count: len(paths), Location: s.dir}
	for _, p := range paths {
		if fi, err := os.Stat(p); err == nil {
			st.TotalSize += fi.Size()
		}
	}
	return st, nil
}

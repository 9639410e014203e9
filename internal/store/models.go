package store

import "codescout/internal/extract"

// Entry is one indexed code unit with its embedding. Entries are keyed by
// the unit id; a later add with the same id overwrites the earlier entry.
type Entry struct {
	Embedding []float32    `json:"embedding"`
	Unit      extract.Unit `json:"metadata"`
	Text      string       `json:"text"`
}

// SearchResult is a scored index entry.
type SearchResult struct {
	ID         string
	Similarity float64
	Unit       extract.Unit
	Text       string
}

// Stats describes the index state and its backing snapshot.
type Stats struct {
	TotalEntries int
	StorageSize  int64
	Location     string
}

// snapshot is the persisted form of the index: the full entry map, the
// insertion order of known ids, and the repository the entries came from.
type snapshot struct {
	Entries  map[string]Entry `json:"entries"`
	KnownIDs []string         `json:"known_ids"`
	Locator  string           `json:"repo_url,omitempty"`
}

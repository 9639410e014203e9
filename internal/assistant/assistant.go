// Package assistant composes fetching, extraction, embedding, indexing, and
// answer generation into the analyze/query operations exposed to every
// presentation surface.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"codescout/internal/cache"
	"codescout/internal/embedder"
	"codescout/internal/extract"
	"codescout/internal/fetch"
	"codescout/internal/llm"
	"codescout/internal/store"
)

// State is the analysis lifecycle phase.
type State string

// Lifecycle states.
const (
	StateIdle      State = "idle"
	StateCloning   State = "cloning"
	StateParsing   State = "parsing"
	StateEmbedding State = "embedding"
	StateIndexing  State = "indexing"
	StateReady     State = "ready"
	StateError     State = "error"
)

// DefaultTopK is the number of results retrieved per query when the caller
// does not specify one.
const DefaultTopK = 20

// Typed preconditions the surfaces branch on.
var (
	ErrNotAnalyzed   = errors.New("no repository analyzed yet, call analyze first")
	ErrEmptyQuestion = errors.New("question must not be empty")
)

// Fetcher acquires a repository's sources. Implemented by fetch.Fetcher;
// abstracted so tests can supply fixtures.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (*fetch.Result, error)
}

// Status reports the current analysis state.
type Status struct {
	State     State  `json:"state"`
	Locator   string `json:"repo_url"`
	UnitCount int    `json:"unit_count"`
}

// SourceRef attributes part of an answer to an indexed unit.
type SourceRef struct {
	File       string  `json:"file"`
	Name       string  `json:"name"`
	Lines      string  `json:"lines"`
	Similarity float64 `json:"similarity"`
}

// QueryResult is the answer to one question.
type QueryResult struct {
	Answer    string      `json:"answer"`
	Sources   []SourceRef `json:"sources"`
	Relevance string      `json:"relevance"`
}

// Deps are the collaborators an Assistant is constructed over. All are
// injected; the assistant holds no global state.
type Deps struct {
	Fetcher   Fetcher
	Extractor *extract.Extractor
	Embedder  embedder.Embedder
	Generator llm.Generator
	Cache     *cache.Store
	Index     *store.Index
	Logger    *slog.Logger
}

// Assistant answers natural-language questions about one analyzed
// repository at a time. Concurrent Analyze calls race on the shared index;
// that is an accepted limitation of the single-active-repository design.
type Assistant struct {
	fetcher   Fetcher
	extractor *extract.Extractor
	emb       embedder.Embedder
	gen       llm.Generator
	cache     *cache.Store
	index     *store.Index
	log       *slog.Logger

	mu        sync.Mutex
	state     State
	locator   string
	unitCount int
}

// New creates an assistant over the given collaborators.
func New(deps Deps) *Assistant {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &Assistant{
		fetcher:   deps.Fetcher,
		extractor: deps.Extractor,
		emb:       deps.Embedder,
		gen:       deps.Generator,
		cache:     deps.Cache,
		index:     deps.Index,
		log:       logger,
		state:     StateIdle,
	}
	// A populated index snapshot from an earlier run makes the assistant
	// immediately queryable.
	if st := deps.Index.Stats(); st.TotalEntries > 0 {
		a.state = StateReady
		a.locator = deps.Index.Locator()
		a.unitCount = st.TotalEntries
	}
	return a
}

// Close flushes the index snapshot.
func (a *Assistant) Close() error {
	return a.index.Close()
}

// Status returns the current lifecycle state.
func (a *Assistant) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return Status{State: a.state, Locator: a.locator, UnitCount: a.unitCount}
}

func (a *Assistant) setState(s State) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

func (a *Assistant) setReady(locator string, unitCount int) {
	a.mu.Lock()
	a.state = StateReady
	a.locator = locator
	a.unitCount = unitCount
	a.mu.Unlock()
}

// Analyze makes a repository queryable. A cached analysis restores the
// index directly; otherwise the full pipeline runs: fetch, extract, embed,
// index, and cache the result. It returns the number of indexed units.
func (a *Assistant) Analyze(ctx context.Context, locator string) (int, error) {
	if strings.TrimSpace(locator) == "" {
		return 0, fetch.ErrInvalidURL
	}

	if a.cache.IsCached(locator) {
		units, embeddings, err := a.cache.Load(locator)
		if err == nil {
			n, err := a.restore(locator, units, embeddings)
			if err == nil {
				a.log.Info("analysis restored from cache", "locator", locator, "units", n)
				return n, nil
			}
			a.log.Warn("cache restore failed, re-analyzing", "locator", locator, "error", err)
		} else {
			a.log.Warn("cache record unusable, re-analyzing", "locator", locator, "error", err)
		}
	}

	return a.analyzeFull(ctx, locator)
}

// restore resets the index and loads a cached unit/embedding pair into it.
func (a *Assistant) restore(locator string, units []extract.Unit, embeddings [][]float32) (int, error) {
	a.setState(StateIndexing)
	if err := a.index.Clear(); err != nil {
		a.log.Warn("index clear did not persist", "error", err)
	}
	a.index.SetLocator(locator)
	if err := a.index.AddBatch(units, embeddings); err != nil {
		a.setState(StateError)
		return 0, err
	}
	a.setReady(locator, len(units))
	return len(units), nil
}

func (a *Assistant) analyzeFull(ctx context.Context, locator string) (int, error) {
	fail := func(err error) (int, error) {
		a.setState(StateError)
		return 0, err
	}

	a.setState(StateCloning)
	res, err := a.fetcher.Fetch(ctx, locator)
	if err != nil {
		return fail(err)
	}
	defer res.Cleanup()

	if len(res.Files) == 0 {
		return fail(errors.New("no source files found"))
	}

	a.setState(StateParsing)
	var units []extract.Unit
	for _, fi := range res.Files {
		raw, err := os.ReadFile(fi.Path)
		if err != nil {
			a.log.Debug("skipping unreadable file", "path", fi.RelPath, "error", err)
			continue
		}
		units = append(units, a.extractor.Extract(fi.RelPath, raw)...)
	}
	if len(units) == 0 {
		return fail(errors.New("no code units extracted"))
	}

	a.setState(StateEmbedding)
	texts := make([]string, len(units))
	for i, u := range units {
		texts[i] = u.CombinedText()
	}
	rows, err := a.emb.Embed(ctx, texts)
	if err != nil {
		a.log.Warn("embedding provider failed", "error", err)
	}

	// Drop units whose embedding failed, pairing by position.
	keptUnits := make([]extract.Unit, 0, len(units))
	keptEmbeddings := make([][]float32, 0, len(units))
	for i, row := range rows {
		if row == nil {
			continue
		}
		keptUnits = append(keptUnits, units[i])
		keptEmbeddings = append(keptEmbeddings, row)
	}
	if len(keptUnits) == 0 {
		return fail(errors.New("could not generate embeddings"))
	}
	if dropped := len(units) - len(keptUnits); dropped > 0 {
		a.log.Warn("some units had no embedding", "dropped", dropped, "kept", len(keptUnits))
	}

	a.setState(StateIndexing)
	if err := a.index.Clear(); err != nil {
		a.log.Warn("index clear did not persist", "error", err)
	}
	a.index.SetLocator(locator)
	if err := a.index.AddBatch(keptUnits, keptEmbeddings); err != nil {
		return fail(fmt.Errorf("index units: %w", err))
	}

	// Durability is best effort: a failed cache write only costs the next
	// analysis a re-run.
	if err := a.cache.Save(locator, keptUnits, keptEmbeddings); err != nil {
		a.log.Warn("cache save failed", "locator", locator, "error", err)
	}

	a.setReady(locator, len(keptUnits))
	a.log.Info("repository analyzed", "locator", locator, "units", len(keptUnits))
	return len(keptUnits), nil
}

// Query embeds the question, retrieves the closest units, and asks the
// generator for an answer grounded in them. Generation failures become the
// answer text, never an error; retrieval already succeeded at that point.
func (a *Assistant) Query(ctx context.Context, question string, topK int) (*QueryResult, error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}
	if st := a.Status(); st.State != StateReady {
		return nil, ErrNotAnalyzed
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vec, err := embedder.EmbedSingle(ctx, a.emb, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if vec == nil {
		return nil, errors.New("could not embed question")
	}

	results := a.index.Search(vec, topK)
	if len(results) == 0 {
		return &QueryResult{
			Answer:    "No relevant code found for your question.",
			Sources:   []SourceRef{},
			Relevance: "low",
		}, nil
	}

	answer, err := a.gen.Generate(ctx, buildPrompt(question, results))
	if err != nil {
		answer = "Error generating answer: " + err.Error()
	}

	return &QueryResult{
		Answer:    answer,
		Sources:   formatSources(results),
		Relevance: "high",
	}, nil
}

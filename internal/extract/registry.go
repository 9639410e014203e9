package extract

import (
	"path/filepath"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
)

// Decl is a single extractable declaration found by a Grammar: either a
// top-level function (empty ClassName) or a direct method of a top-level
// class. Node covers the construct's full span.
type Decl struct {
	Name      string
	ClassName string
	Node      *sitter.Node
	Doc       string
}

// Grammar knows how to find the extractable declarations of one language.
// Implementations walk exactly two syntactic levels: the module scope, and
// one level into each top-level class. Deeper nesting is ignored.
type Grammar interface {
	Language() *sitter.Language
	// Declarations returns the declarations of the parsed file in source
	// order (module body order; methods in declaration order within each
	// class).
	Declarations(root *sitter.Node, src []byte) []Decl
}

// Registry maps file extensions to language grammars.
type Registry struct {
	mu    sync.RWMutex
	byExt map[string]Grammar // extension (without dot) → grammar
	names map[string]string  // extension → language name
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]Grammar),
		names: make(map[string]string),
	}
}

// Register adds a grammar under the given language name and extensions.
func (r *Registry) Register(name string, exts []string, g Grammar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range exts {
		r.byExt[ext] = g
		r.names[ext] = name
	}
}

// Lookup returns the grammar for a file path based on its extension.
func (r *Registry) Lookup(path string) (Grammar, bool) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.byExt[ext]
	return g, ok
}

// LanguageName returns the language name for a file path, or "".
func (r *Registry) LanguageName(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.names[ext]
}

// Extensions returns the set of all registered file extensions (without dot).
func (r *Registry) Extensions() map[string]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exts := make(map[string]bool, len(r.byExt))
	for ext := range r.byExt {
		exts[ext] = true
	}
	return exts
}

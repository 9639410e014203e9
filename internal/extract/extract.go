package extract

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Extractor parses source files using tree-sitter and extracts code units.
// It is a pure function of file content: identical input always produces
// identical units.
type Extractor struct {
	registry *Registry
}

// NewExtractor creates an extractor backed by the given registry.
func NewExtractor(r *Registry) *Extractor {
	return &Extractor{registry: r}
}

// Registry returns the language registry backing this extractor.
func (e *Extractor) Registry() *Registry { return e.registry }

// Extract parses one file's content and returns its code units in source
// order. filePath is the repository-relative path recorded on each unit.
// Files with no registered grammar, undecodable bytes, or unparseable
// content yield an empty slice so a multi-file scan can tolerate them.
func (e *Extractor) Extract(filePath string, raw []byte) []Unit {
	g, ok := e.registry.Lookup(filePath)
	if !ok {
		return nil
	}
	text, ok := decode(raw)
	if !ok {
		return nil
	}
	src := []byte(text)

	parser := sitter.NewParser()
	parser.SetLanguage(g.Language())
	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil || tree == nil {
		return nil
	}
	defer tree.Close()

	lines := strings.Split(text, "\n")
	relPath := filepath.ToSlash(filePath)

	var units []Unit
	for _, d := range g.Declarations(tree.RootNode(), src) {
		if d.Name == "" || d.Node == nil {
			continue
		}
		startLine := int(d.Node.StartPoint().Row) + 1
		endLine := int(d.Node.EndPoint().Row) + 1
		units = append(units, Unit{
			ID:         unitID(relPath, d.ClassName, d.Name, startLine),
			FilePath:   relPath,
			Name:       d.Name,
			ClassName:  d.ClassName,
			StartLine:  startLine,
			EndLine:    endLine,
			Docstring:  d.Doc,
			SourceCode: capSource(spanText(lines, startLine, endLine)),
		})
	}
	return units
}

// spanText returns the full text of the 1-indexed inclusive line range.
func spanText(lines []string, startLine, endLine int) string {
	start := startLine - 1
	if start < 0 {
		start = 0
	}
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// capSource truncates oversized source text at MaxSourceChars and appends
// the truncation marker.
func capSource(s string) string {
	r := []rune(s)
	if len(r) <= MaxSourceChars {
		return s
	}
	return string(r[:MaxSourceChars]) + TruncationMarker
}

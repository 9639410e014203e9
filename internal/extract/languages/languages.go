// Package languages registers per-language tree-sitter grammars with the
// extract registry.
package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"codescout/internal/extract"
)

// RegisterAll registers every supported language.
func RegisterAll(r *extract.Registry) {
	RegisterPython(r)
	RegisterGo(r)
	RegisterJavaScript(r)
	RegisterTypeScript(r)
}

func fieldName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(src)
}

// leadingComment collects the contiguous comment block ending on the line
// directly above n and strips the comment markers.
func leadingComment(n *sitter.Node, src []byte) string {
	var parts []string
	line := int(n.StartPoint().Row)
	for p := n.PrevSibling(); p != nil && p.Type() == "comment"; p = p.PrevSibling() {
		if end := int(p.EndPoint().Row); end < line-1 {
			break
		}
		parts = append(parts, p.Content(src))
		line = int(p.StartPoint().Row)
	}
	if len(parts) == 0 {
		return ""
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return cleanComment(strings.Join(parts, "\n"))
}

// cleanComment strips line and block comment markers, keeping the text.
func cleanComment(s string) string {
	s = strings.TrimPrefix(s, "/**")
	s = strings.TrimPrefix(s, "/*")
	s = strings.TrimSuffix(s, "*/")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "//")
		line = strings.TrimPrefix(line, "*")
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

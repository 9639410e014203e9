package languages

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"codescout/internal/extract"
)

// RegisterPython registers the Python grammar.
func RegisterPython(r *extract.Registry) {
	r.Register("python", []string{"py", "pyi"}, &pythonGrammar{lang: python.GetLanguage()})
}

type pythonGrammar struct {
	lang *sitter.Language
}

func (g *pythonGrammar) Language() *sitter.Language { return g.lang }

// Declarations walks the module body: top-level function definitions become
// function units, and each top-level class contributes its direct methods.
// Functions nested inside functions and methods of nested classes are not
// visited.
func (g *pythonGrammar) Declarations(root *sitter.Node, src []byte) []extract.Decl {
	var decls []extract.Decl
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		def := unwrapDecorated(child)
		switch def.Type() {
		case "function_definition":
			decls = append(decls, extract.Decl{
				Name: fieldName(def, src),
				Node: def,
				Doc:  pyDocstring(def, src),
			})
		case "class_definition":
			className := fieldName(def, src)
			body := def.ChildByFieldName("body")
			if className == "" || body == nil {
				continue
			}
			for j := 0; j < int(body.NamedChildCount()); j++ {
				m := unwrapDecorated(body.NamedChild(j))
				if m.Type() != "function_definition" {
					continue
				}
				decls = append(decls, extract.Decl{
					Name:      fieldName(m, src),
					ClassName: className,
					Node:      m,
					Doc:       pyDocstring(m, src),
				})
			}
		}
	}
	return decls
}

// unwrapDecorated returns the wrapped definition of a decorated_definition
// node, or the node itself.
func unwrapDecorated(n *sitter.Node) *sitter.Node {
	if n.Type() == "decorated_definition" {
		if def := n.ChildByFieldName("definition"); def != nil {
			return def
		}
	}
	return n
}

// pyDocstring returns the docstring of a function or class definition: the
// first statement of the body when it is a bare string expression.
func pyDocstring(def *sitter.Node, src []byte) string {
	body := def.ChildByFieldName("body")
	if body == nil || body.NamedChildCount() == 0 {
		return ""
	}
	first := body.NamedChild(0)
	if first.Type() != "expression_statement" || first.NamedChildCount() == 0 {
		return ""
	}
	str := first.NamedChild(0)
	if str.Type() != "string" {
		return ""
	}
	return trimPyQuotes(str.Content(src))
}

// trimPyQuotes strips string prefixes and quote delimiters from a Python
// string literal.
func trimPyQuotes(s string) string {
	s = strings.TrimLeft(s, "rRbBuUfF")
	for _, q := range []string{`"""`, "'''", `"`, `'`} {
		if strings.HasPrefix(s, q) && strings.HasSuffix(s, q) && len(s) >= 2*len(q) {
			return strings.TrimSpace(s[len(q) : len(s)-len(q)])
		}
	}
	return strings.TrimSpace(s)
}

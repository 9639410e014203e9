package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"

	"codescout/internal/extract"
)

// RegisterJavaScript registers the JavaScript grammar.
func RegisterJavaScript(r *extract.Registry) {
	r.Register("javascript", []string{"js", "jsx", "mjs", "cjs"},
		&ecmaGrammar{lang: javascript.GetLanguage()})
}

// ecmaGrammar covers JavaScript and TypeScript, whose declaration node types
// match for the constructs extracted here.
type ecmaGrammar struct {
	lang *sitter.Language
}

func (g *ecmaGrammar) Language() *sitter.Language { return g.lang }

// Declarations extracts top-level function declarations and the direct
// methods of top-level classes. export statements are unwrapped so exported
// declarations extract the same as bare ones.
func (g *ecmaGrammar) Declarations(root *sitter.Node, src []byte) []extract.Decl {
	var decls []extract.Decl
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := unwrapExport(root.NamedChild(i))
		switch n.Type() {
		case "function_declaration":
			decls = append(decls, extract.Decl{
				Name: fieldName(n, src),
				Node: n,
				Doc:  leadingComment(n, src),
			})
		case "class_declaration", "abstract_class_declaration":
			className := fieldName(n, src)
			body := n.ChildByFieldName("body")
			if className == "" || body == nil {
				continue
			}
			for j := 0; j < int(body.NamedChildCount()); j++ {
				m := body.NamedChild(j)
				if m.Type() != "method_definition" {
					continue
				}
				decls = append(decls, extract.Decl{
					Name:      fieldName(m, src),
					ClassName: className,
					Node:      m,
					Doc:       leadingComment(m, src),
				})
			}
		}
	}
	return decls
}

// unwrapExport returns the declaration wrapped by an export statement, or
// the node itself.
func unwrapExport(n *sitter.Node) *sitter.Node {
	if n.Type() == "export_statement" {
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			return decl
		}
	}
	return n
}

package languages

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"

	"codescout/internal/extract"
)

// RegisterGo registers the Go grammar.
func RegisterGo(r *extract.Registry) {
	r.Register("go", []string{"go"}, &goGrammar{lang: golang.GetLanguage()})
}

type goGrammar struct {
	lang *sitter.Language
}

func (g *goGrammar) Language() *sitter.Language { return g.lang }

// Declarations extracts top-level functions and methods. A method's receiver
// type plays the class role, so methods group under their type the way class
// methods do elsewhere.
func (g *goGrammar) Declarations(root *sitter.Node, src []byte) []extract.Decl {
	var decls []extract.Decl
	for i := 0; i < int(root.NamedChildCount()); i++ {
		n := root.NamedChild(i)
		switch n.Type() {
		case "function_declaration":
			decls = append(decls, extract.Decl{
				Name: fieldName(n, src),
				Node: n,
				Doc:  leadingComment(n, src),
			})
		case "method_declaration":
			decls = append(decls, extract.Decl{
				Name:      fieldName(n, src),
				ClassName: receiverType(n, src),
				Node:      n,
				Doc:       leadingComment(n, src),
			})
		}
	}
	return decls
}

// receiverType returns the bare receiver type name of a method declaration,
// without pointer or type-parameter decoration.
func receiverType(n *sitter.Node, src []byte) string {
	recv := n.ChildByFieldName("receiver")
	if recv == nil {
		return ""
	}
	for i := 0; i < int(recv.NamedChildCount()); i++ {
		t := recv.NamedChild(i).ChildByFieldName("type")
		if t == nil {
			continue
		}
		if t.Type() == "pointer_type" && t.NamedChildCount() > 0 {
			t = t.NamedChild(0)
		}
		if t.Type() == "generic_type" && t.NamedChildCount() > 0 {
			t = t.NamedChild(0)
		}
		return t.Content(src)
	}
	return ""
}

package languages

import (
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"codescout/internal/extract"
)

// RegisterTypeScript registers the TypeScript grammar. The declaration walk
// is shared with JavaScript.
func RegisterTypeScript(r *extract.Registry) {
	r.Register("typescript", []string{"ts", "tsx"},
		&ecmaGrammar{lang: typescript.GetLanguage()})
}

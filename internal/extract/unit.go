package extract

import "fmt"

// Unit kinds.
const (
	KindFunction = "function"
	KindMethod   = "method"
)

// MaxSourceChars caps the stored source text of a single unit. Oversized
// units are kept, truncated, and marked, never dropped.
const MaxSourceChars = 5000

// TruncationMarker is appended to source text cut at MaxSourceChars.
const TruncationMarker = "..."

// Unit is one function or method extracted as an independently retrievable
// piece of code.
type Unit struct {
	ID         string `json:"id"`
	FilePath   string `json:"file_path"`
	Name       string `json:"name"`
	ClassName  string `json:"class_name"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	Docstring  string `json:"docstring"`
	SourceCode string `json:"source_code"`
}

// Kind reports whether the unit is a module-level function or a class method.
func (u Unit) Kind() string {
	if u.ClassName != "" {
		return KindMethod
	}
	return KindFunction
}

// QualifiedName is "Class.name" for methods, or the bare name for functions.
func (u Unit) QualifiedName() string {
	if u.ClassName != "" {
		return u.ClassName + "." + u.Name
	}
	return u.Name
}

// CombinedText is the embedding input: qualified name, docstring, and source
// text in one string.
func (u Unit) CombinedText() string {
	return u.QualifiedName() + " " + u.Docstring + " " + u.SourceCode
}

// unitID derives a deterministic id from the identifying tuple. Re-extracting
// identical source yields identical ids, so re-indexing is idempotent.
func unitID(filePath, className, name string, startLine int) string {
	return fmt.Sprintf("%s:%s:%s:%d", filePath, className, name, startLine)
}

package assistant

import (
	"fmt"
	"math"
	"strings"

	"codescout/internal/store"
)

// maxContextResults caps how many retrieved units go into the prompt.
const maxContextResults = 20

// maxSourceRefs caps how many sources are attributed in the response.
const maxSourceRefs = 3

const promptTemplate = `You are a code assistant. Based on the following code snippets, answer the user's question concisely and clearly.

CODE CONTEXT:
%s

QUESTION: %s

Please provide a clear, concise answer that directly references the code snippets above.`

// buildPrompt renders the retrieval results into the fixed prompt template.
func buildPrompt(question string, results []store.SearchResult) string {
	return fmt.Sprintf(promptTemplate, buildContext(results), question)
}

// buildContext renders up to maxContextResults blocks in search order. Each
// block carries the unit's full source text: truncating code here would undo
// the reason for retrieving it.
func buildContext(results []store.SearchResult) string {
	if len(results) == 0 {
		return ""
	}
	if len(results) > maxContextResults {
		results = results[:maxContextResults]
	}

	blocks := make([]string, 0, len(results))
	for i, r := range results {
		var b strings.Builder
		fmt.Fprintf(&b, "[%d] %s (%.1f%% match)\n", i+1, r.Unit.QualifiedName(), r.Similarity*100)
		fmt.Fprintf(&b, "File: %s (lines %d-%d)\n", r.Unit.FilePath, r.Unit.StartLine, r.Unit.EndLine)
		b.WriteString("Code:\n")
		b.WriteString(r.Text)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

// formatSources attributes the top results, similarity rounded to 3
// decimals.
func formatSources(results []store.SearchResult) []SourceRef {
	n := len(results)
	if n > maxSourceRefs {
		n = maxSourceRefs
	}
	refs := make([]SourceRef, 0, n)
	for _, r := range results[:n] {
		refs = append(refs, SourceRef{
			File:       r.Unit.FilePath,
			Name:       r.Unit.QualifiedName(),
			Lines:      fmt.Sprintf("%d-%d", r.Unit.StartLine, r.Unit.EndLine),
			Similarity: math.Round(r.Similarity*1000) / 1000,
		})
	}
	return refs
}

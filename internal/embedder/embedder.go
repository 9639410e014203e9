// Package embedder provides clients that map batches of text to
// fixed-dimension embedding vectors.
package embedder

import "context"

// batchSize bounds how many texts go to a provider in one request.
const batchSize = 32

// Embedder maps texts to embedding vectors. The returned slice is aligned
// 1:1 with the input; a nil row marks a text that could not be embedded.
// The error is non-nil only when nothing could be embedded at all; callers
// drop nil rows and continue otherwise.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Model() string
}

// EmbedSingle embeds one text with any Embedder.
func EmbedSingle(ctx context.Context, e Embedder, text string) ([]float32, error) {
	rows, err := e.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0] == nil {
		return nil, nil
	}
	return rows[0], nil
}

// Package llm provides answer-generation clients behind a single interface.
package llm

import "context"

// Generator maps one prompt to one generated response. Failures are
// returned as errors; the caller decides how to surface them.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

package llm

import (
	"context"
	"errors"
)

// ErrProvider wraps any failure of the text-generation call: timeouts, rate
// limits and provider errors all look the same to the summarizer, which
// degrades to its deterministic fallback.
var ErrProvider = errors.New("text generation failed")

// Generator is the opaque text-generation capability behind summarization.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

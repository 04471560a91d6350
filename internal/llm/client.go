// Package llm provides the language model clients used by the plan stage.
// The model is consumed as an opaque text-completion service; the engine
// depends only on the Client interface.
package llm

import (
	"context"
	"errors"
)

// Client defines the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// ErrNoCompletion is returned when the provider answers without content.
var ErrNoCompletion = errors.New("no completion returned")

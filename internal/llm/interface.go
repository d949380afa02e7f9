package llm

import (
	"context"

	"jobforge/pkg/models"
)

// Invoker is the single capability the pipeline needs from a language
// model: send a prompt with optional ordered chat history, get text back.
// Concrete provider adapters and the rotating Client both implement it.
type Invoker interface {
	Invoke(ctx context.Context, prompt string, history []models.ChatMessage) (string, error)
}

// Provider is an Invoker bound to one concrete upstream model.
type Provider interface {
	Invoker
	Name() string
}

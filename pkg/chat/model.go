package chat

import "context"

// Model defines the interface for chat backends. Implementations handle
// protocol-specific details such as request formatting, authentication,
// and response parsing.
type Model interface {
	// Generate sends the prompt and returns the full reply.
	Generate(ctx context.Context, prompt []PromptMessage) (*Reply, error)

	// Stream sends the prompt and returns a channel of incremental deltas.
	Stream(ctx context.Context, prompt []PromptMessage) (<-chan Delta, error)
}

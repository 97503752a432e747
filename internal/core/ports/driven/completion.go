package driven

import "context"

// CompletionService turns a prompt into text. It is the only way the core
// reaches a generative model, and it is assumed to be slow and unreliable.
//
// Implementations should map provider failures onto domain errors:
// ErrRateLimited for throttling responses, ErrCompletionUnavailable otherwise.
//
// Implementations may include:
//   - OpenAI (and OpenAI-compatible servers)
//   - Anthropic
//   - Ollama (local models)
type CompletionService interface {
	// Complete returns the model's response to prompt.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionOptions configures a single completion.
type CompletionOptions struct {
	// SystemPrompt is sent as the system message when non-empty.
	SystemPrompt string

	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64

	// JSON hints that the response must be a single JSON value. Providers
	// that support a JSON response mode enable it; others rely on the prompt.
	JSON bool
}

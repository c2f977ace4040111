package driven

import (
	"context"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

// LLMService provides the summarization backend used for distillation.
// This is an optional service - when nil, answers degrade to raw chunk rendering.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - Google Gemini
type LLMService interface {
	// Generate produces text completion from a single user prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the LLM model being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic, 1.0 = creative).
	Temperature float64
}

// LLMConfigValidator checks that summarization settings reach a working backend.
type LLMConfigValidator interface {
	// ValidateLLM creates the configured backend and pings it.
	// Settings without an API key are valid and return nil.
	ValidateLLM(settings domain.DistillSettings) error
}

package driven

import "github.com/custodia-labs/lexis/internal/core/domain"

// AIConfigValidator checks provider settings before they are relied on.
// Both methods treat an unconfigured provider as valid.
type AIConfigValidator interface {
	// ValidateEmbedding checks the embedding settings and reaches the provider.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks the sampling parameters and reaches the provider.
	ValidateLLM(config *domain.LLMSettings) error
}

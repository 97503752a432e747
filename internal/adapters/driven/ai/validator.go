package ai

import (
	"fmt"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// maxTemperature is the highest sampling temperature every supported
// provider accepts.
const maxTemperature = 2.0

// ConfigValidator checks provider settings locally, then pings the provider.
type ConfigValidator struct{}

// NewConfigValidator creates a new AI config validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding rejects a negative batch size, then pings the provider.
// An unconfigured provider is valid.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	if config.BatchSize < 0 {
		return fmt.Errorf("%w: embedding batch size %d", domain.ErrInvalidInput, config.BatchSize)
	}
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM rejects out-of-range sampling parameters, then pings the
// provider. An unconfigured provider is valid.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	if config == nil || !config.IsConfigured() {
		return nil
	}
	if config.Temperature < 0 || config.Temperature > maxTemperature {
		return fmt.Errorf("%w: temperature %.2f outside 0-%.0f",
			domain.ErrInvalidInput, config.Temperature, maxTemperature)
	}
	if config.MaxTokens < 0 || config.RequestsPerMinute < 0 {
		return fmt.Errorf("%w: max tokens and requests per minute must not be negative",
			domain.ErrInvalidInput)
	}
	return ValidateCompletionConfig(config)
}

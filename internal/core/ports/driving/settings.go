package driving

import "github.com/custodia-labs/lexis/internal/core/domain"

// SettingsService reads and writes config.toml. Values from the
// environment fill gaps but are never written back.
type SettingsService interface {
	// Get returns defaults overlaid with the environment and the config file.
	Get() (*domain.AppSettings, error)

	// Save writes the given settings to the config file.
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider configures the embedding provider.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider configures the completion provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate checks that both providers are configured.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig checks the saved embedding settings against the provider.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig checks the saved completion settings against the provider.
	ValidateLLMConfig() error
}

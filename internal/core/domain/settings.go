package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API, or any OpenAI-compatible endpoint.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// BatchSize is the number of chunks embedded per request.
	BatchSize int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() || e.Provider == AIProviderAnthropic {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds completion provider configuration.
type LLMSettings struct {
	// Provider is the completion service provider.
	Provider AIProvider

	// Model is the model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// Temperature is the sampling temperature for every completion.
	Temperature float64

	// MaxTokens bounds each completion.
	MaxTokens int

	// RequestsPerMinute throttles outbound completion calls. Zero disables throttling.
	RequestsPerMinute int
}

// IsConfigured returns true if the completion provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// StorageBackend selects where documents, analyses and conversations live.
type StorageBackend string

// Storage backends.
const (
	StorageMemory StorageBackend = "memory"
	StorageSQLite StorageBackend = "sqlite"
)

// IsValid returns true if the backend is recognised.
func (b StorageBackend) IsValid() bool {
	return b == StorageMemory || b == StorageSQLite
}

// VectorBackend selects the vector index implementation.
type VectorBackend string

// Vector index backends.
const (
	VectorMemory  VectorBackend = "memory"
	VectorChromem VectorBackend = "chromem"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	return b == VectorMemory || b == VectorChromem
}

// IngestSettings controls upload and normalisation.
type IngestSettings struct {
	// MinChars is the minimum count of letters and digits a document needs.
	MinChars int

	// MaxUploadBytes is enforced by the driving adapters before upload.
	MaxUploadBytes int64
}

// RetrievalSettings controls chunk retrieval.
type RetrievalSettings struct {
	// TopK is the number of chunks retrieved per question.
	TopK int
}

// AnalysisSettings controls the extraction engine.
type AnalysisSettings struct {
	// MaxChars truncates the document text sent with each fragment prompt.
	MaxChars int

	// HeuristicFallback builds a rule-based analysis when the completion
	// service is unreachable for every fragment.
	HeuristicFallback bool
}

// QASettings controls the question-answering engine.
type QASettings struct {
	// MaxContextChars truncates the retrieved context in the prompt.
	MaxContextChars int

	// HistoryTurns is how many previous turns are included in the prompt.
	HistoryTurns int
}

// EngineSettings controls collaborator call behaviour.
type EngineSettings struct {
	// CallTimeout bounds each embedding or completion call.
	CallTimeout time.Duration

	// RetryBackoff is the wait before the single automatic retry.
	RetryBackoff time.Duration
}

// Call timeout bounds.
const (
	MinCallTimeout = 30 * time.Second
	MaxCallTimeout = 90 * time.Second
)

// ClampedCallTimeout returns CallTimeout clamped to [MinCallTimeout, MaxCallTimeout].
func (e EngineSettings) ClampedCallTimeout() time.Duration {
	switch {
	case e.CallTimeout < MinCallTimeout:
		return MinCallTimeout
	case e.CallTimeout > MaxCallTimeout:
		return MaxCallTimeout
	default:
		return e.CallTimeout
	}
}

// StorageSettings selects persistence.
type StorageSettings struct {
	// Backend is the document/analysis/conversation store.
	Backend StorageBackend

	// DataDir holds the SQLite database and persistent vector index.
	// Empty means ~/.lexis/data.
	DataDir string
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend is the index implementation.
	Backend VectorBackend
}

// ExtractionSettings holds text extraction configuration.
type ExtractionSettings struct {
	// TikaURL enables the Apache Tika extractor when set.
	TikaURL string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Embedding   EmbeddingSettings
	LLM         LLMSettings
	Ingest      IngestSettings
	Retrieval   RetrievalSettings
	Analysis    AnalysisSettings
	QA          QASettings
	Engine      EngineSettings
	Storage     StorageSettings
	VectorIndex VectorIndexSettings
	Extraction  ExtractionSettings
	Pipeline    PipelineConfig
}

// DefaultAppSettings returns settings with sensible defaults.
// AI providers are left unconfigured; users set them via settings commands.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{
			BatchSize: 32,
		},
		LLM: LLMSettings{
			Temperature:       0.1,
			MaxTokens:         2000,
			RequestsPerMinute: 60,
		},
		Ingest: IngestSettings{
			MinChars:       50,
			MaxUploadBytes: 50 << 20,
		},
		Retrieval: RetrievalSettings{
			TopK: 5,
		},
		Analysis: AnalysisSettings{
			MaxChars: 8000,
		},
		QA: QASettings{
			MaxContextChars: 6000,
			HistoryTurns:    3,
		},
		Engine: EngineSettings{
			CallTimeout:  60 * time.Second,
			RetryBackoff: time.Second,
		},
		Storage: StorageSettings{
			Backend: StorageSQLite,
		},
		VectorIndex: VectorIndexSettings{
			Backend: VectorMemory,
		},
		Pipeline: DefaultPipelineConfig(),
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each completion provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration:
// sentence-aligned chunking with 18% overlap, then section tagging.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "section"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    180,
			},
		},
	}
}

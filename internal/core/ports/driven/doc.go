// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - TextExtractor / ExtractorRegistry: Turns uploaded bytes into plain text
//   - TextNormaliser: Cleans extracted text
//   - PostProcessorPipeline: Splits normalised text into chunks
//   - DocumentStore, AnalysisStore, ConversationStore: Persistence
//   - VectorIndex: Per-document nearest-neighbour search
//   - ConfigStore: Application configuration
//   - PromptStore: Prompt templates
//
// # Collaborator Interfaces
//
// These may be nil. Operations that need them fail with a typed error
// (ErrEmbeddingUnavailable, ErrCompletionUnavailable) rather than panicking:
//
//   - EmbeddingService: Generates vector embeddings
//   - CompletionService: Turns a prompt into text
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or extractor package
package driven

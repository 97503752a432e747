// Package domain defines the core business entities for Lexis.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded legal document and its lifecycle status
//   - Chunk: A retrievable passage of a document's normalised text
//   - AnalysisResult: The structured extraction produced for a document
//   - Conversation: The ordered question/answer turns for a document
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain

// Package sqlite provides a unified SQLite-based implementation of the storage ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every store interface
// through a single database connection:
//
//   - DocumentStore: documents and their chunks, embeddings included
//   - AnalysisStore: append-only analysis results
//   - ConversationStore: question/answer turns
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Deleting a document cascades to its chunks, analyses and turns.
//
// # Embeddings
//
// Chunk embeddings are stored as little-endian float32 BLOBs, so a new process
// can re-hydrate the vector index without calling the embedding service.
//
// # Data Location
//
// By default, the database is stored at ~/.lexis/data/lexis.db
package sqlite

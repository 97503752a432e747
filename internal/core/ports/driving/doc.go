// Package driving defines interfaces that external actors (CLI, MCP clients)
// use to interact with core services. These are the "driving" ports in
// hexagonal architecture terminology - they drive the application.
//
// Every operation takes an explicit document ID; there is no notion of a
// "current" document.
//
// Implementations of these interfaces live in internal/core/services.
package driving

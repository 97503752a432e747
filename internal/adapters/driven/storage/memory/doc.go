// Package memory provides in-memory implementations of the storage ports.
// Nothing survives the process; these back tests and the CLI's --ephemeral
// mode. Every store copies values in and out so callers never share slices
// with the store.
package memory

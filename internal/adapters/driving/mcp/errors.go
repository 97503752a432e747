// Package mcp provides an MCP (Model Context Protocol) server adapter for Lexis.
// It lets AI assistants upload legal documents, run analyses and ask grounded
// questions through Lexis tools and resources.
package mcp

import "errors"

var (
	// ErrMissingDocumentService is returned when the document service is not provided.
	ErrMissingDocumentService = errors.New("mcp: document service is required")

	// ErrMissingAnalysisService is returned when the analysis service is not provided.
	ErrMissingAnalysisService = errors.New("mcp: analysis service is required")

	// errUploadTooLarge is returned by the upload tool when content exceeds the limit.
	errUploadTooLarge = errors.New("upload exceeds the maximum size")

	// errServiceUnavailable is returned by tools whose optional port is not wired.
	errServiceUnavailable = errors.New("service not available")
)

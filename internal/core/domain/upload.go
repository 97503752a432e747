package domain

import (
	"path/filepath"
	"strings"
)

// Upload is a file handed to the engine for ingestion.
// It is the driving adapter's output before text extraction.
type Upload struct {
	// Filename is the original file name; its extension guides MIME detection.
	Filename string

	// MIMEType is the declared content type. Empty means detect.
	MIMEType string

	// Content is the raw bytes.
	Content []byte
}

// Size returns the content length in bytes.
func (u Upload) Size() int64 {
	return int64(len(u.Content))
}

// Ext returns the lowercased file extension including the dot.
func (u Upload) Ext() string {
	return strings.ToLower(filepath.Ext(u.Filename))
}

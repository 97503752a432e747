package extractors

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// MIME types for the accepted upload formats.
const (
	MIMEPlainText = "text/plain"
	MIMEMarkdown  = "text/markdown"
	MIMEHTML      = "text/html"
	MIMEPDF       = "application/pdf"
	MIMEDOCX      = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MIMEDOC       = "application/msword"
)

var extensionTypes = map[string]string{
	".txt":      MIMEPlainText,
	".text":     MIMEPlainText,
	".md":       MIMEMarkdown,
	".markdown": MIMEMarkdown,
	".html":     MIMEHTML,
	".htm":      MIMEHTML,
	".pdf":      MIMEPDF,
	".docx":     MIMEDOCX,
	".doc":      MIMEDOC,
}

// DetectMIMEType infers the MIME type of an upload from its file extension,
// falling back to content sniffing.
func DetectMIMEType(filename string, content []byte) string {
	if t, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return t
	}
	return BaseType(http.DetectContentType(content))
}

// BaseType strips parameters from a MIME type and lowercases it.
func BaseType(mimeType string) string {
	if mediaType, _, err := mime.ParseMediaType(mimeType); err == nil {
		return mediaType
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// SupportedExtension reports whether filename has one of the accepted upload extensions.
func SupportedExtension(filename string) bool {
	_, ok := extensionTypes[strings.ToLower(filepath.Ext(filename))]
	return ok
}

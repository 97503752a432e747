// Package tika extracts text through an Apache Tika server. It covers
// formats with no native extractor, such as legacy Word .doc files.
package tika

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

const defaultTimeout = 60 * time.Second

// maxErrorBody bounds how much of an error response is quoted.
const maxErrorBody = 512

// Extractor is a client for the Tika server's /tika endpoint.
type Extractor struct {
	serverURL  string
	httpClient *http.Client
}

// Option configures the Tika extractor.
type Option func(*Extractor)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Extractor) {
		if c != nil {
			e.httpClient = c
		}
	}
}

// New creates a Tika extractor for the server at serverURL.
func New(serverURL string, opts ...Option) *Extractor {
	e := &Extractor{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SupportedMIMETypes returns the MIME types this extractor handles.
// The catch-all entry lets Tika serve any type no native extractor claims.
func (e *Extractor) SupportedMIMETypes() []string {
	return []string{"application/msword", "application/rtf", "*/*"}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5
}

// Extract PUTs the document to /tika and returns the plain text response.
func (e *Extractor) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.serverURL+"/tika", bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("%w: tika: create request: %v", domain.ErrExtractionFailed, err)
	}
	req.Header.Set("Accept", "text/plain")
	if mimeType != "" {
		req.Header.Set("Content-Type", mimeType)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: tika: %v", domain.ErrExtractionFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnsupportedMediaType:
		return "", fmt.Errorf("%w: tika cannot parse %s", domain.ErrUnsupportedFormat, mimeType)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return "", fmt.Errorf("%w: tika returned %d: %s",
			domain.ErrExtractionFailed, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: tika: read response: %v", domain.ErrExtractionFailed, err)
	}
	return string(body), nil
}

package extractors

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// CatchAll is the MIME entry an extractor lists to accept any type.
const CatchAll = "*/*"

// Registry dispatches extraction to the best extractor for a MIME type.
type Registry struct {
	mu         sync.RWMutex
	extractors []driven.TextExtractor
}

// NewRegistry creates a registry holding the given extractors.
func NewRegistry(extractors ...driven.TextExtractor) *Registry {
	r := &Registry{}
	for _, e := range extractors {
		r.Register(e)
	}
	return r
}

// Register adds an extractor to the registry.
func (r *Registry) Register(extractor driven.TextExtractor) {
	if extractor == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.extractors = append(r.extractors, extractor)
}

// Extract runs the highest-priority extractor for mimeType. An exact MIME
// match always beats a catch-all of higher priority.
func (r *Registry) Extract(ctx context.Context, content []byte, mimeType string) (string, error) {
	mimeType = BaseType(mimeType)

	extractor := r.find(mimeType)
	if extractor == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedFormat, mimeType)
	}
	return extractor.Extract(ctx, content, mimeType)
}

// DetectMIMEType implements driven.ExtractorRegistry.
func (r *Registry) DetectMIMEType(filename string, content []byte) string {
	return DetectMIMEType(filename, content)
}

// Supports reports whether some extractor accepts mimeType.
func (r *Registry) Supports(mimeType string) bool {
	return r.find(BaseType(mimeType)) != nil
}

// SupportedMIMETypes returns all concrete MIME types that can be extracted,
// sorted. Catch-all entries are omitted.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var types []string
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			if t == CatchAll || seen[t] {
				continue
			}
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

func (r *Registry) find(mimeType string) driven.TextExtractor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var exact, fallback driven.TextExtractor
	for _, e := range r.extractors {
		for _, t := range e.SupportedMIMETypes() {
			switch t {
			case mimeType:
				if exact == nil || e.Priority() > exact.Priority() {
					exact = e
				}
			case CatchAll:
				if fallback == nil || e.Priority() > fallback.Priority() {
					fallback = e
				}
			}
		}
	}
	if exact != nil {
		return exact
	}
	return fallback
}

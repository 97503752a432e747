package postprocessors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// BuilderFunc creates a PostProcessor from the processor's table in
// config.toml ([pipeline.<name>]).
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

type registration struct {
	build BuilderFunc
	// after names a processor that must run earlier in the pipeline.
	after string
}

// Registry maps processor names to their builders.
type Registry struct {
	entries map[string]registration
}

// NewRegistry creates an empty processor registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]registration)}
}

// Register adds a processor builder. A later registration under the same
// name replaces the earlier one.
func (r *Registry) Register(name string, builder BuilderFunc) {
	r.entries[name] = registration{build: builder}
}

// RegisterAfter adds a processor that only works on chunks produced by
// the processor named dependsOn.
func (r *Registry) RegisterAfter(name, dependsOn string, builder BuilderFunc) {
	r.entries[name] = registration{build: builder, after: dependsOn}
}

// Build creates a processor by name with the given config.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	entry, ok := r.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown processor %q (available: %s)",
			domain.ErrInvalidInput, name, strings.Join(r.Names(), ", "))
	}
	proc, err := entry.build(cfg)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}
	return proc, nil
}

// Has reports whether a processor with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered processor names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckOrder verifies a configured processor order: every name is known,
// none repeats, and each processor runs after the one it depends on.
func (r *Registry) CheckOrder(order []string) error {
	if len(order) == 0 {
		return fmt.Errorf("%w: pipeline has no processors", domain.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		entry, ok := r.entries[name]
		if !ok {
			return fmt.Errorf("%w: unknown processor %q (available: %s)",
				domain.ErrInvalidInput, name, strings.Join(r.Names(), ", "))
		}
		if seen[name] {
			return fmt.Errorf("%w: processor %q listed twice", domain.ErrInvalidInput, name)
		}
		if entry.after != "" && !seen[entry.after] {
			return fmt.Errorf("%w: processor %q must come after %q",
				domain.ErrInvalidInput, name, entry.after)
		}
		seen[name] = true
	}
	return nil
}

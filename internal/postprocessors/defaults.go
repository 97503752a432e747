package postprocessors

import (
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/postprocessors/chunker"
	"github.com/custodia-labs/lexis/internal/postprocessors/section"
)

// RegisterDefaults registers the built-in processors. The section tagger
// labels existing chunks, so it is registered to run after the chunker.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.RegisterAfter("section", "chunker", buildSection)
}

// NewDefaultPipeline returns the chunker followed by the section tagger,
// both with default settings.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(chunker.New(), section.New())
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 180)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if size, ok := getIntFromConfig(cfg, "chunk_size"); ok && size > 0 {
		opts = append(opts, chunker.WithChunkSize(size))
	}
	if overlap, ok := getIntFromConfig(cfg, "overlap"); ok && overlap >= 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}

	return chunker.New(opts...), nil
}

func buildSection(_ map[string]any) (driven.PostProcessor, error) {
	return section.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) (int, bool) {
	val, ok := cfg[key]
	if !ok {
		return 0, false
	}

	switch v := val.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

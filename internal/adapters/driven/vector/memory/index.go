// Package memory provides a brute-force in-process vector index.
// Each document is its own namespace; searches never cross documents.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

type entry struct {
	chunkID string
	seq     int
	vector  []float32 // unit length, or all zeros
}

// Index is an in-memory driven.VectorIndex using exact cosine distance.
type Index struct {
	mu         sync.RWMutex
	namespaces map[string][]entry
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{namespaces: make(map[string][]entry)}
}

// Replace swaps the document's namespace for the given chunks.
func (i *Index) Replace(_ context.Context, documentID string, chunks []domain.Chunk) error {
	entries := make([]entry, 0, len(chunks))
	dims := -1
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: chunk %d has no embedding", domain.ErrInvalidInput, c.Seq)
		}
		if dims >= 0 && len(c.Embedding) != dims {
			return fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				domain.ErrInvalidInput, c.Seq, len(c.Embedding), dims)
		}
		dims = len(c.Embedding)
		entries = append(entries, entry{chunkID: c.ID, seq: c.Seq, vector: normalise(c.Embedding)})
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	if len(entries) == 0 {
		delete(i.namespaces, documentID)
		return nil
	}
	i.namespaces[documentID] = entries
	return nil
}

// Search returns up to k hits ordered by ascending distance, then Seq.
func (i *Index) Search(_ context.Context, documentID string, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}
	q := normalise(query)

	i.mu.RLock()
	entries := i.namespaces[documentID]
	hits := make([]driven.VectorHit, 0, len(entries))
	for _, e := range entries {
		if len(e.vector) != len(q) {
			i.mu.RUnlock()
			return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
				domain.ErrInvalidInput, len(q), len(e.vector))
		}
		hits = append(hits, driven.VectorHit{ChunkID: e.chunkID, Seq: e.seq, Distance: 1 - dot(q, e.vector)})
	}
	i.mu.RUnlock()

	SortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of vectors in the document's namespace.
func (i *Index) Count(_ context.Context, documentID string) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.namespaces[documentID]), nil
}

// DeleteDocument drops the document's namespace.
func (i *Index) DeleteDocument(_ context.Context, documentID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.namespaces, documentID)
	return nil
}

// Close releases resources.
func (i *Index) Close() error {
	return nil
}

// SortHits orders hits by ascending distance, breaking ties by Seq.
func SortHits(hits []driven.VectorHit) {
	sort.SliceStable(hits, func(a, b int) bool {
		if hits[a].Distance != hits[b].Distance {
			return hits[a].Distance < hits[b].Distance
		}
		return hits[a].Seq < hits[b].Seq
	})
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	norm := math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

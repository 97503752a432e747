// Package chromem provides a driven.VectorIndex backed by chromem-go.
// Each document gets its own collection so queries stay within one document.
package chromem

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	chromemgo "github.com/philippgille/chromem-go"

	"github.com/custodia-labs/lexis/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

const (
	// Directory is the subdirectory of the data dir holding collections.
	Directory = "vectors"

	collectionPrefix = "doc-"
	seqKey           = "seq"
)

// Index stores embeddings in chromem collections.
type Index struct {
	mu sync.Mutex
	db *chromemgo.DB
}

// NewIndex creates a non-persistent index.
func NewIndex() *Index {
	return &Index{db: chromemgo.NewDB()}
}

// NewPersistentIndex opens (or creates) a gob-backed index under dataDir.
func NewPersistentIndex(dataDir string) (*Index, error) {
	db, err := chromemgo.NewPersistentDB(filepath.Join(dataDir, Directory), false)
	if err != nil {
		return nil, fmt.Errorf("open vector index: %w", err)
	}
	return &Index{db: db}, nil
}

func collectionName(documentID string) string {
	return collectionPrefix + documentID
}

// noEmbed rejects any attempt to embed text; every vector is supplied.
func noEmbed(context.Context, string) ([]float32, error) {
	return nil, fmt.Errorf("%w: vector index does not embed text", domain.ErrInvalidInput)
}

// Replace drops the document's collection and rebuilds it from chunks.
func (i *Index) Replace(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	docs := make([]chromemgo.Document, 0, len(chunks))
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
		embedding := make([]float32, len(c.Embedding))
		copy(embedding, c.Embedding)
		docs = append(docs, chromemgo.Document{
			ID:        c.ID,
			Content:   c.Content,
			Metadata:  map[string]string{seqKey: strconv.Itoa(c.Seq)},
			Embedding: embedding,
		})
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	name := collectionName(documentID)
	if err := i.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}
	col, err := i.db.GetOrCreateCollection(name, map[string]string{"document_id": documentID}, noEmbed)
	if err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	if err := col.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		_ = i.db.DeleteCollection(name)
		return fmt.Errorf("add vectors: %w", err)
	}
	return nil
}

// Search queries the whole collection and applies the Seq tie-break
// before truncating to k.
func (i *Index) Search(ctx context.Context, documentID string, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return []driven.VectorHit{}, nil
	}

	i.mu.Lock()
	col := i.db.GetCollection(collectionName(documentID), noEmbed)
	i.mu.Unlock()
	if col == nil || col.Count() == 0 {
		return []driven.VectorHit{}, nil
	}

	q := make([]float32, len(query))
	copy(q, query)
	results, err := col.QueryEmbedding(ctx, q, col.Count(), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}

	hits := make([]driven.VectorHit, 0, len(results))
	for _, r := range results {
		seq, err := strconv.Atoi(r.Metadata[seqKey])
		if err != nil {
			return nil, fmt.Errorf("vector %s has bad seq metadata: %w", r.ID, err)
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:  r.ID,
			Seq:      seq,
			Distance: 1 - float64(r.Similarity),
		})
	}
	memory.SortHits(hits)
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of vectors stored for the document.
func (i *Index) Count(_ context.Context, documentID string) (int, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	col := i.db.GetCollection(collectionName(documentID), noEmbed)
	if col == nil {
		return 0, nil
	}
	return col.Count(), nil
}

// DeleteDocument drops the document's collection.
func (i *Index) DeleteDocument(_ context.Context, documentID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if err := i.db.DeleteCollection(collectionName(documentID)); err != nil {
		return fmt.Errorf("drop collection: %w", err)
	}
	return nil
}

// Close releases resources. Persistent collections are written on change.
func (i *Index) Close() error {
	return nil
}

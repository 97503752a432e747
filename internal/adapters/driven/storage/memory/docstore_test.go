package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func testDocument(id string, created time.Time) *domain.Document {
	return &domain.Document{
		ID:        id,
		Filename:  id + ".txt",
		MIMEType:  "text/plain",
		Text:      "Either party may terminate this agreement.",
		Status:    domain.StatusIngested,
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	doc := testDocument("doc-1", time.Now())

	require.NoError(t, store.SaveDocument(ctx, doc))

	got, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, *doc, *got)

	// Mutating the returned copy does not touch the store.
	got.Status = domain.StatusFailed
	again, err := store.GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIngested, again.Status)
}

func TestDocumentStore_SaveDocument_RequiresID(t *testing.T) {
	store := NewDocumentStore()

	err := store.SaveDocument(context.Background(), &domain.Document{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := NewDocumentStore()

	_, err := store.GetDocument(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments_NewestFirst(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.SaveDocument(ctx, testDocument("old", base)))
	require.NoError(t, store.SaveDocument(ctx, testDocument("new", base.Add(time.Hour))))
	require.NoError(t, store.SaveDocument(ctx, testDocument("mid", base.Add(time.Minute))))

	docs, err := store.ListDocuments(ctx)

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "new", docs[0].ID)
	assert.Equal(t, "mid", docs[1].ID)
	assert.Equal(t, "old", docs[2].ID)
}

func TestDocumentStore_ReplaceChunks(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1", time.Now())))

	first := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Seq: 1, Content: "b"},
		{ID: "c0", DocumentID: "doc-1", Seq: 0, Content: "a", Embedding: []float32{1, 0}},
	}
	require.NoError(t, store.ReplaceChunks(ctx, "doc-1", first))

	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, 0, chunks[0].Seq)
	assert.Equal(t, 1, chunks[1].Seq)

	// Caller slices are not aliased.
	first[1].Embedding[0] = 99
	chunks, err = store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0}, chunks[0].Embedding)

	require.NoError(t, store.ReplaceChunks(ctx, "doc-1", []domain.Chunk{{ID: "x", DocumentID: "doc-1"}}))
	chunks, err = store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "x", chunks[0].ID)
}

func TestDocumentStore_ReplaceChunks_UnknownDocument(t *testing.T) {
	store := NewDocumentStore()

	err := store.ReplaceChunks(context.Background(), "missing", []domain.Chunk{{ID: "c"}})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()
	require.NoError(t, store.SaveDocument(ctx, testDocument("doc-1", time.Now())))
	require.NoError(t, store.ReplaceChunks(ctx, "doc-1", []domain.Chunk{{ID: "c0", DocumentID: "doc-1"}}))

	require.NoError(t, store.DeleteDocument(ctx, "doc-1"))

	_, err := store.GetDocument(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	chunks, err := store.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestDocumentStore_Concurrency(t *testing.T) {
	store := NewDocumentStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "doc-" + string(rune('a'+i))
			_ = store.SaveDocument(ctx, testDocument(id, time.Now()))
			_, _ = store.GetDocument(ctx, id)
			_, _ = store.ListDocuments(ctx)
		}(i)
	}
	wg.Wait()

	docs, err := store.ListDocuments(ctx)
	require.NoError(t, err)
	assert.Len(t, docs, 20)
}

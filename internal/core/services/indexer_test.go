package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vectormemory "github.com/custodia-labs/lexis/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/postprocessors"
)

func TestIndexService_BuildMovesToIndexed(t *testing.T) {
	env := newTestEnv(t)
	doc := env.upload(t, sampleText)

	chunks, err := env.indexer.Build(context.Background(), doc.ID)

	require.NoError(t, err)
	require.Greater(t, len(chunks), 2)
	for i, c := range chunks {
		assert.Equal(t, i, c.Seq)
		assert.Len(t, c.Embedding, mockDims)
	}

	got, err := env.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)

	n, err := env.vectors.Count(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, len(chunks), n)
}

func TestIndexService_SelfRetrieval(t *testing.T) {
	env := newTestEnv(t)
	doc := env.upload(t, sampleText)
	chunks, err := env.indexer.Build(context.Background(), doc.ID)
	require.NoError(t, err)

	for _, c := range chunks {
		got, err := env.indexer.Query(context.Background(), doc.ID, c.Content, 1)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, c.ID, got[0].ID, "chunk %d should retrieve itself", c.Seq)
	}
}

func TestIndexService_DocumentIsolation(t *testing.T) {
	env := newTestEnv(t)
	a := env.upload(t, sampleText)
	b := env.upload(t, sampleText)
	_, err := env.indexer.Build(context.Background(), a.ID)
	require.NoError(t, err)
	_, err = env.indexer.Build(context.Background(), b.ID)
	require.NoError(t, err)

	got, err := env.indexer.Query(context.Background(), a.ID, "monthly retainer invoice", 10)

	require.NoError(t, err)
	require.NotEmpty(t, got)
	for _, c := range got {
		assert.Equal(t, a.ID, c.DocumentID)
	}
}

func TestIndexService_BuildIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	doc := env.upload(t, sampleText)

	first, err := env.indexer.Build(context.Background(), doc.ID)
	require.NoError(t, err)
	calls := env.embed.BatchCalls()

	second, err := env.indexer.Build(context.Background(), doc.ID)
	require.NoError(t, err)

	assert.Equal(t, calls, env.embed.BatchCalls(), "second build must not re-embed")
	require.Len(t, second, len(first))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestIndexService_TieBreakBySeq(t *testing.T) {
	env := newTestEnv(t)
	env.embed.constant = true
	doc := env.upload(t, sampleText)
	_, err := env.indexer.Build(context.Background(), doc.ID)
	require.NoError(t, err)

	got, err := env.indexer.Query(context.Background(), doc.ID, "anything", 3)

	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, 0, got[0].Seq)
	assert.Equal(t, 1, got[1].Seq)
	assert.Equal(t, 2, got[2].Seq)
}

func TestIndexService_EmbeddingFailureMapsToUnavailable(t *testing.T) {
	env := newTestEnv(t)
	env.embed.err = errors.New("connection refused")
	doc := env.upload(t, sampleText)

	_, err := env.indexer.Build(context.Background(), doc.ID)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)

	got, getErr := env.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Contains(t, got.Error, "connection refused")
}

func TestIndexService_RetryAfterFailure(t *testing.T) {
	env := newTestEnv(t)
	env.embed.err = errors.New("timeout")
	doc := env.upload(t, sampleText)
	_, err := env.indexer.Build(context.Background(), doc.ID)
	require.Error(t, err)

	env.embed.mu.Lock()
	env.embed.err = nil
	env.embed.mu.Unlock()
	_, err = env.indexer.Build(context.Background(), doc.ID)

	require.NoError(t, err)
	got, err := env.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, got.Status)
	assert.Empty(t, got.Error)
}

func TestIndexService_NilEmbeddingService(t *testing.T) {
	env := newTestEnv(t)
	indexer := NewIndexService(env.docs, env.vectors, nil, postprocessors.NewDefaultPipeline(), IndexConfig{})
	doc := env.upload(t, sampleText)

	_, err := indexer.Build(context.Background(), doc.ID)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
}

func TestIndexService_ConcurrentBuildsShareOneRun(t *testing.T) {
	env := newTestEnv(t)
	env.embed.gate = make(chan struct{})
	doc := env.upload(t, sampleText)

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]domain.Chunk, callers)
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = env.indexer.Build(context.Background(), doc.ID)
		}()
	}

	require.Eventually(t, func() bool { return env.embed.BatchCalls() >= 1 }, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(env.embed.gate)
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		assert.Len(t, results[i], len(results[0]))
	}
	// sampleText fits in one batch, so one run makes exactly one call.
	assert.Equal(t, 1, env.embed.BatchCalls())
}

func TestIndexService_AbandonedBuildStillCompletes(t *testing.T) {
	env := newTestEnv(t)
	env.embed.gate = make(chan struct{})
	doc := env.upload(t, sampleText)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := env.indexer.Build(ctx, doc.ID)
		done <- err
	}()
	require.Eventually(t, func() bool { return env.embed.BatchCalls() >= 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
	close(env.embed.gate)

	require.Eventually(t, func() bool {
		got, err := env.docs.GetDocument(context.Background(), doc.ID)
		return err == nil && got.Status == domain.StatusIndexed
	}, time.Second, 5*time.Millisecond)
}

func TestIndexService_QueryRehydratesEmptyIndex(t *testing.T) {
	env := newTestEnv(t)
	doc := env.upload(t, sampleText)
	chunks, err := env.indexer.Build(context.Background(), doc.ID)
	require.NoError(t, err)

	// A new process starts with an empty vector index over the same stores.
	fresh := vectormemory.NewIndex()
	indexer := NewIndexService(env.docs, fresh, env.embed, postprocessors.NewDefaultPipeline(), IndexConfig{})

	got, err := indexer.Query(context.Background(), doc.ID, chunks[0].Content, 1)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, chunks[0].ID, got[0].ID)
	n, err := fresh.Count(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, len(chunks), n)
}

func TestIndexService_QueryErrors(t *testing.T) {
	env := newTestEnv(t)
	doc := env.upload(t, sampleText)

	t.Run("not indexed", func(t *testing.T) {
		_, err := env.indexer.Query(context.Background(), doc.ID, "rent", 3)
		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("empty query", func(t *testing.T) {
		_, err := env.indexer.Query(context.Background(), doc.ID, "", 3)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := env.indexer.Query(context.Background(), "missing", "rent", 3)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("embedding down", func(t *testing.T) {
		_, err := env.indexer.Build(context.Background(), doc.ID)
		require.NoError(t, err)
		env.embed.mu.Lock()
		env.embed.err = errors.New("503")
		env.embed.mu.Unlock()

		_, err = env.indexer.Query(context.Background(), doc.ID, "rent", 3)
		assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	})
}

func TestChunksMatch(t *testing.T) {
	doc := &domain.Document{Text: "abcdef"}
	vec := []float32{1}

	tests := []struct {
		name   string
		chunks []domain.Chunk
		want   bool
	}{
		{"empty", nil, false},
		{"full cover", []domain.Chunk{
			{Seq: 0, Start: 0, End: 4, Content: "abcd", Embedding: vec},
			{Seq: 1, Start: 3, End: 6, Content: "def", Embedding: vec},
		}, true},
		{"stale content", []domain.Chunk{{Seq: 0, Start: 0, End: 6, Content: "abcxyz", Embedding: vec}}, false},
		{"short cover", []domain.Chunk{{Seq: 0, Start: 0, End: 4, Content: "abcd", Embedding: vec}}, false},
		{"missing embedding", []domain.Chunk{{Seq: 0, Start: 0, End: 6, Content: "abcdef"}}, false},
		{"gap in seq", []domain.Chunk{{Seq: 1, Start: 0, End: 6, Content: "abcdef", Embedding: vec}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, chunksMatch(doc, tt.chunks))
		})
	}
}

func TestIndexService_EmbeddingCallTimesOut(t *testing.T) {
	env := newTestEnv(t)
	env.embed.gate = make(chan struct{})
	env.indexer.cfg.CallTimeout = 50 * time.Millisecond
	doc := env.upload(t, sampleText)

	start := time.Now()
	_, err := env.indexer.Build(context.Background(), doc.ID)

	assert.ErrorIs(t, err, domain.ErrEmbeddingUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)

	got, getErr := env.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusFailed, got.Status)
}

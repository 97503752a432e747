package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure IndexService implements the interface.
var _ driving.IndexService = (*IndexService)(nil)

// maxEmbedBatches bounds concurrent EmbedBatch calls per build.
const maxEmbedBatches = 4

// IndexConfig tunes the indexer.
type IndexConfig struct {
	// BatchSize is the number of chunks per EmbedBatch call.
	BatchSize int

	// TopK is the default number of chunks returned by Query.
	TopK int

	// CallTimeout bounds each embedding call. It is clamped to 30-90s.
	CallTimeout time.Duration
}

// IndexService chunks documents, embeds the chunks and answers
// nearest-neighbour queries within one document.
type IndexService struct {
	docStore    driven.DocumentStore
	vectorIndex driven.VectorIndex
	embedding   driven.EmbeddingService
	pipeline    driven.PostProcessorPipeline
	cfg         IndexConfig
	now         func() time.Time
	group       singleflight.Group
}

// NewIndexService creates a new index service.
// The embedding service may be nil; Build and Query then fail with
// domain.ErrEmbeddingUnavailable.
func NewIndexService(
	docStore driven.DocumentStore,
	vectorIndex driven.VectorIndex,
	embedding driven.EmbeddingService,
	pipeline driven.PostProcessorPipeline,
	cfg IndexConfig,
) *IndexService {
	defaults := domain.DefaultAppSettings()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaults.Embedding.BatchSize
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.Retrieval.TopK
	}
	cfg.CallTimeout = domain.EngineSettings{CallTimeout: cfg.CallTimeout}.ClampedCallTimeout()

	return &IndexService{
		docStore:    docStore,
		vectorIndex: vectorIndex,
		embedding:   embedding,
		pipeline:    pipeline,
		cfg:         cfg,
		now:         time.Now,
	}
}

// Build chunks and embeds the document and moves it to Indexed. Concurrent
// builds of one document share a single run, which completes even if every
// caller gives up.
func (s *IndexService) Build(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	ch := s.group.DoChan("index:"+documentID, func() (any, error) {
		return s.build(context.WithoutCancel(ctx), documentID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		chunks := res.Val.([]domain.Chunk)
		return append([]domain.Chunk(nil), chunks...), nil
	}
}

func (s *IndexService) build(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if doc.Status.AtLeast(domain.StatusIndexed) {
		existing, err := s.docStore.GetChunks(ctx, documentID)
		if err != nil {
			return nil, fmt.Errorf("get chunks: %w", err)
		}
		if chunksMatch(doc, existing) {
			if err := s.hydrate(ctx, documentID, existing); err != nil {
				return nil, err
			}
			logger.Debug("Document %s already indexed (%d chunks)", documentID, len(existing))
			return existing, nil
		}
		logger.Warn("Stored chunks for %s do not match its text; rebuilding", documentID)
	}

	logger.Section("Index Build")
	chunks, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		return nil, s.fail(ctx, doc, fmt.Errorf("chunk document: %w", err))
	}
	logger.Debug("Document %s split into %d chunks", documentID, len(chunks))

	if err := s.embedChunks(ctx, chunks); err != nil {
		return nil, s.fail(ctx, doc, err)
	}

	if err := s.docStore.ReplaceChunks(ctx, documentID, chunks); err != nil {
		return nil, fmt.Errorf("store chunks: %w", err)
	}
	if err := s.vectorIndex.Replace(ctx, documentID, chunks); err != nil {
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	// Rebuilding an analysed document keeps its status.
	if doc.Status != domain.StatusAnalyzed {
		if err := doc.Transition(domain.StatusIndexed, s.now()); err != nil {
			return nil, err
		}
		if err := s.docStore.SaveDocument(ctx, doc); err != nil {
			return nil, fmt.Errorf("save document: %w", err)
		}
	}

	logger.Info("Indexed document %s: %d chunks", documentID, len(chunks))
	return chunks, nil
}

// embedChunks fills in every chunk's embedding, running up to
// maxEmbedBatches EmbedBatch calls at once.
func (s *IndexService) embedChunks(ctx context.Context, chunks []domain.Chunk) error {
	if s.embedding == nil {
		return fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxEmbedBatches)

	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		g.Go(func() error {
			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}

			callCtx, cancel := context.WithTimeout(gctx, s.cfg.CallTimeout)
			defer cancel()

			vectors, err := s.embedding.EmbedBatch(callCtx, texts)
			if err != nil {
				return fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
			}
			if len(vectors) != len(batch) {
				return fmt.Errorf("%w: got %d embeddings for %d chunks",
					domain.ErrEmbeddingUnavailable, len(vectors), len(batch))
			}
			for i := range batch {
				batch[i].Embedding = vectors[i]
			}
			return nil
		})
	}

	return g.Wait()
}

// fail records err on the document unless it has already been analysed.
func (s *IndexService) fail(ctx context.Context, doc *domain.Document, err error) error {
	if doc.Status == domain.StatusAnalyzed {
		return err
	}
	doc.Fail(err, s.now())
	if saveErr := s.docStore.SaveDocument(ctx, doc); saveErr != nil {
		logger.Warn("Failed to record failure for %s: %v", doc.ID, saveErr)
	}
	return err
}

// Query returns the k chunks nearest to text, ordered by distance then Seq.
func (s *IndexService) Query(ctx context.Context, documentID, text string, k int) ([]domain.Chunk, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if k <= 0 {
		k = s.cfg.TopK
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Status.AtLeast(domain.StatusIndexed) {
		return nil, fmt.Errorf("%w: document %s is %s, not indexed", domain.ErrInvalidState, documentID, doc.Status)
	}

	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get chunks: %w", err)
	}
	if _, err, _ := s.group.Do("hydrate:"+documentID, func() (any, error) {
		return nil, s.hydrate(ctx, documentID, chunks)
	}); err != nil {
		return nil, err
	}

	if s.embedding == nil {
		return nil, fmt.Errorf("%w: no embedding provider configured", domain.ErrEmbeddingUnavailable)
	}
	callCtx, cancel := context.WithTimeout(ctx, s.cfg.CallTimeout)
	vector, err := s.embedding.Embed(callCtx, text)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	hits, err := s.vectorIndex.Search(ctx, documentID, vector, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	byID := make(map[string]domain.Chunk, len(chunks))
	for _, c := range chunks {
		byID[c.ID] = c
	}
	results := make([]domain.Chunk, 0, len(hits))
	for _, hit := range hits {
		if c, ok := byID[hit.ChunkID]; ok {
			results = append(results, c)
		}
	}
	logger.Debug("Query on %s returned %d of %d chunks", documentID, len(results), len(chunks))
	return results, nil
}

// hydrate reloads the vector namespace from stored chunks when it holds
// fewer vectors than there are chunks, e.g. in a fresh process.
func (s *IndexService) hydrate(ctx context.Context, documentID string, chunks []domain.Chunk) error {
	count, err := s.vectorIndex.Count(ctx, documentID)
	if err != nil {
		return fmt.Errorf("count vectors: %w", err)
	}
	if count >= len(chunks) {
		return nil
	}
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			return fmt.Errorf("%w: document %s has unembedded chunks; rebuild the index",
				domain.ErrInvalidState, documentID)
		}
	}
	logger.Debug("Re-hydrating vector index for %s (%d of %d vectors)", documentID, count, len(chunks))
	if err := s.vectorIndex.Replace(ctx, documentID, chunks); err != nil {
		return fmt.Errorf("rehydrate index: %w", err)
	}
	return nil
}

// chunksMatch reports whether stored chunks were built from doc's current
// text: every chunk is embedded, Seq is contiguous, the spans reproduce
// the text and the last span ends at the end of it.
func chunksMatch(doc *domain.Document, chunks []domain.Chunk) bool {
	if len(chunks) == 0 {
		return false
	}
	runes := []rune(doc.Text)
	for i, c := range chunks {
		if c.Seq != i || len(c.Embedding) == 0 {
			return false
		}
		if c.Start < 0 || c.End > len(runes) || c.Start >= c.End {
			return false
		}
		if string(runes[c.Start:c.End]) != c.Content {
			return false
		}
	}
	return chunks[0].Start == 0 && chunks[len(chunks)-1].End == len(runes)
}

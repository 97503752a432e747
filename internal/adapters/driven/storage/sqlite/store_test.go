package sqlite

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// setupTestStore creates a SQLite store in a temporary directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

// createTestDocument saves a document to satisfy foreign key constraints.
func createTestDocument(t *testing.T, store *Store, id string, created time.Time) *domain.Document {
	t.Helper()

	doc := &domain.Document{
		ID:          id,
		Filename:    id + ".txt",
		MIMEType:    "text/plain",
		RawText:     "raw  text",
		Text:        "raw text",
		Fingerprint: "abc123",
		Status:      domain.StatusIngested,
		CreatedAt:   created.UTC().Truncate(time.Second),
		UpdatedAt:   created.UTC().Truncate(time.Second),
	}
	require.NoError(t, store.DocumentStore().SaveDocument(context.Background(), doc))
	return doc
}

// ==================== Store Creation Tests ====================

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	createTestDocument(t, first, "doc-1", time.Now())
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var version int
	require.NoError(t, second.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	doc, err := second.DocumentStore().GetDocument(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1.txt", doc.Filename)
}

func TestNewStore_InvalidDirectory(t *testing.T) {
	_, err := NewStore("/dev/null/lexis")

	assert.Error(t, err)
}

// ==================== Document Store Tests ====================

func TestDocumentStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	want := createTestDocument(t, store, "doc-1", time.Now())

	got, err := store.DocumentStore().GetDocument(context.Background(), "doc-1")

	require.NoError(t, err)
	assert.Equal(t, want.Filename, got.Filename)
	assert.Equal(t, want.Text, got.Text)
	assert.Equal(t, want.RawText, got.RawText)
	assert.Equal(t, want.Fingerprint, got.Fingerprint)
	assert.Equal(t, domain.StatusIngested, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
}

func TestDocumentStore_SaveDocument_UpdatesStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	doc := createTestDocument(t, store, "doc-1", time.Now())

	doc.Status = domain.StatusFailed
	doc.Error = "embedding service unavailable"
	require.NoError(t, store.DocumentStore().SaveDocument(ctx, doc))

	got, err := store.DocumentStore().GetDocument(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, got.Status)
	assert.Equal(t, "embedding service unavailable", got.Error)
}

func TestDocumentStore_GetDocument_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.DocumentStore().GetDocument(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_ListDocuments_NewestFirst(t *testing.T) {
	store := setupTestStore(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	createTestDocument(t, store, "old", base)
	createTestDocument(t, store, "new", base.Add(48*time.Hour))
	createTestDocument(t, store, "mid", base.Add(time.Hour))

	docs, err := store.DocumentStore().ListDocuments(context.Background())

	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{docs[0].ID, docs[1].ID, docs[2].ID})
}

func TestDocumentStore_ListDocuments_Empty(t *testing.T) {
	store := setupTestStore(t)

	docs, err := store.DocumentStore().ListDocuments(context.Background())

	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestDocumentStore_ReplaceChunks_RoundTripsEmbeddings(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())

	chunks := []domain.Chunk{
		{ID: "c0", DocumentID: "doc-1", Seq: 0, Start: 0, End: 10, Content: "1. TERM abc", Section: "1. TERM",
			Embedding: []float32{0.25, -1.5, 3}},
		{ID: "c1", DocumentID: "doc-1", Seq: 1, Start: 8, End: 20, Content: "bc def", Section: ""},
	}
	require.NoError(t, store.DocumentStore().ReplaceChunks(ctx, "doc-1", chunks))

	got, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, chunks[0], got[0])
	assert.Equal(t, "c1", got[1].ID)
	assert.Nil(t, got[1].Embedding)
}

func TestDocumentStore_ReplaceChunks_Replaces(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	docs := store.DocumentStore()

	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{
		{ID: "a", Seq: 0}, {ID: "b", Seq: 1}, {ID: "c", Seq: 2},
	}))
	require.NoError(t, docs.ReplaceChunks(ctx, "doc-1", []domain.Chunk{{ID: "z", Seq: 0}}))

	got, err := docs.GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "doc-1", got[0].DocumentID)
}

func TestDocumentStore_ReplaceChunks_UnknownDocument(t *testing.T) {
	store := setupTestStore(t)

	err := store.DocumentStore().ReplaceChunks(context.Background(), "missing", []domain.Chunk{{ID: "a"}})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDocumentStore_DeleteDocument_Cascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	require.NoError(t, store.DocumentStore().ReplaceChunks(ctx, "doc-1", []domain.Chunk{{ID: "a", Seq: 0}}))
	require.NoError(t, store.AnalysisStore().SaveAnalysis(ctx, domain.NewAnalysisResult("an-1", "doc-1", time.Now())))
	require.NoError(t, store.ConversationStore().AppendTurn(ctx, "doc-1", domain.Turn{Seq: 0, Question: "q", Answer: "a"}))

	require.NoError(t, store.DocumentStore().DeleteDocument(ctx, "doc-1"))

	chunks, err := store.DocumentStore().GetChunks(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, chunks)
	_, err = store.AnalysisStore().LatestAnalysis(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	conv, err := store.ConversationStore().GetConversation(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, conv.Turns)
}

// ==================== Analysis Store Tests ====================

func TestAnalysisStore_LatestWins(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	now := time.Now()

	first := domain.NewAnalysisResult("an-1", "doc-1", now)
	second := domain.NewAnalysisResult("an-2", "doc-1", now)
	second.DocumentType = domain.DocumentTypeEmployment
	second.Summary = "An employment contract."
	second.Parties = []string{"Acme Widgets Inc.", "Jane Doe"}
	second.KeyTerms = []domain.KeyTerm{{Term: "Termination", Definition: "Thirty days notice."}}
	second.Risks = []domain.Risk{{Title: "Non-Compete", Level: domain.RiskHigh, Description: "Broad restriction."}}
	second.Fragments[domain.FragmentType] = domain.FragmentOK
	second.Fragments[domain.FragmentDates] = domain.FragmentAbsent

	require.NoError(t, store.AnalysisStore().SaveAnalysis(ctx, first))
	require.NoError(t, store.AnalysisStore().SaveAnalysis(ctx, second))

	got, err := store.AnalysisStore().LatestAnalysis(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "an-2", got.ID)
	assert.Equal(t, domain.DocumentTypeEmployment, got.DocumentType)
	assert.Equal(t, second.Parties, got.Parties)
	assert.Equal(t, second.KeyTerms, got.KeyTerms)
	assert.Equal(t, second.Risks, got.Risks)
	assert.Equal(t, []string{}, got.Dates)
	assert.Equal(t, domain.FragmentAbsent, got.Fragments[domain.FragmentDates])
}

func TestAnalysisStore_NotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.AnalysisStore().LatestAnalysis(context.Background(), "doc-1")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalysisStore_DeleteAnalyses(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	require.NoError(t, store.AnalysisStore().SaveAnalysis(ctx, domain.NewAnalysisResult("an-1", "doc-1", time.Now())))

	require.NoError(t, store.AnalysisStore().DeleteAnalyses(ctx, "doc-1"))

	_, err := store.AnalysisStore().LatestAnalysis(ctx, "doc-1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ==================== Conversation Store Tests ====================

func TestConversationStore_AppendAndGet(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	asked := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	conv := store.ConversationStore()

	require.NoError(t, conv.AppendTurn(ctx, "doc-1", domain.Turn{
		Seq: 0, Question: "How can the contract be terminated?", Answer: "With thirty days notice.",
		ChunkIDs: []string{"c2", "c3"}, AskedAt: asked,
	}))
	require.NoError(t, conv.AppendTurn(ctx, "doc-1", domain.Turn{Seq: 1, Question: "Salary?", Answer: "$85,000."}))

	got, err := conv.GetConversation(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got.Turns, 2)
	assert.Equal(t, []string{"c2", "c3"}, got.Turns[0].ChunkIDs)
	assert.True(t, asked.Equal(got.Turns[0].AskedAt))
	assert.Equal(t, []string{}, got.Turns[1].ChunkIDs)
}

func TestConversationStore_RejectsGap(t *testing.T) {
	store := setupTestStore(t)
	createTestDocument(t, store, "doc-1", time.Now())

	err := store.ConversationStore().AppendTurn(context.Background(), "doc-1", domain.Turn{Seq: 1})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConversationStore_ConcurrentAppendsKeepOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	createTestDocument(t, store, "doc-1", time.Now())
	conv := store.ConversationStore()

	// Only one writer per Seq can win; the rest see an out-of-order error.
	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = conv.AppendTurn(ctx, "doc-1", domain.Turn{Seq: 0, Question: "q"})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		}
	}
	assert.Equal(t, 1, succeeded)
	got, err := conv.GetConversation(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, got.Turns, 1)
}

// ==================== Helper Tests ====================

func TestFloat32BytesRoundTrip(t *testing.T) {
	in := []float32{0, 1, -1, 3.14159, 1e-7}

	blob := float32SliceToBytes(in)

	assert.Len(t, blob, 20)
	assert.Equal(t, in, bytesToFloat32Slice(blob))
	assert.Nil(t, float32SliceToBytes(nil))
	assert.Nil(t, bytesToFloat32Slice(nil))
}

func TestFloat32Bytes_LittleEndian(t *testing.T) {
	// 1.0 is 0x3F800000.
	assert.Equal(t, []byte{0x00, 0x00, 0x80, 0x3F}, float32SliceToBytes([]float32{1}))
}

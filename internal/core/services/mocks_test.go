package services

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	vectormemory "github.com/custodia-labs/lexis/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/extractors"
	"github.com/custodia-labs/lexis/internal/postprocessors"
	"github.com/custodia-labs/lexis/internal/postprocessors/normaliser"
)

const mockDims = 64

// mockEmbedding hashes lowercase words into a fixed-size count vector, so
// identical texts embed identically and related texts overlap.
type mockEmbedding struct {
	mu         sync.Mutex
	err        error
	constant   bool
	gate       chan struct{}
	batchCalls int
	calls      int
}

func (m *mockEmbedding) vector(text string) []float32 {
	v := make([]float32, mockDims)
	if m.constant {
		for i := range v {
			v[i] = 1
		}
		return v
	}
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		h := fnv.New32a()
		_, _ = h.Write([]byte(w))
		v[h.Sum32()%mockDims]++
	}
	return v
}

func (m *mockEmbedding) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return m.vector(text), nil
}

func (m *mockEmbedding) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.mu.Lock()
	m.batchCalls++
	err, gate := m.err, m.gate
	m.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *mockEmbedding) BatchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batchCalls
}

func (m *mockEmbedding) Dimensions() int            { return mockDims }
func (m *mockEmbedding) ModelName() string          { return "mock-embed" }
func (m *mockEmbedding) Ping(context.Context) error { return m.err }
func (m *mockEmbedding) Close() error               { return nil }

// mockCompletion answers prompts with a scripted function and records
// every call.
type mockCompletion struct {
	mu      sync.Mutex
	respond func(call int, prompt string, opts driven.CompletionOptions) (string, error)
	prompts []string
	pingErr error
	// hang makes every call block until its context ends.
	hang bool
}

func (m *mockCompletion) Complete(ctx context.Context, prompt string, opts driven.CompletionOptions) (string, error) {
	m.mu.Lock()
	call := len(m.prompts)
	m.prompts = append(m.prompts, prompt)
	respond, hang := m.respond, m.hang
	m.mu.Unlock()

	if hang {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if respond == nil {
		return "", nil
	}
	return respond(call, prompt, opts)
}

// set replaces the script and clears the recorded calls.
func (m *mockCompletion) set(respond func(int, string, driven.CompletionOptions) (string, error)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.respond = respond
	m.prompts = nil
}

func (m *mockCompletion) setHang(hang bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hang = hang
	m.prompts = nil
}

func (m *mockCompletion) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

func (m *mockCompletion) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

func (m *mockCompletion) ModelName() string          { return "mock-llm" }
func (m *mockCompletion) Ping(context.Context) error { return m.pingErr }
func (m *mockCompletion) Close() error               { return nil }

// testEnv wires every service against in-memory adapters.
type testEnv struct {
	docs     *memory.DocumentStore
	analyses *memory.AnalysisStore
	convs    *memory.ConversationStore
	vectors  *vectormemory.Index
	embed    *mockEmbedding
	llm      *mockCompletion
	prompts  *file.PromptStore

	documents *DocumentService
	indexer   *IndexService
	analysis  *AnalysisService
	qa        *QAService
	suggest   *SuggestionService
}

// envOption adjusts settings before the services are built.
type envOption func(*domain.AppSettings)

func withHeuristicFallback() envOption {
	return func(s *domain.AppSettings) { s.Analysis.HeuristicFallback = true }
}

// testChunkSize keeps sampleText at several chunks.
const testChunkSize = 300

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	settings := domain.DefaultAppSettings()
	settings.Engine.RetryBackoff = 5 * time.Millisecond
	settings.Pipeline.ProcessorConfigs["chunker"] = map[string]any{"chunk_size": testChunkSize, "overlap": 60}
	for _, opt := range opts {
		opt(&settings)
	}

	prompts, err := file.NewPromptStore(t.TempDir())
	require.NoError(t, err)

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.FromConfig(registry, settings.Pipeline)
	require.NoError(t, err)

	env := &testEnv{
		docs:     memory.NewDocumentStore(),
		analyses: memory.NewAnalysisStore(),
		convs:    memory.NewConversationStore(),
		vectors:  vectormemory.NewIndex(),
		embed:    &mockEmbedding{},
		llm:      &mockCompletion{},
		prompts:  prompts,
	}

	env.documents = NewDocumentService(env.docs, env.analyses, env.convs, env.vectors,
		extractors.NewDefaultRegistry(""), normaliser.New())
	env.indexer = NewIndexService(env.docs, env.vectors, env.embed, pipeline, IndexConfig{
		BatchSize:   settings.Embedding.BatchSize,
		TopK:        settings.Retrieval.TopK,
		CallTimeout: settings.Engine.CallTimeout,
	})
	env.analysis = NewAnalysisService(env.docs, env.analyses, env.indexer, env.llm, prompts, AnalysisConfig{
		Analysis: settings.Analysis,
		LLM:      settings.LLM,
		Engine:   settings.Engine,
	})
	env.qa = NewQAService(env.docs, env.convs, env.indexer, env.llm, prompts, QAConfig{
		QA:        settings.QA,
		Retrieval: settings.Retrieval,
		LLM:       settings.LLM,
		Engine:    settings.Engine,
	})
	env.suggest = NewSuggestionService(env.docs, env.analyses, env.llm, prompts, settings.LLM, settings.Engine)
	env.documents.SetQueueReleaser(env.qa)

	return env
}

// upload stores text as a plain-text document.
func (e *testEnv) upload(t *testing.T, text string) *domain.Document {
	t.Helper()
	doc, err := e.documents.Upload(context.Background(), domain.Upload{
		Filename: "contract.txt",
		Content:  []byte(text),
	})
	require.NoError(t, err)
	return doc
}

// analyzed uploads text and runs analysis with a response that fills
// every fragment.
func (e *testEnv) analyzed(t *testing.T, text string) *domain.Document {
	t.Helper()
	doc := e.upload(t, text)

	e.llm.set(func(_ int, prompt string, _ driven.CompletionOptions) (string, error) {
		return genericFragmentResponse(prompt), nil
	})
	_, err := e.analysis.Analyze(context.Background(), doc.ID)
	require.NoError(t, err)
	e.llm.set(nil)

	got, err := e.docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	return got
}

// genericFragmentResponse answers any fragment prompt with a small valid value.
func genericFragmentResponse(prompt string) string {
	switch {
	case strings.Contains(prompt, `"document_type"`):
		return `{"document_type": "Service Agreement"}`
	case strings.Contains(prompt, `"summary"`):
		return `{"summary": "A services contract."}`
	case strings.Contains(prompt, `"parties"`):
		return `{"parties": ["Acme Corp", "Jane Doe"]}`
	case strings.Contains(prompt, `"key_terms"`):
		return `{"key_terms": [{"term": "Services", "definition": "The work performed."}]}`
	case strings.Contains(prompt, `"financial_terms"`):
		return `{"financial_terms": ["$5,000 per month"]}`
	case strings.Contains(prompt, `"dates"`):
		return `{"dates": ["January 1, 2024"]}`
	case strings.Contains(prompt, `"risks"`):
		return `{"risks": [{"title": "Broad indemnity", "level": "High", "description": "Uncapped."}]}`
	default:
		return "{}"
	}
}

// sampleText is a plain agreement long enough to produce several chunks
// with the default chunk size.
var sampleText = strings.Join([]string{
	"This Consulting Services Agreement is entered into between Acme Corp and Jane Doe on January 1, 2024.",
	"The consultant shall provide software architecture reviews, code audits and written recommendations to the client each month during the term of this agreement. The consultant decides the means and methods of performing the work and supplies their own equipment.",
	"The client shall pay the consultant a monthly retainer of $5,000 within fifteen days of receiving an invoice. Late payments accrue interest at one percent per month. Expenses above $500 require written approval before they are incurred.",
	"Either party may end this agreement by giving thirty days written notice to the other party. The client may end the agreement immediately if the consultant materially breaches a confidentiality obligation and fails to cure the breach within ten days.",
	"All reports, diagrams and source code produced under this agreement become the property of the client upon full payment. The consultant keeps ownership of pre-existing tools and grants the client a perpetual licence to use them as delivered.",
	"The consultant shall indemnify the client against third party claims arising from the consultant's negligence. Neither party is liable for indirect or consequential damages. Total liability is capped at the fees paid in the preceding twelve months.",
	"This agreement is governed by the laws of the State of New York. Disputes shall be resolved by binding arbitration in New York City under the commercial rules then in effect.",
}, "\n\n")

package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure QAService implements the interfaces.
var (
	_ driving.QAService = (*QAService)(nil)
	_ QueueReleaser     = (*QAService)(nil)
)

// QAConfig tunes the question-answering engine.
type QAConfig struct {
	QA        domain.QASettings
	Retrieval domain.RetrievalSettings
	LLM       domain.LLMSettings
	Engine    domain.EngineSettings
}

// QAService answers questions from retrieved chunks. Each document has a
// FIFO queue drained by one worker, so turns are recorded in submission
// order.
type QAService struct {
	docStore   driven.DocumentStore
	convStore  driven.ConversationStore
	indexer    driving.IndexService
	completion driven.CompletionService
	prompts    driven.PromptStore
	cfg        QAConfig
	policy     callPolicy
	now        func() time.Time

	mu     sync.Mutex
	queues map[string]*questionQueue
}

type qaReply struct {
	answer *domain.Answer
	err    error
}

type qaJob struct {
	ctx      context.Context
	question string
	askedAt  time.Time
	reply    chan qaReply
}

type questionQueue struct {
	mu       sync.Mutex
	pending  []*qaJob
	running  bool
	released bool
}

// NewQAService creates a new question-answering service.
func NewQAService(
	docStore driven.DocumentStore,
	convStore driven.ConversationStore,
	indexer driving.IndexService,
	completion driven.CompletionService,
	prompts driven.PromptStore,
	cfg QAConfig,
) *QAService {
	defaults := domain.DefaultAppSettings()
	if cfg.QA.MaxContextChars <= 0 {
		cfg.QA.MaxContextChars = defaults.QA.MaxContextChars
	}
	if cfg.QA.HistoryTurns < 0 {
		cfg.QA.HistoryTurns = 0
	}
	if cfg.Retrieval.TopK <= 0 {
		cfg.Retrieval.TopK = defaults.Retrieval.TopK
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = defaults.LLM.MaxTokens
	}

	return &QAService{
		docStore:   docStore,
		convStore:  convStore,
		indexer:    indexer,
		completion: completion,
		prompts:    prompts,
		cfg:        cfg,
		policy:     newCallPolicy(cfg.Engine),
		now:        time.Now,
		queues:     make(map[string]*questionQueue),
	}
}

// Ask answers a question about an analysed document. If ctx ends while
// the question is still queued it is skipped; once started it runs to
// completion and records its turn even though the caller is gone.
func (s *QAService) Ask(ctx context.Context, documentID, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != domain.StatusAnalyzed {
		return nil, fmt.Errorf("%w: document %s is %s; analyze it before asking questions",
			domain.ErrInvalidState, documentID, doc.Status)
	}

	job := &qaJob{
		ctx:      ctx,
		question: question,
		askedAt:  s.now(),
		reply:    make(chan qaReply, 1),
	}
	s.enqueue(documentID, job)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-job.reply:
		return r.answer, r.err
	}
}

// Conversation returns the ordered turns for a document.
func (s *QAService) Conversation(ctx context.Context, documentID string) (*domain.Conversation, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.convStore.GetConversation(ctx, documentID)
}

// Release drops a document's queue. Questions still waiting fail with
// domain.ErrNotFound; a question already being answered finishes.
func (s *QAService) Release(documentID string) {
	s.mu.Lock()
	q, ok := s.queues[documentID]
	delete(s.queues, documentID)
	s.mu.Unlock()
	if !ok {
		return
	}

	q.mu.Lock()
	pending := q.pending
	q.pending = nil
	q.released = true
	q.mu.Unlock()

	for _, job := range pending {
		job.reply <- qaReply{err: fmt.Errorf("%w: document %s was deleted", domain.ErrNotFound, documentID)}
	}
}

func (s *QAService) enqueue(documentID string, job *qaJob) {
	s.mu.Lock()
	q, ok := s.queues[documentID]
	if !ok {
		q = &questionQueue{}
		s.queues[documentID] = q
	}
	s.mu.Unlock()

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.released {
		job.reply <- qaReply{err: fmt.Errorf("%w: document %s was deleted", domain.ErrNotFound, documentID)}
		return
	}
	q.pending = append(q.pending, job)
	if !q.running {
		q.running = true
		go s.drain(documentID, q)
	}
}

// drain answers queued questions one at a time and exits when the queue
// is empty.
func (s *QAService) drain(documentID string, q *questionQueue) {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.running = false
			q.mu.Unlock()
			return
		}
		job := q.pending[0]
		q.pending = q.pending[1:]
		q.mu.Unlock()

		if err := job.ctx.Err(); err != nil {
			logger.Debug("Skipping abandoned question for %s", documentID)
			job.reply <- qaReply{err: err}
			continue
		}

		answer, err := s.answer(context.WithoutCancel(job.ctx), documentID, job.question, job.askedAt)
		job.reply <- qaReply{answer: answer, err: err}
	}
}

func (s *QAService) answer(ctx context.Context, documentID, question string, askedAt time.Time) (*domain.Answer, error) {
	if s.prompts == nil {
		return nil, fmt.Errorf("%w: no prompt store", domain.ErrConfigNotFound)
	}

	chunks, err := s.indexer.Query(ctx, documentID, question, s.cfg.Retrieval.TopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve context: %w", err)
	}
	sort.SliceStable(chunks, func(i, j int) bool { return chunks[i].Seq < chunks[j].Seq })

	conv, err := s.convStore.GetConversation(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	system, err := s.prompts.Load(driven.PromptQASystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}
	template, err := s.prompts.Load(driven.PromptQA)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	prompt := fmt.Sprintf(template,
		buildContext(chunks, s.cfg.QA.MaxContextChars),
		formatHistory(conv.Last(s.cfg.QA.HistoryTurns)),
		question,
	)
	opts := driven.CompletionOptions{
		SystemPrompt: system,
		MaxTokens:    s.cfg.LLM.MaxTokens,
		Temperature:  s.cfg.LLM.Temperature,
	}

	out, err := s.policy.complete(ctx, s.completion, prompt, opts, retryAlways)
	if err != nil {
		if errors.Is(err, domain.ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrAnswerUnavailable, err)
	}
	text := cleanModelText(out)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", domain.ErrAnswerUnavailable)
	}

	chunkIDs := make([]string, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ID
	}

	// The document may have been deleted while the model was answering.
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}

	turn := domain.Turn{
		Seq:      len(conv.Turns),
		Question: question,
		Answer:   text,
		ChunkIDs: chunkIDs,
		AskedAt:  askedAt,
	}
	if err := s.convStore.AppendTurn(ctx, documentID, turn); err != nil {
		return nil, fmt.Errorf("record turn: %w", err)
	}

	logger.Debug("Answered turn %d for %s from %d chunks", turn.Seq, documentID, len(chunks))
	return &domain.Answer{Text: text, ChunkIDs: chunkIDs, Turn: turn.Seq}, nil
}

// buildContext labels each chunk with its section and joins them in the
// order given, cut to maxChars runes.
func buildContext(chunks []domain.Chunk, maxChars int) string {
	var b strings.Builder
	for i, c := range chunks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		label := c.Section
		if label == "" {
			label = fmt.Sprintf("Passage %d", c.Seq+1)
		}
		fmt.Fprintf(&b, "[%s]\n%s", label, c.Content)
	}
	return truncateRunes(b.String(), maxChars)
}

func formatHistory(turns []domain.Turn) string {
	if len(turns) == 0 {
		return "None."
	}
	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s", t.Question, t.Answer)
	}
	return b.String()
}

package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// QueueReleaser drops any per-document work queue. The Q&A service
// implements it so that deleting a document also stops its worker.
type QueueReleaser interface {
	Release(documentID string)
}

// DocumentService ingests documents and manages their lifecycle.
type DocumentService struct {
	docStore      driven.DocumentStore
	analysisStore driven.AnalysisStore
	convStore     driven.ConversationStore
	vectorIndex   driven.VectorIndex
	extractors    driven.ExtractorRegistry
	normaliser    driven.TextNormaliser
	queues        QueueReleaser
	now           func() time.Time
}

// NewDocumentService creates a new document service.
func NewDocumentService(
	docStore driven.DocumentStore,
	analysisStore driven.AnalysisStore,
	convStore driven.ConversationStore,
	vectorIndex driven.VectorIndex,
	extractors driven.ExtractorRegistry,
	normaliser driven.TextNormaliser,
) *DocumentService {
	return &DocumentService{
		docStore:      docStore,
		analysisStore: analysisStore,
		convStore:     convStore,
		vectorIndex:   vectorIndex,
		extractors:    extractors,
		normaliser:    normaliser,
		now:           time.Now,
	}
}

// SetQueueReleaser sets the component whose queues are dropped on Delete.
func (s *DocumentService) SetQueueReleaser(q QueueReleaser) {
	s.queues = q
}

// Upload extracts and normalises the file and stores it as Ingested.
func (s *DocumentService) Upload(ctx context.Context, upload domain.Upload) (*domain.Document, error) {
	if len(upload.Content) == 0 {
		return nil, fmt.Errorf("%w: empty upload", domain.ErrInvalidInput)
	}
	filename := strings.TrimSpace(upload.Filename)
	if filename == "" {
		filename = "untitled"
	}

	mimeType := upload.MIMEType
	if mimeType == "" {
		mimeType = s.extractors.DetectMIMEType(filename, upload.Content)
	}
	logger.Debug("Upload %s: %d bytes, type %s", filename, upload.Size(), mimeType)

	raw, err := s.extractors.Extract(ctx, upload.Content, mimeType)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}

	text, err := s.normaliser.Normalise(raw)
	if err != nil {
		return nil, fmt.Errorf("normalise %s: %w", filename, err)
	}

	sum := sha256.Sum256([]byte(text))
	now := s.now()
	doc := &domain.Document{
		ID:          uuid.New().String(),
		Filename:    filename,
		MIMEType:    mimeType,
		RawText:     raw,
		Text:        text,
		Fingerprint: hex.EncodeToString(sum[:]),
		Status:      domain.StatusIngested,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Ingested %s as %s (%d chars)", filename, doc.ID, len([]rune(text)))
	return doc, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// List returns all documents, newest first.
func (s *DocumentService) List(ctx context.Context) ([]domain.Document, error) {
	return s.docStore.ListDocuments(ctx)
}

// Chunks returns a document's chunks in reading order.
func (s *DocumentService) Chunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.docStore.GetChunks(ctx, documentID)
}

// Delete removes a document with its chunks, index, analyses, conversation
// and question queue. The document row goes last so a partial failure can be
// retried.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return err
	}

	if s.queues != nil {
		s.queues.Release(documentID)
	}

	var errs []error
	if s.vectorIndex != nil {
		if err := s.vectorIndex.DeleteDocument(ctx, documentID); err != nil {
			errs = append(errs, fmt.Errorf("delete index: %w", err))
		}
	}
	if err := s.analysisStore.DeleteAnalyses(ctx, documentID); err != nil {
		errs = append(errs, fmt.Errorf("delete analyses: %w", err))
	}
	if err := s.convStore.DeleteConversation(ctx, documentID); err != nil {
		errs = append(errs, fmt.Errorf("delete conversation: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Deleted document %s", documentID)
	return nil
}

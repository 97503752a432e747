package mcp

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func TestServer_handleUpload(t *testing.T) {
	ctx := context.Background()

	t.Run("uploads text content", func(t *testing.T) {
		docs := &mockDocumentService{}
		ports := requiredPorts()
		ports.Document = docs
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleUpload(ctx, nil, UploadInput{Filename: "nda.txt", Content: "Mutual NDA text"})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "nda.txt", output.Filename)
		assert.Equal(t, "ingested", output.Status)
		assert.Equal(t, 15, output.Characters)
		require.NotNil(t, docs.uploaded)
		assert.Empty(t, docs.uploaded.MIMEType)
	})

	t.Run("decodes base64 content", func(t *testing.T) {
		docs := &mockDocumentService{}
		ports := requiredPorts()
		ports.Document = docs
		server, err := NewServer(ports)
		require.NoError(t, err)

		input := UploadInput{
			Filename:      "lease.pdf",
			ContentBase64: base64.StdEncoding.EncodeToString([]byte("%PDF-1.4 body")),
			MIMEType:      "application/pdf",
		}
		_, _, err = server.handleUpload(ctx, nil, input)

		require.NoError(t, err)
		require.NotNil(t, docs.uploaded)
		assert.Equal(t, []byte("%PDF-1.4 body"), docs.uploaded.Content)
		assert.Equal(t, "application/pdf", docs.uploaded.MIMEType)
	})

	t.Run("rejects invalid base64", func(t *testing.T) {
		server, err := NewServer(requiredPorts())
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{Filename: "a.pdf", ContentBase64: "***"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects missing content", func(t *testing.T) {
		server, err := NewServer(requiredPorts())
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{Filename: "a.txt"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("enforces the size limit", func(t *testing.T) {
		docs := &mockDocumentService{}
		ports := requiredPorts()
		ports.Document = docs
		ports.MaxUploadBytes = 8
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{Filename: "a.txt", Content: "more than eight bytes"})

		assert.ErrorIs(t, err, errUploadTooLarge)
		assert.Nil(t, docs.uploaded)
	})

	t.Run("returns error on upload failure", func(t *testing.T) {
		ports := requiredPorts()
		ports.Document = &mockDocumentService{err: domain.ErrEmptyDocument}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleUpload(ctx, nil, UploadInput{Filename: "scan.pdf", Content: "x"})

		assert.ErrorIs(t, err, domain.ErrEmptyDocument)
		assert.Contains(t, err.Error(), "uploading document")
	})
}

func TestServer_handleAnalyze(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the analysis", func(t *testing.T) {
		ports := requiredPorts()
		ports.Analysis = &mockAnalysisService{result: sampleAnalysis()}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleAnalyze(ctx, nil, DocumentInput{DocumentID: " doc-1 "})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.DocumentID)
		assert.Equal(t, "Non-Disclosure Agreement", output.DocumentType)
		assert.Equal(t, []string{"Acme Ltd", "Beta LLC"}, output.Parties)
		require.Len(t, output.KeyTerms, 1)
		assert.Equal(t, "Confidential Information", output.KeyTerms[0].Term)
		require.Len(t, output.Risks, 1)
		assert.Equal(t, "High", output.Risks[0].Level)
		assert.Empty(t, output.Dates)
		assert.NotNil(t, output.Dates)
		assert.Equal(t, "ok", output.Fragments["summary"])
	})

	t.Run("returns error on analysis failure", func(t *testing.T) {
		ports := requiredPorts()
		ports.Analysis = &mockAnalysisService{err: domain.ErrAnalysisFailed}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleAnalyze(ctx, nil, DocumentInput{DocumentID: "doc-1"})

		assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	})
}

func TestServer_handleQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the answer", func(t *testing.T) {
		qa := &mockQAService{answer: &domain.Answer{Text: "Thirty days.", ChunkIDs: []string{"doc-1-0003"}, Turn: 2}}
		ports := requiredPorts()
		ports.QA = qa
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQuestion(ctx, nil, QuestionInput{DocumentID: "doc-1", Question: "Notice period?"})

		require.NoError(t, err)
		assert.Equal(t, "Thirty days.", output.Answer)
		assert.Equal(t, []string{"doc-1-0003"}, output.ChunkIDs)
		assert.Equal(t, 2, output.Turn)
		assert.Equal(t, "Notice period?", qa.question)
	})

	t.Run("nil chunk IDs become empty", func(t *testing.T) {
		ports := requiredPorts()
		ports.QA = &mockQAService{answer: &domain.Answer{Text: "No."}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleQuestion(ctx, nil, QuestionInput{DocumentID: "doc-1", Question: "Q?"})

		require.NoError(t, err)
		assert.NotNil(t, output.ChunkIDs)
	})

	t.Run("passes through state errors", func(t *testing.T) {
		ports := requiredPorts()
		ports.QA = &mockQAService{err: domain.ErrInvalidState}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleQuestion(ctx, nil, QuestionInput{DocumentID: "doc-1", Question: "Q?"})

		assert.ErrorIs(t, err, domain.ErrInvalidState)
	})

	t.Run("unavailable without QA service", func(t *testing.T) {
		server, err := NewServer(requiredPorts())
		require.NoError(t, err)

		_, _, err = server.handleQuestion(ctx, nil, QuestionInput{DocumentID: "doc-1", Question: "Q?"})

		assert.ErrorIs(t, err, errServiceUnavailable)
	})
}

func TestServer_handleGeneratePrompts(t *testing.T) {
	ctx := context.Background()

	t.Run("returns questions", func(t *testing.T) {
		ports := requiredPorts()
		ports.Suggestion = &mockSuggestionService{questions: []string{"Who are the parties?", "When does it end?"}}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, output, err := server.handleGeneratePrompts(ctx, nil, DocumentInput{DocumentID: "doc-1"})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "Who are the parties?", output.Questions[0])
	})

	t.Run("returns error on failure", func(t *testing.T) {
		ports := requiredPorts()
		ports.Suggestion = &mockSuggestionService{err: errors.New("store offline")}
		server, err := NewServer(ports)
		require.NoError(t, err)

		_, _, err = server.handleGeneratePrompts(ctx, nil, DocumentInput{DocumentID: "doc-1"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "store offline")
	})
}

func TestServer_handleHealth(t *testing.T) {
	ctx := context.Background()

	report := domain.HealthReport{
		Status:     "degraded",
		Components: map[string]bool{domain.ComponentEmbedding: true, domain.ComponentCompletion: false},
		Details:    map[string]string{domain.ComponentCompletion: "connection refused"},
	}
	ports := requiredPorts()
	ports.Health = &mockHealthService{report: report}
	server, err := NewServer(ports)
	require.NoError(t, err)

	_, output, err := server.handleHealth(ctx, nil, HealthInput{})

	require.NoError(t, err)
	assert.Equal(t, "degraded", output.Status)
	assert.False(t, output.Components[domain.ComponentCompletion])
	assert.Equal(t, "connection refused", output.Details[domain.ComponentCompletion])
}

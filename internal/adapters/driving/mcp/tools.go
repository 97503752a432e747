package mcp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// UploadInput is the input schema for the upload tool.
type UploadInput struct {
	Filename      string `json:"filename" jsonschema:"file name including extension, used to detect the format"`
	Content       string `json:"content,omitempty" jsonschema:"document text, for plain text, markdown or html files"`
	ContentBase64 string `json:"content_base64,omitempty" jsonschema:"base64 encoded file bytes, for pdf, docx or doc files"`
	MIMEType      string `json:"mime_type,omitempty" jsonschema:"content type; detected from the file name when empty"`
}

// UploadOutput is the output schema for the upload tool.
type UploadOutput struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	MIMEType   string `json:"mime_type"`
	Status     string `json:"status"`
	Characters int    `json:"characters"`
}

// DocumentInput identifies a document for analyze and generate_prompts.
type DocumentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document ID returned by upload"`
}

// AnalyzeOutput is the output schema for the analyze tool.
type AnalyzeOutput struct {
	DocumentID     string            `json:"document_id"`
	DocumentType   string            `json:"document_type"`
	Summary        string            `json:"summary"`
	Parties        []string          `json:"parties"`
	KeyTerms       []KeyTermOutput   `json:"key_terms"`
	FinancialTerms []string          `json:"financial_terms"`
	Dates          []string          `json:"dates"`
	Risks          []RiskOutput      `json:"risks"`
	Fragments      map[string]string `json:"fragments"`
}

// KeyTermOutput is a key term with its meaning.
type KeyTermOutput struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// RiskOutput is a single risk finding.
type RiskOutput struct {
	Title       string `json:"title"`
	Level       string `json:"level"`
	Description string `json:"description"`
}

// QuestionInput is the input schema for the question tool.
type QuestionInput struct {
	DocumentID string `json:"document_id" jsonschema:"the analysed document to ask about"`
	Question   string `json:"question" jsonschema:"the question to answer from the document"`
}

// QuestionOutput is the output schema for the question tool.
type QuestionOutput struct {
	Answer   string   `json:"answer"`
	ChunkIDs []string `json:"chunk_ids"`
	Turn     int      `json:"turn"`
}

// PromptsOutput is the output schema for the generate_prompts tool.
type PromptsOutput struct {
	Questions []string `json:"questions"`
	Count     int      `json:"count"`
}

// HealthInput is the (empty) input schema for the health tool.
type HealthInput struct{}

// HealthOutput is the output schema for the health tool.
type HealthOutput struct {
	Status     string            `json:"status"`
	Components map[string]bool   `json:"components"`
	Details    map[string]string `json:"details,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "upload",
		Description: "Upload a legal document (pdf, docx, doc, txt, md, html) and extract its text",
	}, s.handleUpload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze",
		Description: "Analyse an uploaded document: type, summary, parties, key terms, financial terms, dates and risks",
	}, s.handleAnalyze)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "question",
		Description: "Answer a question grounded in an analysed document",
	}, s.handleQuestion)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "generate_prompts",
		Description: "Suggest follow-up questions worth asking about a document",
	}, s.handleGeneratePrompts)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "health",
		Description: "Report whether the embedding and completion services are reachable",
	}, s.handleHealth)
}

// handleUpload handles the upload tool invocation.
func (s *Server) handleUpload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UploadInput,
) (*mcp.CallToolResult, UploadOutput, error) {
	content, err := decodeUpload(input)
	if err != nil {
		return nil, UploadOutput{}, err
	}
	if limit := s.ports.MaxUploadBytes; limit > 0 && int64(len(content)) > limit {
		return nil, UploadOutput{}, fmt.Errorf("%w: %d bytes (limit %d)", errUploadTooLarge, len(content), limit)
	}

	doc, err := s.ports.Document.Upload(ctx, domain.Upload{
		Filename: input.Filename,
		MIMEType: input.MIMEType,
		Content:  content,
	})
	if err != nil {
		return nil, UploadOutput{}, fmt.Errorf("uploading document: %w", err)
	}

	return nil, UploadOutput{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		MIMEType:   doc.MIMEType,
		Status:     doc.Status.String(),
		Characters: len([]rune(doc.Text)),
	}, nil
}

// handleAnalyze handles the analyze tool invocation.
func (s *Server) handleAnalyze(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, AnalyzeOutput, error) {
	result, err := s.ports.Analysis.Analyze(ctx, strings.TrimSpace(input.DocumentID))
	if err != nil {
		return nil, AnalyzeOutput{}, fmt.Errorf("analysing document: %w", err)
	}
	return nil, toAnalyzeOutput(result), nil
}

// handleQuestion handles the question tool invocation.
func (s *Server) handleQuestion(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input QuestionInput,
) (*mcp.CallToolResult, QuestionOutput, error) {
	if s.ports.QA == nil {
		return nil, QuestionOutput{}, fmt.Errorf("question: %w", errServiceUnavailable)
	}

	answer, err := s.ports.QA.Ask(ctx, strings.TrimSpace(input.DocumentID), input.Question)
	if err != nil {
		return nil, QuestionOutput{}, fmt.Errorf("answering question: %w", err)
	}

	chunkIDs := answer.ChunkIDs
	if chunkIDs == nil {
		chunkIDs = []string{}
	}
	return nil, QuestionOutput{Answer: answer.Text, ChunkIDs: chunkIDs, Turn: answer.Turn}, nil
}

// handleGeneratePrompts handles the generate_prompts tool invocation.
func (s *Server) handleGeneratePrompts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentInput,
) (*mcp.CallToolResult, PromptsOutput, error) {
	if s.ports.Suggestion == nil {
		return nil, PromptsOutput{}, fmt.Errorf("generate_prompts: %w", errServiceUnavailable)
	}

	questions, err := s.ports.Suggestion.Suggest(ctx, strings.TrimSpace(input.DocumentID), nil)
	if err != nil {
		return nil, PromptsOutput{}, fmt.Errorf("generating prompts: %w", err)
	}
	return nil, PromptsOutput{Questions: questions, Count: len(questions)}, nil
}

// handleHealth handles the health tool invocation.
func (s *Server) handleHealth(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ HealthInput,
) (*mcp.CallToolResult, HealthOutput, error) {
	if s.ports.Health == nil {
		return nil, HealthOutput{}, fmt.Errorf("health: %w", errServiceUnavailable)
	}

	report := s.ports.Health.Check(ctx)
	return nil, HealthOutput{
		Status:     report.Status,
		Components: report.Components,
		Details:    report.Details,
	}, nil
}

// decodeUpload returns the raw bytes of an upload. Base64 content wins
// when both fields are set.
func decodeUpload(input UploadInput) ([]byte, error) {
	if input.ContentBase64 != "" {
		data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(input.ContentBase64))
		if err != nil {
			return nil, fmt.Errorf("%w: content_base64 is not valid base64", domain.ErrInvalidInput)
		}
		return data, nil
	}
	if input.Content == "" {
		return nil, fmt.Errorf("%w: content or content_base64 is required", domain.ErrInvalidInput)
	}
	return []byte(input.Content), nil
}

func toAnalyzeOutput(r *domain.AnalysisResult) AnalyzeOutput {
	out := AnalyzeOutput{
		DocumentID:     r.DocumentID,
		DocumentType:   r.DocumentType.String(),
		Summary:        r.Summary,
		Parties:        r.Parties,
		KeyTerms:       make([]KeyTermOutput, len(r.KeyTerms)),
		FinancialTerms: r.FinancialTerms,
		Dates:          r.Dates,
		Risks:          make([]RiskOutput, len(r.Risks)),
		Fragments:      make(map[string]string, len(r.Fragments)),
	}
	for i, kt := range r.KeyTerms {
		out.KeyTerms[i] = KeyTermOutput(kt)
	}
	for i, risk := range r.Risks {
		out.Risks[i] = RiskOutput{Title: risk.Title, Level: risk.Level.String(), Description: risk.Description}
	}
	for f, state := range r.Fragments {
		out.Fragments[string(f)] = string(state)
	}
	return out
}

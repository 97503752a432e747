package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// URIScheme is the custom URI scheme for Lexis resources.
	uriScheme = "lexis://"

	documentsPrefix = uriScheme + "documents/"
)

// Document sub-resources.
const (
	subContent      = ""
	subAnalysis     = "analysis"
	subConversation = "conversation"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for listing documents.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "List of all uploaded documents with their status",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	// Template for normalised document text.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsPrefix + "{documentId}",
		Name:        "document-content",
		Description: "Normalised text of a specific document",
		MIMEType:    "text/plain",
	}, s.handleDocumentContentResource)

	// Template for the latest analysis.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsPrefix + "{documentId}/analysis",
		Name:        "document-analysis",
		Description: "Latest structured analysis of a document",
		MIMEType:    "application/json",
	}, s.handleAnalysisResource)

	// Template for the question history.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: documentsPrefix + "{documentId}/conversation",
		Name:        "document-conversation",
		Description: "Questions asked about a document and their answers",
		MIMEType:    "application/json",
	}, s.handleConversationResource)
}

// handleDocumentsResource returns a list of all uploaded documents.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	// Build simplified document list.
	type docInfo struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		MIMEType string `json:"mime_type"`
		Status   string `json:"status"`
		Error    string `json:"error,omitempty"`
	}

	infos := make([]docInfo, len(docs))
	for i := range docs {
		infos[i] = docInfo{
			ID:       docs[i].ID,
			Filename: docs[i].Filename,
			MIMEType: docs[i].MIMEType,
			Status:   docs[i].Status.String(),
			Error:    docs[i].Error,
		}
	}

	return jsonResult(req.Params.URI, infos, "documents")
}

// handleDocumentContentResource returns the normalised text of a document.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, sub := parseDocumentURI(req.Params.URI)
	if docID == "" || sub != subContent {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Document.Get(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting document: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Text,
		}},
	}, nil
}

// handleAnalysisResource returns the latest analysis of a document.
func (s *Server) handleAnalysisResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	docID, sub := parseDocumentURI(req.Params.URI)
	if docID == "" || sub != subAnalysis {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	result, err := s.ports.Analysis.Latest(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting analysis: %w", err)
	}

	return jsonResult(req.Params.URI, toAnalyzeOutput(result), "analysis")
}

// handleConversationResource returns the question history of a document.
func (s *Server) handleConversationResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.QA == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	docID, sub := parseDocumentURI(req.Params.URI)
	if docID == "" || sub != subConversation {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	conv, err := s.ports.QA.Conversation(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("getting conversation: %w", err)
	}

	return jsonResult(req.Params.URI, conv, "conversation")
}

func jsonResult(uri string, v any, what string) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", what, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// parseDocumentURI splits a URI like lexis://documents/{documentId}/analysis
// into the document ID and the sub-resource name ("" for the text itself).
func parseDocumentURI(uri string) (docID, sub string) {
	if !strings.HasPrefix(uri, documentsPrefix) {
		return "", ""
	}

	rest := strings.TrimPrefix(uri, documentsPrefix)
	docID, sub, _ = strings.Cut(rest, "/")
	return docID, sub
}

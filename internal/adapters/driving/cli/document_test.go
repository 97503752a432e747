package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Document Command Tests

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document", documentCmd.Use)
}

func TestDocumentCmd_Short(t *testing.T) {
	assert.Equal(t, "Manage uploaded documents", documentCmd.Short)
}

func TestDocumentCmd_HasSubcommands(t *testing.T) {
	commands := documentCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "content")
	assert.Contains(t, commandNames, "chunks")
	assert.Contains(t, commandNames, "history")
	assert.Contains(t, commandNames, "delete")
}

// Document List Tests

func TestDocumentListCmd_RejectsArgs(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "list", "extra"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestDocumentListCmd_ListsDocuments(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Documents:")
	assert.Contains(t, buf.String(), "doc-1")
	assert.Contains(t, buf.String(), "nda.txt")
	assert.Contains(t, buf.String(), "analyzed")
	assert.Contains(t, buf.String(), "Total: 1 documents")
}

func TestDocumentListCmd_Empty(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.docs.docs = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No documents uploaded yet")
}

// Document Get Tests

func TestDocumentGetCmd_Use(t *testing.T) {
	assert.Equal(t, "get [doc-id]", documentGetCmd.Use)
}

func TestDocumentGetCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "get"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentGetCmd_ShowsAnalysisSummary(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "get", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Document: doc-1")
	assert.Contains(t, buf.String(), "nda.txt")
	assert.Contains(t, buf.String(), "ab12cd34")
	assert.Contains(t, buf.String(), "Non-Disclosure Agreement")
	assert.Contains(t, buf.String(), "1 high, 0 medium, 1 low")
}

func TestDocumentGetCmd_ShowsFailure(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	doc := sampleDocument()
	doc.Status = domain.StatusFailed
	doc.Error = "embedding service unavailable"
	svc.docs.docs = []domain.Document{doc}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "get", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Error:       embedding service unavailable")
	assert.NotContains(t, buf.String(), "Document type")
}

func TestDocumentGetCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "get", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Document Content Tests

func TestDocumentContentCmd_PrintsText(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "content", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, ndaText+"\n", buf.String())
}

// Document Chunks Tests

func TestDocumentChunksCmd_ListsPassages(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "chunks", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "[1] doc-1-0000 (chars 0-120) Preamble")
	assert.Contains(t, buf.String(), "[2] doc-1-0001 (chars 100-230)")
	assert.Contains(t, buf.String(), "Total: 2 passages")
}

func TestDocumentChunksCmd_NotIndexed(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.docs.chunks = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "chunks", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No passages yet")
}

// Document History Tests

func TestDocumentHistoryCmd_PrintsTurns(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.qa.conv = &domain.Conversation{
		DocumentID: "doc-1",
		Turns: []domain.Turn{
			{Seq: 0, Question: "Who signs?", Answer: "Acme Ltd and Beta LLC.", AskedAt: fixedTime},
			{Seq: 1, Question: "Notice period?", Answer: "Thirty days.", AskedAt: fixedTime},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "history", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Q1 [2026-03-14 09:30:00]: Who signs?")
	assert.Contains(t, buf.String(), "A2: Thirty days.")
}

func TestDocumentHistoryCmd_Empty(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "history", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No questions asked yet.")
}

func TestDocumentHistoryCmd_JSON(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.qa.conv = &domain.Conversation{
		DocumentID: "doc-1",
		Turns:      []domain.Turn{{Seq: 0, Question: "Who signs?", Answer: "Acme.", AskedAt: fixedTime}},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "history", "doc-1", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"document_id": "doc-1"`)
	assert.Contains(t, buf.String(), `"question": "Who signs?"`)
}

// Document Delete Tests

func TestDocumentDeleteCmd_Deletes(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "delete", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "doc-1", svc.docs.deleted)
	assert.Contains(t, buf.String(), "Document doc-1 deleted.")
}

func TestDocumentCmds_NilService(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	documentService = nil

	for _, args := range [][]string{
		{"document", "list"},
		{"document", "get", "doc-1"},
		{"document", "content", "doc-1"},
		{"document", "chunks", "doc-1"},
		{"document", "delete", "doc-1"},
	} {
		t.Run(args[1], func(t *testing.T) {
			rootCmd.SetArgs(args)
			defer rootCmd.SetArgs(nil)

			err := rootCmd.Execute()

			require.Error(t, err)
			assert.Contains(t, err.Error(), "document service not configured")
		})
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short text", preview("short\n  text", 20))
	assert.Equal(t, "abcde...", preview("abcdefgh", 5))
	assert.Equal(t, "", preview("", 5))
}

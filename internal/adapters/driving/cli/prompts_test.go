package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptsCmd_PrintsQuestions(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"prompts", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Suggested questions")
	assert.Contains(t, buf.String(), "1. Who are the parties?")
	assert.Contains(t, buf.String(), "2. How can it be terminated?")
}

func TestPromptsCmd_JSON(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"prompts", "doc-1", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.JSONEq(t, `["Who are the parties?", "How can it be terminated?"]`, buf.String())
}

func TestPromptsCmd_Error(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.suggestions.err = errors.New("store offline")

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"prompts", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "store offline")
}

func TestInspectCmd_RunsHeuristics(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"inspect", "doc-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Empty(t, svc.analysis.analyzed)
	assert.Contains(t, buf.String(), "Analysis: nda.txt")
	assert.Contains(t, buf.String(), "offline heuristics")
	assert.Contains(t, buf.String(), "Worth asking about")
}

func TestInspectCmd_NotFound(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"inspect", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get document")
}

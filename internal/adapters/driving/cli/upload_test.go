package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUploadCmd_Use(t *testing.T) {
	assert.Equal(t, "upload [file]", uploadCmd.Use)
}

func TestUploadCmd_UploadsFile(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	path := writeFile(t, t.TempDir(), "nda.txt", ndaText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"upload", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	require.NotNil(t, svc.docs.uploaded)
	assert.Equal(t, "nda.txt", svc.docs.uploaded.Filename)
	assert.Equal(t, []byte(ndaText), svc.docs.uploaded.Content)
	assert.Empty(t, svc.docs.uploaded.MIMEType)
	assert.Contains(t, buf.String(), "Uploaded nda.txt")
	assert.Contains(t, buf.String(), "ID:     doc-new")
	assert.Contains(t, buf.String(), "Next: lexis analyze doc-new")
	assert.Empty(t, svc.analysis.analyzed)
}

func TestUploadCmd_DeclaredType(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	path := writeFile(t, t.TempDir(), "contract", ndaText)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"upload", path, "--type", "text/markdown"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "text/markdown", svc.docs.uploaded.MIMEType)
}

func TestUploadCmd_AnalyzeFlag(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	path := writeFile(t, t.TempDir(), "nda.txt", ndaText)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"upload", path, "--analyze"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, []string{"doc-new"}, svc.analysis.analyzed)
	assert.Contains(t, buf.String(), "Analysing doc-new...")
	assert.Contains(t, buf.String(), "Non-Disclosure Agreement")
	assert.NotContains(t, buf.String(), "Next:")
}

func TestUploadCmd_TooLarge(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	maxUploadBytes = 10
	path := writeFile(t, t.TempDir(), "nda.txt", ndaText)

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"upload", path})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, errUploadTooLarge)
	assert.Nil(t, svc.docs.uploaded)
}

func TestUploadCmd_MissingFile(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"upload", filepath.Join(t.TempDir(), "missing.pdf")})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestUploadFile_Directory(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := uploadFile(context.Background(), t.TempDir(), "")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadFile_ServiceError(t *testing.T) {
	svc, cleanup := setupTestServices()
	defer cleanup()
	svc.docs.err = domain.ErrEmptyDocument
	path := writeFile(t, t.TempDir(), "scan.txt", "   ")

	_, err := uploadFile(context.Background(), path, "")

	assert.ErrorIs(t, err, domain.ErrEmptyDocument)
	assert.Contains(t, err.Error(), "failed to upload document")
}

func TestUploadLimit(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	maxUploadBytes = 0
	assert.Equal(t, domain.DefaultAppSettings().Ingest.MaxUploadBytes, uploadLimit())

	maxUploadBytes = 1024
	assert.Equal(t, int64(1024), uploadLimit())
}

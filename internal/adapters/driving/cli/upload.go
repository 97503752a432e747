package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// errUploadTooLarge is returned when a file exceeds the upload limit.
var errUploadTooLarge = errors.New("upload exceeds the maximum size")

var (
	uploadAnalyze  bool
	uploadMIMEType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a legal document",
	Long: `Extracts and normalises the text of a document and stores it.

Supported formats: pdf, docx, txt, md and html. Legacy .doc files need an
Apache Tika server (extraction.tika_url).

Prints the document ID used by every other command.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadAnalyze, "analyze", "a", false, "analyse the document after upload")
	uploadCmd.Flags().StringVar(&uploadMIMEType, "type", "", "declared MIME type (detected from the extension by default)")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := uploadFile(cmd.Context(), args[0], uploadMIMEType)
	if err != nil {
		return err
	}

	cmd.Printf("Uploaded %s\n", doc.Filename)
	cmd.Printf("  ID:     %s\n", doc.ID)
	cmd.Printf("  Type:   %s\n", doc.MIMEType)
	cmd.Printf("  Status: %s (%d characters)\n", doc.Status, len([]rune(doc.Text)))

	if !uploadAnalyze {
		cmd.Printf("\nNext: lexis analyze %s\n", doc.ID)
		return nil
	}

	cmd.Println()
	return analyzeAndPrint(cmd, doc.ID)
}

// uploadFile reads a file from disk, enforces the upload limit and uploads it.
func uploadFile(ctx context.Context, path, mimeType string) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, path)
	}
	if limit := uploadLimit(); info.Size() > limit {
		return nil, fmt.Errorf("%w: %s is %d bytes (limit %d)", errUploadTooLarge, path, info.Size(), limit)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := documentService.Upload(ctx, domain.Upload{
		Filename: filepath.Base(path),
		MIMEType: mimeType,
		Content:  content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}
	return doc, nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

const timeFormat = "2006-01-02 15:04:05"

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded documents",
	Long:  `List, view, inspect or delete uploaded documents and their question history.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentGetCmd = &cobra.Command{
	Use:   "get [doc-id]",
	Short: "Show document info",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentGet,
}

var documentContentCmd = &cobra.Command{
	Use:   "content [doc-id]",
	Short: "Print the normalised document text",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentContent,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "List the passages a document was split into",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentHistoryCmd = &cobra.Command{
	Use:   "history [doc-id]",
	Short: "Show questions asked about a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentHistory,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document",
	Long:  `Removes a document together with its passages, index, analyses and question history.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var historyJSON bool

func init() {
	documentHistoryCmd.Flags().BoolVar(&historyJSON, "json", false, "output the history as JSON")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentGetCmd)
	documentCmd.AddCommand(documentContentCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentHistoryCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Println("No documents uploaded yet. Run 'lexis upload <file>'.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:     %s\n", docs[i].Filename)
		cmd.Printf("    Status:   %s\n", docs[i].Status)
		cmd.Printf("    Uploaded: %s\n", docs[i].CreatedAt.Format(timeFormat))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentGet(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	cmd.Printf("Document: %s\n\n", doc.ID)
	cmd.Printf("  File:        %s\n", doc.Filename)
	cmd.Printf("  Type:        %s\n", doc.MIMEType)
	cmd.Printf("  Status:      %s\n", doc.Status)
	if doc.Error != "" {
		cmd.Printf("  Error:       %s\n", doc.Error)
	}
	cmd.Printf("  Characters:  %d\n", len([]rune(doc.Text)))
	cmd.Printf("  Fingerprint: %s\n", doc.Fingerprint)
	cmd.Printf("  Created:     %s\n", doc.CreatedAt.Format(timeFormat))
	cmd.Printf("  Updated:     %s\n", doc.UpdatedAt.Format(timeFormat))

	if analysisService != nil && doc.Status == domain.StatusAnalyzed {
		if result, err := analysisService.Latest(cmd.Context(), doc.ID); err == nil {
			cmd.Println()
			cmd.Printf("  Document type: %s\n", result.DocumentType)
			cmd.Printf("  Risks:         %d high, %d medium, %d low\n",
				result.RiskCount(domain.RiskHigh), result.RiskCount(domain.RiskMedium), result.RiskCount(domain.RiskLow))
		}
	}

	return nil
}

func runDocumentContent(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document content: %w", err)
	}

	cmd.Println(doc.Text)
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	chunks, err := documentService.Chunks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if len(chunks) == 0 {
		cmd.Println("No passages yet. Run 'lexis analyze <doc-id>' to index the document.")
		return nil
	}

	for _, c := range chunks {
		cmd.Printf("[%d] %s (chars %d-%d)", c.Seq+1, c.ID, c.Start, c.End)
		if c.Section != "" {
			cmd.Printf(" %s", c.Section)
		}
		cmd.Println()
		cmd.Printf("    %s\n", preview(c.Content, 100))
	}
	cmd.Printf("\nTotal: %d passages\n", len(chunks))
	return nil
}

func runDocumentHistory(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("question service not configured")
	}

	conv, err := qaService.Conversation(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if historyJSON {
		data, err := json.MarshalIndent(conv, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal history: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(conv.Turns) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, turn := range conv.Turns {
		cmd.Printf("Q%d [%s]: %s\n", turn.Seq+1, turn.AskedAt.Format(timeFormat), turn.Question)
		cmd.Printf("A%d: %s\n\n", turn.Seq+1, turn.Answer)
	}
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	if err := documentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", args[0])
	return nil
}

// preview returns the first n runes of s on one line.
func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/lexis/internal/adapters/driving/report"
	"github.com/custodia-labs/lexis/internal/core/domain"
)

var (
	analyzeJSON   bool
	analyzeLatest bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [doc-id]",
	Short: "Analyse a document",
	Long: `Indexes the document if needed and extracts its type, summary, parties,
key terms, financial terms, important dates and risks.

Each part is extracted independently; a part the model could not answer is
left empty and noted at the end of the report.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output the analysis as JSON")
	analyzeCmd.Flags().BoolVar(&analyzeLatest, "latest", false, "show the stored analysis without re-running it")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	if analyzeLatest {
		result, err := analysisService.Latest(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to get analysis: %w", err)
		}
		return printAnalysis(cmd, result)
	}

	return analyzeAndPrint(cmd, args[0])
}

// analyzeAndPrint runs an analysis and prints the report.
func analyzeAndPrint(cmd *cobra.Command, docID string) error {
	if analysisService == nil {
		return errors.New("analysis service not configured")
	}

	if !analyzeJSON {
		cmd.Printf("Analysing %s...\n\n", docID)
	}
	result, err := analysisService.Analyze(cmd.Context(), docID)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	return printAnalysis(cmd, result)
}

func printAnalysis(cmd *cobra.Command, result *domain.AnalysisResult) error {
	if analyzeJSON {
		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	var doc *domain.Document
	if documentService != nil {
		// The report falls back to a generic title when the lookup fails.
		doc, _ = documentService.Get(cmd.Context(), result.DocumentID) //nolint:errcheck // title only
	}
	cmd.Print(newRenderer(cmd).Analysis(doc, result))
	return nil
}

// newRenderer returns a styled renderer for terminals and a plain one
// otherwise.
func newRenderer(cmd *cobra.Command) *report.Renderer {
	if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return report.New(report.DefaultStyles())
	}
	return report.New(report.PlainStyles())
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/heuristics"
)

var promptsJSON bool

var promptsCmd = &cobra.Command{
	Use:   "prompts [doc-id]",
	Short: "Suggest questions to ask about a document",
	Long: `Suggests up to six follow-up questions based on the document's analysis.
When the AI provider is unavailable, a standard set of questions for the
document type is shown instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runPrompts,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect [doc-id]",
	Short: "Show rule-based findings without an AI provider",
	Long: `Runs the offline heuristics over a document: keyword type detection,
party, date and amount patterns, a keyword risk catalogue and common key
terms. No embedding or completion service is used.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	promptsCmd.Flags().BoolVar(&promptsJSON, "json", false, "output the questions as JSON")
	rootCmd.AddCommand(promptsCmd)
	rootCmd.AddCommand(inspectCmd)
}

func runPrompts(cmd *cobra.Command, args []string) error {
	if suggestionService == nil {
		return errors.New("suggestion service not configured")
	}

	questions, err := suggestionService.Suggest(cmd.Context(), args[0], nil)
	if err != nil {
		return fmt.Errorf("failed to suggest questions: %w", err)
	}

	if promptsJSON {
		data, err := json.MarshalIndent(questions, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal questions: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Print(newRenderer(cmd).Questions("Suggested questions", questions))
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	doc, err := documentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get document: %w", err)
	}

	findings := heuristics.Analyze("heuristic", doc.ID, doc.Text, time.Now())
	renderer := newRenderer(cmd)
	cmd.Print(renderer.Analysis(doc, findings))

	if questions := heuristics.ContextualQuestions(doc.Text); len(questions) > 0 {
		cmd.Println()
		cmd.Print(renderer.Questions("Worth asking about", questions))
	}
	return nil
}

package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [doc-id] [question]",
	Short: "Ask a question about an analysed document",
	Long: `Answers a question using only the passages of the document most relevant
to it. The previous questions and answers are taken into account.

The question may be given as several words without quotes.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runAsk,
}

var chatCmd = &cobra.Command{
	Use:   "chat [doc-id]",
	Short: "Ask questions interactively",
	Long: `Starts a question loop for an analysed document. Type a question and
press Enter; an empty line, "exit" or Ctrl+D ends the session.`,
	Args: cobra.ExactArgs(1),
	RunE: runChat,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(chatCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("question service not configured")
	}

	question := strings.Join(args[1:], " ")
	answer, err := qaService.Ask(cmd.Context(), args[0], question)
	if err != nil {
		return fmt.Errorf("failed to answer question: %w", err)
	}

	if askJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Print(newRenderer(cmd).Answer(answer, answerSources(cmd.Context(), args[0], answer)))
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	if qaService == nil {
		return errors.New("question service not configured")
	}

	docID := args[0]
	ctx := cmd.Context()
	renderer := newRenderer(cmd)

	if suggestionService != nil {
		if questions, err := suggestionService.Suggest(ctx, docID, nil); err == nil && len(questions) > 0 {
			cmd.Print(renderer.Questions("You could ask:", questions))
			cmd.Println()
		}
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	for {
		cmd.Print("> ")
		line, readErr := reader.ReadString('\n')
		question := strings.TrimSpace(line)
		if question == "" || question == "exit" || question == "quit" {
			cmd.Println()
			return nil
		}

		answer, err := qaService.Ask(ctx, docID, question)
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrInvalidState):
			return fmt.Errorf("failed to answer question: %w", err)
		case err != nil:
			cmd.Printf("%s\n\n", describeError(err))
		default:
			cmd.Print(renderer.Answer(answer, answerSources(ctx, docID, answer)))
			cmd.Println()
		}

		if readErr != nil {
			return nil
		}
	}
}

// answerSources returns the chunks an answer was grounded in, in reading
// order. Lookup failures yield no sources.
func answerSources(ctx context.Context, docID string, answer *domain.Answer) []domain.Chunk {
	if documentService == nil || len(answer.ChunkIDs) == 0 {
		return nil
	}

	chunks, err := documentService.Chunks(ctx, docID)
	if err != nil {
		return nil
	}

	cited := make(map[string]bool, len(answer.ChunkIDs))
	for _, id := range answer.ChunkIDs {
		cited[id] = true
	}

	var sources []domain.Chunk
	for _, c := range chunks {
		if cited[c.ID] {
			sources = append(sources, c)
		}
	}
	return sources
}

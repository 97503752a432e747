package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/adapters/driving/watch"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/extractors"
)

var watchNoAnalyze bool

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Upload documents dropped into a directory",
	Long: `Watches an inbox directory and uploads every supported document that is
created or rewritten there, then analyses it. Runs until interrupted.

Subdirectories, hidden files and office lock files are ignored.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchNoAnalyze, "no-analyze", false, "upload only, without analysis")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}
	if !watchNoAnalyze && analysisService == nil {
		return errors.New("analysis service not configured")
	}

	dir := args[0]
	w := watch.New(dir, inboxHandler(cmd), watch.WithFilter(extractors.SupportedExtension))

	cmd.Printf("Watching %s for new documents (Ctrl+C to stop)\n", dir)
	if err := w.Run(cmd.Context()); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

// inboxHandler uploads and optionally analyses one settled file.
func inboxHandler(cmd *cobra.Command) watch.Handler {
	return func(ctx context.Context, path string) error {
		name := filepath.Base(path)
		doc, err := uploadFile(ctx, path, "")
		if err != nil {
			cmd.Printf("%s: %s\n", name, describeError(err))
			return err
		}
		cmd.Printf("%s: uploaded as %s\n", name, doc.ID)

		if watchNoAnalyze {
			return nil
		}

		result, err := analysisService.Analyze(ctx, doc.ID)
		if err != nil {
			cmd.Printf("%s: %s\n", name, describeError(err))
			return err
		}
		cmd.Printf("%s: %s, %d risks (%d high)\n", name, result.DocumentType,
			len(result.Risks), result.RiskCount(domain.RiskHigh))
		return nil
	}
}

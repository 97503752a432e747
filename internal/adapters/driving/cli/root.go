// Package cli implements the lexis command-line interface on cobra.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services are the driving ports the commands call.
type Services struct {
	Document   driving.DocumentService
	Analysis   driving.AnalysisService
	QA         driving.QAService
	Suggestion driving.SuggestionService
	Health     driving.HealthService
	Settings   driving.SettingsService

	// MaxUploadBytes bounds uploaded file size. Zero means no limit.
	MaxUploadBytes int64
}

// Options are the global flags passed to the bootstrap function.
type Options struct {
	// Ephemeral keeps all state in memory for this run.
	Ephemeral bool
}

// BootstrapFunc builds the services once flags are parsed. The returned
// cleanup function releases stores and provider clients.
type BootstrapFunc func(opts Options) (*Services, func(), error)

var (
	documentService   driving.DocumentService
	analysisService   driving.AnalysisService
	qaService         driving.QAService
	suggestionService driving.SuggestionService
	healthService     driving.HealthService
	settingsService   driving.SettingsService
	maxUploadBytes    int64
)

var (
	bootstrap BootstrapFunc
	cleanup   func()

	verbose   bool
	ephemeral bool
	envFile   string
)

var rootCmd = &cobra.Command{
	Use:   "lexis",
	Short: "Analyse legal documents and ask grounded questions",
	Long: `Lexis ingests a legal document (pdf, docx, doc, txt, md, html), extracts a
structured analysis (type, summary, parties, key terms, financial terms,
dates and risks) and answers questions grounded in the document text.

Get started:
  lexis settings embedding
  lexis settings llm
  lexis upload contract.pdf --analyze
  lexis ask <doc-id> "What is the notice period?"`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "keep documents and settings changes in memory for this run only")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with API keys and LEXIS_ variables")
}

// SetServices sets the services used by every command.
func SetServices(s *Services) {
	documentService = s.Document
	analysisService = s.Analysis
	qaService = s.QA
	suggestionService = s.Suggestion
	healthService = s.Health
	settingsService = s.Settings
	maxUploadBytes = s.MaxUploadBytes
}

// SetBootstrap sets the function that builds services before a command runs.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command and returns the process exit code. An
// interrupt cancels the command context so long-running commands stop.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if cleanup != nil {
		cleanup()
		cleanup = nil
	}
	if err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %s\n", describeError(err))
		logger.Debug("Command failed: %v", err)
		return 1
	}
	return 0
}

// setup loads the environment file, applies global flags and bootstraps
// services.
func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if err := godotenv.Load(envFile); err != nil {
		if !errors.Is(err, os.ErrNotExist) || envFile != ".env" {
			logger.Warn("Could not load %s: %v", envFile, err)
		}
	} else {
		logger.Debug("Loaded environment from %s", envFile)
	}

	if bootstrap == nil {
		return nil
	}

	services, release, err := bootstrap(Options{Ephemeral: ephemeral})
	if err != nil {
		return fmt.Errorf("starting lexis: %w", err)
	}
	SetServices(services)
	cleanup = release
	return nil
}

// uploadLimit returns the effective upload limit.
func uploadLimit() int64 {
	if maxUploadBytes > 0 {
		return maxUploadBytes
	}
	return domain.DefaultAppSettings().Ingest.MaxUploadBytes
}

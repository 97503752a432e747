// Command lexis analyses legal documents and answers questions about them.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/lexis/internal/adapters/driven/ai"
	"github.com/custodia-labs/lexis/internal/adapters/driven/config/file"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/lexis/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/lexis/internal/adapters/driven/vector/chromem"
	vectormemory "github.com/custodia-labs/lexis/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/lexis/internal/adapters/driving/cli"
	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/services"
	"github.com/custodia-labs/lexis/internal/extractors"
	"github.com/custodia-labs/lexis/internal/logger"
	"github.com/custodia-labs/lexis/internal/postprocessors"
	"github.com/custodia-labs/lexis/internal/postprocessors/normaliser"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(bootstrap)
	os.Exit(cli.Execute())
}

// stores groups the persistence adapters chosen for this run.
type stores struct {
	docs          driven.DocumentStore
	analyses      driven.AnalysisStore
	conversations driven.ConversationStore
	vectors       driven.VectorIndex
	closers       []func() error
}

// bootstrap wires every adapter and service from the saved settings.
func bootstrap(opts cli.Options) (*cli.Services, func(), error) {
	configDir, err := file.DefaultDir()
	if err != nil {
		return nil, nil, fmt.Errorf("locating config directory: %w", err)
	}

	fileConfig, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}

	var configStore driven.ConfigStore = fileConfig
	if opts.Ephemeral {
		configStore = memory.NewConfigStoreFrom(fileConfig)
	}
	settingsSvc := services.NewSettingsService(configStore, ai.NewConfigValidator())

	settings, err := settingsSvc.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("loading settings: %w", err)
	}

	st, err := openStores(settings, configDir, opts.Ephemeral)
	if err != nil {
		return nil, nil, err
	}

	aiServices := ai.Init(settings, false)
	for _, w := range aiServices.Warnings {
		logger.Warn("%s", w)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		st.close()
		aiServices.Close()
		return nil, nil, fmt.Errorf("opening prompts: %w", err)
	}

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)
	pipeline, err := postprocessors.FromConfig(registry, settingsSvc.GetPipelineConfig())
	if err != nil {
		logger.Warn("Invalid pipeline configuration, using defaults: %v", err)
		pipeline = postprocessors.NewDefaultPipeline()
	}

	documents := services.NewDocumentService(
		st.docs, st.analyses, st.conversations, st.vectors,
		extractors.NewDefaultRegistry(settings.Extraction.TikaURL),
		normaliser.New(normaliser.WithMinChars(settings.Ingest.MinChars)),
	)

	indexer := services.NewIndexService(st.docs, st.vectors, aiServices.EmbeddingService, pipeline, services.IndexConfig{
		BatchSize:   settings.Embedding.BatchSize,
		TopK:        settings.Retrieval.TopK,
		CallTimeout: settings.Engine.CallTimeout,
	})

	analysis := services.NewAnalysisService(st.docs, st.analyses, indexer, aiServices.CompletionService, prompts,
		services.AnalysisConfig{
			Analysis: settings.Analysis,
			LLM:      settings.LLM,
			Engine:   settings.Engine,
		})

	qa := services.NewQAService(st.docs, st.conversations, indexer, aiServices.CompletionService, prompts,
		services.QAConfig{
			QA:        settings.QA,
			Retrieval: settings.Retrieval,
			LLM:       settings.LLM,
			Engine:    settings.Engine,
		})
	documents.SetQueueReleaser(qa)

	suggestions := services.NewSuggestionService(st.docs, st.analyses, aiServices.CompletionService, prompts,
		settings.LLM, settings.Engine)

	cleanup := func() {
		aiServices.Close()
		st.close()
	}

	return &cli.Services{
		Document:       documents,
		Analysis:       analysis,
		QA:             qa,
		Suggestion:     suggestions,
		Health:         services.NewHealthService(aiServices.EmbeddingService, aiServices.CompletionService),
		Settings:       settingsSvc,
		MaxUploadBytes: settings.Ingest.MaxUploadBytes,
	}, cleanup, nil
}

// openStores opens the configured storage and vector backends. Ephemeral
// runs keep everything in memory.
func openStores(settings *domain.AppSettings, configDir string, ephemeral bool) (*stores, error) {
	dataDir := settings.Storage.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	st := &stores{}

	if ephemeral || settings.Storage.Backend == domain.StorageMemory {
		logger.Debug("Using in-memory document storage")
		st.docs = memory.NewDocumentStore()
		st.analyses = memory.NewAnalysisStore()
		st.conversations = memory.NewConversationStore()
	} else {
		db, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening storage: %w", err)
		}
		logger.Debug("Using SQLite storage at %s", db.Path())
		st.docs = db.DocumentStore()
		st.analyses = db.AnalysisStore()
		st.conversations = db.ConversationStore()
		st.closers = append(st.closers, db.Close)
	}

	if ephemeral || settings.VectorIndex.Backend != domain.VectorChromem {
		st.vectors = vectormemory.NewIndex()
	} else {
		idx, err := chromem.NewPersistentIndex(dataDir)
		if err != nil {
			st.close()
			return nil, fmt.Errorf("opening vector index: %w", err)
		}
		st.vectors = idx
	}
	st.closers = append(st.closers, st.vectors.Close)

	return st, nil
}

func (s *stores) close() {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		logger.Warn("Closing stores: %v", err)
	}
}

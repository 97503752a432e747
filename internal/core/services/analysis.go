package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/heuristics"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure AnalysisService implements the interface.
var _ driving.AnalysisService = (*AnalysisService)(nil)

// maxFragmentCalls bounds concurrent fragment completions per analysis.
const maxFragmentCalls = 4

var fragmentPrompts = map[domain.Fragment]string{
	domain.FragmentType:           driven.PromptFragmentType,
	domain.FragmentSummary:        driven.PromptFragmentSummary,
	domain.FragmentParties:        driven.PromptFragmentParties,
	domain.FragmentKeyTerms:       driven.PromptFragmentKeyTerms,
	domain.FragmentFinancialTerms: driven.PromptFragmentFinancialTerms,
	domain.FragmentDates:          driven.PromptFragmentDates,
	domain.FragmentRisks:          driven.PromptFragmentRisks,
}

// AnalysisConfig tunes the extraction engine.
type AnalysisConfig struct {
	Analysis domain.AnalysisSettings
	LLM      domain.LLMSettings
	Engine   domain.EngineSettings
}

// AnalysisService extracts a structured analysis by running one completion
// per fragment and parsing each response on its own.
type AnalysisService struct {
	docStore      driven.DocumentStore
	analysisStore driven.AnalysisStore
	indexer       driving.IndexService
	completion    driven.CompletionService
	prompts       driven.PromptStore
	cfg           AnalysisConfig
	policy        callPolicy
	now           func() time.Time
	group         singleflight.Group
}

// NewAnalysisService creates a new analysis service.
// The completion service may be nil, in which case every fragment fails.
func NewAnalysisService(
	docStore driven.DocumentStore,
	analysisStore driven.AnalysisStore,
	indexer driving.IndexService,
	completion driven.CompletionService,
	prompts driven.PromptStore,
	cfg AnalysisConfig,
) *AnalysisService {
	defaults := domain.DefaultAppSettings()
	if cfg.Analysis.MaxChars <= 0 {
		cfg.Analysis.MaxChars = defaults.Analysis.MaxChars
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = defaults.LLM.MaxTokens
	}

	return &AnalysisService{
		docStore:      docStore,
		analysisStore: analysisStore,
		indexer:       indexer,
		completion:    completion,
		prompts:       prompts,
		cfg:           cfg,
		policy:        newCallPolicy(cfg.Engine),
		now:           time.Now,
	}
}

// Analyze indexes the document if needed, extracts every fragment and moves
// the document to Analyzed. Concurrent calls for one document share a run.
func (s *AnalysisService) Analyze(ctx context.Context, documentID string) (*domain.AnalysisResult, error) {
	ch := s.group.DoChan("analyze:"+documentID, func() (any, error) {
		return s.analyze(context.WithoutCancel(ctx), documentID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.AnalysisResult), nil
	}
}

// Latest returns the most recent analysis for a document.
func (s *AnalysisService) Latest(ctx context.Context, documentID string) (*domain.AnalysisResult, error) {
	if _, err := s.docStore.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	return s.analysisStore.LatestAnalysis(ctx, documentID)
}

// fragmentOutcome is the raw result of one fragment completion.
type fragmentOutcome struct {
	response string
	err      error
}

func (s *AnalysisService) analyze(ctx context.Context, documentID string) (*domain.AnalysisResult, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if !doc.Status.AtLeast(domain.StatusIndexed) {
		logger.Debug("Document %s is %s; building index first", documentID, doc.Status)
		if _, err := s.indexer.Build(ctx, documentID); err != nil {
			return nil, err
		}
		if doc, err = s.docStore.GetDocument(ctx, documentID); err != nil {
			return nil, err
		}
	}

	logger.Section("Analysis")
	text := truncateRunes(doc.Text, s.cfg.Analysis.MaxChars)

	outcomes, err := s.runFragments(ctx, text)
	if err != nil {
		return nil, err
	}

	var (
		result *domain.AnalysisResult
		failed []error
	)
	for _, f := range domain.AllFragments() {
		if outcomes[f].err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", f, outcomes[f].err))
		}
	}

	switch {
	case len(failed) == len(outcomes) && s.cfg.Analysis.HeuristicFallback:
		logger.Warn("Every fragment failed for %s; using heuristic analysis", documentID)
		result = heuristics.Analyze(uuid.New().String(), documentID, doc.Text, s.now())
	case len(failed) == len(outcomes):
		return nil, fmt.Errorf("%w: %w", domain.ErrAnalysisFailed, errors.Join(failed...))
	default:
		for _, err := range failed {
			logger.Warn("Fragment failed for %s: %v", documentID, err)
		}
		result = assembleResult(uuid.New().String(), documentID, s.now(), outcomes)
	}

	if err := s.analysisStore.SaveAnalysis(ctx, result); err != nil {
		return nil, fmt.Errorf("save analysis: %w", err)
	}
	if err := doc.Transition(domain.StatusAnalyzed, s.now()); err != nil {
		return nil, err
	}
	if err := s.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Analyzed %s: %s, %d risks, %d key terms",
		documentID, result.DocumentType, len(result.Risks), len(result.KeyTerms))
	return result, nil
}

// runFragments issues every fragment prompt, at most maxFragmentCalls at a
// time. A failing fragment never cancels the others.
func (s *AnalysisService) runFragments(ctx context.Context, text string) (map[domain.Fragment]fragmentOutcome, error) {
	if s.prompts == nil {
		return nil, fmt.Errorf("%w: no prompt store", domain.ErrConfigNotFound)
	}
	system, err := s.prompts.Load(driven.PromptAnalysisSystem)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	fragments := domain.AllFragments()
	templates := make([]string, len(fragments))
	for i, f := range fragments {
		if templates[i], err = s.prompts.Load(fragmentPrompts[f]); err != nil {
			return nil, fmt.Errorf("load prompt: %w", err)
		}
	}

	opts := driven.CompletionOptions{
		SystemPrompt: system,
		MaxTokens:    s.cfg.LLM.MaxTokens,
		Temperature:  s.cfg.LLM.Temperature,
		JSON:         true,
	}

	results := make([]fragmentOutcome, len(fragments))
	var g errgroup.Group
	g.SetLimit(maxFragmentCalls)
	for i, f := range fragments {
		prompt := fmt.Sprintf(templates[i], text)
		g.Go(func() error {
			logger.Debug("Requesting fragment %s", f)
			resp, err := s.policy.complete(ctx, s.completion, prompt, opts, retryRateLimited)
			results[i] = fragmentOutcome{response: resp, err: err}
			return nil
		})
	}
	_ = g.Wait()

	outcomes := make(map[domain.Fragment]fragmentOutcome, len(fragments))
	for i, f := range fragments {
		outcomes[f] = results[i]
	}
	return outcomes, nil
}

// assembleResult parses every successful response into its field. Only OK
// parses populate the result.
func assembleResult(
	id, documentID string, now time.Time, outcomes map[domain.Fragment]fragmentOutcome,
) *domain.AnalysisResult {
	result := domain.NewAnalysisResult(id, documentID, now)

	for _, f := range domain.AllFragments() {
		out := outcomes[f]
		if out.err != nil {
			result.Fragments[f] = domain.FragmentFailed
			continue
		}

		var state domain.FragmentState
		switch f {
		case domain.FragmentType:
			p := parseDocumentType(out.response)
			if v, ok := p.Get(); ok {
				result.DocumentType = v
			}
			state = logParse(f, p.FragmentState(), p.Err)
		case domain.FragmentSummary:
			p := parseSummary(out.response)
			if v, ok := p.Get(); ok {
				result.Summary = v
			}
			state = logParse(f, p.FragmentState(), p.Err)
		case domain.FragmentParties, domain.FragmentFinancialTerms, domain.FragmentDates:
			p := parseStringList(out.response, string(f))
			if v, ok := p.Get(); ok {
				switch f {
				case domain.FragmentParties:
					result.Parties = v
				case domain.FragmentFinancialTerms:
					result.FinancialTerms = v
				default:
					result.Dates = v
				}
			}
			state = logParse(f, p.FragmentState(), p.Err)
		case domain.FragmentKeyTerms:
			p := parseKeyTerms(out.response)
			if v, ok := p.Get(); ok {
				result.KeyTerms = v
			}
			state = logParse(f, p.FragmentState(), p.Err)
		case domain.FragmentRisks:
			p := parseRisks(out.response)
			if v, ok := p.Get(); ok {
				result.Risks = v
			}
			state = logParse(f, p.FragmentState(), p.Err)
		}
		result.Fragments[f] = state
	}

	return result
}

func logParse(f domain.Fragment, state domain.FragmentState, err error) domain.FragmentState {
	if state == domain.FragmentMalformed {
		logger.Warn("Fragment %s response malformed: %v", f, err)
	}
	return state
}

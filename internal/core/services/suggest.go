package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/core/ports/driving"
	"github.com/custodia-labs/lexis/internal/heuristics"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure SuggestionService implements the interface.
var _ driving.SuggestionService = (*SuggestionService)(nil)

// MaxSuggestions caps the number of suggested questions.
const MaxSuggestions = 6

// fallbackQuestions is the deterministic question table keyed by type.
// DocumentTypeOther doubles as the generic list.
//
//nolint:lll // Question text reads better unwrapped.
var fallbackQuestions = map[domain.DocumentType][]string{
	domain.DocumentTypeEmployment: {
		"What is the salary and compensation structure?",
		"What are the employee benefits and perks?",
		"What are the termination conditions and notice periods?",
		"Are there any non-compete or non-solicitation clauses?",
		"What are the working hours and vacation policies?",
		"What are the performance evaluation criteria?",
		"Are there any stock options or equity compensation?",
		"What are the confidentiality requirements for employees?",
	},
	domain.DocumentTypeService: {
		"What specific services are being provided?",
		"What are the key deliverables and timelines?",
		"How is the quality of service measured?",
		"What are the payment terms and fee structure?",
		"What happens if the service provider fails to deliver?",
		"Are there any penalties for late delivery?",
		"What are the intellectual property ownership rights?",
		"How can this agreement be terminated?",
	},
	domain.DocumentTypeNDA: {
		"What information is considered confidential?",
		"How long does the confidentiality obligation last?",
		"What are the permitted uses of confidential information?",
		"What are the exceptions to confidentiality requirements?",
		"What are the penalties for unauthorized disclosure?",
		"Are there any return or destruction requirements?",
		"Does this cover future information shared?",
		"What happens if confidential information is accidentally disclosed?",
	},
	domain.DocumentTypeLease: {
		"What is the monthly rent and when is it due?",
		"What is the lease term and renewal options?",
		"What utilities and services are included?",
		"What are the tenant's maintenance responsibilities?",
		"Are pets allowed and what are the restrictions?",
		"What is the security deposit amount and terms?",
		"What are the rules for subletting or assignment?",
		"What happens if rent is paid late?",
	},
	domain.DocumentTypePurchase: {
		"What is being purchased and at what price?",
		"What are the delivery terms and timeline?",
		"What warranties are provided with the goods?",
		"What are the payment terms and methods?",
		"Who bears the risk of loss during shipping?",
		"What happens if goods are defective or damaged?",
		"Are there any return or exchange policies?",
		"What are the dispute resolution procedures?",
	},
	domain.DocumentTypePartnership: {
		"What are each partner's capital contributions?",
		"How are profits and losses distributed?",
		"What are the management responsibilities of each partner?",
		"How are major decisions made in the partnership?",
		"What happens if a partner wants to leave?",
		"How are new partners admitted to the partnership?",
		"What are the restrictions on partner activities?",
		"How is the partnership dissolved?",
	},
	domain.DocumentTypeLicense: {
		"What intellectual property is being licensed?",
		"Is this an exclusive or non-exclusive license?",
		"What are the permitted uses of the licensed property?",
		"What royalties or fees must be paid?",
		"How long does the license term last?",
		"Can the license be transferred to others?",
		"What are the quality control requirements?",
		"Under what conditions can the license be terminated?",
	},
	domain.DocumentTypeOther: {
		"What are the main obligations of each party?",
		"What are the key dates and deadlines mentioned?",
		"What are the payment terms and amounts?",
		"What happens if someone breaches this agreement?",
		"How can this agreement be terminated?",
		"What are the dispute resolution procedures?",
		"Are there any penalties or liquidated damages?",
		"What law governs this agreement?",
	},
}

// FallbackQuestions returns the first MaxSuggestions questions of the
// table for t, using the generic list for unknown types.
func FallbackQuestions(t domain.DocumentType) []string {
	questions, ok := fallbackQuestions[t]
	if !ok {
		questions = fallbackQuestions[domain.DocumentTypeOther]
	}
	return append([]string(nil), questions[:MaxSuggestions]...)
}

// SuggestionService proposes follow-up questions for a document.
type SuggestionService struct {
	docStore      driven.DocumentStore
	analysisStore driven.AnalysisStore
	completion    driven.CompletionService
	prompts       driven.PromptStore
	llm           domain.LLMSettings
	policy        callPolicy
}

// NewSuggestionService creates a new suggestion service.
// The completion service may be nil; the fallback table is then used.
func NewSuggestionService(
	docStore driven.DocumentStore,
	analysisStore driven.AnalysisStore,
	completion driven.CompletionService,
	prompts driven.PromptStore,
	llm domain.LLMSettings,
	engine domain.EngineSettings,
) *SuggestionService {
	return &SuggestionService{
		docStore:      docStore,
		analysisStore: analysisStore,
		completion:    completion,
		prompts:       prompts,
		llm:           llm,
		policy:        newCallPolicy(engine),
	}
}

// Suggest returns between 1 and MaxSuggestions questions. Without a stored
// analysis the document type is detected heuristically and the fallback
// table is used.
func (s *SuggestionService) Suggest(
	ctx context.Context, documentID string, analysis *domain.AnalysisResult,
) ([]string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}

	if analysis == nil {
		analysis, err = s.analysisStore.LatestAnalysis(ctx, documentID)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			docType := heuristics.DetectDocumentType(doc.Text)
			logger.Debug("No analysis for %s; suggesting from the %s table", documentID, docType)
			return FallbackQuestions(docType), nil
		case err != nil:
			return nil, fmt.Errorf("get analysis: %w", err)
		}
	}

	questions, err := s.fromModel(ctx, analysis, heuristics.ContextualQuestions(doc.Text))
	if err != nil {
		logger.Warn("Suggestion model call failed for %s, using fallback: %v", documentID, err)
		return FallbackQuestions(analysis.DocumentType), nil
	}
	if len(questions) == 0 {
		logger.Debug("Model returned no usable suggestions for %s; using fallback", documentID)
		return FallbackQuestions(analysis.DocumentType), nil
	}
	return questions, nil
}

func (s *SuggestionService) fromModel(
	ctx context.Context, analysis *domain.AnalysisResult, hints []string,
) ([]string, error) {
	if s.completion == nil {
		return nil, fmt.Errorf("%w: no completion provider configured", domain.ErrCompletionUnavailable)
	}
	if s.prompts == nil {
		return nil, fmt.Errorf("%w: no prompt store", domain.ErrConfigNotFound)
	}
	template, err := s.prompts.Load(driven.PromptSuggest)
	if err != nil {
		return nil, fmt.Errorf("load prompt: %w", err)
	}

	terms := make([]string, 0, len(analysis.KeyTerms))
	for _, t := range analysis.KeyTerms {
		terms = append(terms, t.Term)
	}
	risks := make([]string, 0, len(analysis.Risks))
	for _, r := range analysis.Risks {
		risks = append(risks, fmt.Sprintf("%s (%s)", r.Title, r.Level))
	}

	prompt := fmt.Sprintf(template,
		analysis.DocumentType,
		joinOrNone(terms, ", "),
		joinOrNone(risks, "; "),
		joinOrNone(hints, " "),
	)
	opts := driven.CompletionOptions{
		MaxTokens:   s.llm.MaxTokens,
		Temperature: s.llm.Temperature,
		JSON:        true,
	}

	out, err := s.policy.complete(ctx, s.completion, prompt, opts, retryRateLimited)
	if err != nil {
		return nil, err
	}
	return parseSuggestions(out), nil
}

// parseSuggestions keeps the question-shaped entries of a JSON array of
// strings, deduplicated case-insensitively and capped at MaxSuggestions.
func parseSuggestions(resp string) []string {
	var items []string
	if found, err := decodeField(resp, "questions", &items); err != nil || !found {
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, MaxSuggestions)
	for _, item := range items {
		q := strings.TrimLeft(cleanModelText(item), "-•0123456789.) ")
		if !strings.HasSuffix(q, "?") || len(q) < 5 {
			continue
		}
		key := strings.ToLower(q)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, q)
		if len(out) == MaxSuggestions {
			break
		}
	}
	return out
}

func joinOrNone(items []string, sep string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, sep)
}

package driven

// PromptStore provides access to completion prompt templates.
// Implementations may load prompts from files, embed them in the binary,
// or fetch them from a remote configuration service.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
const (
	// PromptAnalysisSystem is the system prompt for every extraction fragment.
	// This prompt has no format placeholders.
	PromptAnalysisSystem = "analysis_system"

	// Fragment prompts each expect a single %s placeholder for the document text.
	PromptFragmentType           = "fragment_type"
	PromptFragmentSummary        = "fragment_summary"
	PromptFragmentParties        = "fragment_parties"
	PromptFragmentKeyTerms       = "fragment_key_terms"
	PromptFragmentFinancialTerms = "fragment_financial_terms"
	PromptFragmentDates          = "fragment_dates"
	PromptFragmentRisks          = "fragment_risks"

	// PromptQASystem is the grounding instruction for question answering.
	// This prompt has no format placeholders.
	PromptQASystem = "qa_system"

	// PromptQA expects three %s placeholders: context, previous turns, question.
	PromptQA = "qa"

	// PromptSuggest expects four %s placeholders: document type, key terms,
	// risks and contextual hints.
	PromptSuggest = "suggest"
)

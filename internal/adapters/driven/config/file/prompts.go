package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/lexis/internal/core/ports/driven"
	"github.com/custodia-labs/lexis/internal/logger"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads completion prompts from user-editable files on disk,
// falling back to the built-in defaults.
//
// Files are only created on first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// fragmentPrompt builds a fragment template around a JSON shape. Every
// fragment takes the document text as its single %s.
func fragmentPrompt(task, shape string) string {
	return task + `

Respond with JSON only, no prose and no markdown fences, using exactly this shape:
` + shape + `

Document:
%s`
}

// defaultPrompts contains the built-in prompts. They are used when user
// files don't exist and as the initial content for new files.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnalysisSystem: `You are a legal document expert. You read contracts and agreements carefully and report only what the document actually says. Use plain text inside JSON strings: no asterisks, no bold and no markdown.`,

	driven.PromptFragmentType: fragmentPrompt(
		`Classify this legal document as one of: Employment Contract, Service Agreement, Non-Disclosure Agreement, Lease Agreement, Purchase Agreement, Partnership Agreement, License Agreement, Other.`,
		`{"document_type": "<one of the types above>"}`),

	driven.PromptFragmentSummary: fragmentPrompt(
		`Summarise this legal document in 150 to 200 words of plain English. Explain what it is about, who the main parties are, its purpose, and the main obligations and rights.`,
		`{"summary": "<summary>"}`),

	driven.PromptFragmentParties: fragmentPrompt(
		`List the parties to this legal document: people and organisations that sign or are bound by it. Use an empty list if none are named.`,
		`{"parties": ["<party name>"]}`),

	driven.PromptFragmentKeyTerms: fragmentPrompt(
		`List 5 to 7 key legal terms or clauses in this document, each with a one-sentence explanation of what it means here.`,
		`{"key_terms": [{"term": "<term>", "definition": "<meaning in this document>"}]}`),

	driven.PromptFragmentFinancialTerms: fragmentPrompt(
		`List the financial terms in this document: payment obligations, fees, penalties, deposits and monetary amounts. Quote amounts as written.`,
		`{"financial_terms": ["<financial term>"]}`),

	driven.PromptFragmentDates: fragmentPrompt(
		`List the important dates in this document: effective dates, deadlines, expiration dates, notice periods and other time periods.`,
		`{"dates": ["<date or period and what it applies to>"]}`),

	driven.PromptFragmentRisks: fragmentPrompt(
		`Identify 3 to 5 risks or concerns for a party signing this document. Rate each as High, Medium or Low.`,
		`{"risks": [{"title": "<short title>", "level": "High|Medium|Low", "description": "<why it matters>"}]}`),

	driven.PromptQASystem: `You are a helpful legal document assistant. Answer only from the document context you are given. If the context does not contain the answer, say clearly that the document does not say. Cite the section names shown in the context when they help. Write plain text without asterisks or markdown.`,

	driven.PromptQA: `Document context:
%s

Previous questions and answers:
%s

Question: %s

Answer using only the document context above. If the context is insufficient, say so.`,

	driven.PromptSuggest: `A user has uploaded a legal document and wants to understand it. Suggest 6 short, specific questions they could ask about it.

Document type: %s
Key terms: %s
Risks: %s
Worth asking about: %s

Respond with a JSON array of question strings only, no prose and no markdown fences.`,
}

// DefaultPrompt returns the built-in template for name.
func DefaultPrompt(name string) (string, bool) {
	p, ok := defaultPrompts[name]
	return p, ok
}

// PromptNames returns the names of every built-in prompt in sorted order.
func PromptNames() []string {
	names := make([]string, 0, len(defaultPrompts))
	for name := range defaultPrompts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.lexis/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(dir, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// On first call, initialises the prompt directory and creates default files.
// A user file whose %s placeholders do not match the default's count would
// break formatting, so it is ignored with a warning.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)

	defaultPrompt, known := defaultPrompts[name]
	if s.initErr != nil {
		if known {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	switch {
	case err != nil && known:
		prompt = defaultPrompt
	case err != nil:
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	case known && placeholders(prompt) != placeholders(defaultPrompt):
		logger.Warn("prompt %s has %d placeholders, expected %d; using built-in default",
			name, placeholders(prompt), placeholders(defaultPrompt))
		prompt = defaultPrompt
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

// placeholders counts %s verbs, ignoring escaped %%.
func placeholders(template string) int {
	return strings.Count(strings.ReplaceAll(template, "%%", ""), "%s")
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

// loadFromFile reads a prompt from disk.
func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// createReadme writes a README file explaining the prompts directory.
func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	var b strings.Builder
	b.WriteString("# Lexis Prompts\n\n")
	b.WriteString("Each file is a prompt template sent to the completion provider.\n")
	b.WriteString("Edit a file to change how documents are analysed and questions answered.\n")
	b.WriteString("Changes take effect on the next command.\n\n")
	b.WriteString("## Placeholders\n\n")
	b.WriteString("Templates use `%s` placeholders, filled in order. A file whose\n")
	b.WriteString("placeholder count differs from the built-in template is ignored.\n\n")
	for _, name := range PromptNames() {
		fmt.Fprintf(&b, "- `%s.txt`: %d placeholder(s)\n", name, placeholders(defaultPrompts[name]))
	}
	return os.WriteFile(path, []byte(b.String()), 0600)
}

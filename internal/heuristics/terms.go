package heuristics

import (
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// maxDefinitionRunes bounds the clause excerpt used as a key term definition.
const maxDefinitionRunes = 160

var keyTermRules = []struct {
	term     string
	keywords []string
}{
	{"Contract Duration", []string{"term of this agreement", "duration", "period of", "commence", "expire"}},
	{"Payment Terms", []string{"payment", "fee", "fees", "compensation", "salary", "rent", "price"}},
	{"Termination", []string{"termination", "terminate", "expiry"}},
	{"Confidentiality", []string{"confidential", "non disclosure", "proprietary"}},
	{"Liability", []string{"liability", "liable", "damages", "indemnify"}},
	{"Governing Law", []string{"governing law", "governed by", "jurisdiction", "court"}},
	{"Notice", []string{"notice", "notices"}},
	{"Intellectual Property", []string{"intellectual property", "copyright", "patent", "trademark"}},
}

// KeyTerms returns one key term per topic found in text, each defined by the
// first sentence that mentions it.
func KeyTerms(text string) []domain.KeyTerm {
	sents := sentences(text)
	padded := make([]string, len(sents))
	for i, s := range sents {
		padded[i] = normalise(s)
	}

	terms := []domain.KeyTerm{}
	for _, rule := range keyTermRules {
		if def, ok := firstMention(sents, padded, rule.keywords); ok {
			terms = append(terms, domain.KeyTerm{Term: rule.term, Definition: def})
		}
	}
	return terms
}

func firstMention(sents, padded []string, keywords []string) (string, bool) {
	for i := range sents {
		for _, kw := range keywords {
			if hasWord(padded[i], kw) {
				return truncate(strings.TrimSpace(sents[i]), maxDefinitionRunes), true
			}
		}
	}
	return "", false
}

package domain

import (
	"strings"
	"time"
	"unicode"
)

// DocumentType is the canonical classification of a legal document.
type DocumentType string

// Canonical document types. Any unrecognised classification maps to DocumentTypeOther.
const (
	DocumentTypeEmployment  DocumentType = "Employment Contract"
	DocumentTypeService     DocumentType = "Service Agreement"
	DocumentTypeNDA         DocumentType = "Non-Disclosure Agreement"
	DocumentTypeLease       DocumentType = "Lease Agreement"
	DocumentTypePurchase    DocumentType = "Purchase Agreement"
	DocumentTypePartnership DocumentType = "Partnership Agreement"
	DocumentTypeLicense     DocumentType = "License Agreement"
	DocumentTypeOther       DocumentType = "Other"
)

// AllDocumentTypes returns the canonical types in display order.
func AllDocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeEmployment,
		DocumentTypeService,
		DocumentTypeNDA,
		DocumentTypeLease,
		DocumentTypePurchase,
		DocumentTypePartnership,
		DocumentTypeLicense,
		DocumentTypeOther,
	}
}

// String returns the string representation.
func (t DocumentType) String() string {
	return string(t)
}

// IsCanonical returns true if t is one of the canonical types.
func (t DocumentType) IsCanonical() bool {
	for _, c := range AllDocumentTypes() {
		if t == c {
			return true
		}
	}
	return false
}

// documentTypeRules are checked in order; the first rule with a matching
// keyword wins. NDA is first so "confidential services" style titles that
// are really NDAs do not fall through to Service.
var documentTypeRules = []struct {
	typ      DocumentType
	keywords []string
}{
	{DocumentTypeNDA, []string{"non disclosure", "nondisclosure", "nda", "confidentiality agreement", "secrecy agreement"}},
	{DocumentTypeEmployment, []string{"employment", "employee", "offer letter", "job offer"}},
	{DocumentTypeLease, []string{"lease", "rental", "tenancy", "landlord"}},
	{DocumentTypeLicense, []string{"license", "licence", "licensing"}},
	{DocumentTypePartnership, []string{"partnership", "joint venture", "partners agreement"}},
	{DocumentTypePurchase, []string{"purchase", "sale", "sales", "bill of sale"}},
	{DocumentTypeService, []string{"service", "services", "consulting", "statement of work", "contractor"}},
}

// ParseDocumentType maps free-form classifier output to a canonical type.
// Matching ignores case and punctuation. Unrecognised input returns Other.
func ParseDocumentType(s string) DocumentType {
	norm := normaliseWords(s)
	if norm == "" {
		return DocumentTypeOther
	}

	for _, c := range AllDocumentTypes() {
		if norm == normaliseWords(string(c)) {
			return c
		}
	}

	padded := " " + norm + " "
	for _, rule := range documentTypeRules {
		for _, kw := range rule.keywords {
			if strings.Contains(padded, " "+kw+" ") {
				return rule.typ
			}
		}
	}
	return DocumentTypeOther
}

// normaliseWords lowercases s and replaces punctuation runs with single spaces.
func normaliseWords(s string) string {
	var b strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(b.String())
}

// RiskLevel is the severity of a risk finding.
type RiskLevel string

// Risk levels.
const (
	RiskHigh   RiskLevel = "High"
	RiskMedium RiskLevel = "Medium"
	RiskLow    RiskLevel = "Low"
)

// String returns the string representation.
func (l RiskLevel) String() string {
	return string(l)
}

// ParseRiskLevel normalises a level case-insensitively. Anything that is not
// high, medium or low maps to Medium.
func ParseRiskLevel(s string) RiskLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return RiskHigh
	case "low":
		return RiskLow
	default:
		return RiskMedium
	}
}

// KeyTerm is a defined or notable term with its meaning in the document.
type KeyTerm struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
}

// Risk is a single risk finding.
type Risk struct {
	Title       string    `json:"title"`
	Level       RiskLevel `json:"level"`
	Description string    `json:"description"`
}

// Fragment names one independently extracted part of an analysis.
type Fragment string

// Analysis fragments.
const (
	FragmentType           Fragment = "type"
	FragmentSummary        Fragment = "summary"
	FragmentParties        Fragment = "parties"
	FragmentKeyTerms       Fragment = "key_terms"
	FragmentFinancialTerms Fragment = "financial_terms"
	FragmentDates          Fragment = "dates"
	FragmentRisks          Fragment = "risks"
)

// AllFragments returns every fragment in extraction order.
func AllFragments() []Fragment {
	return []Fragment{
		FragmentType,
		FragmentSummary,
		FragmentParties,
		FragmentKeyTerms,
		FragmentFinancialTerms,
		FragmentDates,
		FragmentRisks,
	}
}

// FragmentState records how a fragment was populated.
type FragmentState string

// Fragment states.
const (
	// FragmentOK means the response parsed and produced a value.
	FragmentOK FragmentState = "ok"

	// FragmentAbsent means the response parsed but carried no value.
	FragmentAbsent FragmentState = "absent"

	// FragmentMalformed means the response could not be parsed.
	FragmentMalformed FragmentState = "malformed"

	// FragmentFailed means the completion service could not be reached.
	FragmentFailed FragmentState = "failed"

	// FragmentHeuristic means the value came from the offline heuristics.
	FragmentHeuristic FragmentState = "heuristic"
)

// AnalysisResult is the structured extraction for one document. It is never
// mutated after creation; re-analysis produces a new result.
type AnalysisResult struct {
	ID             string                     `json:"id"`
	DocumentID     string                     `json:"document_id"`
	DocumentType   DocumentType               `json:"document_type"`
	Summary        string                     `json:"summary"`
	Parties        []string                   `json:"parties"`
	KeyTerms       []KeyTerm                  `json:"key_terms"`
	FinancialTerms []string                   `json:"financial_terms"`
	Dates          []string                   `json:"dates"`
	Risks          []Risk                     `json:"risks"`
	Fragments      map[Fragment]FragmentState `json:"fragments"`
	CreatedAt      time.Time                  `json:"created_at"`
}

// NewAnalysisResult returns an empty result with non-nil slices, so that
// absent fragments serialise as [] rather than null.
func NewAnalysisResult(id, documentID string, now time.Time) *AnalysisResult {
	return &AnalysisResult{
		ID:             id,
		DocumentID:     documentID,
		DocumentType:   DocumentTypeOther,
		Parties:        []string{},
		KeyTerms:       []KeyTerm{},
		FinancialTerms: []string{},
		Dates:          []string{},
		Risks:          []Risk{},
		Fragments:      make(map[Fragment]FragmentState, len(AllFragments())),
		CreatedAt:      now,
	}
}

// RiskCount returns the number of risks at the given level.
func (a *AnalysisResult) RiskCount(level RiskLevel) int {
	n := 0
	for _, r := range a.Risks {
		if r.Level == level {
			n++
		}
	}
	return n
}

// DedupeKeyTerms drops empty terms and keeps the first occurrence of each
// term, compared case-insensitively.
func DedupeKeyTerms(terms []KeyTerm) []KeyTerm {
	seen := make(map[string]struct{}, len(terms))
	out := make([]KeyTerm, 0, len(terms))
	for _, t := range terms {
		t.Term = strings.TrimSpace(t.Term)
		t.Definition = strings.TrimSpace(t.Definition)
		if t.Term == "" {
			continue
		}
		key := strings.ToLower(t.Term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

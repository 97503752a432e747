package heuristics

import "github.com/custodia-labs/lexis/internal/core/domain"

// typeKeywords is scored by counting distinct keywords present. Ties go to
// the earlier entry.
var typeKeywords = []struct {
	typ      domain.DocumentType
	keywords []string
}{
	{domain.DocumentTypeEmployment, []string{
		"employment", "employee", "employer", "job", "salary", "wages", "benefits", "vacation", "sick leave",
	}},
	{domain.DocumentTypeService, []string{
		"service agreement", "services", "consultant", "contractor", "deliverable", "milestone", "scope of work",
	}},
	{domain.DocumentTypeNDA, []string{
		"non disclosure", "confidentiality agreement", "proprietary", "trade secret", "disclosing party", "receiving party",
	}},
	{domain.DocumentTypeLease, []string{
		"lease", "rent", "tenant", "landlord", "premises", "security deposit",
	}},
	{domain.DocumentTypePurchase, []string{
		"purchase", "sale", "buyer", "seller", "goods", "merchandise", "warranty",
	}},
	{domain.DocumentTypePartnership, []string{
		"partner", "partnership", "joint venture", "profit sharing", "capital contribution",
	}},
	{domain.DocumentTypeLicense, []string{
		"license", "licensing", "licensor", "licensee", "royalty", "trademark",
	}},
}

// DetectDocumentType classifies text by keyword score. Text matching no
// keyword is Other.
func DetectDocumentType(text string) domain.DocumentType {
	padded := normalise(text)

	best, bestScore := domain.DocumentTypeOther, 0
	for _, entry := range typeKeywords {
		score := 0
		for _, kw := range entry.keywords {
			if hasWord(padded, kw) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = entry.typ, score
		}
	}
	return best
}

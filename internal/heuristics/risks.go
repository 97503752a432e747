package heuristics

import "github.com/custodia-labs/lexis/internal/core/domain"

type riskRule struct {
	title       string
	level       domain.RiskLevel
	description string
	keywords    []string
}

// riskCatalogue is ordered by severity; Risks reports findings in this order.
var riskCatalogue = []riskRule{
	{"Unlimited Liability", domain.RiskHigh, "Contract may expose unlimited financial liability",
		[]string{"unlimited liability", "without limitation of liability"}},
	{"Personal Guarantee", domain.RiskHigh, "Personal assets may be at risk",
		[]string{"personal guarantee", "personally guarantee", "personally liable"}},
	{"Automatic Renewal", domain.RiskHigh, "Contract may renew automatically",
		[]string{"automatic renewal", "automatically renew", "auto renew"}},
	{"Non-Compete", domain.RiskHigh, "May restrict ability to work",
		[]string{"non compete", "noncompete", "not compete", "covenant not to compete"}},
	{"Liquidated Damages", domain.RiskHigh, "Pre-determined penalty amounts may be high",
		[]string{"liquidated damages"}},
	{"Penalty Clauses", domain.RiskHigh, "Penalty or fine provisions found, review carefully",
		[]string{"penalty", "penalties"}},
	{"Indemnification", domain.RiskMedium, "May need to defend or compensate the other party",
		[]string{"indemnify", "indemnification", "indemnities", "hold harmless"}},
	{"Force Majeure", domain.RiskMedium, "Contract may be suspended due to circumstances",
		[]string{"force majeure"}},
	{"Arbitration", domain.RiskMedium, "Disputes are resolved through arbitration",
		[]string{"arbitration", "arbitrator"}},
	{"Choice of Law", domain.RiskMedium, "Governed by specific laws",
		[]string{"choice of law", "governing law", "governed by the laws"}},
	{"Termination for Convenience", domain.RiskMedium, "May be terminated without cause",
		[]string{"termination for convenience", "terminate for convenience", "without cause", "at will"}},
	{"Termination Clauses", domain.RiskMedium, "Termination provisions should be reviewed",
		[]string{"terminate", "termination"}},
	{"Confidentiality", domain.RiskLow, "Standard confidentiality obligations",
		[]string{"confidentiality", "confidential information", "non disclosure"}},
	{"Intellectual Property", domain.RiskLow, "IP ownership terms specified",
		[]string{"intellectual property"}},
	{"Payment Terms", domain.RiskLow, "Payment schedule defined",
		[]string{"payment terms", "payment schedule", "shall pay", "payable"}},
	{"Delivery Schedule", domain.RiskLow, "Delivery timelines established",
		[]string{"delivery schedule", "delivery date"}},
}

// Risks returns a finding for every catalogue entry whose keywords occur in
// text. It returns an empty slice, never nil.
func Risks(text string) []domain.Risk {
	padded := normalise(text)
	risks := []domain.Risk{}
	for _, rule := range riskCatalogue {
		for _, kw := range rule.keywords {
			if hasWord(padded, kw) {
				risks = append(risks, domain.Risk{
					Title:       rule.title,
					Level:       rule.level,
					Description: rule.description,
				})
				break
			}
		}
	}
	return risks
}

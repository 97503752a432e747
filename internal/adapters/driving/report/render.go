package report

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

const none = "(none found)"

// Renderer formats domain values for the terminal.
type Renderer struct {
	styles *Styles
}

// New creates a renderer. A nil styles value uses DefaultStyles.
func New(styles *Styles) *Renderer {
	if styles == nil {
		styles = DefaultStyles()
	}
	return &Renderer{styles: styles}
}

// Analysis renders a full analysis report for a document.
func (r *Renderer) Analysis(doc *domain.Document, a *domain.AnalysisResult) string {
	var b strings.Builder

	title := "Analysis"
	if doc != nil {
		title = "Analysis: " + doc.Filename
	}
	b.WriteString(r.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(r.styles.Muted.Render(fmt.Sprintf("document %s, %s", a.DocumentID, a.CreatedAt.Format("2006-01-02 15:04:05"))))
	b.WriteString("\n\n")

	r.section(&b, "Document Type")
	b.WriteString("  " + r.styles.Normal.Render(a.DocumentType.String()) + "\n\n")

	r.section(&b, "Summary")
	if a.Summary == "" {
		b.WriteString("  " + r.styles.Muted.Render(none) + "\n\n")
	} else {
		b.WriteString(r.styles.Box.Render(a.Summary) + "\n\n")
	}

	r.list(&b, "Parties", a.Parties)

	r.section(&b, "Key Terms")
	if len(a.KeyTerms) == 0 {
		b.WriteString("  " + r.styles.Muted.Render(none) + "\n")
	}
	for _, kt := range a.KeyTerms {
		b.WriteString("  " + r.styles.Term.Render(kt.Term))
		if kt.Definition != "" {
			b.WriteString(": " + kt.Definition)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	r.list(&b, "Financial Terms", a.FinancialTerms)
	r.list(&b, "Important Dates", a.Dates)

	r.section(&b, fmt.Sprintf("Risks (%d high, %d medium, %d low)",
		a.RiskCount(domain.RiskHigh), a.RiskCount(domain.RiskMedium), a.RiskCount(domain.RiskLow)))
	if len(a.Risks) == 0 {
		b.WriteString("  " + r.styles.Muted.Render(none) + "\n")
	}
	for _, risk := range a.Risks {
		badge := r.styles.Risk(risk.Level).Render("[" + risk.Level.String() + "]")
		b.WriteString(fmt.Sprintf("  %s %s\n", badge, risk.Title))
		if risk.Description != "" {
			b.WriteString("      " + r.styles.Muted.Render(risk.Description) + "\n")
		}
	}

	if notes := fragmentNotes(a); notes != "" {
		b.WriteString("\n" + r.styles.Muted.Render(notes) + "\n")
	}

	return b.String()
}

// Answer renders an answer with the passages it was grounded in.
func (r *Renderer) Answer(answer *domain.Answer, sources []domain.Chunk) string {
	var b strings.Builder
	b.WriteString(r.styles.Box.Render(answer.Text))
	b.WriteString("\n")

	if len(sources) > 0 {
		b.WriteString(r.styles.Muted.Render("Sources:") + "\n")
		for _, c := range sources {
			label := fmt.Sprintf("passage %d", c.Seq+1)
			if c.Section != "" {
				label += ", " + c.Section
			}
			b.WriteString("  " + r.styles.Muted.Render(label) + "\n")
		}
	}
	return b.String()
}

// Questions renders a numbered list of questions under a heading.
func (r *Renderer) Questions(heading string, questions []string) string {
	var b strings.Builder
	r.section(&b, heading)
	for i, q := range questions {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, q))
	}
	return b.String()
}

func (r *Renderer) section(b *strings.Builder, name string) {
	b.WriteString(r.styles.Heading.Render(name))
	b.WriteString("\n")
}

func (r *Renderer) list(b *strings.Builder, name string, items []string) {
	r.section(b, name)
	if len(items) == 0 {
		b.WriteString("  " + r.styles.Muted.Render(none) + "\n\n")
		return
	}
	for _, item := range items {
		b.WriteString("  - " + item + "\n")
	}
	b.WriteString("\n")
}

// fragmentNotes explains fragments that did not come from a clean model response.
func fragmentNotes(a *domain.AnalysisResult) string {
	var notes []string
	for _, f := range domain.AllFragments() {
		switch a.Fragments[f] {
		case domain.FragmentMalformed:
			notes = append(notes, fmt.Sprintf("%s: unreadable model response", f))
		case domain.FragmentFailed:
			notes = append(notes, fmt.Sprintf("%s: completion service unavailable", f))
		case domain.FragmentHeuristic:
			notes = append(notes, fmt.Sprintf("%s: offline heuristics", f))
		}
	}
	if len(notes) == 0 {
		return ""
	}
	return "Note: " + strings.Join(notes, "; ")
}

// Package report renders analyses, answers and heuristic findings for the
// terminal using lipgloss styles.
package report

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/lexis/internal/core/domain"
)

// Theme defines the colour palette for reports.
type Theme struct {
	// Primary is the main accent colour.
	Primary lipgloss.Color

	// Secondary is the secondary accent colour.
	Secondary lipgloss.Color

	// Foreground is the default text colour.
	Foreground lipgloss.Color

	// Muted is for less important text.
	Muted lipgloss.Color

	// RiskHigh, RiskMedium and RiskLow colour risk badges.
	RiskHigh   lipgloss.Color
	RiskMedium lipgloss.Color
	RiskLow    lipgloss.Color

	// Border is the border colour.
	Border lipgloss.Color
}

// DefaultTheme returns the default colour theme.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"), // Purple
		Secondary:  lipgloss.Color("#06B6D4"), // Cyan
		Foreground: lipgloss.Color("#CDD6F4"), // Light gray
		Muted:      lipgloss.Color("#6C7086"), // Medium gray
		RiskHigh:   lipgloss.Color("#F38BA8"), // Red
		RiskMedium: lipgloss.Color("#F9E2AF"), // Yellow
		RiskLow:    lipgloss.Color("#A6E3A1"), // Green
		Border:     lipgloss.Color("#45475A"), // Border gray
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	// Title style for the report header.
	Title lipgloss.Style

	// Heading style for section headers.
	Heading lipgloss.Style

	// Normal style for regular text.
	Normal lipgloss.Style

	// Muted style for less important text.
	Muted lipgloss.Style

	// Term style for key term names.
	Term lipgloss.Style

	// Box style for bordered containers.
	Box lipgloss.Style

	risk map[domain.RiskLevel]lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Heading: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Term: lipgloss.NewStyle().
			Bold(true),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		risk: map[domain.RiskLevel]lipgloss.Style{
			domain.RiskHigh:   lipgloss.NewStyle().Bold(true).Foreground(theme.RiskHigh),
			domain.RiskMedium: lipgloss.NewStyle().Bold(true).Foreground(theme.RiskMedium),
			domain.RiskLow:    lipgloss.NewStyle().Bold(true).Foreground(theme.RiskLow),
		},
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// PlainStyles returns styles that render without colour or borders,
// for output that is not a terminal.
func PlainStyles() *Styles {
	plain := lipgloss.NewStyle()
	return &Styles{
		theme:   DefaultTheme(),
		Title:   plain,
		Heading: plain,
		Normal:  plain,
		Muted:   plain,
		Term:    plain,
		Box:     plain,
		risk: map[domain.RiskLevel]lipgloss.Style{
			domain.RiskHigh:   plain,
			domain.RiskMedium: plain,
			domain.RiskLow:    plain,
		},
	}
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Risk returns the badge style for a risk level.
func (s *Styles) Risk(level domain.RiskLevel) lipgloss.Style {
	if st, ok := s.risk[level]; ok {
		return st
	}
	return s.Normal
}

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"tpgci/src/teamcity"
)

// StyleConfig holds all customizable style colors for the browser.
type StyleConfig struct {
	PrimaryBlue    lipgloss.Color
	AccentBlue     lipgloss.Color
	DarkBackground lipgloss.Color
	TextPrimary    lipgloss.Color
	TextSecondary  lipgloss.Color
	BorderColor    lipgloss.Color
	SelectedColor  lipgloss.Color
	SecretColor    lipgloss.Color

	// One color per build kind.
	KindColors map[teamcity.BuildKind]lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:    lipgloss.Color("#8AB4F8"),
		AccentBlue:     lipgloss.Color("#4285F4"),
		DarkBackground: lipgloss.Color("#1E1E1E"),
		TextPrimary:    lipgloss.Color("#E8EAED"),
		TextSecondary:  lipgloss.Color("#9AA0A6"),
		BorderColor:    lipgloss.Color("#5F6368"),
		SelectedColor:  lipgloss.Color("#303134"),
		SecretColor:    lipgloss.Color("#F28B82"),
		KindColors: map[teamcity.BuildKind]lipgloss.Color{
			teamcity.KindPackage:        lipgloss.Color("#34A853"), // Green
			teamcity.KindServiceSweeper: lipgloss.Color("#FBBC04"), // Yellow
			teamcity.KindProjectSweeper: lipgloss.Color("#EA4335"), // Red
			teamcity.KindVcr:            lipgloss.Color("#A142F4"), // Purple
		},
	}
}

// KindColor returns the color of a build kind.
func (s *StyleConfig) KindColor(kind teamcity.BuildKind) lipgloss.Color {
	if c, ok := s.KindColors[kind]; ok {
		return c
	}
	return s.TextSecondary
}

// SectionStyle returns the style of a detail section title.
func (s *StyleConfig) SectionStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 2)
}

// PanelStyle returns the bordered panel style; focused panels use the accent color.
func (s *StyleConfig) PanelStyle(focused bool) lipgloss.Style {
	border := s.BorderColor
	if focused {
		border = s.AccentBlue
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

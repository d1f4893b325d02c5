package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// panelDimensions holds calculated layout dimensions
type panelDimensions struct {
	availableHeight int
	leftPanelWidth  int
	rightPanelWidth int
}

// calculateDimensions computes panel sizes based on terminal dimensions.
func (m MainModel) calculateDimensions() panelDimensions {
	headerHeight := lipgloss.Height(m.header.Render(m.width))
	// header + help line (1) + panel column header row (1) + panel borders (2)
	availableHeight := m.height - headerHeight - 1 - 1 - 2
	if availableHeight < 1 {
		availableHeight = 1
	}

	// Build list (40%) | Build detail (60%)
	leftPanelWidth := int(float64(m.width) * 0.4)
	rightPanelWidth := m.width - leftPanelWidth

	return panelDimensions{
		availableHeight: availableHeight,
		leftPanelWidth:  leftPanelWidth,
		rightPanelWidth: rightPanelWidth,
	}
}

// View renders the complete TUI layout
func (m MainModel) View() string {
	if !m.ready {
		return "\n  Initializing..."
	}

	header := m.header.Render(m.width)
	dims := m.calculateDimensions()

	leftPanel := m.renderListPanel(dims.leftPanelWidth, dims.availableHeight)
	rightPanel := m.renderDetailPanel(dims.rightPanelWidth, dims.availableHeight)
	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, rightPanel)

	return lipgloss.JoinVertical(lipgloss.Left, header, mainContent, m.renderHelpText())
}

// renderHelpText renders context-aware help text at the bottom
func (m MainModel) renderHelpText() string {
	keyStyle := lipgloss.NewStyle().Foreground(m.styles.PrimaryBlue).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)
	sep := sepStyle.Render(" • ")

	var helpText string
	switch {
	case m.searchMode:
		helpText = fmt.Sprintf("%s: Apply%s%s: Clear", keyStyle.Render("Enter"), sep, keyStyle.Render("Esc"))
	case m.detailFocused:
		helpText = fmt.Sprintf("%s: Scroll%s%s: Back%s%s: Quit",
			keyStyle.Render("j/k"), sep, keyStyle.Render("Esc"), sep, keyStyle.Render("q"))
	default:
		helpText = fmt.Sprintf("%s: Nav%s%s: View%s%s: Project%s%s: Search%s%s: Quit",
			keyStyle.Render("j/k"), sep,
			keyStyle.Render("Enter"), sep,
			keyStyle.Render("Tab"), sep,
			keyStyle.Render("/"), sep,
			keyStyle.Render("q"))
	}

	return lipgloss.NewStyle().MaxWidth(m.width).Render(m.styles.HelpStyle().Render(helpText))
}

// resizeComponents handles window resize events
func (m *MainModel) resizeComponents() {
	dims := m.calculateDimensions()

	m.listView.SetSize(dims.leftPanelWidth-2, dims.availableHeight)

	// borders (2) on the width; the header row above the panel on the height
	m.detailViewport.Width = dims.rightPanelWidth - 2
	m.detailViewport.Height = dims.availableHeight - 1

	if item, ok := m.listView.SelectedItem(); ok {
		m.updateDetailContent(item)
	}
}

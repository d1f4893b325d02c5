package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// renderListPanel renders the left panel with the build list
func (m MainModel) renderListPanel(width, height int) string {
	listPanel := m.styles.PanelStyle(!m.detailFocused).
		Width(width - 2).
		Height(height).
		Render(m.listView.Render())

	rankHeader := fmt.Sprintf("%*s", m.listView.Delegate().RankWidth, "#")
	headerText := fmt.Sprintf("%s │ Knd │ Dep │ T │ Build (%d)", rankHeader, m.listView.Len())
	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.PrimaryBlue).
		Bold(true).
		Width(width-2).
		Padding(0, 1).
		Render(Truncate(headerText, width-4, true))

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, listPanel)
}

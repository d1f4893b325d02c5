package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tpgci/src/sanitize"
)

// renderDetail renders the detail content for a build, wrapped to maxWidth.
func (m MainModel) renderDetail(item Item, maxWidth int) string {
	bt := item.Build
	section := m.styles.SectionStyle()
	dim := lipgloss.NewStyle().Foreground(m.styles.TextSecondary)
	secret := lipgloss.NewStyle().Foreground(m.styles.SecretColor)

	var b strings.Builder
	line := func(style lipgloss.Style, text string) {
		fmt.Fprintln(&b, style.Render(Wrap(text, maxWidth)))
	}
	plain := lipgloss.NewStyle()

	line(section, bt.Name)
	line(dim, fmt.Sprintf("ID: %s", bt.ID))
	line(dim, fmt.Sprintf("Project: %s (%s)", item.ProjectName, item.ProjectID))
	line(dim, fmt.Sprintf("Kind: %s | VCS root: %s", bt.Kind, bt.VcsRootID))
	if bt.Failure.ExecutionTimeoutMin > 0 {
		line(dim, fmt.Sprintf("Timeout: %d min | Fail on error message: %v", bt.Failure.ExecutionTimeoutMin, bt.Failure.ErrorMessage))
	}
	fmt.Fprintln(&b)

	if len(bt.Dependencies) > 0 {
		line(section, "Snapshot dependencies:")
		for _, d := range bt.Dependencies {
			line(plain, fmt.Sprintf("  %s (on failure: %s, on cancel: %s)", d.BuildTypeID, d.OnDependencyFailure, d.OnDependencyCancel))
		}
		fmt.Fprintln(&b)
	}

	if len(bt.Triggers) > 0 {
		line(section, "Triggers:")
		for _, t := range bt.Triggers {
			state := "enabled"
			if !t.Enabled {
				state = "disabled"
			}
			line(plain, fmt.Sprintf("  %02d:00 %s, days %s, branch %s (%s)", t.Cron.Hours, t.Cron.Timezone, t.Cron.DayOfWeek, t.BranchFilter, state))
		}
		fmt.Fprintln(&b)
	}

	if len(bt.Locks) > 0 {
		line(section, "Locks:")
		for _, l := range bt.Locks {
			text := fmt.Sprintf("  %s %s", l.Mode, l.Resource)
			if l.Value != "" {
				text += " = " + l.Value
			}
			line(plain, text)
		}
		fmt.Fprintln(&b)
	}

	line(section, "Steps:")
	for i, s := range bt.Steps {
		line(plain, fmt.Sprintf("  %d. %s", i+1, s.Name))
	}
	fmt.Fprintln(&b)

	line(section, "Parameters:")
	for _, p := range bt.Params.Sorted() {
		if p.Secret() {
			line(secret, fmt.Sprintf("  %s = %s", p.Name, sanitize.Mask(p.Value)))
			continue
		}
		line(dim, fmt.Sprintf("  %s = %s", p.Name, p.Value))
	}

	if len(bt.ArtifactRules) > 0 {
		fmt.Fprintln(&b)
		line(section, "Artifacts:")
		for _, r := range bt.ArtifactRules {
			line(plain, "  "+r)
		}
	}

	return b.String()
}

// updateDetailContent updates the viewport with content from the selected item
func (m *MainModel) updateDetailContent(item Item) {
	maxWidth := m.detailViewport.Width - 2 // 1 char padding on each side
	m.detailViewport.SetContent(m.renderDetail(item, maxWidth))
	m.detailViewport.GotoTop()
}

// renderDetailPanel renders the right panel with detail viewport
func (m MainModel) renderDetailPanel(width, height int) string {
	item, ok := m.listView.SelectedItem()
	if !ok {
		placeholder := lipgloss.NewStyle().Padding(0, 1).Render(" ")
		empty := m.styles.PanelStyle(false).
			Width(width - 2).
			Height(height).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(m.styles.TextSecondary).
			Faint(true).
			Render("No builds match")
		return lipgloss.JoinVertical(lipgloss.Left, placeholder, empty)
	}

	headerRow := lipgloss.NewStyle().
		Foreground(m.styles.KindColor(item.Build.Kind)).
		Bold(true).
		Padding(0, 1).
		Render(Truncate(item.ProjectName+" / "+item.Badge(), width-2, true))

	body := m.styles.PanelStyle(m.detailFocused).
		Width(width - 2).
		Height(height).
		Render(m.detailViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, headerRow, body)
}

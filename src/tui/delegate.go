package tui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// listRenderingOverhead accounts for the panel border and the list's own padding.
const listRenderingOverhead = 10

// Delegate renders build items as table rows.
type Delegate struct {
	RankWidth int
	styles    *StyleConfig
}

// NewDelegate creates a new row delegate.
func NewDelegate(styles *StyleConfig) Delegate {
	return Delegate{RankWidth: 2, styles: styles}
}

// SetRankWidth sizes the rank column for the largest rank.
func (d *Delegate) SetRankWidth(maxRank int) {
	d.RankWidth = len(strconv.Itoa(maxRank))
	if d.RankWidth < 2 {
		d.RankWidth = 2
	}
}

// Height returns the height of a list item
func (d Delegate) Height() int {
	return 1
}

// Spacing returns spacing between items
func (d Delegate) Spacing() int {
	return 0
}

// Update handles item updates
func (d Delegate) Update(msg tea.Msg, m *list.Model) tea.Cmd {
	return nil
}

// Render renders a list item
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	entry, ok := item.(Item)
	if !ok {
		return
	}

	rankCol := fmt.Sprintf("%*d", d.RankWidth, entry.Rank)
	depsCol := fmt.Sprintf("%3d", len(entry.Build.Dependencies))
	trigCol := " "
	if len(entry.Build.Triggers) > 0 {
		trigCol = "T"
	}

	// rank │ kind (3) │ deps (3) │ trigger (1) │ name
	fixedWidth := d.RankWidth + 3 + 3 + 1 + 12
	var name string
	if available := m.Width() - fixedWidth - listRenderingOverhead; available > 0 {
		name = TruncateAndPad(entry.Build.Name, available, true)
	}

	style := lipgloss.NewStyle().Foreground(d.styles.TextSecondary)
	badge := lipgloss.NewStyle().Foreground(d.styles.KindColor(entry.Build.Kind))
	if index == m.Index() {
		style = style.Bold(true).Foreground(d.styles.PrimaryBlue).Background(d.styles.SelectedColor)
		badge = badge.Bold(true).Background(d.styles.SelectedColor)
	}

	sep := style.Render(" │ ")
	fmt.Fprint(w, style.Render(rankCol)+sep+badge.Render(entry.Badge())+sep+
		style.Render(depsCol)+sep+style.Render(trigCol)+sep+style.Render(name))
}

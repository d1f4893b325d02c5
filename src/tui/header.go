package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// FilterAll shows builds of every project.
const FilterAll = "ALL"

// Header represents the top status bar component.
type Header struct {
	title          string
	selectedFilter string
	projects       []string
	searchQuery    string
	searchMode     bool
	styles         *StyleConfig
}

// NewHeader creates a header cycling through the given project ids.
func NewHeader(title string, projects []string, styles *StyleConfig) Header {
	return Header{
		title:          title,
		selectedFilter: FilterAll,
		projects:       projects,
		styles:         styles,
	}
}

// Filter returns the current project filter.
func (h Header) Filter() string {
	return h.selectedFilter
}

// CycleFilter moves to the next project, wrapping back to ALL.
func (h *Header) CycleFilter() {
	filters := append([]string{FilterAll}, h.projects...)
	next := 0
	for i, f := range filters {
		if f == h.selectedFilter {
			next = (i + 1) % len(filters)
			break
		}
	}
	h.selectedFilter = filters[next]
}

// SetSearch updates the search state
func (h *Header) SetSearch(query string, mode bool) {
	h.searchQuery = query
	h.searchMode = mode
}

// Render renders the header
func (h Header) Render(width int) string {
	bold := lipgloss.NewStyle().
		Foreground(h.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 2)

	title := bold.Render(h.title)
	filter := bold.Render(fmt.Sprintf("Project: %s", h.selectedFilter))

	searchText := "[/] to search"
	switch {
	case h.searchMode:
		searchText = fmt.Sprintf("Search: %s█", h.searchQuery)
	case h.searchQuery != "":
		searchText = fmt.Sprintf("Search: %s", h.searchQuery)
	}
	searchStyle := lipgloss.NewStyle().
		Foreground(h.styles.TextSecondary).
		Padding(0, 2)
	if h.searchMode {
		searchStyle = searchStyle.Foreground(h.styles.PrimaryBlue)
	}

	content := lipgloss.JoinHorizontal(lipgloss.Left, title, filter, searchStyle.Render(searchText))
	if VisualWidth(content) > width {
		content = Truncate(StripANSI(content), width, true)
	}

	return lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width).
		MaxWidth(width).
		Render(content)
}

// Package tui provides a terminal browser for a generated project tree: a build
// list filtered by project and search, next to a detail view of the selected build.
package tui

import (
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tpgci/src/teamcity"
)

// MainModel is the Bubble Tea model of the browser.
type MainModel struct {
	header         Header
	listView       ListView
	detailViewport viewport.Model
	items          []Item
	styles         *StyleConfig

	width         int
	height        int
	ready         bool
	detailFocused bool
	searchMode    bool
	searchQuery   string
}

// NewMainModel creates the browser for root. title is shown in the header.
func NewMainModel(root *teamcity.Project, title string) MainModel {
	styles := DefaultStyles()

	var projects []string
	for _, p := range root.AllProjects() {
		if len(p.BuildTypes) > 0 {
			projects = append(projects, p.ID)
		}
	}

	m := MainModel{
		header:         NewHeader(title, projects, styles),
		listView:       NewListView(styles),
		detailViewport: viewport.New(0, 0),
		items:          ItemsFromTree(root),
		styles:         styles,
	}
	m.listView.SetItems(m.items)
	return m
}

// Init initializes the model. Required by tea.Model interface.
func (m MainModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resizeComponents()
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg)
		}
		if m.detailFocused {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m MainModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searchMode = false
		m.searchQuery = ""
	case tea.KeyEnter:
		m.searchMode = false
	case tea.KeyBackspace:
		if r := []rune(m.searchQuery); len(r) > 0 {
			m.searchQuery = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.searchQuery += string(msg.Runes)
	default:
		return m, nil
	}
	m.header.SetSearch(m.searchQuery, m.searchMode)
	m.applyFilter()
	return m, nil
}

func (m MainModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "esc", "left", "h":
		m.detailFocused = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detailViewport, cmd = m.detailViewport.Update(msg)
	return m, cmd
}

func (m MainModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "tab":
		m.header.CycleFilter()
		m.applyFilter()
		return m, nil
	case "/":
		m.searchMode = true
		m.header.SetSearch(m.searchQuery, true)
		return m, nil
	case "enter", "right", "l":
		if m.listView.Len() > 0 {
			m.detailFocused = true
		}
		return m, nil
	case "esc":
		if m.searchQuery != "" {
			m.searchQuery = ""
			m.header.SetSearch("", false)
			m.applyFilter()
		}
		return m, nil
	}

	before, _ := m.listView.SelectedItem()
	var cmd tea.Cmd
	m.listView, cmd = m.listView.Update(msg)
	if after, ok := m.listView.SelectedItem(); ok && (before.Build == nil || after.Build.ID != before.Build.ID) {
		m.updateDetailContent(after)
	}
	return m, cmd
}

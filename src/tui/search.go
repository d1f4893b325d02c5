package tui

import "strings"

// applyFilter narrows the list to the selected project and the search query.
func (m *MainModel) applyFilter() {
	project := m.header.Filter()
	query := strings.ToLower(strings.TrimSpace(m.searchQuery))

	filtered := []Item{}
	for _, item := range m.items {
		if project != FilterAll && item.ProjectID != project {
			continue
		}
		if query != "" && !item.Matches(query) {
			continue
		}
		filtered = append(filtered, item)
	}

	m.listView.SetItems(filtered)
	if item, ok := m.listView.SelectedItem(); ok {
		m.updateDetailContent(item)
	} else {
		m.detailViewport.SetContent("")
	}
}

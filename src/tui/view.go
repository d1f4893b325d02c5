package tui

import (
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
)

// ListView manages the list of build items.
type ListView struct {
	list     list.Model
	delegate *Delegate
}

// NewListView creates an empty list view.
func NewListView(styles *StyleConfig) ListView {
	delegate := NewDelegate(styles)
	l := list.New([]list.Item{}, &delegate, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)

	return ListView{list: l, delegate: &delegate}
}

// Update forwards navigation keys to the list.
func (v ListView) Update(msg tea.Msg) (ListView, tea.Cmd) {
	var cmd tea.Cmd
	v.list, cmd = v.list.Update(msg)
	return v, cmd
}

// SetSize sets the list dimensions
func (v *ListView) SetSize(width, height int) {
	v.list.SetSize(width, height)
}

// SetItems replaces the items and resets the selection to the first one.
func (v *ListView) SetItems(items []Item) {
	maxRank := 0
	listItems := make([]list.Item, len(items))
	for i, item := range items {
		if item.Rank > maxRank {
			maxRank = item.Rank
		}
		listItems[i] = item
	}
	v.delegate.SetRankWidth(maxRank)
	v.list.SetItems(listItems)
	v.list.Select(0)
}

// Len returns the number of visible items.
func (v ListView) Len() int {
	return len(v.list.Items())
}

// SelectedItem returns the currently selected build.
func (v ListView) SelectedItem() (Item, bool) {
	item, ok := v.list.SelectedItem().(Item)
	return item, ok
}

// Render returns the string representation of the view
func (v ListView) Render() string {
	return v.list.View()
}

// Delegate returns the delegate for accessing column widths
func (v ListView) Delegate() *Delegate {
	return v.delegate
}

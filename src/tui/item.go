package tui

import (
	"strings"

	"tpgci/src/teamcity"
)

// Item is one build configuration in the browser list.
// It implements bubbles/list.Item.
type Item struct {
	Build       *teamcity.BuildType
	ProjectID   string
	ProjectName string
	Rank        int
}

// FilterValue is the value used for fuzzy filtering.
func (i Item) FilterValue() string { return i.Build.ID + " " + i.Build.Name }

// Title returns the primary text for the item (required by list.Item).
func (i Item) Title() string { return i.Build.Name }

// Description returns the secondary text for the item (required by list.Item).
func (i Item) Description() string { return i.ProjectName }

// Matches reports whether the lowercased query appears in the build's id, name,
// kind, project, step names or parameter names.
func (i Item) Matches(query string) bool {
	fields := []string{i.Build.ID, i.Build.Name, string(i.Build.Kind), i.ProjectID, i.ProjectName}
	for _, s := range i.Build.Steps {
		fields = append(fields, s.Name)
	}
	for _, p := range i.Build.Params {
		fields = append(fields, p.Name)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	return false
}

// Badge is the short kind label shown in the list.
func (i Item) Badge() string {
	switch i.Build.Kind {
	case teamcity.KindPackage:
		return "PKG"
	case teamcity.KindServiceSweeper:
		return "SWP"
	case teamcity.KindProjectSweeper:
		return "PRJ"
	case teamcity.KindVcr:
		return "VCR"
	default:
		return "???"
	}
}

// ItemsFromTree lists every build of the tree in depth-first order.
func ItemsFromTree(root *teamcity.Project) []Item {
	var items []Item
	_ = root.Walk(func(p *teamcity.Project) error {
		for _, bt := range p.BuildTypes {
			items = append(items, Item{
				Build:       bt,
				ProjectID:   p.ID,
				ProjectName: p.Name,
				Rank:        len(items) + 1,
			})
		}
		return nil
	})
	return items
}

package store

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"tpgci/src/render"
	"tpgci/src/teamcity"
)

// Build change kinds.
const (
	BuildAdded    = "added"
	BuildRemoved  = "removed"
	BuildModified = "modified"
)

// BuildChange is a build type that differs between two generations.
type BuildChange struct {
	File    string
	BuildID string
	Change  string
}

// DriftReport lists the differences between two config sets.
type DriftReport struct {
	Added   []string
	Removed []string
	Changed []string
	Builds  []BuildChange
}

// Empty reports whether the two config sets were identical.
func (d DriftReport) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// String summarizes the report one line per entry.
func (d DriftReport) String() string {
	if d.Empty() {
		return "no drift"
	}
	var b strings.Builder
	for _, f := range d.Added {
		fmt.Fprintf(&b, "+ %s\n", f)
	}
	for _, f := range d.Removed {
		fmt.Fprintf(&b, "- %s\n", f)
	}
	for _, f := range d.Changed {
		fmt.Fprintf(&b, "~ %s\n", f)
	}
	for _, c := range d.Builds {
		fmt.Fprintf(&b, "  %s %s (%s)\n", c.Change, c.BuildID, c.File)
	}
	return b.String()
}

// Drift compares a previous config set with the current one. Changed files are
// decoded to name the build types that were added, removed or modified.
func Drift(prev, cur render.ConfigSet) (DriftReport, error) {
	var report DriftReport
	for _, name := range cur.Files() {
		old, ok := prev[name]
		switch {
		case !ok:
			report.Added = append(report.Added, name)
		case string(old) != string(cur[name]):
			report.Changed = append(report.Changed, name)
			changes, err := buildChanges(name, old, cur[name])
			if err != nil {
				return DriftReport{}, err
			}
			report.Builds = append(report.Builds, changes...)
		}
	}
	for _, name := range prev.Files() {
		if _, ok := cur[name]; !ok {
			report.Removed = append(report.Removed, name)
		}
	}
	return report, nil
}

func buildChanges(file string, old, cur []byte) ([]BuildChange, error) {
	_, _, before, err := render.Decode(old)
	if err != nil {
		return nil, fmt.Errorf("failed to decode previous %s: %w", file, err)
	}
	_, _, after, err := render.Decode(cur)
	if err != nil {
		return nil, fmt.Errorf("failed to decode current %s: %w", file, err)
	}

	prevByID := make(map[string]teamcity.BuildType, len(before))
	for _, bt := range before {
		prevByID[bt.ID] = bt
	}

	var changes []BuildChange
	seen := make(map[string]bool, len(after))
	for _, bt := range after {
		seen[bt.ID] = true
		old, ok := prevByID[bt.ID]
		switch {
		case !ok:
			changes = append(changes, BuildChange{File: file, BuildID: bt.ID, Change: BuildAdded})
		case !reflect.DeepEqual(old, bt):
			changes = append(changes, BuildChange{File: file, BuildID: bt.ID, Change: BuildModified})
		}
	}
	for _, bt := range before {
		if !seen[bt.ID] {
			changes = append(changes, BuildChange{File: file, BuildID: bt.ID, Change: BuildRemoved})
		}
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].BuildID < changes[j].BuildID
	})
	return changes, nil
}

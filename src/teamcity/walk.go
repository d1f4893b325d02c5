package teamcity

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("not found")

// SkipChildren returned from a Walk callback skips the project's subprojects.
var SkipChildren = errors.New("skip children")

// Walk visits p and its subprojects depth first, parents before children, in
// declaration order. It stops at the first error other than SkipChildren.
func (p *Project) Walk(fn func(p *Project) error) error {
	err := fn(p)
	if errors.Is(err, SkipChildren) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, sub := range p.SubProjects {
		if err := sub.Walk(fn); err != nil {
			return err
		}
	}
	return nil
}

// AllProjects returns p and every descendant in walk order.
func (p *Project) AllProjects() []*Project {
	var out []*Project
	_ = p.Walk(func(proj *Project) error {
		out = append(out, proj)
		return nil
	})
	return out
}

// AllBuildTypes returns every build type in the tree in walk order.
func (p *Project) AllBuildTypes() []*BuildType {
	var out []*BuildType
	_ = p.Walk(func(proj *Project) error {
		out = append(out, proj.BuildTypes...)
		return nil
	})
	return out
}

// FindProject returns the project with the given id.
func (p *Project) FindProject(id string) (*Project, error) {
	for _, proj := range p.AllProjects() {
		if proj.ID == id {
			return proj, nil
		}
	}
	return nil, fmt.Errorf("project %s: %w", id, ErrNotFound)
}

// FindBuildType returns the build type with the given id.
func (p *Project) FindBuildType(id string) (*BuildType, error) {
	for _, bt := range p.AllBuildTypes() {
		if bt.ID == id {
			return bt, nil
		}
	}
	return nil, fmt.Errorf("build type %s: %w", id, ErrNotFound)
}

// OwnerOf returns the project that directly holds the build type.
func (p *Project) OwnerOf(buildTypeID string) (*Project, error) {
	for _, proj := range p.AllProjects() {
		for _, bt := range proj.BuildTypes {
			if bt.ID == buildTypeID {
				return proj, nil
			}
		}
	}
	return nil, fmt.Errorf("build type %s: %w", buildTypeID, ErrNotFound)
}

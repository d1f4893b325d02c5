package projects

import (
	"fmt"

	"tpgci/src/builds"
	"tpgci/src/registry"
	"tpgci/src/teamcity"
)

// featureBranchProject tests a long-lived feature branch (e.g. a major release) once
// a week. Only the configured packages run; an empty list means all of them.
func (b *builder) featureBranchProject(channels []channel) (*teamcity.Project, error) {
	branch := b.in.Generator.FeatureBranch

	id, err := projectID(b.rootID, FeatureBranchProjectID, branch)
	if err != nil {
		return nil, err
	}

	p := &teamcity.Project{
		ID:          id,
		Name:        branch,
		Description: "Subproject for testing feature branch " + branch,
	}

	wanted := b.in.Generator.FeatureBranchPackages
	found := make(map[string]bool, len(wanted))

	for _, ch := range channels {
		reg := ch.reg
		if len(wanted) > 0 {
			var names []string
			for _, n := range wanted {
				if _, err := reg.Get(n); err == nil {
					names = append(names, n)
					found[n] = true
				}
			}
			if len(names) == 0 {
				continue
			}
			reg, err = reg.Subset(names)
			if err != nil {
				return nil, err
			}
		}

		sub, err := b.featureBranchChannel(id, branch, ch, reg)
		if err != nil {
			return nil, err
		}
		p.SubProjects = append(p.SubProjects, sub)
	}

	for _, n := range wanted {
		if !found[n] {
			return nil, fmt.Errorf("feature branch package %q: %w", n, registry.ErrNotFound)
		}
	}

	return p, nil
}

func (b *builder) featureBranchChannel(parentID, branch string, ch channel, reg *registry.Registry) (*teamcity.Project, error) {
	id, err := projectID(parentID, ch.key)
	if err != nil {
		return nil, err
	}

	vcs := teamcity.VcsRoot{
		ID:         id + "_VCS_ROOT",
		Name:       fmt.Sprintf("%s (%s)", ch.upstream.Name, branch),
		URL:        ch.upstream.URL,
		Branch:     "refs/heads/" + branch,
		BranchSpec: "+:refs/heads/" + branch,
	}

	trigger := builds.NightlyTriggerConfiguration{
		Branch:      "refs/heads/" + branch,
		Enabled:     b.schedule.FeatureBranchEnabled,
		StartHour:   builds.DefaultStartHour,
		DaysOfWeek:  b.schedule.FeatureBranchDaysOfWeek,
		DaysOfMonth: builds.DefaultDaysOfMonth,
	}

	return b.pipeline(pipelineOptions{
		id:          id,
		name:        ch.name + " - " + branch,
		description: "Weekly tests of " + branch + " for the " + ch.name + " provider",
		kind:        teamcity.PipelineFeatureBranch,
		channel:     ch,
		reg:         reg,
		vcsRootID:   vcs.ID,
		vcsRoots:    []teamcity.VcsRoot{vcs},
		trigger:     &trigger,
	})
}

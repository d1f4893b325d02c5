package projects

import (
	"tpgci/src/builds"
	"tpgci/src/teamcity"
)

// projectSweeperProject holds one project sweeper per channel. Each takes a write
// lock on every shared resource so it never deletes a project a test is using.
func (b *builder) projectSweeperProject(channels []channel) (*teamcity.Project, error) {
	id, err := projectID(b.rootID, ProjectSweeperProjectID)
	if err != nil {
		return nil, err
	}

	p := &teamcity.Project{
		ID:          id,
		Name:        "Project Sweeper",
		Description: "Subproject containing builds for sweeping projects created by acceptance tests",
	}

	for _, ch := range channels {
		bt, err := builds.SweeperBuild(builds.SweeperOptions{
			ProjectID:        id,
			Provider:         ch.provider,
			Name:             builds.ProjectSweeperName,
			Kind:             teamcity.KindProjectSweeper,
			Path:             ch.reg.SweeperPath(),
			VcsRootID:        ch.upstream.ID,
			Config:           ch.cfg,
			SharedResources:  b.resources,
			TerraformVersion: b.in.Generator.TerraformCoreVersion,
		})
		if err != nil {
			return nil, err
		}

		trigger := builds.DefaultNightlyTrigger()
		trigger.Branch = defaultVcsBranch
		trigger.StartHour = ProjectSweeperStartHour
		if err := builds.AddTrigger(bt, trigger); err != nil {
			return nil, err
		}

		p.BuildTypes = append(p.BuildTypes, bt)
	}

	return p, nil
}

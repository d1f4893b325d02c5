package projects

import (
	"tpgci/src/builds"
	"tpgci/src/registry"
	"tpgci/src/teamcity"
)

// channelProject holds the nightly, MM upstream and VCR projects of one channel.
func (b *builder) channelProject(ch channel) (*teamcity.Project, error) {
	id, err := projectID(b.rootID, ch.key)
	if err != nil {
		return nil, err
	}

	p := &teamcity.Project{
		ID:          id,
		Name:        ch.name,
		Description: "Subproject containing builds for testing the " + ch.name + " provider",
	}

	nightly, err := b.nightlyProject(id, ch)
	if err != nil {
		return nil, err
	}
	upstream, err := b.upstreamProject(id, ch)
	if err != nil {
		return nil, err
	}
	vcr, err := b.vcrProject(id, ch)
	if err != nil {
		return nil, err
	}

	p.SubProjects = []*teamcity.Project{nightly, upstream, vcr}
	return p, nil
}

// nightlyProject runs the full package set against the upstream repository on a schedule.
func (b *builder) nightlyProject(parentID string, ch channel) (*teamcity.Project, error) {
	id, err := projectID(parentID, NightlyTestsProjectID)
	if err != nil {
		return nil, err
	}

	trigger := builds.DefaultNightlyTrigger()
	trigger.DaysOfWeek = b.schedule.NightlyDaysOfWeek

	return b.pipeline(pipelineOptions{
		id:          id,
		name:        "Nightly Tests",
		description: "A project connected to the hashicorp/terraform-provider-" + ch.provider + " repository, where scheduled nightly tests run and users can trigger ad-hoc builds",
		kind:        teamcity.PipelineNightly,
		channel:     ch,
		reg:         ch.reg,
		vcsRootID:   ch.upstream.ID,
		trigger:     &trigger,
	})
}

// upstreamProject runs the same chain against the downstream mirror for ad hoc
// pre-merge testing. It is never scheduled.
func (b *builder) upstreamProject(parentID string, ch channel) (*teamcity.Project, error) {
	id, err := projectID(parentID, MMUpstreamProjectID)
	if err != nil {
		return nil, err
	}

	return b.pipeline(pipelineOptions{
		id:          id,
		name:        "Upstream MM Testing",
		description: "A project connected to the modular-magician/terraform-provider-" + ch.provider + " repository, to let users trigger ad-hoc builds against branches for PRs",
		kind:        teamcity.PipelineUpstream,
		channel:     ch,
		reg:         ch.reg,
		vcsRootID:   ch.downstream.ID,
	})
}

func (b *builder) vcrProject(parentID string, ch channel) (*teamcity.Project, error) {
	id, err := projectID(parentID, VcrRecordingProjectID)
	if err != nil {
		return nil, err
	}

	bt, err := builds.VcrBuild(builds.VcrOptions{
		ProjectID:        id,
		Provider:         ch.provider,
		VcsRootID:        ch.downstream.ID,
		Config:           b.in.Context.VcrConfig(),
		SharedResource:   SharedResourceNameVcr,
		TerraformVersion: b.in.Generator.TerraformCoreVersion,
	})
	if err != nil {
		return nil, err
	}

	return &teamcity.Project{
		ID:          id,
		Name:        "VCR Recording",
		Description: "A project connected to the modular-magician/terraform-provider-" + ch.provider + " repository, that records VCR cassettes",
		BuildTypes:  []*teamcity.BuildType{bt},
	}, nil
}

type pipelineOptions struct {
	id          string
	name        string
	description string
	kind        teamcity.PipelineKind
	channel     channel
	reg         *registry.Registry
	vcsRootID   string
	vcsRoots    []teamcity.VcsRoot

	// trigger is attached to the post-sweeper; nil leaves the pipeline manual only.
	trigger *builds.NightlyTriggerConfiguration
}

// pipeline assembles pre-sweep → packages → post-sweep in its own project.
//
// The single schedule trigger sits on the post-sweeper: its snapshot dependencies
// make the CI server queue the packages and, through them, the pre-sweeper.
func (b *builder) pipeline(o pipelineOptions) (*teamcity.Project, error) {
	ch := o.channel

	sweeper := func(name string) (*teamcity.BuildType, error) {
		return builds.SweeperBuild(builds.SweeperOptions{
			ProjectID:        o.id,
			Provider:         ch.provider,
			Name:             name,
			Kind:             teamcity.KindServiceSweeper,
			Path:             o.reg.SweeperPath(),
			VcsRootID:        o.vcsRootID,
			Config:           ch.cfg,
			SharedResources:  []string{ch.resource},
			TerraformVersion: b.in.Generator.TerraformCoreVersion,
		})
	}

	pre, err := sweeper(builds.PreSweeperName)
	if err != nil {
		return nil, err
	}
	post, err := sweeper(builds.PostSweeperName)
	if err != nil {
		return nil, err
	}

	pkgs, err := builds.PackageBuilds(o.reg, builds.PackageOptions{
		ProjectID:        o.id,
		Provider:         ch.provider,
		VcsRootID:        o.vcsRootID,
		Config:           ch.cfg,
		SharedResource:   ch.resource,
		TerraformVersion: b.in.Generator.TerraformCoreVersion,
	})
	if err != nil {
		return nil, err
	}

	if err := builds.Chain(pre, pkgs, post); err != nil {
		return nil, err
	}

	if o.trigger != nil {
		if err := builds.AddTrigger(post, *o.trigger); err != nil {
			return nil, err
		}
	}

	bts := make([]*teamcity.BuildType, 0, len(pkgs)+2)
	bts = append(bts, pre)
	bts = append(bts, pkgs...)
	bts = append(bts, post)

	return &teamcity.Project{
		ID:          o.id,
		Name:        o.name,
		Description: o.description,
		Pipeline:    o.kind,
		VcsRoots:    o.vcsRoots,
		BuildTypes:  bts,
	}, nil
}

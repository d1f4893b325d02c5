// Package projects nests the generated build types into the project tree the CI
// server loads: a root project with shared resources and VCS roots, one subproject
// per release channel holding the nightly, MM upstream and VCR projects, a project
// sweeper subproject and an optional feature branch subproject.
package projects

import (
	"context"
	"fmt"

	"tpgci/src/builds"
	"tpgci/src/config"
	"tpgci/src/registry"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

const (
	NightlyTestsProjectID   = "NightlyTests"
	MMUpstreamProjectID     = "MMUpstreamTests"
	VcrRecordingProjectID   = "VCRRecording"
	ProjectSweeperProjectID = "ProjectSweeper"
	FeatureBranchProjectID  = "FeatureBranch"

	// ProjectSweeperStartHour runs after the nightly chains have finished.
	ProjectSweeperStartHour = 12
)

// Inputs is everything generation reads. Identical inputs produce an identical tree.
type Inputs struct {
	Context   config.AllContextParameters
	Generator config.Generator
	Ga        *registry.Registry
	Beta      *registry.Registry
}

// DefaultInputs pairs cfg with the embedded package tables.
func DefaultInputs(cfg *config.Config) (Inputs, error) {
	ga, err := registry.LoadGa()
	if err != nil {
		return Inputs{}, fmt.Errorf("failed to load GA packages: %w", err)
	}
	beta, err := registry.LoadBeta()
	if err != nil {
		return Inputs{}, fmt.Errorf("failed to load Beta packages: %w", err)
	}
	return Inputs{
		Context:   cfg.Context,
		Generator: cfg.Generator,
		Ga:        ga,
		Beta:      beta,
	}, nil
}

// channel describes one release channel of the provider.
type channel struct {
	key        string // GA or BETA, used in project ids
	name       string
	provider   string
	reg        *registry.Registry
	cfg        config.AccTestConfiguration
	resource   string
	upstream   teamcity.VcsRoot
	downstream teamcity.VcsRoot
}

// builder carries the state shared while assembling one tree.
type builder struct {
	in        Inputs
	rootID    string
	schedule  Schedule
	vcs       vcsRoots
	resources []string
}

// Build assembles the full project tree. Any construction error aborts the build;
// no partial tree is returned.
func Build(ctx context.Context, in Inputs) (*teamcity.Project, error) {
	if in.Ga == nil || in.Beta == nil {
		return nil, fmt.Errorf("both GA and Beta package registries are required")
	}

	schedule, err := CronForEnvironment(in.Generator.Environment)
	if err != nil {
		return nil, err
	}

	rootID, err := sanitize.ID(in.Generator.RootProjectID)
	if err != nil {
		return nil, fmt.Errorf("root project id: %w", err)
	}

	b := &builder{
		in:        in,
		rootID:    rootID,
		schedule:  schedule,
		vcs:       newVcsRoots(rootID),
		resources: []string{SharedResourceNameGa, SharedResourceNameBeta, SharedResourceNameVcr},
	}

	root := &teamcity.Project{
		ID:          rootID,
		Name:        "Google Provider",
		Description: "Acceptance tests for the Google Cloud provider",
		VcsRoots:    b.vcs.list(),
	}
	builds.ReadOnlySettings(&root.Params)

	gaRes, err := sharedResource(SharedResourceNameGa, in.Ga)
	if err != nil {
		return nil, err
	}
	betaRes, err := sharedResource(SharedResourceNameBeta, in.Beta)
	if err != nil {
		return nil, err
	}
	vcrRes, err := sharedResource(SharedResourceNameVcr, in.Ga, in.Beta)
	if err != nil {
		return nil, err
	}
	root.SharedResources = []teamcity.SharedResource{gaRes, betaRes, vcrRes}

	channels := []channel{
		{
			key:        "GA",
			name:       "Google",
			provider:   registry.ProviderGa,
			reg:        in.Ga,
			cfg:        in.Context.GaConfig(),
			resource:   SharedResourceNameGa,
			upstream:   b.vcs.UpstreamGa,
			downstream: b.vcs.DownstreamGa,
		},
		{
			key:        "BETA",
			name:       "Google Beta",
			provider:   registry.ProviderBeta,
			reg:        in.Beta,
			cfg:        in.Context.BetaConfig(),
			resource:   SharedResourceNameBeta,
			upstream:   b.vcs.UpstreamBeta,
			downstream: b.vcs.DownstreamBeta,
		},
	}

	for _, ch := range channels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sub, err := b.channelProject(ch)
		if err != nil {
			return nil, fmt.Errorf("failed to build %s project: %w", ch.name, err)
		}
		root.SubProjects = append(root.SubProjects, sub)
	}

	sweepers, err := b.projectSweeperProject(channels)
	if err != nil {
		return nil, fmt.Errorf("failed to build project sweeper project: %w", err)
	}
	root.SubProjects = append(root.SubProjects, sweepers)

	if in.Generator.FeatureBranch != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		feature, err := b.featureBranchProject(channels)
		if err != nil {
			return nil, fmt.Errorf("failed to build feature branch project: %w", err)
		}
		root.SubProjects = append(root.SubProjects, feature)
	}

	return root, nil
}

// projectID derives a child project id from its parent's.
func projectID(parent string, parts ...string) (string, error) {
	return sanitize.ID(append([]string{parent}, parts...)...)
}

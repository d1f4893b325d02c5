package builds

import (
	"fmt"

	"tpgci/src/config"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

// SweeperOptions describes a cleanup build.
type SweeperOptions struct {
	ProjectID string
	Provider  string

	// Name is the build's display name, e.g. PreSweeperName or ProjectSweeperName.
	Name string
	Kind teamcity.BuildKind

	// Path is the sweeper package, usually the registry's SweeperPath.
	Path      string
	VcsRootID string
	Config    config.AccTestConfiguration

	// SharedResources are all write-locked while the sweeper runs.
	SharedResources []string

	Regions          string
	TerraformVersion string
	Parallelism      int
	TimeoutMinutes   int
}

// SweeperBuild assembles a service or project sweeper. Sweepers never upload debug logs.
func SweeperBuild(opts SweeperOptions) (*teamcity.BuildType, error) {
	var sweepRun string
	var sweepProjects bool
	switch opts.Kind {
	case teamcity.KindServiceSweeper:
		// Empty runs every sweeper except the project one.
		sweepRun = ""
	case teamcity.KindProjectSweeper:
		sweepRun = ProjectSweepRun
		sweepProjects = true
	default:
		return nil, fmt.Errorf("sweeper %q: unsupported build kind %q", opts.Name, opts.Kind)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("sweeper %q in %s: path is required", opts.Name, opts.ProjectID)
	}

	id, err := sanitize.ID(opts.ProjectID, opts.Provider, opts.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build id for sweeper %s: %w", opts.Name, err)
	}

	regions := opts.Regions
	if regions == "" {
		regions = DefaultSweeperRegions
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	timeout := opts.TimeoutMinutes
	if timeout <= 0 {
		timeout = SweeperTimeoutMinutes
	}

	bt := &teamcity.BuildType{
		ID:          id,
		Name:        opts.Name,
		Description: fmt.Sprintf("%s for %s", sweeperDescription(opts.Kind), opts.Provider),
		Kind:        opts.Kind,
		VcsRootID:   opts.VcsRootID,
		Steps: []teamcity.Step{
			setCommitBuildIDStep(),
			tagTriggerMethodStep(),
			configureGoEnvStep(),
			downloadTerraformStep(),
			runSweepersStep(),
		},
		Failure: teamcity.FailureConditions{
			ErrorMessage:        true,
			ExecutionTimeoutMin: timeout,
		},
		ArtifactRules: []string{ArtifactRulesDebugLogs},
	}

	p := &bt.Params
	googleTestParams(p, opts.Config)
	acceptanceTestParams(p, parallelism, DefaultTestPrefix, DefaultTestTimeoutHours, false)
	sweeperParams(p, regions, sweepRun)
	projectSweepParams(p, sweepProjects)
	loggingParams(p, opts.Config, opts.Provider)
	terraformBinaryParams(p, opts.TerraformVersion)
	schemaPanicParams(p)
	ReadOnlySettings(p)
	workingDirectory(p, opts.Path)

	for _, res := range opts.SharedResources {
		bt.Locks = append(bt.Locks, teamcity.Lock{Resource: res, Mode: teamcity.WriteLock})
	}

	return bt, nil
}

func sweeperDescription(kind teamcity.BuildKind) string {
	if kind == teamcity.KindProjectSweeper {
		return "Deletes leftover test projects"
	}
	return "Deletes leftover resources created by acceptance tests"
}

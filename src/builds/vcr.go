package builds

import (
	"fmt"

	"tpgci/src/config"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

type VcrOptions struct {
	ProjectID string
	Provider  string
	VcsRootID string
	Config    config.AccTestConfiguration

	// SharedResource is write-locked: recording touches every service.
	SharedResource string

	TerraformVersion string
	TimeoutMinutes   int
}

// VcrBuild assembles the build that records VCR cassettes for the whole provider.
func VcrBuild(opts VcrOptions) (*teamcity.BuildType, error) {
	id, err := sanitize.ID(opts.ProjectID, opts.Provider, VcrBuildName)
	if err != nil {
		return nil, fmt.Errorf("failed to build id for VCR build: %w", err)
	}

	timeout := opts.TimeoutMinutes
	if timeout <= 0 {
		timeout = DefaultBuildTimeoutMinutes
	}

	bt := &teamcity.BuildType{
		ID:          id,
		Name:        VcrBuildName,
		Description: "Records HTTP interactions for replay in presubmit tests",
		Kind:        teamcity.KindVcr,
		VcsRootID:   opts.VcsRootID,
		Steps: []teamcity.Step{
			setCommitBuildIDStep(),
			tagTriggerMethodStep(),
			configureGoEnvStep(),
			downloadTerraformStep(),
			vcrSetupStep(),
			vcrRunTestsStep(),
			vcrSaveCassettesStep(),
		},
		Failure: teamcity.FailureConditions{
			ErrorMessage:        true,
			ExecutionTimeoutMin: timeout,
		},
		ArtifactRules: []string{ArtifactRulesDebugLogs},
	}

	p := &bt.Params
	googleTestParams(p, opts.Config)
	vcrParams(p, opts.Config, opts.Provider)
	acceptanceTestParams(p, DefaultParallelism, DefaultTestPrefix, DefaultTestTimeoutHours, false)
	loggingParams(p, opts.Config, opts.Provider)
	terraformBinaryParams(p, opts.TerraformVersion)
	schemaPanicParams(p)
	ReadOnlySettings(p)

	if opts.SharedResource != "" {
		bt.Locks = []teamcity.Lock{{Resource: opts.SharedResource, Mode: teamcity.WriteLock}}
	}

	return bt, nil
}

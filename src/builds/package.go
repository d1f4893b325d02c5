package builds

import (
	"fmt"

	"tpgci/src/config"
	"tpgci/src/registry"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

// PackageOptions describes one package build. Zero values fall back to the
// package's own overrides and then to the pipeline defaults.
type PackageOptions struct {
	// ProjectID is the id of the pipeline project the build lives in.
	ProjectID string
	Provider  string
	Package   registry.Package
	VcsRootID string
	Config    config.AccTestConfiguration

	// SharedResource is the channel lock the build takes a value of. Empty means no lock.
	SharedResource string

	TerraformVersion string
	Parallelism      int
	TimeoutMinutes   int
	TestPrefix       string
	ReleaseDiff      bool
}

func (o PackageOptions) parallelism() int {
	switch {
	case o.Parallelism > 0:
		return o.Parallelism
	case o.Package.Parallelism > 0:
		return o.Package.Parallelism
	}
	return DefaultParallelism
}

func (o PackageOptions) timeoutMinutes() int {
	switch {
	case o.TimeoutMinutes > 0:
		return o.TimeoutMinutes
	case o.Package.TimeoutMinutes > 0:
		return o.Package.TimeoutMinutes
	}
	return DefaultBuildTimeoutMinutes
}

// PackageBuildID returns the build type id for a package: {project}_{provider}_PACKAGE_{package}.
func PackageBuildID(projectID, provider, pkg string) (string, error) {
	return sanitize.ID(projectID, provider, "PACKAGE", pkg)
}

// PackageBuild assembles the acceptance test build for one package.
func PackageBuild(opts PackageOptions) (*teamcity.BuildType, error) {
	if opts.Package.Name == "" || opts.Package.Path == "" {
		return nil, fmt.Errorf("package build in %s: package name and path are required", opts.ProjectID)
	}

	id, err := PackageBuildID(opts.ProjectID, opts.Provider, opts.Package.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to build id for package %s: %w", opts.Package.Name, err)
	}

	prefix := opts.TestPrefix
	if prefix == "" {
		prefix = DefaultTestPrefix
	}
	timeout := opts.timeoutMinutes()

	bt := &teamcity.BuildType{
		ID:        id,
		Name:      opts.Package.DisplayName + " - Acceptance Tests",
		Kind:      teamcity.KindPackage,
		VcsRootID: opts.VcsRootID,
		Steps: []teamcity.Step{
			setCommitBuildIDStep(),
			tagTriggerMethodStep(),
			configureGoEnvStep(),
			downloadTerraformStep(),
			runAcceptanceTestsStep(),
			uploadDebugLogsStep(),
			archiveArtifactsStep(),
		},
		Failure: teamcity.FailureConditions{
			ErrorMessage:        true,
			ExecutionTimeoutMin: timeout,
		},
		ArtifactRules: []string{ArtifactRulesDebugLogs},
	}

	p := &bt.Params
	googleTestParams(p, opts.Config)
	acceptanceTestParams(p, opts.parallelism(), prefix, DefaultTestTimeoutHours, opts.ReleaseDiff)
	loggingParams(p, opts.Config, opts.Provider)
	terraformBinaryParams(p, opts.TerraformVersion)
	schemaPanicParams(p)
	ReadOnlySettings(p)
	workingDirectory(p, opts.Package.Path)

	if opts.SharedResource != "" {
		bt.Locks = []teamcity.Lock{{
			Resource: opts.SharedResource,
			Mode:     teamcity.SpecificLock,
			Value:    opts.Package.Name,
		}}
	}

	return bt, nil
}

// PackageBuilds assembles one build per registry package, sorted by package name.
// opts.Package is ignored. Any failure aborts the whole set.
func PackageBuilds(reg *registry.Registry, opts PackageOptions) ([]*teamcity.BuildType, error) {
	out := make([]*teamcity.BuildType, 0, reg.Len())
	seen := make(map[string]string, reg.Len())

	for _, pkg := range reg.Packages() {
		o := opts
		o.Package = pkg
		bt, err := PackageBuild(o)
		if err != nil {
			return nil, err
		}
		// Two names can sanitize to the same id, e.g. "foo-bar" and "foobar".
		if other, dup := seen[bt.ID]; dup {
			return nil, fmt.Errorf("packages %s and %s both map to build id %s: %w", other, pkg.Name, bt.ID, sanitize.ErrInvalidID)
		}
		seen[bt.ID] = pkg.Name
		out = append(out, bt)
	}

	return out, nil
}

// Package teamcity models the configuration tree consumed by the CI server:
// projects, build types and the parameters, steps, triggers, dependencies and
// locks attached to them.
//
// The model is plain data. Builders in the builds and projects packages construct
// it once; nothing mutates it afterwards.
package teamcity

type ParamKind string

const (
	ParamText     ParamKind = "text"
	ParamPassword ParamKind = "password"
)

type ParamDisplay string

const (
	DisplayNormal ParamDisplay = "normal"
	DisplayHidden ParamDisplay = "hidden"
)

// Param is a build or project parameter. Names starting with env. are exported to
// build steps as environment variables by the CI server.
type Param struct {
	Name        string       `yaml:"name" json:"name"`
	Value       string       `yaml:"value" json:"value"`
	Kind        ParamKind    `yaml:"kind" json:"kind"`
	Display     ParamDisplay `yaml:"display" json:"display"`
	Label       string       `yaml:"label,omitempty" json:"label,omitempty"`
	Description string       `yaml:"description,omitempty" json:"description,omitempty"`
}

// Secret reports whether the value must be masked when shown.
func (p Param) Secret() bool {
	return p.Kind == ParamPassword
}

// Step is one shell script run by a build.
type Step struct {
	Name   string `yaml:"name" json:"name"`
	Script string `yaml:"script" json:"script"`
}

// VcsRoot is a repository checkout definition.
type VcsRoot struct {
	ID         string `yaml:"id" json:"id"`
	Name       string `yaml:"name" json:"name"`
	URL        string `yaml:"url" json:"url"`
	Branch     string `yaml:"branch" json:"branch"`
	BranchSpec string `yaml:"branch_spec" json:"branch_spec"`
}

// Cron is a schedule in the CI server's cron dialect. Hours is a single hour; the
// day fields accept cron lists and ranges.
type Cron struct {
	Hours      string `yaml:"hours" json:"hours"`
	DayOfWeek  string `yaml:"day_of_week" json:"day_of_week"`
	DayOfMonth string `yaml:"day_of_month" json:"day_of_month"`
	Timezone   string `yaml:"timezone" json:"timezone"`
}

type ScheduleTrigger struct {
	Enabled                bool   `yaml:"enabled" json:"enabled"`
	BranchFilter           string `yaml:"branch_filter" json:"branch_filter"`
	Cron                   Cron   `yaml:"cron" json:"cron"`
	TriggerBuild           string `yaml:"trigger_build" json:"trigger_build"`
	WithPendingChangesOnly bool   `yaml:"with_pending_changes_only" json:"with_pending_changes_only"`
	CleanCheckoutForDeps   bool   `yaml:"clean_checkout_for_dependencies" json:"clean_checkout_for_dependencies"`
}

// FailureAction is what a dependent build does when its dependency fails or is cancelled.
type FailureAction string

const (
	FailToStart FailureAction = "FAIL_TO_START"
	AddProblem  FailureAction = "ADD_PROBLEM"
	Ignore      FailureAction = "IGNORE"
)

// SnapshotDependency makes a build wait for, and run on the same sources as, another build.
type SnapshotDependency struct {
	BuildTypeID         string        `yaml:"build_type" json:"build_type"`
	OnDependencyFailure FailureAction `yaml:"on_failure" json:"on_failure"`
	OnDependencyCancel  FailureAction `yaml:"on_cancel" json:"on_cancel"`
}

// SharedResource is a custom-values resource; builds lock individual values or the whole resource.
type SharedResource struct {
	ID     string   `yaml:"id" json:"id"`
	Name   string   `yaml:"name" json:"name"`
	Values []string `yaml:"values" json:"values"`
}

type LockMode string

const (
	ReadLock     LockMode = "readLock"
	WriteLock    LockMode = "writeLock"
	SpecificLock LockMode = "specific"
)

// Lock references a shared resource by name. Value is set only for SpecificLock.
type Lock struct {
	Resource string   `yaml:"resource" json:"resource"`
	Mode     LockMode `yaml:"mode" json:"mode"`
	Value    string   `yaml:"value,omitempty" json:"value,omitempty"`
}

type FailureConditions struct {
	ErrorMessage        bool `yaml:"error_message" json:"error_message"`
	ExecutionTimeoutMin int  `yaml:"execution_timeout_min" json:"execution_timeout_min"`
}

// BuildKind tags what a build type is for.
type BuildKind string

const (
	KindPackage        BuildKind = "package"
	KindServiceSweeper BuildKind = "service-sweeper"
	KindProjectSweeper BuildKind = "project-sweeper"
	KindVcr            BuildKind = "vcr"
)

// Sweeper reports whether the kind is a cleanup build.
func (k BuildKind) Sweeper() bool {
	return k == KindServiceSweeper || k == KindProjectSweeper
}

type BuildType struct {
	ID            string               `yaml:"id" json:"id"`
	Name          string               `yaml:"name" json:"name"`
	Description   string               `yaml:"description,omitempty" json:"description,omitempty"`
	Kind          BuildKind            `yaml:"kind" json:"kind"`
	VcsRootID     string               `yaml:"vcs_root" json:"vcs_root"`
	Steps         []Step               `yaml:"steps" json:"steps"`
	Params        Params               `yaml:"params" json:"params"`
	Locks         []Lock               `yaml:"locks,omitempty" json:"locks,omitempty"`
	Triggers      []ScheduleTrigger    `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Dependencies  []SnapshotDependency `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
	Failure       FailureConditions    `yaml:"failure_conditions" json:"failure_conditions"`
	ArtifactRules []string             `yaml:"artifact_rules,omitempty" json:"artifact_rules,omitempty"`
}

// HasStep reports whether the build runs a step with the given name.
func (b *BuildType) HasStep(name string) bool {
	for _, s := range b.Steps {
		if s.Name == name {
			return true
		}
	}
	return false
}

// PipelineKind tags a project that holds a pre-sweep → packages → post-sweep chain.
type PipelineKind string

const (
	PipelineNone          PipelineKind = ""
	PipelineNightly       PipelineKind = "nightly"
	PipelineUpstream      PipelineKind = "mm-upstream"
	PipelineFeatureBranch PipelineKind = "feature-branch"
)

type Project struct {
	ID              string           `yaml:"id" json:"id"`
	Name            string           `yaml:"name" json:"name"`
	Description     string           `yaml:"description,omitempty" json:"description,omitempty"`
	Pipeline        PipelineKind     `yaml:"pipeline,omitempty" json:"pipeline,omitempty"`
	Params          Params           `yaml:"params,omitempty" json:"params,omitempty"`
	VcsRoots        []VcsRoot        `yaml:"vcs_roots,omitempty" json:"vcs_roots,omitempty"`
	SharedResources []SharedResource `yaml:"shared_resources,omitempty" json:"shared_resources,omitempty"`
	BuildTypes      []*BuildType     `yaml:"build_types,omitempty" json:"build_types,omitempty"`
	SubProjects     []*Project       `yaml:"-" json:"-"`
}

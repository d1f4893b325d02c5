// Package validate checks a generated tree against the rules the CI server and the
// pipeline conventions impose, before anything is written or published.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"tpgci/src/builds"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

// Violation is one broken rule.
type Violation struct {
	Rule    string `json:"rule"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return fmt.Sprintf("[%s] %s: %s", v.Rule, v.Subject, v.Message)
}

// Rule names.
const (
	RuleInvalidID        = "invalid-id"
	RuleDuplicateID      = "duplicate-id"
	RuleUnknownDep       = "unknown-dependency"
	RuleCycle            = "dependency-cycle"
	RuleTriggerCount     = "trigger-count"
	RuleUpstreamTrigger  = "upstream-trigger"
	RuleDebugLogs        = "debug-log-upload"
	RuleSweeperDebugLogs = "sweeper-debug-log-upload"
	RulePostSweep        = "post-sweep-dependencies"
	RuleUnknownResource  = "unknown-shared-resource"
	RuleLockValue        = "lock-value"
	RuleUnknownVcsRoot   = "unknown-vcs-root"
)

// Error wraps the violations of a tree that failed validation.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	lines := make([]string, 0, len(e.Violations)+1)
	lines = append(lines, fmt.Sprintf("%d configuration violations", len(e.Violations)))
	for _, v := range e.Violations {
		lines = append(lines, "  "+v.String())
	}
	return strings.Join(lines, "\n")
}

// Check returns an *Error when Tree reports any violation.
func Check(root *teamcity.Project) error {
	if vs := Tree(root); len(vs) > 0 {
		return &Error{Violations: vs}
	}
	return nil
}

// Tree returns every violation in the tree, sorted by rule and subject.
func Tree(root *teamcity.Project) []Violation {
	var vs []Violation
	add := func(rule, subject, format string, args ...interface{}) {
		vs = append(vs, Violation{Rule: rule, Subject: subject, Message: fmt.Sprintf(format, args...)})
	}

	checkIDs(root, add)
	checkDependencies(root, add)
	checkResources(root, add)
	checkPipelines(root, add)
	checkBuildKinds(root, add)

	sort.SliceStable(vs, func(i, j int) bool {
		if vs[i].Rule != vs[j].Rule {
			return vs[i].Rule < vs[j].Rule
		}
		return vs[i].Subject < vs[j].Subject
	})
	return vs
}

type addFunc func(rule, subject, format string, args ...interface{})

func checkIDs(root *teamcity.Project, add addFunc) {
	projects := make(map[string]bool)
	for _, p := range root.AllProjects() {
		if !sanitize.Valid(p.ID) {
			add(RuleInvalidID, p.ID, "project id must start with a letter, use only letters, digits and underscores and be at most %d characters", sanitize.MaxIDLength)
		}
		if projects[p.ID] {
			add(RuleDuplicateID, p.ID, "project id is used more than once")
		}
		projects[p.ID] = true
	}

	buildTypes := make(map[string]bool)
	for _, bt := range root.AllBuildTypes() {
		if !sanitize.Valid(bt.ID) {
			add(RuleInvalidID, bt.ID, "build type id must start with a letter, use only letters, digits and underscores and be at most %d characters", sanitize.MaxIDLength)
		}
		if buildTypes[bt.ID] || projects[bt.ID] {
			add(RuleDuplicateID, bt.ID, "build type id is used more than once")
		}
		buildTypes[bt.ID] = true
	}
}

func checkDependencies(root *teamcity.Project, add addFunc) {
	known := make(map[string]*teamcity.BuildType)
	for _, bt := range root.AllBuildTypes() {
		known[bt.ID] = bt
	}

	for _, bt := range root.AllBuildTypes() {
		for _, dep := range bt.Dependencies {
			if _, ok := known[dep.BuildTypeID]; !ok {
				add(RuleUnknownDep, bt.ID, "depends on unknown build type %s", dep.BuildTypeID)
			}
		}
	}

	for _, cycle := range findCycles(root.AllBuildTypes()) {
		add(RuleCycle, cycle[0], "snapshot dependencies form a cycle: %s", strings.Join(cycle, " → "))
	}
}

func checkResources(root *teamcity.Project, add addFunc) {
	resources := make(map[string]map[string]bool)
	vcs := make(map[string]bool)
	for _, p := range root.AllProjects() {
		for _, r := range p.SharedResources {
			values := make(map[string]bool, len(r.Values))
			for _, v := range r.Values {
				values[v] = true
			}
			resources[r.Name] = values
		}
		for _, v := range p.VcsRoots {
			vcs[v.ID] = true
		}
	}

	for _, bt := range root.AllBuildTypes() {
		if bt.VcsRootID != "" && !vcs[bt.VcsRootID] {
			add(RuleUnknownVcsRoot, bt.ID, "uses undeclared VCS root %s", bt.VcsRootID)
		}
		for _, l := range bt.Locks {
			values, ok := resources[l.Resource]
			if !ok {
				add(RuleUnknownResource, bt.ID, "locks undeclared shared resource %q", l.Resource)
				continue
			}
			if l.Mode == teamcity.SpecificLock && !values[l.Value] {
				add(RuleLockValue, bt.ID, "locks value %q which %q does not define", l.Value, l.Resource)
			}
		}
	}
}

func checkPipelines(root *teamcity.Project, add addFunc) {
	for _, p := range root.AllProjects() {
		if p.Pipeline == teamcity.PipelineNone {
			continue
		}

		triggers := 0
		pkgs := make(map[string]bool)
		var post *teamcity.BuildType
		for _, bt := range p.BuildTypes {
			triggers += len(bt.Triggers)
			if bt.Kind == teamcity.KindPackage {
				pkgs[bt.ID] = true
			}
			if bt.Name == builds.PostSweeperName {
				post = bt
			}
		}

		switch p.Pipeline {
		case teamcity.PipelineUpstream:
			if triggers > 0 {
				add(RuleUpstreamTrigger, p.ID, "MM upstream pipeline has %d schedule triggers, want none", triggers)
			}
		default:
			if triggers != 1 {
				add(RuleTriggerCount, p.ID, "%s pipeline has %d schedule triggers, want exactly one", p.Pipeline, triggers)
			}
		}

		if post == nil {
			add(RulePostSweep, p.ID, "pipeline has no post-sweeper")
			continue
		}
		deps := make(map[string]bool, len(post.Dependencies))
		for _, d := range post.Dependencies {
			deps[d.BuildTypeID] = true
			if !pkgs[d.BuildTypeID] {
				add(RulePostSweep, post.ID, "depends on %s which is not a package build of %s", d.BuildTypeID, p.ID)
			}
			if d.OnDependencyFailure != teamcity.Ignore || d.OnDependencyCancel != teamcity.Ignore {
				add(RulePostSweep, post.ID, "dependency on %s must ignore failure and cancellation", d.BuildTypeID)
			}
		}
		for id := range pkgs {
			if !deps[id] {
				add(RulePostSweep, post.ID, "does not depend on package build %s", id)
			}
		}
	}
}

func checkBuildKinds(root *teamcity.Project, add addFunc) {
	for _, bt := range root.AllBuildTypes() {
		uploads := bt.HasStep(builds.StepUploadDebugLogs)
		switch {
		case bt.Kind == teamcity.KindPackage && !uploads:
			add(RuleDebugLogs, bt.ID, "package build does not upload debug logs")
		case bt.Kind.Sweeper() && uploads:
			add(RuleSweeperDebugLogs, bt.ID, "sweeper uploads debug logs")
		}
	}
}

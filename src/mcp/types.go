package mcp

import "tpgci/src/teamcity"

// ProjectSummary is one entry of list_projects.
type ProjectSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Parent      string   `json:"parent,omitempty"`
	Pipeline    string   `json:"pipeline,omitempty"`
	File        string   `json:"file"`
	BuildCount  int      `json:"build_count"`
	SubProjects []string `json:"subprojects,omitempty"`
}

// BuildSummary is one entry of list_builds.
type BuildSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Triggers     int    `json:"triggers"`
	Dependencies int    `json:"dependencies"`
}

// BuildDetail is the get_build response. Secret parameter values are masked.
type BuildDetail struct {
	ID            string                        `json:"id"`
	Name          string                        `json:"name"`
	Description   string                        `json:"description,omitempty"`
	Kind          string                        `json:"kind"`
	Project       string                        `json:"project"`
	VcsRootID     string                        `json:"vcs_root_id"`
	Params        []teamcity.Param              `json:"params"`
	Steps         []teamcity.Step               `json:"steps"`
	Locks         []teamcity.Lock               `json:"locks,omitempty"`
	Triggers      []teamcity.ScheduleTrigger    `json:"triggers,omitempty"`
	Dependencies  []teamcity.SnapshotDependency `json:"dependencies,omitempty"`
	Failure       teamcity.FailureConditions    `json:"failure"`
	ArtifactRules []string                      `json:"artifact_rules,omitempty"`
}

// PipelineView is the get_pipeline response: build ids grouped into stages
// that can run once every earlier stage finished.
type PipelineView struct {
	Project     string     `json:"project"`
	Pipeline    string     `json:"pipeline,omitempty"`
	Stages      [][]string `json:"stages"`
	TriggeredBy []string   `json:"triggered_by,omitempty"`
}

// DigestInfo is the digest response.
type DigestInfo struct {
	Environment string            `json:"environment"`
	Digest      string            `json:"digest"`
	FileCount   int               `json:"file_count"`
	Files       map[string]string `json:"files"`
}

// Package mcp serves the generated project tree over the Model Context Protocol
// so that assistants can answer questions about builds, locks and schedules.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"tpgci/src/render"
	"tpgci/src/sanitize"
	"tpgci/src/teamcity"
)

// Server is the MCP server for a generated tree.
type Server struct {
	mcpServer   *server.MCPServer
	root        *teamcity.Project
	files       render.ConfigSet
	environment string
	parents     map[string]string // project id -> parent id
}

// NewServer creates a server over root and its rendered files.
func NewServer(root *teamcity.Project, files render.ConfigSet, environment, version string) *Server {
	s := server.NewMCPServer(
		"tpgci",
		version,
		server.WithToolCapabilities(true),
	)

	srv := &Server{
		mcpServer:   s,
		root:        root,
		files:       files,
		environment: environment,
		parents:     make(map[string]string),
	}
	_ = root.Walk(func(p *teamcity.Project) error {
		for _, sub := range p.SubProjects {
			srv.parents[sub.ID] = p.ID
		}
		return nil
	})
	srv.registerTools()

	return srv
}

// registerTools registers all available tools.
func (s *Server) registerTools() {
	listProjects := mcp.NewTool("list_projects",
		mcp.WithDescription("List every project of the generated tree in depth-first order, with its parent, pipeline kind and number of build configurations."),
	)

	listBuilds := mcp.NewTool("list_builds",
		mcp.WithDescription("List the build configurations of one project."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID from list_projects"),
		),
		mcp.WithString("kind",
			mcp.Description("Only builds of this kind: package, service-sweeper, project-sweeper or vcr"),
		),
	)

	getBuild := mcp.NewTool("get_build",
		mcp.WithDescription("Get a build configuration with its parameters (secrets masked), steps, locks, triggers and snapshot dependencies."),
		mcp.WithString("build_id",
			mcp.Required(),
			mcp.Description("Build configuration ID"),
		),
	)

	getPipeline := mcp.NewTool("get_pipeline",
		mcp.WithDescription("Show the order in which the builds of a project run: pre-sweeper, packages, then post-sweeper, and which build carries the schedule trigger."),
		mcp.WithString("project_id",
			mcp.Required(),
			mcp.Description("Project ID from list_projects"),
		),
	)

	searchBuilds := mcp.NewTool("search_builds",
		mcp.WithDescription("Find build configurations whose id or name contains the query (case-insensitive)."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Substring to look for, e.g. a package name"),
		),
	)

	digest := mcp.NewTool("digest",
		mcp.WithDescription("Return the digest of the generated config set and of each file, to compare generations."),
	)

	s.mcpServer.AddTool(listProjects, s.handleListProjects)
	s.mcpServer.AddTool(listBuilds, s.handleListBuilds)
	s.mcpServer.AddTool(getBuild, s.handleGetBuild)
	s.mcpServer.AddTool(getPipeline, s.handleGetPipeline)
	s.mcpServer.AddTool(searchBuilds, s.handleSearchBuilds)
	s.mcpServer.AddTool(digest, s.handleDigest)
}

// Run starts the MCP server on stdio.
func (s *Server) Run() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) handleListProjects(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var out []ProjectSummary
	for _, p := range s.root.AllProjects() {
		summary := ProjectSummary{
			ID:         p.ID,
			Name:       p.Name,
			Parent:     s.parents[p.ID],
			Pipeline:   string(p.Pipeline),
			File:       render.FileName(p.ID),
			BuildCount: len(p.BuildTypes),
		}
		for _, sub := range p.SubProjects {
			summary.SubProjects = append(summary.SubProjects, sub.ID)
		}
		out = append(out, summary)
	}
	return jsonResult(out)
}

func (s *Server) handleListBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := request.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("project_id parameter is required"), nil
	}
	kind := request.GetString("kind", "")

	p, err := s.root.FindProject(projectID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", projectID)), nil
	}

	out := []BuildSummary{}
	for _, bt := range p.BuildTypes {
		if kind != "" && string(bt.Kind) != kind {
			continue
		}
		out = append(out, summarize(bt))
	}
	return jsonResult(out)
}

func (s *Server) handleGetBuild(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	buildID := request.GetString("build_id", "")
	if buildID == "" {
		return mcp.NewToolResultError("build_id parameter is required"), nil
	}

	bt, err := s.root.FindBuildType(buildID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build not found: %s", buildID)), nil
	}
	owner, err := s.root.OwnerOf(buildID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("build not found: %s", buildID)), nil
	}

	detail := BuildDetail{
		ID:            bt.ID,
		Name:          bt.Name,
		Description:   bt.Description,
		Kind:          string(bt.Kind),
		Project:       owner.ID,
		VcsRootID:     bt.VcsRootID,
		Params:        MaskParams(bt.Params.Sorted()),
		Steps:         bt.Steps,
		Locks:         bt.Locks,
		Triggers:      bt.Triggers,
		Dependencies:  bt.Dependencies,
		Failure:       bt.Failure,
		ArtifactRules: bt.ArtifactRules,
	}
	return jsonResult(detail)
}

func (s *Server) handleGetPipeline(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := request.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("project_id parameter is required"), nil
	}

	p, err := s.root.FindProject(projectID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("project not found: %s", projectID)), nil
	}
	return jsonResult(Pipeline(p))
}

func (s *Server) handleSearchBuilds(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := strings.ToLower(strings.TrimSpace(request.GetString("query", "")))
	if query == "" {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	out := []BuildSummary{}
	for _, bt := range s.root.AllBuildTypes() {
		if strings.Contains(strings.ToLower(bt.ID), query) || strings.Contains(strings.ToLower(bt.Name), query) {
			out = append(out, summarize(bt))
		}
	}
	return jsonResult(out)
}

func (s *Server) handleDigest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(DigestInfo{
		Environment: s.environment,
		Digest:      s.files.Digest(),
		FileCount:   len(s.files),
		Files:       s.files.Digests(),
	})
}

// Pipeline groups the builds of p into stages. A build's stage is one past the
// latest stage of the builds it depends on inside the same project.
func Pipeline(p *teamcity.Project) PipelineView {
	view := PipelineView{Project: p.ID, Pipeline: string(p.Pipeline), Stages: [][]string{}}

	byID := make(map[string]*teamcity.BuildType, len(p.BuildTypes))
	for _, bt := range p.BuildTypes {
		byID[bt.ID] = bt
	}

	stage := make(map[string]int, len(p.BuildTypes))
	var depth func(id string, seen map[string]bool) int
	depth = func(id string, seen map[string]bool) int {
		if d, ok := stage[id]; ok {
			return d
		}
		if seen[id] {
			return 0
		}
		seen[id] = true
		d := 0
		for _, dep := range byID[id].Dependencies {
			if _, local := byID[dep.BuildTypeID]; !local {
				continue
			}
			if n := depth(dep.BuildTypeID, seen) + 1; n > d {
				d = n
			}
		}
		stage[id] = d
		return d
	}

	for _, bt := range p.BuildTypes {
		d := depth(bt.ID, map[string]bool{})
		for len(view.Stages) <= d {
			view.Stages = append(view.Stages, nil)
		}
		view.Stages[d] = append(view.Stages[d], bt.ID)
		if len(bt.Triggers) > 0 {
			view.TriggeredBy = append(view.TriggeredBy, bt.ID)
		}
	}
	for _, ids := range view.Stages {
		sort.Strings(ids)
	}
	return view
}

// MaskParams returns a copy of params with secret values masked.
func MaskParams(params teamcity.Params) []teamcity.Param {
	out := make([]teamcity.Param, len(params))
	for i, p := range params {
		if p.Secret() {
			p.Value = sanitize.Mask(p.Value)
		}
		out[i] = p
	}
	return out
}

func summarize(bt *teamcity.BuildType) BuildSummary {
	return BuildSummary{
		ID:           bt.ID,
		Name:         bt.Name,
		Kind:         string(bt.Kind),
		Triggers:     len(bt.Triggers),
		Dependencies: len(bt.Dependencies),
	}
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// Package render serializes a project tree into the files the CI server loads:
// one YAML document per project, named after the project id.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"tpgci/src/teamcity"
)

// Ext is the extension of every generated file.
const Ext = ".yaml"

// FormatVersion is bumped when the document layout changes incompatibly.
const FormatVersion = 1

const header = "# Generated by tpgci. DO NOT EDIT.\n"

type document struct {
	Version int         `yaml:"version"`
	Project projectBody `yaml:"project"`
}

type projectBody struct {
	ID              string                    `yaml:"id"`
	Name            string                    `yaml:"name"`
	Description     string                    `yaml:"description,omitempty"`
	Parent          string                    `yaml:"parent,omitempty"`
	Pipeline        teamcity.PipelineKind     `yaml:"pipeline,omitempty"`
	Params          teamcity.Params           `yaml:"params,omitempty"`
	VcsRoots        []teamcity.VcsRoot        `yaml:"vcs_roots,omitempty"`
	SharedResources []teamcity.SharedResource `yaml:"shared_resources,omitempty"`
	SubProjects     []string                  `yaml:"subprojects,omitempty"`
	BuildTypes      []teamcity.BuildType      `yaml:"build_types,omitempty"`
}

// FileName returns the config set path of a project.
func FileName(projectID string) string {
	return projectID + Ext
}

// Render produces the config set for the tree. The output depends only on the
// tree: parameters are sorted by name and everything else keeps the tree's order.
func Render(root *teamcity.Project) (ConfigSet, error) {
	cs := ConfigSet{}
	err := walk(root, "", func(p *teamcity.Project, parent string) error {
		name := FileName(p.ID)
		if _, dup := cs[name]; dup {
			return fmt.Errorf("project %s rendered twice", p.ID)
		}
		body, err := Project(p, parent)
		if err != nil {
			return err
		}
		cs[name] = body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cs, nil
}

func walk(p *teamcity.Project, parent string, fn func(p *teamcity.Project, parent string) error) error {
	if err := fn(p, parent); err != nil {
		return err
	}
	for _, sub := range p.SubProjects {
		if err := walk(sub, p.ID, fn); err != nil {
			return err
		}
	}
	return nil
}

// Project renders a single project document.
func Project(p *teamcity.Project, parent string) ([]byte, error) {
	doc := document{
		Version: FormatVersion,
		Project: projectBody{
			ID:              p.ID,
			Name:            p.Name,
			Description:     p.Description,
			Parent:          parent,
			Pipeline:        p.Pipeline,
			Params:          p.Params.Sorted(),
			VcsRoots:        p.VcsRoots,
			SharedResources: p.SharedResources,
		},
	}
	for _, sub := range p.SubProjects {
		doc.Project.SubProjects = append(doc.Project.SubProjects, sub.ID)
	}
	for _, bt := range p.BuildTypes {
		copyBT := *bt
		copyBT.Params = bt.Params.Sorted()
		doc.Project.BuildTypes = append(doc.Project.BuildTypes, copyBT)
	}

	var buf bytes.Buffer
	buf.WriteString(header)
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("failed to encode project %s: %w", p.ID, err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode project %s: %w", p.ID, err)
	}
	return buf.Bytes(), nil
}

// Decode parses a rendered project document back into its id, parent and build types.
// Used by drift reports to describe what changed inside a file.
func Decode(body []byte) (id, parent string, bts []teamcity.BuildType, err error) {
	var doc document
	if err := yaml.Unmarshal(body, &doc); err != nil {
		return "", "", nil, fmt.Errorf("failed to decode project document: %w", err)
	}
	return doc.Project.ID, doc.Project.Parent, doc.Project.BuildTypes, nil
}

// JSON renders a single value as indented JSON for the broker and MCP tools.
func JSON(v interface{}) ([]byte, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal json: %w", err)
	}
	return out, nil
}

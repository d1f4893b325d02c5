package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"tpgci/src/config"
	"tpgci/src/logger"
	"tpgci/src/mcp"
	"tpgci/src/projects"
	"tpgci/src/render"
	"tpgci/src/teamcity"
	"tpgci/src/validate"
)

var (
	outDir     string
	checkOnly  bool
	showProjID string
	showBuild  string
	showJSON   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate the project files",
	Long: `Build the project tree, validate it and write one file per project into --out.
Files that no longer belong to the tree are removed. With --check nothing is written
and the command fails if the directory is out of date.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, cs, err := generate(cmd.Context(), appConfig, log)
		if err != nil {
			return WrapError(err)
		}
		return WrapError(writeFiles(cs, outDir, checkOnly, log))
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Build the tree and report every rule it breaks",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := buildTree(cmd.Context(), appConfig)
		if err != nil {
			return WrapError(err)
		}
		vs := validate.Tree(root)
		for _, v := range vs {
			fmt.Fprintln(cmd.OutOrStdout(), v.String())
		}
		if len(vs) > 0 {
			return WrapError(&validate.Error{Violations: vs})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %d projects, %d build configurations\n",
			len(root.AllProjects()), len(root.AllBuildTypes()))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the project tree, one project or one build configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := buildTree(cmd.Context(), appConfig)
		if err != nil {
			return WrapError(err)
		}
		w := cmd.OutOrStdout()
		switch {
		case showBuild != "":
			return WrapError(showBuildType(w, root, showBuild, showJSON))
		case showProjID != "":
			p, err := root.FindProject(showProjID)
			if err != nil {
				return WrapError(fmt.Errorf("failed to find project %s: %w", showProjID, err))
			}
			if showJSON {
				return WrapError(printJSON(w, mcp.Pipeline(p)))
			}
			return printProject(w, p)
		default:
			printTree(w, root, 0)
			return nil
		}
	},
}

func init() {
	generateCmd.Flags().StringVarP(&outDir, "out", "o", ".teamcity", "Directory to write the project files into")
	generateCmd.Flags().BoolVar(&checkOnly, "check", false, "Fail if the files in --out differ instead of writing them")

	showCmd.Flags().StringVar(&showProjID, "project", "", "Show the builds of one project")
	showCmd.Flags().StringVar(&showBuild, "build", "", "Show one build configuration")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
}

// buildTree assembles the tree for cfg from the embedded package tables.
func buildTree(ctx context.Context, cfg *config.Config) (*teamcity.Project, error) {
	in, err := projects.DefaultInputs(cfg)
	if err != nil {
		return nil, err
	}
	return projects.Build(ctx, in)
}

// generate builds, validates and renders the tree.
func generate(ctx context.Context, cfg *config.Config, log logger.Logger) (*teamcity.Project, render.ConfigSet, error) {
	root, err := buildTree(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if err := validate.Check(root); err != nil {
		return nil, nil, err
	}
	cs, err := render.Render(root)
	if err != nil {
		return nil, nil, err
	}
	log.Debug("[generate] Rendered %d projects with %d builds for %s (digest %s)",
		len(cs), len(root.AllBuildTypes()), cfg.Generator.Environment, cs.Digest())
	return root, cs, nil
}

// writeFiles writes cs into dir, or with check only reports whether dir is current.
// Files in dir that tpgci did not generate are left alone.
func writeFiles(cs render.ConfigSet, dir string, check bool, log logger.Logger) error {
	if check {
		plan, err := cs.Plan(dir)
		if err != nil {
			return err
		}
		if plan.UpToDate() {
			log.Info("[generate] %s is up to date (%d files)", dir, len(cs))
			return nil
		}
		for _, name := range plan.Write {
			log.Error("[generate] Out of date: %s", name)
		}
		for _, name := range plan.Remove {
			log.Error("[generate] Stale: %s", name)
		}
		for _, name := range plan.Foreign {
			log.Error("[generate] Not generated by tpgci: %s", name)
		}
		return fmt.Errorf("%w: %d changed, %d stale, %d foreign in %s",
			errOutOfDate, len(plan.Write), len(plan.Remove), len(plan.Foreign), dir)
	}

	plan, err := cs.Write(dir)
	if err != nil {
		return err
	}
	for _, name := range plan.Write {
		log.Debug("[generate] Wrote %s", name)
	}
	for _, name := range plan.Remove {
		log.Debug("[generate] Removed %s", name)
	}
	log.Info("[generate] %s: %d written, %d removed, %d unchanged (digest %s)",
		dir, len(plan.Write), len(plan.Remove), len(plan.Unchanged), cs.Digest())
	return nil
}

func printTree(w io.Writer, p *teamcity.Project, depth int) {
	indent := strings.Repeat("  ", depth)
	kind := ""
	if p.Pipeline != "" {
		kind = " [" + string(p.Pipeline) + "]"
	}
	fmt.Fprintf(w, "%s%s%s (%d builds)\n", indent, p.ID, kind, len(p.BuildTypes))
	for _, sub := range p.SubProjects {
		printTree(w, sub, depth+1)
	}
}

func printProject(w io.Writer, p *teamcity.Project) error {
	fmt.Fprintf(w, "%s  %s\n", p.ID, p.Name)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tKIND\tDEPS\tTRIGGERS\tLOCKS")
	for _, bt := range p.BuildTypes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", bt.ID, bt.Kind, len(bt.Dependencies), len(bt.Triggers), len(bt.Locks))
	}
	return tw.Flush()
}

func showBuildType(w io.Writer, root *teamcity.Project, id string, asJSON bool) error {
	bt, err := root.FindBuildType(id)
	if err != nil {
		return fmt.Errorf("failed to find build configuration %s: %w", id, err)
	}
	masked := *bt
	masked.Params = mcp.MaskParams(bt.Params)

	if asJSON {
		return printJSON(w, masked)
	}

	fmt.Fprintf(w, "%s  %s\n", masked.ID, masked.Name)
	fmt.Fprintf(w, "kind: %s  vcs root: %s  timeout: %dm\n", masked.Kind, masked.VcsRootID, masked.Failure.ExecutionTimeoutMin)
	for _, dep := range masked.Dependencies {
		fmt.Fprintf(w, "depends on: %s\n", dep.BuildTypeID)
	}
	for _, l := range masked.Locks {
		if l.Value != "" {
			fmt.Fprintf(w, "lock: %s %s=%s\n", l.Mode, l.Resource, l.Value)
		} else {
			fmt.Fprintf(w, "lock: %s %s\n", l.Mode, l.Resource)
		}
	}
	for _, t := range masked.Triggers {
		fmt.Fprintf(w, "trigger: %s %s:00 %s (enabled=%t)\n", t.BranchFilter, t.Cron.Hours, t.Cron.Timezone, t.Enabled)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, p := range masked.Params {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Value)
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v interface{}) error {
	out, err := render.JSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

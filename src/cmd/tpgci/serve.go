package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tpgci/src/logger"
	"tpgci/src/mcp"
	"tpgci/src/tui"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the generated tree over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol
		log = logger.NewSilentLogger()

		root, cs, err := generate(cmd.Context(), appConfig, log)
		if err != nil {
			return WrapError(err)
		}
		srv := mcp.NewServer(root, cs, string(appConfig.Generator.Environment), version)
		return srv.Run()
	},
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Browse the generated builds in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		log = logger.NewSilentLogger()

		root, cs, err := generate(cmd.Context(), appConfig, log)
		if err != nil {
			return WrapError(err)
		}
		title := fmt.Sprintf("tpgci %s · %d builds · %.12s", appConfig.Generator.Environment, len(root.AllBuildTypes()), cs.Digest())
		p := tea.NewProgram(tui.NewMainModel(root, title), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("failed to run viewer: %w", err)
		}
		return nil
	},
}

// Package main provides the tpgci CLI: it generates the CI server configuration
// for the provider acceptance tests and exposes the generated tree to other tools.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tpgci/src/config"
	"tpgci/src/logger"
)

// version is stamped at build time.
var version = "dev"

var (
	// Application configuration
	appConfig *config.Config
	// Logger for command output; commands that own stdout replace it.
	log logger.Logger = logger.NewConsoleLogger()
	// Resolve context parameters from the environment instead of CI server placeholders.
	resolveSecrets bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tpgci",
	Short: "tpgci - CI configuration generator for provider acceptance tests",
	Long: `tpgci generates the CI server projects that run the Google provider
acceptance tests: one build per service package, wrapped in pre- and post-sweepers,
for the GA and Beta channels, with shared locks so the same package never runs twice
at once.

Settings are read from TPGCI_* environment variables. Context parameters such as
credentials are written as CI server references unless --resolve-secrets is set.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if resolveSecrets {
			appConfig, err = config.LoadFromEnv(cmd.Context())
		} else {
			appConfig, err = config.LoadSettings(cmd.Context())
		}
		if err != nil {
			return WrapError(err)
		}
		log = logger.NewConsoleLoggerWithLevel(logger.ParseLevel(appConfig.LogLevel))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&resolveSecrets, "resolve-secrets", false, "Read context parameters from TPGCI_* variables instead of writing CI server references")
	rootCmd.Version = version

	rootCmd.AddCommand(generateCmd, validateCmd, showCmd)
	rootCmd.AddCommand(publishCmd, fetchCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(mcpCmd, viewCmd)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

package main

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"tpgci/src/broker"
	"tpgci/src/config"
	"tpgci/src/logger"
)

var fetchTimeout time.Duration

var errNoBrokers = errors.New("no Redpanda brokers configured")

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the generated files to Redpanda",
	Long: `Generate the project files and publish them to the config topics: one record per
file followed by a manifest with the set digest. Consumers use the manifest to know
when a set is complete.

Published files always carry CI server references for context parameters, even
with --resolve-secrets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := connect(appConfig, log)
		if err != nil {
			return WrapError(err)
		}
		defer b.Close()

		_, err = publish(cmd.Context(), b, appConfig, time.Now(), log)
		return WrapError(err)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Write the latest published files for this environment into --out",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := connect(appConfig, log)
		if err != nil {
			return WrapError(err)
		}
		defer b.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), fetchTimeout)
		defer cancel()
		return WrapError(fetch(ctx, b, string(appConfig.Generator.Environment), outDir, log))
	},
}

func init() {
	fetchCmd.Flags().StringVarP(&outDir, "out", "o", ".teamcity", "Directory to write the project files into")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 30*time.Second, "How long to wait for a complete set")
}

func connect(cfg *config.Config, log logger.Logger) (*broker.RedpandaBroker, error) {
	brokers := cfg.Brokers()
	if len(brokers) == 0 {
		return nil, &UserError{
			Message: "No Redpanda brokers configured",
			Hint:    "Set TPGCI_REDPANDA_BROKERS to a comma separated list, e.g. localhost:19092.",
			Err:     errNoBrokers,
		}
	}
	return broker.NewRedpandaBroker(brokers, log)
}

// publish generates the tree for cfg with placeholder context parameters and
// sends it through b. It returns the published set digest.
func publish(ctx context.Context, b broker.Broker, cfg *config.Config, now time.Time, log logger.Logger) (string, error) {
	_, cs, err := generate(ctx, shareable(cfg), log)
	if err != nil {
		return "", err
	}
	man, err := broker.NewPublisher(b, log).PublishConfigSet(ctx, string(cfg.Generator.Environment), cs, now)
	if err != nil {
		return "", err
	}
	return man.Digest, nil
}

// fetch waits for the newest complete set of env on b and writes it into dir.
func fetch(ctx context.Context, b broker.Broker, env, dir string, log logger.Logger) error {
	cs, man, err := broker.NewMirror(b, log).Latest(ctx, env)
	if err != nil {
		return err
	}
	plan, err := cs.Write(dir)
	if err != nil {
		return err
	}
	log.Info("[fetch] %s: %d written, %d removed, %d unchanged (generated %s, digest %s)",
		dir, len(plan.Write), len(plan.Remove), len(plan.Unchanged), man.GeneratedAt, man.Digest)
	return nil
}

// shareable returns a copy of cfg whose context parameters are CI server
// references. Output that leaves the machine is generated from it.
func shareable(cfg *config.Config) *config.Config {
	out := *cfg
	out.Context = config.Placeholders()
	return &out
}

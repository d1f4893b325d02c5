package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"tpgci/src/config"
	"tpgci/src/logger"
	"tpgci/src/render"
	"tpgci/src/store"
)

var (
	driftAgainst string
	listLimit    int
)

var errNoDatabase = errors.New("no snapshot database configured")

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Record generations and report drift between them",
}

var snapshotSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store the current generation",
	Long: `Store the current generation in the snapshot database. Snapshots always carry CI
server references for context parameters, even with --resolve-secrets.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), appConfig)
		if err != nil {
			return WrapError(err)
		}
		defer st.Close()

		_, err = saveSnapshot(cmd.Context(), st, appConfig, time.Now(), log)
		return WrapError(err)
	},
}

var snapshotDriftCmd = &cobra.Command{
	Use:   "drift",
	Short: "Compare the current generation with the latest snapshot or a directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Snapshots never hold resolved secrets; compare like with like.
		cfg := appConfig
		if driftAgainst == "" {
			cfg = shareable(appConfig)
		}
		_, cs, err := generate(cmd.Context(), cfg, log)
		if err != nil {
			return WrapError(err)
		}

		var prev render.ConfigSet
		if driftAgainst != "" {
			prev, err = render.ReadDir(driftAgainst)
		} else {
			prev, err = latestFiles(cmd.Context(), appConfig)
		}
		if err != nil {
			return WrapError(err)
		}

		report, err := store.Drift(prev, cs)
		if err != nil {
			return WrapError(err)
		}
		fmt.Fprint(cmd.OutOrStdout(), report.String())
		if report.Empty() {
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored generations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore(cmd.Context(), appConfig)
		if err != nil {
			return WrapError(err)
		}
		defer st.Close()
		return WrapError(listSnapshots(cmd.Context(), cmd.OutOrStdout(), st, string(appConfig.Generator.Environment), listLimit))
	},
}

func init() {
	snapshotDriftCmd.Flags().StringVar(&driftAgainst, "against", "", "Compare with the project files in this directory instead of the latest snapshot")
	snapshotListCmd.Flags().IntVarP(&listLimit, "limit", "n", 20, "Maximum number of snapshots to list (0 for all)")

	snapshotCmd.AddCommand(snapshotSaveCmd, snapshotDriftCmd, snapshotListCmd)
}

func openStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	if cfg.PostgresDSN == "" {
		return nil, &UserError{
			Message: "No snapshot database configured",
			Hint:    "Set TPGCI_POSTGRES_DSN, or use `tpgci snapshot drift --against DIR` to compare with files on disk.",
			Err:     errNoDatabase,
		}
	}
	return store.NewPostgresStore(ctx, cfg.PostgresDSN)
}

func latestFiles(ctx context.Context, cfg *config.Config) (render.ConfigSet, error) {
	st, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	snap, err := st.LatestSnapshot(ctx, string(cfg.Generator.Environment))
	if err != nil {
		return nil, err
	}
	return snap.Files, nil
}

// saveSnapshot generates the tree for cfg with placeholder context parameters and
// records it unless it equals the latest snapshot of the environment.
func saveSnapshot(ctx context.Context, st store.Store, cfg *config.Config, now time.Time, log logger.Logger) (*store.Snapshot, error) {
	_, cs, err := generate(ctx, shareable(cfg), log)
	if err != nil {
		return nil, err
	}
	env := string(cfg.Generator.Environment)
	snap := store.NewSnapshot(env, cs, now)
	saved, err := st.SaveSnapshot(ctx, snap)
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	if saved {
		log.Info("[snapshot] Saved #%d for %s (%d files, digest %s)", snap.ID, env, snap.FileCount, snap.Digest)
	} else {
		log.Info("[snapshot] Unchanged since #%d for %s", snap.ID, env)
	}
	return snap, nil
}

func listSnapshots(ctx context.Context, w io.Writer, st store.Store, env string, limit int) error {
	snaps, err := st.ListSnapshots(ctx, env, limit)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}
	if len(snaps) == 0 {
		return store.ErrNotFound
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tFILES\tDIGEST")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.ID, s.CreatedAt.Format(time.RFC3339), s.FileCount, s.Digest)
	}
	return tw.Flush()
}

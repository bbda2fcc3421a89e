package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/config"
	gatesync "github.com/alfredjeanlab/gate/internal/sync"
)

var backupStdout bool

var backupCmd = &cobra.Command{
	Use:     "backup",
	Short:   "Export the access-event log once to the configured destinations",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		logger := slog.Default()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		store, err := openStore(cfg, logger)
		if err != nil {
			return err
		}
		defer store.Close()

		if backupStdout {
			n, err := gatesync.ExportJSONL(ctx, store, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			logger.Info("backup written to stdout", "events", n)
			return nil
		}

		dests := backupDestinations(ctx, cfg, logger)
		if len(dests) == 0 {
			return errors.New("no backup destination: set GATE_SYNC_S3_BUCKET or GATE_SYNC_FILE, or pass --stdout")
		}
		if err := gatesync.NewScheduler(store, dests, cfg.SyncInterval, logger).SyncOnce(ctx); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
		for _, d := range dests {
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up to %s\n", d.Name())
		}
		return nil
	},
}

func init() {
	backupCmd.Flags().BoolVar(&backupStdout, "stdout", false, "write the JSONL export to stdout instead")
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/gate"
	"github.com/alfredjeanlab/gate/internal/logstore"
	"github.com/alfredjeanlab/gate/internal/ui"
)

var openCmd = &cobra.Command{
	Use:     "open",
	Short:   "Send one open request and print the log line",
	GroupID: "client",
	Args:    cobra.NoArgs,
	RunE:    runOpen,
}

// openResult is the --json form of `gate open`.
type openResult struct {
	Entry   string       `json:"entry"`
	Outcome gate.Outcome `json:"outcome"`
}

func runOpen(cmd *cobra.Command, args []string) error {
	c := gate.NewClient(clientEndpoint())
	store := logstore.New()

	slog.Debug("sending open request", "endpoint", c.Endpoint())
	out := gate.NewOpener(c, store).WithLogger(slog.Default()).OpenSync(cmd.Context())

	entries := store.Snapshot()
	entry := entries[len(entries)-1]
	if jsonOutput {
		if err := printJSON(cmd.OutOrStdout(), openResult{Entry: entry, Outcome: out}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), renderEntry(entry, out))
	}

	if !out.OK() {
		return errSilent
	}
	return nil
}

func renderEntry(entry string, out gate.Outcome) string {
	if out.OK() {
		return ui.RenderSuccess(entry)
	}
	return ui.RenderFailure(entry)
}

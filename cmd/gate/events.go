package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/client"
)

var (
	eventsBackend string
	eventsLimit   int
)

var eventsCmd = &cobra.Command{
	Use:     "events",
	Short:   "List recent access events recorded by the backend",
	GroupID: "client",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		events, err := client.NewHTTPClient(eventsBackend).ListEvents(ctx, eventsLimit)
		if err != nil {
			return fmt.Errorf("listing events: %w", err)
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), events)
		}
		printEventTable(cmd.OutOrStdout(), events)
		return nil
	},
}

func init() {
	eventsCmd.Flags().StringVar(&eventsBackend, "backend", defaultBackendURL(), "backend base URL")
	eventsCmd.Flags().IntVarP(&eventsLimit, "limit", "n", 50, "maximum number of events (newest first)")
}

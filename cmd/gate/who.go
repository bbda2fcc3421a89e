package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/client"
	"github.com/alfredjeanlab/gate/internal/ui"
)

var (
	whoBackend string
	whoWithin  time.Duration
)

var whoCmd = &cobra.Command{
	Use:     "who",
	Short:   "Show which clients have been opening the gate",
	GroupID: "client",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		roster, err := client.NewHTTPClient(whoBackend).Presence(ctx, whoWithin)
		if err != nil {
			return fmt.Errorf("fetching roster: %w", err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), roster)
		}

		w := cmd.OutOrStdout()
		if len(roster) == 0 {
			fmt.Fprintln(w, ui.RenderMuted("nobody"))
			return nil
		}
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "WHO\tLAST SEEN\tIDLE\tCOUNT\tLAST")
		for _, e := range roster {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
				e.Who,
				e.LastSeen.UTC().Format("2006-01-02 15:04:05"),
				(time.Duration(e.IdleSecs) * time.Second).Round(time.Second),
				e.Count,
				e.LastKind,
			)
		}
		return tw.Flush()
	},
}

func init() {
	whoCmd.Flags().StringVar(&whoBackend, "backend", defaultBackendURL(), "backend base URL")
	whoCmd.Flags().DurationVar(&whoWithin, "within", 24*time.Hour, "only clients seen within this window (0 = all)")
}

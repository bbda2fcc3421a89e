package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/model"
	"github.com/alfredjeanlab/gate/internal/ui"
)

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printEventTable(w io.Writer, events []*model.AccessEvent) {
	if len(events) == 0 {
		fmt.Fprintln(w, ui.RenderMuted("no events"))
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tREQUEST\tWHO\tID")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			e.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			e.Kind,
			orDash(e.RequestID),
			orDash(e.Who),
			e.ID,
		)
	}
	tw.Flush()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// defaultBackendURL honours GATE_BACKEND_URL for the management commands.
func defaultBackendURL() string {
	if s := os.Getenv("GATE_BACKEND_URL"); s != "" {
		return s
	}
	return config.DefaultBackendURL
}

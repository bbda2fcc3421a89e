package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/client"
	"github.com/alfredjeanlab/gate/internal/server"
)

var (
	healthBackend string
	healthGRPC    string
)

var healthCmd = &cobra.Command{
	Use:     "health",
	Short:   "Check the health of the gate backend",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		var (
			status string
			want   string
			err    error
		)
		if healthGRPC != "" {
			status, err = grpcHealth(ctx, healthGRPC)
			want = "serving"
		} else {
			status, err = client.NewHTTPClient(healthBackend).Health(ctx)
			want = "ok"
		}
		if err != nil {
			return fmt.Errorf("checking health: %w", err)
		}

		if jsonOutput {
			if err := printJSON(cmd.OutOrStdout(), map[string]string{"status": status}); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Health: %s\n", status)
		}

		if status != want {
			return fmt.Errorf("unhealthy: %s", status)
		}
		return nil
	},
}

func grpcHealth(ctx context.Context, addr string) (string, error) {
	hc, err := client.NewGRPCHealthClient(addr)
	if err != nil {
		return "", err
	}
	defer hc.Close()
	return hc.Check(ctx, server.HealthServiceName)
}

func init() {
	healthCmd.Flags().StringVar(&healthBackend, "backend", defaultBackendURL(), "backend base URL")
	healthCmd.Flags().StringVar(&healthGRPC, "grpc", "", "check the gRPC health service at this address instead")
}

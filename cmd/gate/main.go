package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/logging"
	"github.com/alfredjeanlab/gate/internal/ui"
)

var (
	jsonOutput bool
	logLevel   string
	endpoint   string

	clientCfg *config.ClientConfig
)

// errSilent signals a failure that has already been reported to the user.
var errSilent = errors.New("silent failure")

var rootCmd = &cobra.Command{
	Use:   "gate",
	Short: "Open the gate and keep a log of every attempt",
	Long: `gate sends an open request to the gate backend and logs how it went.

Run without a subcommand it shows the interactive screen on a terminal and
sends a single request otherwise.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ClientConfigPath()
		if err != nil {
			path = ""
		}
		cfg, loadErr := config.LoadClient(path)
		if loadErr != nil {
			// Environment overrides still apply; the file is skipped.
			cfg, _ = config.LoadClient("")
		}
		clientCfg = cfg

		level := logLevel
		if level == "" {
			level = cfg.LogLevel
		}
		logging.Init(jsonOutput, logging.ParseLevel(level))
		if loadErr != nil {
			slog.Warn("ignoring unreadable client config", "path", path, "err", loadErr)
		}

		if !ui.ShouldUseColor() {
			ui.ForceNoColor()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if ui.IsInteractive() {
			return runScreen(cmd, args)
		}
		return runOpen(cmd, args)
	},
}

// clientEndpoint resolves the open URL: flag, then config, then default.
func clientEndpoint() string {
	if endpoint != "" {
		return endpoint
	}
	if clientCfg != nil {
		return clientCfg.Endpoint
	}
	return ""
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON (servers: JSON logs)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "open URL (overrides config; development only)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "client", Title: "Client:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false
	rootCmd.SetHelpFunc(colorizedHelpFunc())

	// Client
	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(screenCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(whoCmd)

	// System
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(controllerCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errSilent) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/gate"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show or edit the client configuration file",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective client configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := clientCfg
		if cfg == nil {
			cfg = &config.ClientConfig{}
		}
		effective := cfg.Endpoint
		if effective == "" {
			effective = gate.DefaultEndpoint
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), map[string]string{
				"endpoint":  effective,
				"log_level": cfg.LogLevel,
			})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "endpoint  = %s\n", effective)
		fmt.Fprintf(cmd.OutOrStdout(), "log_level = %s\n", orDash(cfg.LogLevel))
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a key (endpoint, log_level) in the client config file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ClientConfigPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadClientFile(path)
		if err != nil {
			slog.Warn("client config unreadable, rewriting from defaults", "path", path, "err", err)
			cfg = &config.ClientConfig{}
		}
		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}
		if err := config.SaveClient(path, cfg); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the client config file location",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.ClientConfigPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd, configSetCmd, configPathCmd)
}

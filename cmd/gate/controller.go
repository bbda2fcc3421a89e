package main

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/alfredjeanlab/gate/internal/client"
	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/controller"
)

var controllerCmd = &cobra.Command{
	Use:     "controller",
	Short:   "Run the controller that pulses the lock on open commands",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.Default()

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.HasBus() {
			return errors.New("controller requires GATE_NATS_URL or GATE_MQTT_BROKER")
		}

		sub, err := newSubscriber(cfg)
		if err != nil {
			return err
		}
		defer sub.Close()

		api := client.NewHTTPClient(cfg.BackendURL)
		defer api.Close()

		var act controller.Actuator = controller.NewLogActuator(logger)
		if cfg.HasActuatorCommands() {
			act = controller.NewCommandActuator(cfg.ActuatorOn, cfg.ActuatorOff, logger)
		}

		ctrl := controller.New(sub, cfg.Topic, act, api, cfg.Pulse, logger)
		logger.Info("controller started", "topic", cfg.Topic, "backend", cfg.BackendURL, "pulse", cfg.Pulse)

		err = ctrl.Run(cmd.Context())
		logger.Info("controller stopped")
		return err
	},
}

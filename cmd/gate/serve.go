package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/presence"
	"github.com/alfredjeanlab/gate/internal/server"
	gatesync "github.com/alfredjeanlab/gate/internal/sync"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Run the gate backend (HTTP API, optional gRPC health)",
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
		defer func() {
			if err := store.Close(); err != nil {
				logger.Error("error closing store", "err", err)
			}
		}()

		publisher, err := newPublisher(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Error("error closing publisher", "err", err)
			}
		}()

		gateServer := server.NewGateServer(store, publisher, cfg.Topic)
		gateServer.Presence().StartSweeper(presence.SweepConfig{})
		defer gateServer.Presence().Stop()

		// Optional gRPC health listener.
		var (
			grpcServer *grpc.Server
			hs         *health.Server
		)
		if cfg.GRPCAddr != "" {
			lis, err := net.Listen("tcp", cfg.GRPCAddr)
			if err != nil {
				return err
			}
			grpcServer, hs = server.NewGRPCServer()
			go func() {
				logger.Info("gRPC server listening", "addr", cfg.GRPCAddr)
				if err := grpcServer.Serve(lis); err != nil {
					logger.Error("gRPC server error", "err", err)
				}
			}()
		}

		httpServer := &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           gateServer.NewHTTPHandler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		var scheduler *gatesync.Scheduler
		if cfg.SyncEnabled() {
			if dests := backupDestinations(ctx, cfg, logger); len(dests) > 0 {
				scheduler = gatesync.NewScheduler(store, dests, cfg.SyncInterval, logger)
				scheduler.Start()
				logger.Info("backup scheduler started", "interval", cfg.SyncInterval, "destinations", len(dests))
			}
		}

		logger.Info("gate backend started", "http_addr", cfg.HTTPAddr, "grpc_addr", cfg.GRPCAddr)

		var serveErr error
		select {
		case <-ctx.Done():
			logger.Info("received signal, shutting down")
		case serveErr = <-errCh:
			logger.Error("HTTP server error", "err", serveErr)
		}

		if hs != nil {
			hs.Shutdown()
		}
		if scheduler != nil {
			scheduler.Stop()
			logger.Info("backup scheduler stopped")
		}
		if grpcServer != nil {
			grpcServer.GracefulStop()
			logger.Info("gRPC server stopped")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("shutdown complete")
		return serveErr
	},
}

package main

import (
	"context"
	"log/slog"

	"github.com/alfredjeanlab/gate/internal/config"
	"github.com/alfredjeanlab/gate/internal/store"
	"github.com/alfredjeanlab/gate/internal/store/memory"
	"github.com/alfredjeanlab/gate/internal/store/postgres"
	gatesync "github.com/alfredjeanlab/gate/internal/sync"
)

func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.DatabaseURL == "" {
		logger.Info("event store: memory (GATE_DATABASE_URL not set)")
		return memory.New(), nil
	}
	s, err := postgres.New(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("event store: postgres")
	return s, nil
}

// backupDestinations builds every configured backup target. A target that
// cannot be created is logged and skipped.
func backupDestinations(ctx context.Context, cfg *config.Config, logger *slog.Logger) []gatesync.Destination {
	var dests []gatesync.Destination
	if cfg.SyncS3Bucket != "" {
		s3Dest, err := gatesync.NewS3Destination(ctx, gatesync.S3Options{
			Bucket:   cfg.SyncS3Bucket,
			Key:      cfg.SyncS3Key,
			Region:   cfg.SyncS3Region,
			Endpoint: cfg.SyncS3Endpoint,
			Archive:  cfg.SyncS3Archive,
		})
		if err != nil {
			logger.Error("failed to create S3 backup destination", "err", err)
		} else {
			dests = append(dests, s3Dest)
		}
	}
	if cfg.SyncFile != "" {
		dests = append(dests, gatesync.NewFileDestination(cfg.SyncFile))
	}
	return dests
}

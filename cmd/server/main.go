package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jaki95/dj-collection-server/config"
	"github.com/jaki95/dj-collection-server/internal/instance"
	"github.com/jaki95/dj-collection-server/internal/server"
	"github.com/jaki95/dj-collection-server/internal/storage"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.Level(cfg.LogLevel)}))
	slog.SetDefault(logger)

	durable, err := newDurableStore(cfg)
	if err != nil {
		slog.Error("Failed to create durable store", "error", err)
		os.Exit(1)
	}

	memory := storage.NewMemoryStore(
		cfg.Cache.MaxMemoryDocuments,
		time.Duration(cfg.Cache.MemoryTTLMinutes)*time.Minute,
	)
	manager := instance.NewManager(durable, memory, cfg.Limits.MaxDocumentBytes)

	srv := server.New(cfg, manager)

	slog.Info("Starting DJ collection server", "port", cfg.Server.Port, "storage", cfg.Storage.Type)
	if err := srv.Start(cfg.Server.Port); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func newDurableStore(cfg *config.Config) (storage.Store, error) {
	if cfg.Storage.Type == "gcs" {
		return storage.NewGCSStore(
			context.Background(),
			cfg.Storage.Bucket,
			cfg.Storage.ObjectPrefix,
			cfg.Storage.CredentialsFile,
		)
	}
	return storage.NewLocalStore(cfg.Storage.DataDir)
}

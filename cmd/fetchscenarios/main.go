package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/logger"
	"github.com/erebor/recordkeeper/recordkeeper/services"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	configPath := flag.String("config", "config.toml", "path to config")
	url := flag.String("url", "", "override the catalog export URL")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	cfg, err := recordkeeper.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize schema", slog.Any("error", err))
		os.Exit(1)
	}

	fetcher := services.NewCatalogFetcher(*url,
		repositories.NewSetRepository(db.BunDB()),
		repositories.NewScenarioRepository(db.BunDB()),
	)

	added, err := fetcher.Sync(ctx)
	if err != nil {
		slog.Error("Catalog sync failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Catalog sync finished", slog.Int("added", added))
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/logger"
	"github.com/erebor/recordkeeper/recordkeeper/services"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	configPath := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	if flag.NArg() == 0 {
		slog.Error("Usage: loadset [-config config.toml] <set.toml>...")
		os.Exit(1)
	}

	ctx := context.Background()

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

	importer := services.NewImportService(
		repositories.NewSetRepository(db.BunDB()),
		repositories.NewScenarioRepository(db.BunDB()),
		repositories.NewChallengeRepository(db.BunDB()),
	)

	for _, path := range flag.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Error("Failed to read descriptor", slog.String("path", path), slog.Any("error", err))
			os.Exit(1)
		}

		desc, err := services.ParseSetDescriptor(data)
		if err != nil {
			slog.Error("Bad descriptor", slog.String("path", path), slog.Any("error", err))
			os.Exit(1)
		}

		stats, err := importer.ImportSet(ctx, desc)
		if err != nil {
			slog.Error("Import failed", slog.String("path", path), slog.Any("error", err))
			os.Exit(1)
		}
		slog.Info("Imported set",
			slog.String("set", desc.Name),
			slog.Int("added", stats.Added),
			slog.Int("skipped", stats.Skipped))
	}
}

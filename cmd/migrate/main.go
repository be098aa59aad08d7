package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/database"
	"github.com/erebor/recordkeeper/recordkeeper/logger"
	"github.com/erebor/recordkeeper/recordkeeper/migration"
)

func main() {
	slog.SetDefault(slog.New(logger.NewHandler()))

	configPath := flag.String("config", "config.toml", "path to config")
	dataDir := flag.String("data-dir", "data", "directory holding the legacy BSON dumps")
	mongoURI := flag.String("mongo-uri", "", "migrate from a live Mongo instance instead of dumps")
	mongoDB := flag.String("mongo-db", "recordkeeper", "Mongo database name for live migration")
	flag.Parse()

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

	migrator := migration.NewMigrator(db.BunDB(), *dataDir)

	if *mongoURI != "" {
		client, err := migration.ConnectMongo(ctx, *mongoURI)
		if err != nil {
			slog.Error("Failed to connect to mongo", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Disconnect(ctx)
		migrator.UseMongo(client, *mongoDB)
	}

	if err := migrator.MigrateAll(ctx); err != nil {
		slog.Error("Migration failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("Migration completed successfully!")
}

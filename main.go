package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/erebor/recordkeeper/recordkeeper"
	"github.com/erebor/recordkeeper/recordkeeper/commands"
	"github.com/erebor/recordkeeper/recordkeeper/database"
	"github.com/erebor/recordkeeper/recordkeeper/database/repositories"
	"github.com/erebor/recordkeeper/recordkeeper/handlers"
	"github.com/erebor/recordkeeper/recordkeeper/logger"
	"github.com/erebor/recordkeeper/recordkeeper/services"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Record Keeper",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := recordkeeper.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()))
		os.Exit(-1)
	}

	slog.Info("Database ready",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	b := recordkeeper.New(*cfg, version, commit)
	b.DB = db

	b.EventRepository = repositories.NewEventRepository(db.BunDB())
	b.UserRepository = repositories.NewUserRepository(db.BunDB())
	b.SetRepository = repositories.NewSetRepository(db.BunDB())
	b.ScenarioRepository = repositories.NewScenarioRepository(db.BunDB())
	b.ChallengeRepository = repositories.NewChallengeRepository(db.BunDB())
	b.RosterRepository = repositories.NewRosterRepository(db.BunDB(), cfg.Event.CheckoutTTL())
	b.ChallengeEventRepository = repositories.NewChallengeEventRepository(db.BunDB())

	b.ProgressService = services.NewProgressService(b.RosterRepository, b.ChallengeEventRepository)
	b.SearchService = services.NewSearchService(b.ScenarioRepository)
	b.ImportService = services.NewImportService(b.SetRepository, b.ScenarioRepository, b.ChallengeRepository)
	b.CatalogFetcher = services.NewCatalogFetcher("", b.SetRepository, b.ScenarioRepository)

	if cfg.Spaces.Bucket != "" {
		spacesService, err := services.NewSpacesService(
			cfg.Spaces.Key,
			cfg.Spaces.Secret,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.SnapRoot,
		)
		if err != nil {
			slog.Error("Failed to initialize Spaces", slog.Any("error", err))
			os.Exit(-1)
		}
		b.SpacesService = spacesService
	}
	b.ArchiveExporter = services.NewArchiveExporter(b.RosterRepository, b.ProgressService, b.SpacesService)

	h := handler.New()

	// Player commands
	h.Command("/quest", handlers.WrapWithLogging("quest", commands.QuestHandler(b)))
	h.Command("/checkout", handlers.WrapWithLogging("checkout", commands.CheckoutHandler(b)))
	h.Command("/complete", handlers.WrapWithLogging("complete", commands.CompleteHandler(b)))
	h.Command("/progress", handlers.WrapWithLogging("progress", commands.ProgressHandler(b)))
	h.Command("/search", handlers.WrapWithLogging("search", commands.SearchHandler(b)))

	// Challenge commands
	h.Command("/challenges", handlers.WrapWithLogging("challenges", commands.ChallengesHandler(b)))
	h.Command("/conquer", handlers.WrapWithLogging("conquer", commands.ConquerHandler(b)))
	h.Command("/cprogress", handlers.WrapWithLogging("cprogress", commands.CProgressHandler(b)))
	h.Command("/myprogress", handlers.WrapWithLogging("myprogress", commands.MyProgressHandler(b)))
	h.Command("/hunt", handlers.WrapWithLogging("hunt", commands.HuntHandler(b)))
	h.Command("/huntprogress", handlers.WrapWithLogging("huntprogress", commands.HuntProgressHandler(b)))
	h.Command("/gauntlet", handlers.WrapWithLogging("gauntlet", commands.GauntletHandler(b)))

	// Organizer commands
	h.Command("/event", handlers.WrapWithLogging("event", commands.EventHandler(b)))
	h.Component("/set-picker", handlers.WrapComponentWithLogging("set-picker", commands.SetPickerHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady)); err != nil {
		logger.LogError("Failed to setup bot", err)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		logger.LogSystem("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			logger.LogError("Failed to sync commands", err)
		}
	}

	gwCtx, gwCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer gwCancel()
	if err = b.Client.OpenGateway(gwCtx); err != nil {
		logger.LogError("Failed to open gateway", err)
		os.Exit(-1)
	}

	logger.LogSystem("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	logger.LogSystem("Shutting down bot...")
}

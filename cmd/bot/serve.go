package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursebot/internal/catalog"
	"coursebot/internal/clock"
	"coursebot/internal/config"
	"coursebot/internal/handler"
	"coursebot/internal/httpserver"
	"coursebot/internal/metrics"
	"coursebot/internal/middleware"
	"coursebot/internal/repository"
	"coursebot/internal/repository/jsonfile"
	"coursebot/internal/repository/postgres"
	"coursebot/internal/security"
	"coursebot/internal/service"
	"coursebot/internal/session"

	"github.com/golang-migrate/migrate/v4"
	postgresdb "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
	telemw "gopkg.in/telebot.v3/middleware"
)

const statsInterval = 15 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting course bot")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	logger.Info("Configuration loaded successfully",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("content_root", cfg.Catalog.ContentRoot),
	)

	// Initialize repositories
	var (
		userRepo      repository.UserRepository
		broadcastRepo repository.BroadcastRepository
	)
	switch cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := connectDatabase(cfg.DSN(), logger)
		if err != nil {
			logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		logger.Info("Database connection established")

		if err := runMigrations(db, logger); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}

		userRepo = postgres.NewUserRepo(db)
		broadcastRepo = postgres.NewBroadcastRepo(db)
	default:
		if err := os.MkdirAll(cfg.Storage.DataDir, 0o755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
		userRepo = jsonfile.NewUserRepo(cfg.UserDataPath())
		broadcastRepo = jsonfile.NewBroadcastRepo(cfg.BroadcastDataPath())
	}

	// Metrics
	metrics.MustRegister(prometheus.DefaultRegisterer)
	recorder := metrics.NewRecorder()

	// Initialize Telegram bot
	bot, err := tele.NewBot(tele.Settings{
		Token:  cfg.BotToken,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c tele.Context) {
			logger.Error("Handler error", zap.String("error", security.SanitizeForLogging(err.Error())))
		},
	})
	if err != nil {
		logger.Fatal("Failed to create bot", zap.String("error", security.SanitizeForLogging(err.Error())))
	}

	logger.Info("Telegram bot initialized")

	// Initialize services
	clk := clock.Real{}
	validator := security.NewValidator(security.DefaultMaxLength)
	limiter := service.NewLimiter(cfg.Broadcast.PerMinute, cfg.Broadcast.PerHour, clk)
	registry := service.NewRegistryService(userRepo, clk, logger)
	if err := registry.Load(); err != nil {
		logger.Fatal("Failed to load users", zap.Error(err))
	}

	broadcasts := service.NewBroadcastService(
		registry,
		broadcastRepo,
		handler.NewTelegramSender(bot),
		validator,
		limiter,
		recorder,
		clk,
		logger,
	)
	interrupted, err := broadcasts.Load()
	if err != nil {
		logger.Fatal("Failed to load broadcasts", zap.Error(err))
	}
	if interrupted > 0 {
		logger.Warn("Unfinished broadcasts marked as interrupted", zap.Int("count", interrupted))
	}

	statsService := service.NewStatsService(registry, limiter, recorder, logger)

	// Catalog
	store, resolver, navigator, err := setupCatalog(cfg, clk, recorder, logger)
	if err != nil {
		logger.Fatal("Failed to set up catalog", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize handler
	h := handler.NewHandler(ctx, handler.Deps{
		Messenger:  bot,
		Auth:       service.NewAuthService(cfg.OwnerID),
		Registry:   registry,
		Broadcasts: broadcasts,
		Sessions:   session.NewStore(),
		Stash:      session.NewMediaStash(),
		Catalog:    store,
		Resolver:   resolver,
		Navigator:  navigator,
		Validator:  validator,
		Clock:      clk,
		Tracker:    recorder,
		Settings: handler.Settings{
			OwnerID:           cfg.OwnerID,
			FeedbackTarget:    cfg.FeedbackTarget(),
			FileSharingTarget: cfg.FileSharingTarget(),
			BroadcastButtons:  cfg.BroadcastButtons(),
		},
		Logger: logger,
	})

	bot.Use(telemw.Recover())
	bot.Use(middleware.TrackUser(registry, logger))
	h.RegisterHandlers(bot)

	logger.Info("Handlers registered")

	// Health and metrics endpoint
	server := httpserver.New(cfg.HTTPAddr, prometheus.DefaultGatherer, func() map[string]any {
		counts := registry.Counts()
		return map[string]any{
			"users":       counts.Total,
			"subscribers": counts.Subscribers,
			"files":       store.Mapping().TotalFiles(),
		}
	}, logger)
	go func() {
		if err := server.Run(ctx); err != nil {
			logger.Error("HTTP server stopped", zap.Error(err))
		}
	}()

	// Start stats job in background
	go runStatsJob(ctx, statsService, logger)

	// Start bot in background
	go func() {
		logger.Info("Bot started successfully")
		bot.Start()
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan

	logger.Info("Shutdown signal received, stopping bot...")

	// Graceful shutdown
	cancel()
	bot.Stop()

	logger.Info("Bot stopped gracefully")
	return nil
}

// setupCatalog loads the file mapping and builds the navigation helpers.
// An empty mapping triggers a scan of the content root.
func setupCatalog(cfg *config.Config, clk clock.Clock, tracker handler.Tracker, logger *zap.Logger) (*catalog.Store, *catalog.Resolver, *catalog.Navigator, error) {
	store := catalog.NewStore(cfg.Catalog.MappingPath, catalog.NewDirScanner(cfg.Catalog.ContentRoot, logger), logger)
	if err := store.Load(); err != nil {
		return nil, nil, nil, err
	}

	if store.Mapping().TotalFiles() == 0 {
		logger.Info("File mapping is empty, scanning content", zap.String("root", cfg.Catalog.ContentRoot))
		result, err := store.Refresh(context.Background())
		if err != nil {
			logger.Warn("Initial content scan failed", zap.Error(err))
		} else {
			tracker.TrackRefresh(result.TotalFiles, nil)
		}
	}

	static, err := catalog.LoadNavigation(cfg.Catalog.NavigationPath)
	if err != nil {
		return nil, nil, nil, err
	}
	if static == nil {
		logger.Info("No navigation file, deriving menus from the file mapping",
			zap.String("path", cfg.Catalog.NavigationPath),
		)
	}

	var exists catalog.ExistenceChecker = catalog.StatChecker{}
	if cfg.Catalog.FileCheckTTL > 0 {
		exists = catalog.NewCachedChecker(exists, cfg.Catalog.FileCheckTTL, clk)
	}

	return store, catalog.NewResolver(store, cfg.Catalog.ContentRoot, exists), catalog.NewNavigator(static, store), nil
}

// connectDatabase connects to PostgreSQL with retries
func connectDatabase(dsn string, logger *zap.Logger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	maxRetries := 30
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = sql.Open("postgres", dsn)
		if err != nil {
			logger.Warn("Failed to open database connection",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			time.Sleep(retryDelay)
			continue
		}

		if err = db.Ping(); err != nil {
			logger.Warn("Failed to ping database",
				zap.Int("attempt", i+1),
				zap.Error(err),
			)
			db.Close()
			time.Sleep(retryDelay)
			continue
		}

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)

		return db, nil
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// runMigrations applies the schema for users and broadcasts
func runMigrations(db *sql.DB, logger *zap.Logger) error {
	driver, err := postgresdb.WithInstance(db, &postgresdb.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	err = m.Up()
	switch {
	case err == migrate.ErrNoChange:
		logger.Info("No new migrations to apply")
	case err != nil:
		return fmt.Errorf("failed to run migrations: %w", err)
	default:
		logger.Info("Migrations applied successfully")
	}
	return nil
}

// runStatsJob publishes usage figures periodically
func runStatsJob(ctx context.Context, statsService *service.StatsService, logger *zap.Logger) {
	statsService.Report()

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Stats job stopped")
			return
		case <-ticker.C:
			statsService.Report()
		}
	}
}

// Package main is the entry point for the QuantCasa price alert service.
// It initializes all components and starts the HTTP server and the
// observation processor.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"quantcasa/internal/api"
	"quantcasa/internal/config"
	"quantcasa/internal/engine"
	"quantcasa/internal/ingest"
	"quantcasa/internal/notification"
	"quantcasa/internal/processor"
	"quantcasa/internal/queue"
	kafkaqueue "quantcasa/internal/queue/kafka"
	memoryqueue "quantcasa/internal/queue/memory"
	"quantcasa/internal/store"
	filestor "quantcasa/internal/store/file"
	memorystor "quantcasa/internal/store/memory"
	postgresstor "quantcasa/internal/store/postgres"
	redisstor "quantcasa/internal/store/redis"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config/config.yaml", "path to configuration file")
	flag.Parse()

	// Initialize logger
	logger := initLogger()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err, "path", *configPath)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"path", *configPath,
		"storage_mode", cfg.Storage.Mode,
	)

	// Initialize dependencies based on storage mode
	deps, cleanup, err := initDependencies(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize dependencies", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	// Create context that listens for shutdown signals
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Seed the alert collection from the persisted snapshot
	if err := deps.engine.Load(ctx); err != nil {
		logger.Error("failed to load alert collection", "error", err)
		os.Exit(1)
	}

	// Resolve notification permission up front so the first trigger does
	// not race the prompt
	permission := deps.engine.RequestPermission(ctx)
	logger.Info("notification permission resolved", "permission", permission)

	// Start processor in background
	go func() {
		if err := deps.processor.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("processor error", "error", err)
			cancel()
		}
	}()

	// Start HTTP server
	go func() {
		if err := deps.server.Start(); err != nil {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	logger.Info("QuantCasa started",
		"address", cfg.Server.Address(),
		"storage_mode", cfg.Storage.Mode,
	)

	// Wait for shutdown signal
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.WriteTimeout)
	defer shutdownCancel()

	if err := deps.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := deps.processor.Stop(); err != nil {
		logger.Error("processor shutdown error", "error", err)
	}

	// One final snapshot so nothing evaluated since the last save is lost
	deps.engine.Save(shutdownCtx)

	logger.Info("QuantCasa stopped")
}

// dependencies holds all initialized service dependencies.
type dependencies struct {
	server    *api.Server
	processor *processor.Service
	engine    *engine.Engine
}

// initDependencies creates and wires all service dependencies based on config.
// Returns the dependencies and a cleanup function.
func initDependencies(cfg *config.Config, logger *slog.Logger) (*dependencies, func(), error) {
	var (
		snapshots    store.SnapshotStore
		notifyState  notification.StateStore
		producer     queue.Producer
		consumer     queue.Consumer
		cleanupFuncs []func()
	)

	if cfg.Storage.UseMemory() {
		// Initialize in-process implementations
		logger.Info("initializing in-process storage", "snapshot_path", cfg.Snapshot.Path)

		snapshots = filestor.NewSnapshotStore(cfg.Snapshot.Path, logger)

		memState := memorystor.NewNotificationStateStore()
		notifyState = memState
		cleanupFuncs = append(cleanupFuncs, func() { _ = memState.Close() })

		memQueue := memoryqueue.NewQueue(10000)
		producer = memQueue
		consumer = memQueue
		cleanupFuncs = append(cleanupFuncs, func() { _ = memQueue.Close() })
	} else {
		// Initialize real storage implementations
		logger.Info("initializing production storage (Kafka, Redis, PostgreSQL)")

		// Initialize PostgreSQL
		ctx := context.Background()
		db, err := postgresstor.NewDB(ctx, &cfg.Postgres)
		if err != nil {
			return nil, nil, err
		}
		cleanupFuncs = append(cleanupFuncs, db.Close)

		// Run migrations
		if err := db.RunMigrations(ctx); err != nil {
			return nil, nil, err
		}
		logger.Info("database migrations completed")

		snapshots = postgresstor.NewSnapshotStore(db, logger)

		// Initialize Redis
		redisState, err := redisstor.NewNotificationStateStore(&cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		notifyState = redisState
		cleanupFuncs = append(cleanupFuncs, func() { _ = redisState.Close() })

		// Initialize Kafka
		kafkaProducer := kafkaqueue.NewProducer(&cfg.Kafka)
		producer = kafkaProducer
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaProducer.Close() })

		kafkaConsumer := kafkaqueue.NewConsumer(&cfg.Kafka, logger)
		consumer = kafkaConsumer
		cleanupFuncs = append(cleanupFuncs, func() { _ = kafkaConsumer.Close() })
	}

	// Initialize the notification dispatcher
	prompter := &notification.StaticPrompter{
		Result: notification.Permission(cfg.Notification.Permission),
	}
	dispatcher := notification.NewDispatcher(
		notifyState,
		prompter,
		notification.NewSlogSink(logger),
		logger,
	)

	// Initialize the alert engine
	alertEngine := engine.NewEngine(
		memorystor.NewAlertRepository(),
		snapshots,
		dispatcher,
		logger,
	)

	// Initialize ingest service
	ingestService := ingest.NewService(producer, logger)

	// Initialize processor service
	processorService := processor.NewService(consumer, alertEngine, logger)

	// Initialize API handlers
	alertHandler := api.NewAlertHandler(alertEngine, logger)
	observationHandler := api.NewObservationHandler(ingestService, logger)
	notificationHandler := api.NewNotificationHandler(alertEngine, logger)

	// Initialize HTTP server
	server := api.NewServer(api.ServerDeps{
		Config:              &cfg.Server,
		Logger:              logger,
		AlertHandler:        alertHandler,
		ObservationHandler:  observationHandler,
		NotificationHandler: notificationHandler,
	})

	// Build cleanup function
	cleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			cleanupFuncs[i]()
		}
	}

	return &dependencies{
		server:    server,
		processor: processorService,
		engine:    alertEngine,
	}, cleanup, nil
}

// initLogger creates and configures the application logger.
func initLogger() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	logger := slog.New(handler)
	slog.SetDefault(logger)

	return logger
}

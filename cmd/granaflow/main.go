package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"granaflow/internal/api"
	"granaflow/internal/api/handlers"
	"granaflow/internal/repository"
	"granaflow/internal/service"
	"granaflow/internal/state"
	"granaflow/pkg/auth"
	"granaflow/pkg/config"
	"granaflow/pkg/logger"
	"granaflow/pkg/postgres"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	if err := logger.Init(cfg.Logger.Level); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	appLogger := logger.Get()
	appLogger.Info("Starting granaflow service")

	// Initialize database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db, appLogger)
	ledgerRepo := repository.NewLedgerRepository(db, appLogger)
	keyRepo := repository.NewIntegrationKeyRepository(db, appLogger)

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg.JWT.SecretKey, cfg.JWT.Expiration, cfg.JWT.RefreshExp)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager, appLogger)
	keyService := service.NewIntegrationKeyService(keyRepo, appLogger)

	completer, err := service.NewGigaChatCompleter(&cfg.GigaChat, cfg.Classifier.Temperature, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize LLM completer", zap.Error(err))
	}
	defer completer.Close()

	filter := service.NewNotificationFilter(cfg.Filter.AllowedApps, cfg.Filter.Keywords)
	classifier := service.NewClassifier(completer, cfg.Classifier.Timeout, appLogger)
	reconciler := service.NewReconciler(ledgerRepo, appLogger)
	pipeline := service.NewPipeline(filter, classifier, reconciler, cfg.Pipeline, appLogger)

	// Live application state mirrors created entries via pipeline events
	liveState := state.NewStore(0)
	pipeline.Subscribe(liveState.Push)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, appLogger)
	notificationHandler := handlers.NewNotificationHandler(pipeline, appLogger)
	ledgerHandler := handlers.NewLedgerHandler(liveState, appLogger)
	keyHandler := handlers.NewIntegrationKeyHandler(keyService, appLogger)

	// Setup router
	app := api.SetupRouter(authHandler, notificationHandler, ledgerHandler, keyHandler, jwtManager, keyRepo, appLogger)

	// Start server
	go func() {
		addr := ":" + cfg.Server.Port
		appLogger.Info("Server starting", zap.String("address", addr))
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	if err := app.Shutdown(); err != nil {
		appLogger.Error("Server shutdown error", zap.Error(err))
	}
}

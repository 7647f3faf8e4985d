package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/featherpress/featherpress/internal/api"
	"github.com/featherpress/featherpress/internal/cache"
	"github.com/featherpress/featherpress/internal/db"
	"github.com/featherpress/featherpress/internal/storage"
	"github.com/featherpress/featherpress/pkg/config"
	"github.com/featherpress/featherpress/pkg/logging"
	"github.com/featherpress/featherpress/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting FeatherPress API Server")

	// Initialize telemetry
	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	// Connect to the database, migrate and seed
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	if err := database.Seed(context.Background()); err != nil {
		logger.Fatal("Failed to seed database", zap.Error(err))
	}

	// Expired session rows are dead weight; clear them out at boot
	sessionRepo := db.NewSessionRepository(db.NewRepository(database.DB))
	if err := sessionRepo.DeleteExpired(context.Background(), time.Now().UTC()); err != nil {
		logger.Warn("Failed to purge expired sessions", zap.Error(err))
	}

	// Redis permission cache is optional; run without it on failure
	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Warn("Redis unavailable, permission caching disabled", zap.Error(err))
		redisCache = nil
	} else {
		defer redisCache.Close()
	}

	// Media storage
	blobs, err := storage.NewStore(cfg.Media.Dir)
	if err != nil {
		logger.Fatal("Failed to initialize media storage", zap.Error(err))
	}

	// Create Gin router
	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	apiRouter := api.NewRouter(database, redisCache, blobs, cfg)
	apiRouter.SetupRoutes(engine)

	// Create HTTP server
	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

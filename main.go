package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/config"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/pkg/logger"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/router"
	"github.com/Guillaume-da/GuillaumeDallolmo-9-12042022/service"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	// Load .env if present; real environment wins
	_ = godotenv.Load()

	fs := ff.NewFlagSet("billed")
	var (
		configPath = fs.StringLong("config", "config.yaml", "Configuration file path")
		port       = fs.IntLong("port", 0, "HTTP server port (overrides config)")
	)
	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("BILLED"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Initialize logger
	logger.Init(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})

	slog.Info("configuration loaded successfully", "store_mode", cfg.Store.Mode)

	// Initialize the bills store backend
	store, cleanup, err := buildStore(cfg)
	if err != nil {
		slog.Error("failed to initialize store", "error", err)
		os.Exit(1)
	}
	if cleanup != nil {
		defer cleanup()
	}

	// Setup router
	gin.SetMode(gin.ReleaseMode)
	engine := router.New(cfg, store)

	// Create server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited gracefully")
}

// buildStore selects the bills store backend from config: "api" talks
// to the remote store service, "local" runs against an embedded bbolt
// database with receipt files in minio.
func buildStore(cfg *config.Config) (service.Store, func(), error) {
	switch cfg.Store.Mode {
	case "api":
		return service.NewAPIStore(&cfg.Store.API), nil, nil
	case "local":
		files, err := service.NewMinioStorage(&cfg.Minio)
		if err != nil {
			return nil, nil, fmt.Errorf("initializing minio storage: %w", err)
		}
		if err := files.EnsureBucket(context.Background()); err != nil {
			return nil, nil, fmt.Errorf("ensuring minio bucket: %w", err)
		}
		store, err := service.NewLocalStore(cfg.Store.Local.DBPath, files)
		if err != nil {
			return nil, nil, fmt.Errorf("opening local store: %w", err)
		}
		return store, func() { store.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store mode %q", cfg.Store.Mode)
	}
}

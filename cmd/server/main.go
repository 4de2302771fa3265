package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/iconidentify/mediagrab/internal/api"
	"github.com/iconidentify/mediagrab/internal/api/handler"
	"github.com/iconidentify/mediagrab/internal/config"
	"github.com/iconidentify/mediagrab/internal/delivery"
	"github.com/iconidentify/mediagrab/internal/platform"
	"github.com/iconidentify/mediagrab/internal/repository"
	"github.com/iconidentify/mediagrab/internal/service"
	"github.com/iconidentify/mediagrab/internal/worker"
	"github.com/iconidentify/mediagrab/pkg/extractor"
	"github.com/iconidentify/mediagrab/pkg/ffmpeg"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "Path to config file")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mediagrab %s (built %s)\n", Version, BuildTime)
		os.Exit(0)
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("starting mediagrab",
		"version", Version,
		"build_time", BuildTime,
	)

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Ensure storage directories exist
	for _, dir := range []string{cfg.Storage.OutboxPath, cfg.Storage.TempPath, cfg.Storage.CookiesPath} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Error("failed to create storage directory", "dir", dir, "error", err)
			os.Exit(1)
		}
	}

	// Initialize repositories
	registry := repository.NewInMemoryURLRegistry()
	sessionRepo := repository.NewInMemorySessionRepository()
	jobRepo := repository.NewInMemoryJobRepository()
	historyRepo, err := repository.NewSQLiteHistoryRepository(cfg.Storage.HistoryDB)
	if err != nil {
		logger.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer historyRepo.Close()

	// Initialize platform adapters
	client := extractor.New(logger)
	resolver := platform.NewResolver(
		platform.DefaultAdapters(client, cfg.Storage.CookiesPath, logger),
	)

	// Compression is optional; without ffmpeg, over-budget payloads fail
	// with a size error instead of being shrunk.
	var compressor service.Compressor
	if proc, err := ffmpeg.NewProcessor(); err != nil {
		logger.Warn("ffmpeg not available, compression fallback disabled", "error", err)
	} else {
		compressor = proc
	}

	outbox := delivery.NewOutbox(afero.NewOsFs(), cfg.Storage.OutboxPath, logger)

	// Initialize services
	downloadSvc := service.NewDownloadService(
		resolver,
		registry,
		jobRepo,
		historyRepo,
		outbox,
		compressor,
		cfg.Download,
		cfg.Storage.TempPath,
		logger,
	)
	playlistSvc := service.NewPlaylistService(
		resolver,
		sessionRepo,
		registry,
		cfg.Download,
		logger,
	)

	// Initialize handlers
	downloadHandler := handler.NewDownloadHandler(downloadSvc, logger)
	playlistHandler := handler.NewPlaylistHandler(playlistSvc, downloadSvc, logger)
	healthHandler := handler.NewHealthHandler(jobRepo)

	// Setup router
	router := api.NewRouter(downloadHandler, playlistHandler, healthHandler, cfg.Server.APIKey)

	// Initialize worker pool
	pool := worker.NewPool(
		worker.Config{
			Workers:      cfg.Worker.Count,
			PollInterval: cfg.Worker.PollInterval,
		},
		jobRepo,
		downloadSvc,
		logger,
	)

	// Start worker pool
	pool.Start()

	// Setup HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Stop accepting new requests
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	// Stop workers (allow in-flight jobs to complete)
	if err := pool.Stop(25 * time.Second); err != nil {
		logger.Error("worker pool shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}

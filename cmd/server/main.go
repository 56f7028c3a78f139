package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mariana/studydeck/internal/api"
	"github.com/mariana/studydeck/internal/config"
	"github.com/mariana/studydeck/internal/db"
	"github.com/mariana/studydeck/internal/logger"
	"github.com/mariana/studydeck/internal/repository/sqlite"
	"github.com/mariana/studydeck/internal/services"
	"github.com/mariana/studydeck/internal/session"
	"github.com/mariana/studydeck/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("StudyDeck Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("job_worker_count=%d", cfg.JobWorkerCount)
	log.Debug("job_queue_size=%d", cfg.JobQueueSize)
	log.Debug("session_ttl_minutes=%d", cfg.SessionTTLMinutes)
	log.Debug("session_card_limit=%d", cfg.SessionCardLimit)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	deckRepo := sqlite.NewDeckRepository(database.DB)
	cardRepo := sqlite.NewCardRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)
	statsRepo := sqlite.NewStatsRepository(database.DB)

	pool := worker.NewPool(cfg.JobWorkerCount, cfg.JobQueueSize)
	registry := session.NewRegistry(time.Duration(cfg.SessionTTLMinutes) * time.Minute)

	deckService := services.NewDeckService(deckRepo, cardRepo)
	importService := services.NewImportService(deckRepo, cardRepo)
	statsService := services.NewStatsService(deckRepo, cardRepo, reviewRepo, statsRepo)
	studyService := services.NewStudyService(deckRepo, cardRepo, reviewRepo, statsRepo, registry, pool, cfg.SessionCardLimit)

	srv := api.NewServer(
		database.DB,
		deckService,
		studyService,
		importService,
		statsService,
		statsRepo,
		pool,
		cfg.ImportMaxBodyBytes,
	)

	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	registry.Start(ctx)

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping background goroutines")
	cancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping worker pool")
	pool.Stop()

	log.Info("===========================================")
	log.Info("StudyDeck Server Stopped")
	log.Info("===========================================")
}

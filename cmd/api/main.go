package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/EduardoTrevino/udyam/internal/config"
	"github.com/EduardoTrevino/udyam/internal/engine"
	"github.com/EduardoTrevino/udyam/internal/handlers"
	"github.com/EduardoTrevino/udyam/internal/logger"
	"github.com/EduardoTrevino/udyam/internal/middleware"
	"github.com/EduardoTrevino/udyam/internal/services"
	"github.com/EduardoTrevino/udyam/internal/storage"
	"github.com/EduardoTrevino/udyam/migrations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Udyam API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"model_name", cfg.ModelName)

	storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer storageCancel()

	store, err := storage.NewPostgresStore(storageCtx, cfg.DatabaseURL, log)
	if err != nil {
		log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	if err := store.RunMigrations(storageCtx, migrations.FS); err != nil {
		log.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	log.Info("Database connection established and migrations applied")

	cache := services.NewRedisCache(cfg.RedisURL, log)
	if err := cache.Ping(storageCtx); err != nil {
		log.Error("Failed to connect to cache", "error", err)
		os.Exit(1)
	}
	log.Info("Cache connection established")

	llmService := services.NewOpenAIService(cfg.OpenAIAPIKey, cfg.ModelName)

	eng := engine.New(llmService, store, cache, log)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(store, cache, llmService, log)
	mux.Handle("/health", healthHandler)

	scenarioHandler := handlers.NewScenarioHandler(eng, log)
	mux.Handle("/v1/scenario", scenarioHandler)

	usersHandler := handlers.NewUsersHandler(store, log)
	mux.Handle("/v1/users", usersHandler)
	mux.Handle("/v1/users/", usersHandler)

	handler := middleware.Logger(log, mux)
	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     handler,
		ReadTimeout: 15 * time.Second,
		// WriteTimeout stays unset; scenario generation can exceed a
		// typical write window and bounds itself per request.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	if err := cache.Close(); err != nil {
		log.Error("Error closing cache connection", "error", err)
	}
	store.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/training-management-api/internal/airline"
	"github.com/training-management-api/internal/api"
	"github.com/training-management-api/internal/auth"
	"github.com/training-management-api/internal/cache"
	"github.com/training-management-api/internal/config"
	"github.com/training-management-api/internal/database"
	"github.com/training-management-api/internal/notify"
	"github.com/training-management-api/internal/repository"
	"github.com/training-management-api/internal/service"
	"github.com/training-management-api/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log := logger.New("info", "json")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	log.Info().Msg("Starting Training Management API server...")
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	// Initialize database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Run migrations
	if cfg.Database.MigrateOnStart {
		if err := db.RunMigrations(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	// Initialize repositories
	repos := repository.New(db)

	// Initialize integrations
	deps := service.Dependencies{
		Airline:  airline.NewClient(cfg.Airline, log),
		Notifier: notify.NewWebhook(cfg.Notify.WebhookURL, cfg.Notify.Timeout, log),
		Cache:    profileCache(cfg.Cache, log),
		Admin:    auth.NewAdminCredential(cfg.Airline.AdminAPIKey, cfg.Airline.AdminAPIKeyHash),
		DB:       db,
	}

	// Initialize services
	services := service.NewServices(repos, deps, cfg, log)

	// Start notification dispatcher
	go services.Notifications.StartDispatcher(context.Background())

	// Initialize router
	router := api.NewRouter(services, cfg, log)

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Wait for in-flight notification deliveries
	services.Notifications.StopDispatcher()

	log.Info().Msg("Server exited gracefully")
}

// profileCache connects to Redis when REDIS_URL is set. Without it, or when
// Redis is unreachable, verified profiles are not cached.
func profileCache(cfg config.CacheConfig, log zerolog.Logger) cache.ProfileCache {
	if cfg.RedisURL == "" {
		return cache.Nop{}
	}

	client, err := cache.Connect(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("Redis not reachable, profile cache disabled")
		return cache.Nop{}
	}
	log.Info().Msg("Profile cache connected")
	return cache.NewRedis(client, cfg.ProfileTTL, log)
}

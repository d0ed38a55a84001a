package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solar-prediction-api/config"
	"solar-prediction-api/database"
	"solar-prediction-api/estimator"
	"solar-prediction-api/generation"
	"solar-prediction-api/handlers"
	"solar-prediction-api/logger"
	"solar-prediction-api/report"
	"solar-prediction-api/services"
	"solar-prediction-api/store"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.Log.Mode != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", "error", err)
	}

	// Redis is optional for the API: without it caching and live feeds are disabled
	cache, err := services.NewCacheService(cfg.Redis, log)
	if err != nil {
		log.Warn("Redis unavailable, continuing without cache", "error", err)
	}
	defer cache.Close()

	est := estimator.Load(cfg.Model.Path, cfg.Model.FallbackEnabled, log)
	predictionStore := store.NewPredictionStore(db, log)
	authService := services.NewAuthService(cfg.JWT, cache)

	router := handlers.NewRouter(handlers.RouterDeps{
		CORS:        cfg.CORS,
		Log:         log,
		Cache:       cache,
		Auth:        authService,
		Users:       services.NewUserService(db, authService, log),
		Predictions: services.NewPredictionService(est, predictionStore, cache, log),
		Exporter:    report.NewExporter(predictionStore),
		Generation:  generation.NewReader(db),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("Starting server", "addr", server.Addr, "model_available", est.Available())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solar-prediction-api/config"
	"solar-prediction-api/database"
	"solar-prediction-api/logger"
	"solar-prediction-api/services"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type cycleRunner interface {
	RunOnce(ctx context.Context) (services.SyncResult, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("load config: %v", err))
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log = log.With("service", "usersync")

	metricsAddr := getEnv("METRICS_ADDR", ":8082")

	db, err := database.Connect(cfg.Database)
	if err != nil {
		log.Fatal("db connect failed", "error", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("db migrate failed", "error", err)
	}

	// Redis is required: it is the only place the directory copy lives
	cache, err := services.NewCacheService(cfg.Redis, log)
	if err != nil {
		log.Fatal("redis unavailable", "error", err)
	}
	defer cache.Close()

	go serveHTTP(metricsAddr, log)

	syncer := services.NewUserSyncer(db, cache, cfg.Sync.BatchSize, cfg.Sync.MaxAttempts, log)
	interval := time.Duration(cfg.Sync.IntervalSec) * time.Second

	log.Info("user sync running",
		"interval", interval.String(), "batch_size", cfg.Sync.BatchSize, "max_attempts", cfg.Sync.MaxAttempts)

	runLoop(ctx, interval, syncer, log)
	log.Info("user sync shutting down")
}

// runLoop runs one cycle immediately and then once per interval until ctx is done.
func runLoop(ctx context.Context, interval time.Duration, r cycleRunner, log *logger.Logger) {
	runCycle(ctx, r, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			runCycle(ctx, r, log)
		case <-ctx.Done():
			return
		}
	}
}

func runCycle(ctx context.Context, r cycleRunner, log *logger.Logger) {
	res, err := r.RunOnce(ctx)
	if err != nil {
		log.Error("sync cycle failed", "error", err)
		return
	}
	if res.Failed > 0 {
		log.Warn("sync cycle had failures", "failed", res.Failed, "succeeded", res.Succeeded)
	}
}

func serveHTTP(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "ok")
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("metrics server failed", "error", err)
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

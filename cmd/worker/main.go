package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/jwebster45206/turn-engine/internal/config"
	"github.com/jwebster45206/turn-engine/internal/handlers"
	"github.com/jwebster45206/turn-engine/internal/logger"
	"github.com/jwebster45206/turn-engine/internal/observe"
	"github.com/jwebster45206/turn-engine/internal/services"
	"github.com/jwebster45206/turn-engine/internal/services/events"
	"github.com/jwebster45206/turn-engine/internal/services/queue"
	"github.com/jwebster45206/turn-engine/internal/storage"
	"github.com/jwebster45206/turn-engine/internal/worker"
	"github.com/jwebster45206/turn-engine/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Turn Engine Worker",
		"environment", cfg.Environment,
		"redis_url", cfg.RedisURL,
		"llm_provider", cfg.LLMProvider,
		"scenario", cfg.ScenarioPath)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, shutdownMetrics, err := observe.InitProvider(ctx, "turn-engine-worker")
	if err != nil {
		log.Error("Failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownMetrics(shutdownCtx); err != nil {
			log.Error("Error shutting down metrics", "error", err)
		}
	}()

	// Initialize Redis
	redisService, err := services.NewRedisService(cfg.RedisURL, log)
	if err != nil {
		log.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisService.Close(); err != nil {
			log.Error("Error closing Redis client", "error", err)
		}
	}()

	connCtx, connCancel := context.WithTimeout(ctx, 2*time.Minute)
	defer connCancel()
	if err := redisService.WaitForConnection(connCtx, 30, 2*time.Second); err != nil {
		log.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	rdb := redisService.GetClient()
	log.Info("Redis connection established successfully")

	// Initialize the generation backend
	backend, err := services.NewBackend(cfg, log)
	if err != nil {
		log.Error("Failed to create generation backend", "error", err)
		os.Exit(1)
	}
	log.Info("Generation backend initialized", "backend", backend.Name(), "model", cfg.ModelName)

	scn, err := scenario.Load(cfg.ScenarioPath)
	if err != nil {
		log.Error("Failed to load scenario", "error", err, "path", cfg.ScenarioPath)
		os.Exit(1)
	}
	log.Info("Scenario loaded", "name", scn.Name)

	queueClient := queue.NewClient(rdb, log)
	broadcaster := events.NewBroadcaster(rdb, log)

	store := storage.NewRedisStore(rdb, log).WithTTL(cfg.RecordTTL)
	processor := worker.NewTurnProcessor(
		store,
		backend,
		scn,
		queue.NewEventQueue(queueClient),
		log,
	).
		WithPublisher(broadcaster).
		WithMetrics(metrics).
		WithBackendTimeout(cfg.BackendTimeout)

	scheduler := worker.NewScheduler(processor, log).
		WithPublisher(broadcaster).
		WithMetrics(metrics)

	intake := worker.NewIntake(queue.NewRequestQueue(queueClient), scheduler, log, os.Getenv("WORKER_ID"))

	metricsServer := newMetricsServer(":"+cfg.MetricsPort, handlers.NewHealthHandler("turn-engine-worker", store, scheduler, log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return scheduler.Run(gctx)
	})
	g.Go(func() error {
		return intake.Run(gctx)
	})
	g.Go(func() error {
		log.Info("Metrics server listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})

	log.Info("Worker started, waiting for requests...", "worker_id", intake.ID())

	if err := g.Wait(); err != nil {
		log.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}
	log.Info("Worker exited")
}

func newMetricsServer(addr string, health http.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/health", health)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

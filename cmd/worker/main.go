package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/agendly/scheduler-api/internal/config"
	"github.com/agendly/scheduler-api/internal/repository/postgres"
	"github.com/agendly/scheduler-api/pkg/logger"
	redisbroker "github.com/agendly/scheduler-api/pkg/messaging/redis"
	"github.com/agendly/scheduler-api/pkg/metrics"
	"github.com/agendly/scheduler-api/pkg/worker"
)

// Overrides let deployments tune the drain loop per worker instance
// without touching the shared config file.
type Overrides struct {
	BatchSize           int `envconfig:"BATCH_SIZE" default:"0"`
	PollIntervalSeconds int `envconfig:"POLL_INTERVAL_SECONDS" default:"0"`
	RetryAttempts       int `envconfig:"RETRY_ATTEMPTS" default:"0"`
	HealthPort          int `envconfig:"HEALTH_PORT" default:"8081"`
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var overrides Overrides
	if err := envconfig.Process("worker", &overrides); err != nil {
		log.Fatal().Err(err).Msg("failed to read worker environment")
	}
	if overrides.BatchSize > 0 {
		cfg.Outbox.BatchSize = overrides.BatchSize
	}
	if overrides.PollIntervalSeconds > 0 {
		cfg.Outbox.PollIntervalSeconds = overrides.PollIntervalSeconds
	}
	if overrides.RetryAttempts > 0 {
		cfg.Outbox.RetryAttempts = overrides.RetryAttempts
	}

	lg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redisbroker.NewRedisBroker(cfg.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	outboxRepo := postgres.NewOutboxRepository(db)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		lg,
		metrics.NewMetrics("agendly", "worker"),
	)

	setupHealthCheck(lg, overrides.HealthPort)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		lg.Info("Shutting down...")
		cancel()
	}()

	processor.Start(ctx)
}

func setupHealthCheck(lg *logger.Logger, port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			lg.Fatal(err, "Health check server failed")
		}
	}()
}

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/agendly/scheduler-api/internal/config"
	"github.com/agendly/scheduler-api/internal/email"
	"github.com/agendly/scheduler-api/internal/handler"
	appointmentHandler "github.com/agendly/scheduler-api/internal/handler/appointment"
	authHandler "github.com/agendly/scheduler-api/internal/handler/auth"
	availabilityHandler "github.com/agendly/scheduler-api/internal/handler/availability"
	commissionHandler "github.com/agendly/scheduler-api/internal/handler/commission"
	locationHandler "github.com/agendly/scheduler-api/internal/handler/location"
	"github.com/agendly/scheduler-api/internal/middleware"
	"github.com/agendly/scheduler-api/internal/repository/postgres"
	"github.com/agendly/scheduler-api/internal/router"
	auditService "github.com/agendly/scheduler-api/internal/service/audit"
	authService "github.com/agendly/scheduler-api/internal/service/auth"
	availabilityService "github.com/agendly/scheduler-api/internal/service/availability"
	commissionService "github.com/agendly/scheduler-api/internal/service/commission"
	"github.com/agendly/scheduler-api/internal/service/scheduling"
	"github.com/agendly/scheduler-api/pkg/auth"
	"github.com/agendly/scheduler-api/pkg/logger"
	redisbroker "github.com/agendly/scheduler-api/pkg/messaging/redis"
	"github.com/agendly/scheduler-api/pkg/metrics"
	"github.com/agendly/scheduler-api/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	availabilityRepo := postgres.NewAvailabilityRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	commissionRepo := postgres.NewCommissionRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)
	auditRepo := postgres.NewAuditRepository(db)
	professionalRepo := postgres.NewProfessionalRepository(db)

	// Redis backs both the calendar-sync broker and the slot locks.
	broker, err := redisbroker.NewRedisBroker(cfg.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	var locker scheduling.SlotLocker
	if rb, ok := broker.(*redisbroker.RedisBroker); ok {
		locker = scheduling.NewRedisSlotLocker(rb.Client())
	}

	m := metrics.NewMetrics("agendly", "api")

	// Services
	emailSvc := email.NewSMTPService(cfg.Email)
	auditSvc := auditService.NewService(auditRepo)
	commissionSvc := commissionService.NewService(commissionRepo, invoiceRepo, lg)
	detector := scheduling.NewConflictDetector(appointmentRepo, locationRepo)
	schedulingSvc := scheduling.NewService(
		appointmentRepo,
		availabilityRepo,
		professionalRepo,
		outboxRepo,
		detector,
		commissionSvc,
		auditSvc,
		locker,
		emailSvc,
		m,
		lg,
	)
	availabilitySvc := availabilityService.NewService(availabilityRepo)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpiryHours)
	authSvc := authService.NewService(professionalRepo, jwtSvc, emailSvc, lg)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)
	h := handler.NewHandler()

	r := router.NewRouter(
		authMiddleware,
		authHandler.NewHandler(authSvc),
		appointmentHandler.NewHandler(schedulingSvc),
		availabilityHandler.NewHandler(availabilitySvc),
		locationHandler.NewHandler(locationRepo),
		commissionHandler.NewHandler(commissionSvc),
		h,
		router.RouterConfig{
			RateLimit:     100,
			RateBurst:     200,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "agendly_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	// Drain calendar-sync events in-process too; SKIP LOCKED keeps this
	// safe alongside the dedicated worker.
	processor := worker.NewOutboxProcessor(outboxRepo, broker, cfg.Outbox.ToWorkerConfig(), lg, m)
	processorCtx, stopProcessor := context.WithCancel(context.Background())
	go processor.Start(processorCtx)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")
	stopProcessor()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}

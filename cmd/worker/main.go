package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/nucmed/petplan/internal/config"
	"github.com/nucmed/petplan/internal/email"
	"github.com/nucmed/petplan/internal/optimizer/timeline"
	"github.com/nucmed/petplan/internal/repository/postgres"
	catalogService "github.com/nucmed/petplan/internal/service/catalog"
	planService "github.com/nucmed/petplan/internal/service/plan"
	"github.com/nucmed/petplan/pkg/logger"
	"github.com/nucmed/petplan/pkg/messaging/redis"
	"github.com/nucmed/petplan/pkg/metrics"
	"github.com/nucmed/petplan/pkg/security"
	"github.com/nucmed/petplan/pkg/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	encryptor, err := security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}

	nuclideRepo := postgres.NewRadionuclideRepository(db)
	tracerRepo := postgres.NewTracerRepository(db)
	schemeRepo := postgres.NewSchemeRepository(db)
	patientRepo := postgres.NewPatientRepository(db, encryptor)
	daySetupRepo := postgres.NewDaySetupRepository(db)
	userRepo := postgres.NewUserRepository(db)

	broker, err := redis.NewRedisBroker(redis.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, appLogger.Zerolog())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.NewMetrics("petplan", "worker")

	catalogSvc := catalogService.NewService(nuclideRepo, tracerRepo, schemeRepo,
		patientRepo, daySetupRepo, userRepo, appLogger)
	emailSvc := email.NewService(cfg.SMTP)
	planSvc := planService.NewService(catalogSvc, planService.Config{
		Grid:                    gridFrom(cfg.Planner),
		SolveTimeout:            cfg.Planner.SolveTimeout(),
		GeneratorCooldownBlocks: cfg.Planner.GeneratorCooldownBlocks,
		GeneratorRunCostCZK:     cfg.Planner.GeneratorRunCostCZK,
	}, broker, emailSvc, m, appLogger)

	processor := worker.NewPlanProcessor(broker, planSvc, worker.PlanProcessorConfig{
		RetryAttempts: 3,
		RetryDelay:    5 * time.Second,
	}, appLogger)

	setupHealthCheck(appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := processor.Start(ctx); err != nil {
			appLogger.Error(err, "plan processor stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down worker...")

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("worker did not stop in time")
	}

	log.Info().Msg("worker exited properly")
}

func setupHealthCheck(appLogger *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/metrics", promhttp.Handler())

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
}

func gridFrom(cfg config.PlannerConfig) timeline.Grid {
	grid := timeline.DefaultGrid()
	if cfg.DayStartHour > 0 {
		grid.StartHour = cfg.DayStartHour
	}
	if cfg.BlockMinutes > 0 {
		grid.BlockMinutes = cfg.BlockMinutes
	}
	if cfg.Blocks > 0 {
		grid.Blocks = cfg.Blocks
	}
	return grid
}

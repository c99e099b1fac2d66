package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/nucmed/petplan/internal/config"
	"github.com/nucmed/petplan/internal/email"
	"github.com/nucmed/petplan/internal/handler"
	authHandler "github.com/nucmed/petplan/internal/handler/auth"
	daysetupHandler "github.com/nucmed/petplan/internal/handler/daysetup"
	patientHandler "github.com/nucmed/petplan/internal/handler/patient"
	planHandler "github.com/nucmed/petplan/internal/handler/plan"
	radionuclideHandler "github.com/nucmed/petplan/internal/handler/radionuclide"
	schemeHandler "github.com/nucmed/petplan/internal/handler/scheme"
	tracerHandler "github.com/nucmed/petplan/internal/handler/tracer"
	"github.com/nucmed/petplan/internal/middleware"
	"github.com/nucmed/petplan/internal/optimizer/timeline"
	"github.com/nucmed/petplan/internal/repository/postgres"
	"github.com/nucmed/petplan/internal/router"
	authService "github.com/nucmed/petplan/internal/service/auth"
	catalogService "github.com/nucmed/petplan/internal/service/catalog"
	patientService "github.com/nucmed/petplan/internal/service/patient"
	planService "github.com/nucmed/petplan/internal/service/plan"
	"github.com/nucmed/petplan/pkg/auth"
	"github.com/nucmed/petplan/pkg/logger"
	"github.com/nucmed/petplan/pkg/messaging/redis"
	"github.com/nucmed/petplan/pkg/metrics"
	"github.com/nucmed/petplan/pkg/security"
	"github.com/nucmed/petplan/pkg/validator"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	encryptor, err := security.NewAESEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryption")
	}

	// Repositories
	nuclideRepo := postgres.NewRadionuclideRepository(db)
	tracerRepo := postgres.NewTracerRepository(db)
	schemeRepo := postgres.NewSchemeRepository(db)
	patientRepo := postgres.NewPatientRepository(db, encryptor)
	daySetupRepo := postgres.NewDaySetupRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Message broker for async plan requests
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

	m := metrics.NewMetrics("petplan", "api")

	// Services
	catalogSvc := catalogService.NewService(nuclideRepo, tracerRepo, schemeRepo,
		patientRepo, daySetupRepo, userRepo, appLogger)
	patientSvc := patientService.NewService(patientRepo, schemeRepo)

	jwtExpiry := time.Duration(cfg.JWT.ExpiryHours) * time.Hour
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, jwtExpiry)
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	authSvc := authService.NewService(userRepo, jwtSvc, hasher, catalogSvc, jwtExpiry)

	emailSvc := email.NewService(cfg.SMTP)
	planSvc := planService.NewService(catalogSvc, planService.Config{
		Grid:                    gridFrom(cfg.Planner),
		SolveTimeout:            cfg.Planner.SolveTimeout(),
		GeneratorCooldownBlocks: cfg.Planner.GeneratorCooldownBlocks,
		GeneratorRunCostCZK:     cfg.Planner.GeneratorRunCostCZK,
	}, broker, emailSvc, m, appLogger)

	// Handlers
	h := handler.NewHandler()
	authH := authHandler.NewHandler(authSvc)
	radionuclideH := radionuclideHandler.NewHandler(catalogSvc)
	tracerH := tracerHandler.NewHandler(catalogSvc)
	schemeH := schemeHandler.NewHandler(catalogSvc)
	patientH := patientHandler.NewHandler(patientSvc)
	daySetupH := daysetupHandler.NewHandler(catalogSvc)
	planH := planHandler.NewHandler(planSvc)

	authMiddleware := middleware.NewAuthMiddleware(authSvc)

	r := router.New(authMiddleware, authH, radionuclideH, tracerH, schemeH,
		patientH, daySetupH, planH, h, router.Config{
			RateLimit:      rate.Limit(100),
			RateBurst:      200,
			CORSConfig:     middleware.DefaultCORSConfig(),
			MetricsPrefix:  "petplan_api",
			RequestTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
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

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

	"github.com/jwalitptl/petcare-api/internal/config"
	appointmentHandler "github.com/jwalitptl/petcare-api/internal/handler/appointment"
	"github.com/jwalitptl/petcare-api/internal/handler/health"
	"github.com/jwalitptl/petcare-api/internal/repository/postgres"
	"github.com/jwalitptl/petcare-api/internal/router"
	appointmentService "github.com/jwalitptl/petcare-api/internal/service/appointment"
	catalogService "github.com/jwalitptl/petcare-api/internal/service/catalog"
	"github.com/jwalitptl/petcare-api/pkg/logger"
	"github.com/jwalitptl/petcare-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	l := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	appointmentRepo := postgres.NewAppointmentRepository(db)
	storeRepo := postgres.NewStoreRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)

	catalogSvc := catalogService.NewService(storeRepo, serviceRepo, catalogService.Config{
		TTL:             cfg.Catalog.CacheTTL,
		CleanupInterval: cfg.Catalog.CacheCleanupInterval,
	})
	appointmentSvc := appointmentService.NewService(appointmentRepo, catalogSvc, l, metrics.NewMetrics("petcare", "scheduling"))

	apptHandler := appointmentHandler.NewHandler(appointmentSvc)
	healthHandler := health.NewHandler(db)

	r := router.NewRouter(apptHandler, healthHandler, router.Config{
		RateLimit:     rate.Limit(cfg.Server.RateLimitRPS),
		RateBurst:     cfg.Server.RateLimitBurst,
		Timeout:       time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MetricsPrefix: "petcare_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		l.Info("Starting API server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	l.Info("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	l.Info("Server exited properly")
}

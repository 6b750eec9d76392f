// @title Grooming Service API
// @version 1.0
// @description Internal API for grooming business analytics, scheduling and catalog classification.
// @BasePath /internal
// @securityDefinitions.apikey InternalAPIKey
// @in header
// @name X-Internal-API-Key
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

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/kosarica/grooming-service/config"
	_ "github.com/kosarica/grooming-service/docs"
	"github.com/kosarica/grooming-service/internal/analytics"
	"github.com/kosarica/grooming-service/internal/app"
	"github.com/kosarica/grooming-service/internal/changefeed"
	"github.com/kosarica/grooming-service/internal/database"
	"github.com/kosarica/grooming-service/internal/handlers"
	"github.com/kosarica/grooming-service/internal/live"
	"github.com/kosarica/grooming-service/internal/middleware"
	"github.com/kosarica/grooming-service/internal/scheduler"
	"github.com/kosarica/grooming-service/internal/telemetry"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Logging, os.Stdout, telemetry.DefaultServiceName)
	log.Logger = logger
	logger.Info().Msg("Starting grooming service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Telemetry.Enabled,
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	if cfg.Database.URL == "" {
		logger.Fatal().Msg("DATABASE_URL not set")
	}
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()
	if err := db.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to apply schema")
	}
	logger.Info().Msg("Database connected")

	collector, closeCache, err := app.NewCollector(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build signal collector")
	}
	defer closeCache()

	service, err := app.NewService(cfg, database.NewStore(db), collector, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build analytics service")
	}

	hub := live.NewHub(logger)
	go hub.Run()

	startChangefeed(ctx, cfg, service, hub, logger)

	jobs := scheduler.New(service, cfg.Scheduler, logger)
	if err := jobs.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start scheduler")
	}

	limiter := middleware.NewIPRateLimiter(middleware.DefaultRateLimiterConfig())
	go limiter.RunSweeper(ctx, 5*time.Minute)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	h := handlers.New(service, hub, db, app.Grid(cfg), logger)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(logger))
	router.GET("/health", h.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	internal := router.Group("/internal")
	internal.Use(
		middleware.InternalAuth(cfg.Auth.InternalAPIKey),
		middleware.RateLimit(limiter),
		middleware.StaffRole(),
	)
	internal.GET("/health", h.HealthCheck)
	h.Register(internal)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Scheduler did not stop in time")
	}
	hub.Shutdown()
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Failed to flush telemetry")
	}

	logger.Info().Msg("Server exited")
}

// startChangefeed subscribes to data changes and pushes recomputed views to
// websocket clients. Recomputes are coalesced so a burst of writes triggers
// one rebuild.
func startChangefeed(ctx context.Context, cfg *config.Config, service *analytics.Service, hub *live.Hub, logger zerolog.Logger) {
	var source changefeed.Source
	switch cfg.Changefeed.Driver {
	case "postgres":
		source = changefeed.NewPostgresSource(cfg.Database.URL, cfg.Changefeed.Channel, logger)
	case "nats":
		source = changefeed.NewNATSSource(cfg.Changefeed.NATSURL, cfg.Changefeed.Subject, logger)
	default:
		logger.Info().Msg("Change feed disabled")
		return
	}

	publish := func(kind string, payload any) {
		switch kind {
		case analytics.ChangeCalendar:
			hub.Broadcast(live.TopicCalendar, &live.OutgoingMessage{Type: live.MessageTypeCalendarChanged, Data: payload})
		case analytics.ChangeCatalog:
			hub.Broadcast(live.TopicCatalog, &live.OutgoingMessage{Type: live.MessageTypeCatalogChanged, Data: payload})
		case analytics.ChangeAnalytics:
			hub.Broadcast(live.TopicAnalytics, &live.OutgoingMessage{Type: live.MessageTypeAnalyticsChanged, Data: payload})
		}
	}
	coalescer := changefeed.NewCoalescer(cfg.Changefeed.Debounce, func(ctx context.Context, collections []string) error {
		return service.Recompute(ctx, collections, publish)
	}, logger)

	go coalescer.Run(ctx)
	go func() {
		if err := source.Subscribe(ctx, coalescer.Handle); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Str("driver", cfg.Changefeed.Driver).Msg("Change feed stopped")
		}
	}()
	logger.Info().Str("driver", cfg.Changefeed.Driver).Msg("Change feed started")
}

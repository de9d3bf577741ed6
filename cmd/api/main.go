package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/exam-schedule-api/api/swagger"
	"github.com/noah-isme/exam-schedule-api/internal/handler"
	"github.com/noah-isme/exam-schedule-api/internal/middleware"
	"github.com/noah-isme/exam-schedule-api/internal/registry"
	"github.com/noah-isme/exam-schedule-api/internal/repository"
	"github.com/noah-isme/exam-schedule-api/internal/service"
	"github.com/noah-isme/exam-schedule-api/internal/sheets"
	"github.com/noah-isme/exam-schedule-api/pkg/cache"
	"github.com/noah-isme/exam-schedule-api/pkg/config"
	"github.com/noah-isme/exam-schedule-api/pkg/database"
	appErrors "github.com/noah-isme/exam-schedule-api/pkg/errors"
	"github.com/noah-isme/exam-schedule-api/pkg/logger"
	"github.com/noah-isme/exam-schedule-api/pkg/middleware/cors"
	"github.com/noah-isme/exam-schedule-api/pkg/middleware/requestid"
	"github.com/noah-isme/exam-schedule-api/pkg/response"
)

const version = "1.0.0"

// @title Exam Schedule API
// @version 1.0
// @description Normalized exam schedules ingested from published spreadsheets.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics := service.NewMetricsService()

	cacheEnabled := cfg.Cache.Enabled
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The service still works without a cache, every read just
		// recomputes.
		log.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
		cacheEnabled = false
	}
	cacheRepo := repository.NewCacheRepository(redisClient, log)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.Retention, log, cacheEnabled)

	var snapshots service.SnapshotStore
	if cfg.Snapshot.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			log.Warn("postgres unavailable, snapshots disabled", zap.Error(err))
		} else {
			defer db.Close()
			snapshots = repository.NewSnapshotRepository(db)
		}
	}

	sheetsClient, err := sheets.NewClient(ctx, cfg.Sheets.APIKey, cfg.Sheets.RateLimitRPS)
	if err != nil {
		log.Fatal("init sheets client", zap.Error(err))
	}

	reg := registry.New(cfg.Sheets.APIKey, registry.WithDefaultTTL(cfg.Cache.DefaultTTL))

	pipeline := service.NewPipelineService(service.PipelineServiceParams{
		Client:    sheetsClient,
		Snapshots: snapshots,
		Metrics:   metrics,
		Logger:    log,
	})
	sources := service.NewSourceService(service.SourceServiceParams{
		Registry: reg,
		Pipeline: pipeline,
		Cache:    cacheSvc,
		Logger:   log,
	})
	exports := service.NewExportService(sources, log, nil, nil)

	var warmer *service.WarmerService
	if cfg.Warmer.Enabled {
		warmer = service.NewWarmerService(reg, sources, log, service.WarmerConfig{
			Interval:    cfg.Warmer.Interval,
			SourcePause: cfg.Warmer.SourcePause,
			MaxRetries:  cfg.Warmer.Retries,
		})
		warmer.Start(ctx)
		defer warmer.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(cors.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.ResponseMeta())

	healthHandler := handler.NewHealthHandler(redisClient, version)
	sourceHandler := handler.NewSourceHandler(sources)
	exportHandler := handler.NewExportHandler(exports)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler.Metrics)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/sources", sourceHandler.List)
		api.GET("/sources/:id", sourceHandler.Get)
		api.POST("/sources/:id/refresh", sourceHandler.Refresh)
		api.GET("/sources/:id/export", exportHandler.Export)
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.ErrNotFound)
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.Int("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

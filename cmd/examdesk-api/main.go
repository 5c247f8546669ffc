package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/examdesk/examdesk-api/api/swagger"
	"github.com/examdesk/examdesk-api/internal/crm"
	"github.com/examdesk/examdesk-api/internal/handler"
	"github.com/examdesk/examdesk-api/internal/middleware"
	"github.com/examdesk/examdesk-api/internal/repository"
	"github.com/examdesk/examdesk-api/internal/service"
	"github.com/examdesk/examdesk-api/pkg/cache"
	"github.com/examdesk/examdesk-api/pkg/config"
	"github.com/examdesk/examdesk-api/pkg/database"
	"github.com/examdesk/examdesk-api/pkg/jobs"
	"github.com/examdesk/examdesk-api/pkg/logger"
	corsmiddleware "github.com/examdesk/examdesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/examdesk/examdesk-api/pkg/middleware/requestid"
)

// @title ExamDesk API
// @version 0.3.0
// @description Batch session administration for the ExamDesk dashboard
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("replica connection failed", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("redis connection failed", "error", err)
	}
	defer redisClient.Close()

	sessionRepo := repository.NewSessionRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	metricsSvc := service.NewMetricsService()
	crmClient := crm.NewClient(cfg.CRM, logr, crm.WithObserver(metricsSvc.ObserveCRM))

	index := service.NewSessionIndex()
	baseline := service.NewPrereqBaseline()
	registry := service.NewSelectionRegistry()

	sessionSvc := service.NewSessionService(sessionRepo, index, baseline,
		service.WithSessionLogger(logr),
		service.WithAggregateCache(cacheRepo, cfg.Aggregates.CacheTTL),
	)

	refreshQueue := jobs.NewQueue("aggregates", func(ctx context.Context, job jobs.Job) error {
		_, err := sessionSvc.RefreshAggregates(ctx)
		return err
	}, jobs.QueueConfig{
		Workers: cfg.Aggregates.RefreshWorkers,
		Logger:  logr,
	})

	reconciler := service.NewCacheReconciler(index, cacheRepo, refreshQueue, logr)

	batchSvc := service.NewBatchService(sessionRepo, crmClient, registry, reconciler, baseline,
		service.WithBatchLogger(logr),
		service.WithBatchObserver(metricsSvc.ObserveBatch),
		service.WithMaxSelectionSize(cfg.Batch.MaxSelectionSize),
	)
	selectionSvc := service.NewSelectionService(registry, sessionRepo, logr)
	authSvc := service.NewAuthService(userRepo, cfg.JWT, logr)
	exportSvc := service.NewExportService(sessionRepo, cfg.Exports.Enabled)

	authHandler := handler.NewAuthHandler(authSvc)
	sessionHandler := handler.NewSessionHandler(sessionSvc, exportSvc)
	selectionHandler := handler.NewSelectionHandler(selectionSvc)
	batchHandler := handler.NewBatchHandler(batchSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "replica unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	{
		authed.GET("/auth/me", authHandler.Me)

		authed.GET("/sessions", sessionHandler.List)
		authed.GET("/sessions/aggregates", sessionHandler.Aggregates)
		authed.GET("/sessions/candidates", sessionHandler.Candidates)
		authed.GET("/sessions/export", sessionHandler.Export)
		authed.GET("/sessions/:id/bookings", sessionHandler.Bookings)
		authed.GET("/sessions/:id/prerequisites", sessionHandler.Prerequisites)

		authed.GET("/selection/:mode", selectionHandler.State)
	}

	mutators := authed.Group("")
	mutators.Use(middleware.RequireMutator())
	{
		mutators.POST("/selection/:mode/enter", selectionHandler.Enter)
		mutators.POST("/selection/:mode/exit", selectionHandler.Exit)
		mutators.POST("/selection/:mode/toggle", selectionHandler.Toggle)
		mutators.POST("/selection/:mode/select-all", selectionHandler.SelectAll)
		mutators.POST("/selection/:mode/clear", selectionHandler.Clear)
		mutators.POST("/selection/:mode/confirm", selectionHandler.Confirm)

		mutators.POST("/batch/preview", batchHandler.Preview)
		mutators.POST("/batch/clone", batchHandler.Clone)
		mutators.POST("/batch/edit", batchHandler.Edit)
		mutators.POST("/batch/delete", batchHandler.Delete)
		mutators.POST("/batch/attendance", batchHandler.Attendance)
		mutators.POST("/batch/cancel", batchHandler.Cancel)

		mutators.PUT("/sessions/:id/prerequisites", batchHandler.Prerequisites)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}

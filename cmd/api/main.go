package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/gympoint/gympoint-api/api/swagger"
	"github.com/gympoint/gympoint-api/internal/handler"
	"github.com/gympoint/gympoint-api/internal/middleware"
	"github.com/gympoint/gympoint-api/internal/notification"
	"github.com/gympoint/gympoint-api/internal/repository"
	"github.com/gympoint/gympoint-api/internal/service"
	"github.com/gympoint/gympoint-api/pkg/cache"
	"github.com/gympoint/gympoint-api/pkg/config"
	"github.com/gympoint/gympoint-api/pkg/database"
	"github.com/gympoint/gympoint-api/pkg/logger"
	corsmiddleware "github.com/gympoint/gympoint-api/pkg/middleware/cors"
	reqidmiddleware "github.com/gympoint/gympoint-api/pkg/middleware/requestid"
)

// @title GymPoint API
// @version 1.0.0
// @description Gym management backend: students, plans, enrollments, checkins and help orders
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Redis.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close()
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(redisClient), metrics, cfg.Cache.TTL, logr, true)
		}
	}

	var mailer notification.Mailer
	if cfg.Mail.Enabled {
		mailer = notification.NewSMTPMailer(cfg.Mail)
	} else {
		mailer = notification.NewLogMailer(logr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dispatcher := notification.NewDispatcher(mailer, cfg.Queue, logr)
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	metrics.RegisterQueueDepth(func() float64 { return float64(dispatcher.Depth()) })

	validate := validator.New()

	studentRepo := repository.NewStudentRepository(db)
	planRepo := repository.NewPlanRepository(db)
	enrollRepo := repository.NewEnrollRepository(db)
	checkinRepo := repository.NewCheckinRepository(db)
	helpOrderRepo := repository.NewHelpOrderRepository(db)
	userRepo := repository.NewUserRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	planSvc := service.NewPlanService(planRepo, cacheSvc, validate, logr)
	enrollSvc := service.NewEnrollService(enrollRepo, studentRepo, planRepo, dispatcher, service.EnrollServiceConfig{
		PageSize:   cfg.Listing.DefaultPageSize,
		PickLatest: cfg.EligibilityPickLatest,
	}, validate, logr)
	checkinSvc := service.NewCheckinService(checkinRepo, studentRepo, service.CheckinServiceConfig{
		Window:   cfg.Checkin.Window,
		Limit:    cfg.Checkin.Limit,
		PageSize: cfg.Checkin.PageSize,
	}, logr)
	helpOrderSvc := service.NewHelpOrderService(helpOrderRepo, studentRepo, enrollSvc, dispatcher, cfg.Listing.DefaultPageSize, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	planHandler := handler.NewPlanHandler(planSvc)
	enrollHandler := handler.NewEnrollHandler(enrollSvc)
	checkinHandler := handler.NewCheckinHandler(checkinSvc)
	helpOrderHandler := handler.NewHelpOrderHandler(helpOrderSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Kiosk endpoints used by the student-facing app, no session required.
	r.POST("/users", authHandler.Register)
	r.POST("/sessions", authHandler.Login)
	r.GET("/students/:id/checkins", checkinHandler.List)
	r.POST("/students/:id/checkins", checkinHandler.Create)
	r.GET("/students/:id/help-orders", helpOrderHandler.ListByStudent)
	r.POST("/students/:id/help-orders", helpOrderHandler.Submit)

	protected := r.Group("", middleware.JWT(authSvc))
	{
		protected.GET("/students", studentHandler.List)
		protected.POST("/students", studentHandler.Create)
		protected.PUT("/students/:id", studentHandler.Update)

		protected.GET("/plans", planHandler.List)
		protected.POST("/plans", planHandler.Create)
		protected.PUT("/plans/:id", planHandler.Update)
		protected.DELETE("/plans/:id", planHandler.Delete)

		protected.GET("/enrolls", enrollHandler.List)
		protected.GET("/enrolls/export", enrollHandler.Export)
		protected.POST("/enrolls", enrollHandler.Create)
		protected.PUT("/enrolls/:id", enrollHandler.Update)
		protected.DELETE("/enrolls/:id", enrollHandler.Delete)

		protected.GET("/help-orders", helpOrderHandler.ListUnanswered)
		protected.POST("/help-orders/:id/answer", helpOrderHandler.Answer)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}

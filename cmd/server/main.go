package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/printshop/backend/internal/bootstrap"
	"github.com/printshop/backend/internal/infrastructure/config"
	"github.com/printshop/backend/internal/infrastructure/logger"
	"github.com/printshop/backend/internal/interfaces/http/handler"
	"github.com/printshop/backend/internal/interfaces/http/middleware"
	"github.com/printshop/backend/internal/interfaces/http/router"
	"go.uber.org/zap"

	_ "github.com/printshop/backend/docs"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

//go:generate swag init -g main.go -d .,../../internal/interfaces/http/handler,../../internal/application/printing -o ../../docs --parseInternal

//	@title			Print Shop Backend API
//	@version		1.0
//	@description	Document upload, conversion and print ordering for campus print shops

//	@contact.name	API Support

//	@host		localhost:8080
//	@BasePath	/api

//	@securityDefinitions.apikey	UserAuth
//	@in							header
//	@name						X-User-ID
//	@description				Authenticated customer identity set by the gateway

//	@securityDefinitions.apikey	ShopAuth
//	@in							header
//	@name						X-Shop-ID
//	@description				Authenticated shop identity set by the gateway

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger and telemetry
	log, providers, err := bootstrap.NewLogger(ctx, cfg)
	if err != nil {
		panic(err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Warn("Telemetry shutdown failed", zap.Error(err))
		}
	}()

	profiler, err := bootstrap.StartProfiler(cfg, "server", providers, log)
	if err != nil {
		log.Fatal("Failed to start profiler", zap.Error(err))
	}
	defer func() {
		if err := profiler.Stop(); err != nil {
			log.Warn("Profiler shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting print backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Database, storage, queue and services
	app, err := bootstrap.New(ctx, cfg, log, providers)
	if err != nil {
		log.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer closeCancel()
		if err := app.Close(closeCtx); err != nil {
			log.Warn("Error while releasing resources", zap.Error(err))
		}
	}()

	if cfg.Queue.ExternalWorkers {
		log.Info("Background work is handled by external workers")
	} else {
		if err := app.Coordinator.Start(ctx); err != nil {
			log.Fatal("Failed to start work coordinator", zap.Error(err))
		}
	}
	if cfg.Cleanup.Enabled && !cfg.Queue.ExternalWorkers {
		go app.Cleanup.Run(ctx, cfg.Cleanup.Interval)
	}

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Create Gin engine
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Fatal("Failed to set trusted proxies", zap.Error(err))
		}
	} else {
		_ = engine.SetTrustedProxies(nil)
	}

	// Middleware chain
	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID())
	engine.Use(logger.GinMiddleware(log))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.TracingWithConfig(middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     true,
		}))
		engine.Use(middleware.SpanAttributes())
	}
	httpMetrics, err := middleware.HTTPMetrics(providers.Meter("print-backend/http"))
	if err != nil {
		log.Fatal("Failed to create HTTP metrics", zap.Error(err))
	}
	engine.Use(httpMetrics)
	security := middleware.DefaultSecurityConfig()
	security.HSTSEnabled = cfg.HTTP.HSTSEnabled
	engine.Use(middleware.SecureWithConfig(security))

	identity := middleware.IdentityConfig{
		UserIDHeader: cfg.HTTP.UserIDHeader,
		ShopIDHeader: cfg.HTTP.ShopIDHeader,
	}
	corsConfig := middleware.DefaultCORSConfig()
	corsConfig.AllowOrigins = cfg.HTTP.CORSOrigins
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, identity.UserIDHeader, identity.ShopIDHeader)
	engine.Use(middleware.CORSWithConfig(corsConfig))

	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))

	if cfg.HTTP.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.HTTP.RateLimit, time.Minute)
		go limiter.Run(ctx)
		engine.Use(middleware.RateLimit(limiter))
		log.Info("Rate limiting enabled", zap.Int("requests_per_minute", cfg.HTTP.RateLimit))
	}

	// Handlers
	health := handler.NewHealthHandler(cfg.App.Name).
		WithCheck("database", func(context.Context) error { return app.Database.Ping() }).
		WithQueue(app.WorkItems)
	if app.Redis != nil {
		health.WithCheck("redis", func(ctx context.Context) error { return app.Redis.Ping(ctx).Err() })
	}
	drafts := handler.NewDraftHandler(app.Drafts)
	jobs := handler.NewPrintJobHandler(app.PrintJobs)
	shops := handler.NewShopHandler(app.Shops)

	requireUser := middleware.RequireUser(identity)
	requireShop := middleware.RequireShop(identity)

	// Setup API routes using router
	r := router.NewRouter(engine)
	r.Register(handler.HealthRoutes(health)).
		Register(handler.DraftRoutes(drafts, requireUser)).
		Register(handler.ShopRoutes(jobs, requireShop)).
		Register(handler.PrintJobRoutes(jobs, requireUser)).
		Register(handler.ShopAdminRoutes(shops, requireShop))
	r.Setup()

	// Swagger documentation endpoint
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	cancel()

	log.Info("Server exited gracefully")
}

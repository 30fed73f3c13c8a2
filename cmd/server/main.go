package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erp/omnisync/internal/application/insight"
	"github.com/erp/omnisync/internal/application/ordersync"
	"github.com/erp/omnisync/internal/application/reallocation"
	"github.com/erp/omnisync/internal/bootstrap"
	"github.com/erp/omnisync/internal/infrastructure/cache"
	"github.com/erp/omnisync/internal/infrastructure/config"
	"github.com/erp/omnisync/internal/infrastructure/ecommerce"
	"github.com/erp/omnisync/internal/infrastructure/persistence"
	"github.com/erp/omnisync/internal/interfaces/http/handler"
	"github.com/erp/omnisync/internal/interfaces/http/middleware"
	"github.com/erp/omnisync/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	rt, err := bootstrap.Start(context.Background(), cfg, "server")
	if err != nil {
		panic("Failed to start: " + err.Error())
	}
	log := rt.Logger
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := rt.Close(ctx); err != nil {
			log.Error("Error releasing resources", zap.Error(err))
		}
	}()

	log.Info("Starting omnisync server",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db := rt.DB.DB
	orderRepo := persistence.NewGormOrderRepository(db)
	connRepo := persistence.NewGormConnectionRepository(db)
	reallocationRepo := persistence.NewGormReallocationRepository(db)
	insightRepo := persistence.NewGormInsightRepository(db)

	registry := ecommerce.NewRegistry(ecommerce.SettingsFromConfig(cfg.Sync))
	syncService := ordersync.NewService(orderRepo, connRepo, registry, rt.DB, log,
		ordersync.WithMetrics(rt.Metrics),
	)

	replayStore, err := cache.NewReplayStoreFactory(cfg.Webhook, cfg.Redis, cache.WithLogger(log)).CreateStore()
	if err != nil {
		log.Fatal("Failed to create webhook replay store", zap.Error(err))
	}
	defer func() {
		if err := replayStore.Close(); err != nil {
			log.Error("Error closing replay store", zap.Error(err))
		}
	}()

	processor, err := newWebhookProcessor(cfg.Webhook, replayStore, syncService, rt.Metrics, log)
	if err != nil {
		log.Fatal("Failed to create webhook processor", zap.Error(err))
	}

	webhookHandler := handler.NewWebhookHandler(processor, cfg.Webhook.SignatureHeader).
		WithMaxPayload(cfg.Webhook.MaxPayloadBytes)
	reallocationHandler := handler.NewReallocationHandler(reallocation.NewService(reallocationRepo, log))
	insightHandler := handler.NewInsightHandler(insight.NewQueryService(insightRepo))
	orderHandler := handler.NewOrderHandler(orderRepo)
	healthHandler := handler.NewHealthHandler(rt.DB, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	if len(cfg.HTTP.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.HTTP.CORSAllowMethods
	}
	if len(cfg.HTTP.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.HTTP.CORSAllowHeaders
	}

	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:    cfg.Telemetry.ServiceName,
		TracingEnabled: cfg.Telemetry.Enabled,
		MaxBodyBytes:   cfg.HTTP.MaxBodySize,
		CORS:           cors,
		TrustedProxies: cfg.HTTP.TrustedProxies,
	}, log)
	if err != nil {
		log.Fatal("Failed to build HTTP engine", zap.Error(err))
	}

	engine.GET("/health", healthHandler.Health)
	router.NewRouter(engine).
		Register(webhookHandler, reallocationHandler, insightHandler, orderHandler).
		Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server...", zap.String("signal", sig.String()))
	case err := <-serveErr:
		log.Error("Server failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
		return
	}

	log.Info("Server exited gracefully")
}

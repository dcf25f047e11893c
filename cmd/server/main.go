// Package main runs the quiz service HTTP server with the live result feed
// and graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/BIJODEV/BibleQZ/internal/cache"
	"github.com/BIJODEV/BibleQZ/internal/config"
	"github.com/BIJODEV/BibleQZ/internal/handlers"
	"github.com/BIJODEV/BibleQZ/internal/localstore"
	"github.com/BIJODEV/BibleQZ/internal/middleware"
	"github.com/BIJODEV/BibleQZ/internal/realtime"
	"github.com/BIJODEV/BibleQZ/internal/repositories/postgres"
	"github.com/BIJODEV/BibleQZ/internal/services"
	"github.com/BIJODEV/BibleQZ/internal/utils"
	"github.com/BIJODEV/BibleQZ/internal/validator"
	"github.com/BIJODEV/BibleQZ/pkg"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fatal(slog.Default(), "load config", err)
	}

	logger := utils.NewDefaultLogger()
	if cfg.Environment != "production" {
		logger = utils.NewDevelopmentLogger()
	}
	slogger := utils.ToSlogLogger(logger)
	zlogger := newZapLogger()
	defer zlogger.Sync()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		fatal(slogger, "database", err)
	}

	rdb, err := pkg.NewRedisClient(cfg)
	if err != nil {
		fatal(slogger, "redis", err)
	}
	defer rdb.Close()

	var local *localstore.Store
	if cfg.LocalStorePath != "" {
		localDB, err := pkg.OpenLocalDB(cfg.LocalStorePath)
		if err != nil {
			fatal(slogger, "local store", err)
		}
		defer localDB.Close()
		if local, err = localstore.New(localDB); err != nil {
			fatal(slogger, "local store", err)
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		fatal(slogger, "event publisher", err)
	}

	if !middleware.InitCasdoor(cfg.Casdoor) {
		slogger.Warn("Casdoor not configured, author history endpoints disabled")
	}

	v := validator.New()
	manager := services.NewServiceManager(services.ManagerDeps{
		Repo:      postgres.NewRepository(db),
		Cache:     cache.NewRedisCache(rdb, zlogger),
		Feed:      realtime.NewFeed(rdb, zlogger),
		Local:     local,
		Publisher: publisher,
		Logger:    slogger,
		Validator: v,
	})
	defer manager.Close()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.LoggerMiddleware(logger))

	handlerManager := handlers.NewHandlerManager(manager, v, logger)
	handlerManager.SetupRoutes(router)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slogger.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fatal(slogger, "server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slogger.Error("server shutdown", "error", err)
	}
	slogger.Info("server stopped")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	os.Exit(1)
}

func newZapLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

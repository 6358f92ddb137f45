// Package main runs the event registration HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/emails"
	"github.com/dexabrain/event-backend/internal/event"
	"github.com/dexabrain/event-backend/internal/mailer"
	"github.com/dexabrain/event-backend/internal/middleware"
	"github.com/dexabrain/event-backend/internal/newsletter"
	"github.com/dexabrain/event-backend/internal/registrations"
	"github.com/dexabrain/event-backend/internal/store"
	"github.com/dexabrain/event-backend/pkg/database"
	"github.com/dexabrain/event-backend/pkg/queue"
	"github.com/dexabrain/event-backend/pkg/redis"
	"github.com/dexabrain/event-backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()

	var st store.Store
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
		if err != nil {
			logger.Fatal("database", zap.Error(err))
		}
		defer pool.Close()
		if err := database.Migrate(ctx, pool); err != nil {
			logger.Fatal("migrate", zap.Error(err))
		}
		st = store.NewPostgres(pool)
	case "sheets":
		st, err = store.NewSheets(ctx, cfg.Store.SpreadsheetID, cfg.Store.CredentialsFile)
		if err != nil {
			logger.Fatal("sheets", zap.Error(err))
		}
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		st = store.NewMemory()
	default:
		logger.Fatal("unknown store backend", zap.String("backend", cfg.Store.Backend))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			logger.Warn("redis disabled", zap.Error(err))
			rdb = nil
		} else {
			defer rdb.Close()
		}
	}

	renderer := emails.NewRenderer(cfg.Event, cfg.Assets, cfg.Email)
	dispatcher := mailer.NewSMTP(cfg.Email, logger)

	var nlCache *goredis.Client
	var jobQueue *queue.Queue
	if rdb != nil {
		nlCache = rdb.Client
		jobQueue = queue.NewQueue(rdb.Client, logger)
	}

	newsletterSvc := newsletter.NewService(st, nlCache, cfg.Store.CallTimeout, logger)
	newsletterHandler := newsletter.NewHandler(newsletterSvc, logger)

	registrationSvc := registrations.NewService(st, newsletterSvc, dispatcher, renderer, cfg.Email, cfg.Store.CallTimeout, logger)
	registrationHandler := registrations.NewHandler(registrationSvc, jobQueue, logger)

	eventHandler := event.NewHandler(cfg.Event)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, "", gin.H{"status": "ok"}) })

	api := router.Group("/api")
	{
		api.POST("/registration", registrationHandler.Register)
		api.POST("/newsletter", newsletterHandler.Subscribe)
		api.GET("/event", eventHandler.Get)
		api.GET("/event/calendar.ics", eventHandler.CalendarICS)
		api.GET("/registrations/:id", registrationHandler.Get)
		api.POST("/registrations/:id/resend", registrationHandler.Resend)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

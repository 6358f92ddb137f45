// Package main runs the background email worker (confirmation resends).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dexabrain/event-backend/config"
	"github.com/dexabrain/event-backend/internal/emails"
	"github.com/dexabrain/event-backend/internal/mailer"
	"github.com/dexabrain/event-backend/internal/store"
	"github.com/dexabrain/event-backend/internal/worker"
	"github.com/dexabrain/event-backend/pkg/database"
	"github.com/dexabrain/event-backend/pkg/queue"
	"github.com/dexabrain/event-backend/pkg/redis"
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
		st = store.NewPostgres(pool)
	case "sheets":
		st, err = store.NewSheets(ctx, cfg.Store.SpreadsheetID, cfg.Store.CredentialsFile)
		if err != nil {
			logger.Fatal("sheets", zap.Error(err))
		}
	default:
		logger.Fatal("worker requires a durable store backend", zap.String("backend", cfg.Store.Backend))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	renderer := emails.NewRenderer(cfg.Event, cfg.Assets, cfg.Email)
	dispatcher := mailer.NewSMTP(cfg.Email, logger)
	jobQueue := queue.NewQueue(rdb.Client, logger)
	processor := worker.NewEmailProcessor(st, dispatcher, renderer, cfg.Email, jobQueue, logger)

	workerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go processor.Run(workerCtx)
	logger.Info("worker started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	cancel()
	time.Sleep(2 * time.Second)
	logger.Info("worker stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

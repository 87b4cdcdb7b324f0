package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/yithume/dispatch/internal/adapter/handler"
	"github.com/yithume/dispatch/internal/adapter/idgen"
	"github.com/yithume/dispatch/internal/adapter/storage"
	"github.com/yithume/dispatch/internal/audit"
	"github.com/yithume/dispatch/internal/config"
	"github.com/yithume/dispatch/internal/core/service"
	"github.com/yithume/dispatch/internal/logger"
	"github.com/yithume/dispatch/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Redis holds the dispatch collections and the state-change channel.
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		zlog.Fatal("failed to connect redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}
	zlog.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// MySQL is optional; without a DSN audit entries are discarded.
	var sink port.AuditSink = audit.NopSink{}
	var db *sql.DB
	if cfg.MySQLDSN != "" {
		db, err = sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			zlog.Fatal("failed to open mysql", zap.Error(err))
		}
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.PingContext(ctx); err != nil {
			zlog.Fatal("failed to ping mysql", zap.Error(err))
		}
		zlog.Info("connected to mysql")
		sink = storage.NewMySQLAuditLog(db)
	} else {
		zlog.Warn("MYSQL_DSN not set, audit trail disabled")
	}

	trail := audit.NewTrail(sink, cfg.AuditQueueSize, zlog)
	trail.Start(cfg.AuditWorkers)
	zlog.Info("started audit workers", zap.Int("workers", cfg.AuditWorkers))

	store := storage.NewRedisStore(rdb, zlog)
	events := storage.NewRedisPublisher(rdb, zlog)
	ids := idgen.New()
	now := time.Now

	directory := service.NewDirectory(store.Drivers(), ids, now, trail)
	assigner := service.NewAssigner(
		store.Orders(), store.Batches(), directory,
		service.AssignerConfig{FirstShare: cfg.FirstShare, NextShare: cfg.NextShare},
		ids, now, events, trail, zlog,
	)
	lifecycle := service.NewLifecycle(store.Orders(), store.Batches(), now, events, trail, zlog)
	aggregator := service.NewPayoutAggregator(store.Batches(), store.Payouts(), ids, now, events, trail, zlog, cfg.PayoutUpsert)
	intake := service.NewIntake(store.Orders(), ids, now, events, trail, zlog)

	mux := http.NewServeMux()
	handler.NewHTTPHandler(intake, directory, assigner, lifecycle, aggregator, now).Register(mux)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		zlog.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			zlog.Error("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	zlog.Info("HTTP server stopped")

	trail.Close()
	zlog.Info("audit workers stopped")

	rdb.Close()
	if db != nil {
		db.Close()
	}
	zlog.Info("connections closed")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Imanalii/yitiflow-dashboard/internal/auth"
	"github.com/Imanalii/yitiflow-dashboard/internal/config"
	internalhttp "github.com/Imanalii/yitiflow-dashboard/internal/http"
	"github.com/Imanalii/yitiflow-dashboard/internal/jobs"
	"github.com/Imanalii/yitiflow-dashboard/internal/logging"
	"github.com/Imanalii/yitiflow-dashboard/internal/mq"
	"github.com/Imanalii/yitiflow-dashboard/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger, err := logging.New("yitiflow-dashboard")
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := store.New(cfg.DatabaseURL, cfg.OwnerOpenID, logger)
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		logger.Fatal("schema migration failed", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("redis ping failed", zap.Error(err))
		}
		cancel()
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close error", zap.Error(err))
			}
		}()
	}
	sessions := auth.NewSessionRevoker(redisClient, cfg.SessionTTL)

	if cfg.RabbitURL != "" {
		consumer, err := mq.NewSensorConsumer(mq.ConsumerConfig{
			URL:        cfg.RabbitURL,
			Exchange:   cfg.SensorExchange,
			Queue:      cfg.SensorQueue,
			RoutingKey: cfg.SensorKey,
			Prefetch:   cfg.SensorPrefetch,
		}, st, logger)
		if err != nil {
			logger.Fatal("sensor consumer init failed", zap.Error(err))
		}
		defer consumer.Close()
		if err := consumer.Start(ctx); err != nil {
			logger.Fatal("sensor consumer start failed", zap.Error(err))
		}
		logger.Info("sensor ingest consuming", zap.String("queue", cfg.SensorQueue))
	}

	jobs.StartFleetGauges(ctx, cfg.GaugeInterval, st, logger)

	server := internalhttp.NewServer(cfg, st, sessions, logger)
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown error", zap.Error(err))
	}
}

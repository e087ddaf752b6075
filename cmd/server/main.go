package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursepulse/internal/analytics/invalidation"
	"coursepulse/internal/analytics/invalidation/metrics"
	"coursepulse/internal/analytics/store"
	"coursepulse/internal/platform/config"
	"coursepulse/internal/platform/httpserver"
	"coursepulse/internal/platform/kafka/consumer"
	"coursepulse/internal/platform/logger"
	platformredis "coursepulse/internal/platform/redis"
	httptransport "coursepulse/internal/transport/http"
	kafkatransport "coursepulse/internal/transport/kafka"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Eviction logic lives in internal/analytics/invalidation.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		log.Error("redis connection failed", "error", err)
		os.Exit(1)
	}

	var cacheStore store.Store
	var health httptransport.HealthCheck
	if redisClient != nil {
		redisStore, err := store.NewRedis(redisClient.Client)
		if err != nil {
			log.Error("cache store construction failed", "error", err)
			os.Exit(1)
		}
		cacheStore = redisStore
		health = redisClient.Health
		defer redisClient.Close()
	} else {
		log.Warn("redis not configured, using in-memory cache store")
		cacheStore = store.NewMemory()
	}

	engine, err := invalidation.New(cacheStore, log,
		invalidation.WithMetrics(metrics.New()),
		invalidation.WithMaxInflight(cfg.Engine.MaxInflight),
	)
	if err != nil {
		log.Error("engine construction failed", "error", err)
		os.Exit(1)
	}

	handler, err := httptransport.New(engine, log)
	if err != nil {
		log.Error("handler construction failed", "error", err)
		os.Exit(1)
	}
	srv := httpserver.New(cfg.Server.Addr, httptransport.NewRouter(handler, health))

	if len(cfg.Kafka.Brokers) > 0 {
		cons, err := consumer.New(consumer.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			Group:   cfg.Kafka.Group,
		}, log)
		if err != nil {
			log.Error("kafka consumer construction failed", "error", err)
			os.Exit(1)
		}
		defer cons.Close()

		ingest, err := kafkatransport.NewIngest(engine, log)
		if err != nil {
			log.Error("kafka ingest construction failed", "error", err)
			os.Exit(1)
		}

		go func() {
			if err := cons.Run(ctx, ingest); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("kafka consumer stopped", "error", err)
				stop()
			}
		}()
		log.Info("consuming invalidation events",
			"topic", cfg.Kafka.Topic,
			"group", cfg.Kafka.Group,
		)
	}

	go func() {
		log.Info("starting coursepulse", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

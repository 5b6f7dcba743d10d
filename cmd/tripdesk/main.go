package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"tripdesk/internal/app/commit"
	appoutbox "tripdesk/internal/app/outbox"
	"tripdesk/internal/domain/catalog"
	"tripdesk/internal/infra/broker/kafka"
	"tripdesk/internal/infra/config"
	"tripdesk/internal/infra/db/mongo"
	ginserver "tripdesk/internal/infra/http/gin"
	"tripdesk/internal/infra/obs"
	"tripdesk/internal/infra/outbox"
	"tripdesk/internal/infra/provider"
	"tripdesk/internal/infra/storage/memory"
	"tripdesk/internal/infra/storage/redis"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	logger := obs.NewLogger(cfg.Env)
	slog.SetDefault(logger)
	if err != nil {
		logger.Error("configuration invalid", "error", err)
		os.Exit(1)
	}

	client := &provider.Client{
		BaseURL: cfg.ProviderBaseURL,
		HTTP:    &http.Client{Timeout: cfg.ProviderTimeout},
		Tokens:  provider.StaticToken(cfg.ProviderToken),
		Logger:  logger,
	}

	registry := memory.NewSessionRegistry()

	var cache catalog.Cache
	var checks []obs.Check
	if cfg.RedisAddr != "" {
		redisCache := redis.NewCatalogCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CatalogTTL, logger)
		defer redisCache.Close()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Error("redis unreachable", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
		cache = redisCache
		checks = append(checks, obs.Check{Name: "redis", Probe: redisCache.Ping})
		logger.Info("catalog cache: redis", "addr", cfg.RedisAddr, "ttl", cfg.CatalogTTL)
	} else {
		cache = memory.NewCatalogCache(cfg.CatalogTTL)
		logger.Info("catalog cache: in-memory", "ttl", cfg.CatalogTTL)
	}

	var box appoutbox.Outbox
	if cfg.MongoURI != "" && len(cfg.KafkaBrokers) > 0 {
		mongoClient, err := mongo.New(cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			logger.Error("mongo connect failed", "error", err)
			os.Exit(1)
		}
		if err := mongoClient.Ping(ctx); err != nil {
			logger.Error("mongo unreachable", "error", err)
			os.Exit(1)
		}
		checks = append(checks, obs.Check{Name: "mongo", Probe: mongoClient.Ping})

		producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
		if err != nil {
			logger.Error("kafka producer failed", "brokers", cfg.KafkaBrokers, "error", err)
			os.Exit(1)
		}
		defer producer.Close()

		store := outbox.NewStore(mongoClient.DB)
		box = store
		worker := &outbox.Worker{
			Store:       store,
			Producer:    producer,
			Logger:      logger,
			Interval:    cfg.OutboxPollInterval,
			TopicPrefix: cfg.KafkaTopicPrefix,
			ID:          uuid.NewString(),
			Backoff:     cfg.RetryBackoff,
		}
		go func() {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		}()
		logger.Info("outbox: mongo + kafka", "brokers", cfg.KafkaBrokers)
	} else {
		box = memory.NewOutbox()
		logger.Info("outbox: in-memory, events are not published")
	}

	committer := &commit.Committer{
		Selector:  client,
		Itinerary: client,
		Outbox:    box,
		Encoder:   appoutbox.JSONEncoder{IDGenerator: uuid.NewString},
		Logger:    logger,
	}

	srv := ginserver.NewServer(cfg,
		obs.Middleware{Logger: logger},
		obs.HealthHandlers{Checks: checks, Timeout: 2 * time.Second},
		ginserver.Handlers{
			Search: ginserver.SearchHandler{Registry: registry, Pager: client, Logger: logger},
			Hotel: ginserver.HotelHandler{
				Registry:  registry,
				Fetcher:   client,
				Cache:     cache,
				Committer: committer,
				Logger:    logger,
			},
		},
	)

	go func() {
		logger.Info("http server listening", "addr", cfg.HTTPAddr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("bye")
}

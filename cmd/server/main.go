package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/honeynil/nft-marketplace/internal/api"
	"github.com/honeynil/nft-marketplace/internal/config"
	"github.com/honeynil/nft-marketplace/internal/handler"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/kafka"
	"github.com/honeynil/nft-marketplace/internal/infrastructure/redis"
	"github.com/honeynil/nft-marketplace/internal/observability"
	core "github.com/honeynil/nft-marketplace/internal/repository/postgres"
	service "github.com/honeynil/nft-marketplace/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Инициализируем логи и трейсы
	shutdownTracing := observability.Setup(ctx, cfg)
	defer shutdownTracing(context.Background())
	slog.Info("config loaded", "config", cfg)

	// Подключаемся к Postgres
	db, err := core.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to connect to Postgres", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis и Kafka опциональны
	var redisClient redis.RedisClient
	if cfg.CacheEnabled() {
		client, err := redis.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			slog.Warn("continuing without cache", "error", err)
		} else {
			redisClient = client
			defer client.Close()
		}
	}

	var producer kafka.KafkaProducer
	if cfg.EventsEnabled() {
		p := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		producer = p
		defer p.Close()

		consumer := kafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID)
		go consumer.Consume(ctx)
		defer consumer.Close()
	}

	svc := service.NewMarketplaceService(
		core.NewPostgresNFTRepository(db),
		core.NewPostgresUserRepository(db),
		core.NewPostgresTransactionRepository(db),
		redisClient,
		producer,
		cfg.CacheTTL,
	)

	router := api.SetupRouter(handler.NewHandler(svc), db, cfg.JWTSecret)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		slog.Info("starting server", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
	slog.Info("server stopped")
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"ms-events/internal/bookings"
	"ms-events/internal/bookings/booking_api"
	"ms-events/internal/bookings/pass"
	"ms-events/internal/cache"
	"ms-events/internal/config"
	"ms-events/internal/database"
	"ms-events/internal/events"
	"ms-events/internal/events/event_api"
	"ms-events/internal/kafka"
	"ms-events/internal/logger"
	"ms-events/internal/metrics"
	"ms-events/internal/server"
)

func connectRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) *cache.EventCache {
	if !cfg.RedisEnabled() {
		log.Info("REDIS", "REDIS_ADDR not set, event cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{Addr: cfg.RedisConfig.Addr})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, event cache disabled: %v", cfg.RedisConfig.Addr, err))
		client.Close()
		return nil
	}

	log.Info("REDIS", fmt.Sprintf("Redis connection successful to %s", cfg.RedisConfig.Addr))
	return cache.NewEventCache(client, cfg.CacheTTL)
}

func setupKafka(cfg *config.Config, log *logger.Logger) *kafka.Producer {
	if !cfg.KafkaEnabled() {
		log.Info("KAFKA", "KAFKA_BROKERS not set, publishing disabled")
		return nil
	}

	topics := []string{cfg.EventsTopic, cfg.BookingsTopic}
	if err := kafka.EnsureTopicsExist(cfg.Brokers, topics, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}

	log.Info("KAFKA", fmt.Sprintf("Kafka producer initialized for %v", cfg.Brokers))
	return kafka.NewProducer(cfg.Brokers, cfg.EventsTopic, cfg.BookingsTopic, log)
}

func main() {
	cfg, warning, err := config.Load()
	if err != nil {
		logger.New(logger.Options{Terminal: os.Stdout, ColorEnabled: true}).Fatal("CONFIG", err.Error())
	}

	log, err := logger.NewLogger(cfg.LogConfig.Dir, cfg.LogConfig.Level)
	if err != nil {
		logger.New(logger.Options{Terminal: os.Stdout, ColorEnabled: true}).Fatal("LOGGER", err.Error())
	}
	defer log.Close()

	if warning != "" {
		log.Warn("CONFIG", warning)
	}
	log.Info("APP", fmt.Sprintf("Starting events service (%s)", cfg.Env))

	ctx := context.Background()
	m := metrics.New()

	manager, err := database.NewStoreManager(cfg.DatabaseConfig.URL, database.OpenOptions{
		MongoDatabase: cfg.MongoDatabase,
		AutoMigrate:   cfg.AutoMigrate,
		Logger:        log,
	}, cfg.ConnectTimeout, m)
	if err != nil {
		log.Fatal("CONFIG", err.Error())
	}

	// Requests connect lazily, so a failed warm-up is not fatal.
	if _, err := manager.Connect(ctx); err != nil {
		log.Warn("DATABASE", fmt.Sprintf("Initial connection failed, will retry on demand: %v", err))
	}

	eventCache := connectRedis(ctx, cfg, log)
	producer := setupKafka(cfg, log)

	eventService := events.NewEventService(manager, log)
	eventService.Similarity = events.SharedTags{Limit: cfg.SimilarLimit}
	eventService.Metrics = m
	eventService.Timeout = cfg.RequestTimeout

	bookingService := bookings.NewBookingService(manager, log)
	bookingService.Passes = pass.NewGenerator(cfg.PublicBaseURL)
	bookingService.Metrics = m
	bookingService.Timeout = cfg.RequestTimeout

	if eventCache != nil {
		eventService.Cache = eventCache
		defer eventCache.Close()
	}
	if producer != nil {
		eventService.Publisher = producer
		bookingService.Publisher = producer
		defer producer.Close()
	}

	router := server.NewRouter(server.Deps{
		Events:   event_api.NewHandler(eventService, log),
		Bookings: booking_api.NewHandler(bookingService, log),
		Health:   manager,
		Metrics:  m,
		Logger:   log,
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Events service running on %s", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	}
	if err := manager.Disconnect(ctxShutdown); err != nil {
		log.Error("DATABASE", err.Error())
	}
	log.Info("APP", "Shutdown complete")
}

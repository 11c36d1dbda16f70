package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/railbooking/railbooking/config"
	"github.com/railbooking/railbooking/internal/bootstrap"
	"github.com/railbooking/railbooking/internal/cache"
	"github.com/railbooking/railbooking/internal/email"
	"github.com/railbooking/railbooking/internal/kafka"
	"github.com/railbooking/railbooking/internal/service/reconcile"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := cfg.NewLogger().With("component", "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := bootstrap.NewRepositories(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer repos.Close()

	opts := []reconcile.ReconcileServiceOption{
		reconcile.WithDefaultCapacity(cfg.Booking.DefaultCapacity),
	}
	if cfg.Redis.Addr != "" {
		opts = append(opts, reconcile.WithTrainCache(cache.NewRedisCache(cfg.Redis, cfg.Booking.TrainsCacheDuration())))
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		opts = append(opts, reconcile.WithProducer(producer, cfg.Kafka.TicketEventsTopic))
	}
	reconcileService := reconcile.NewReconcileService(repos.Store, repos.Trains, logger, opts...)

	scheduler, err := bootstrap.NewReconcileScheduler(ctx, cfg.Worker.ReconcileSchedule, reconcileService, logger)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	if len(cfg.Kafka.Brokers) > 0 {
		consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, logger)
		defer consumer.Close()

		emailSender := email.NewSender(logger)

		go func() {
			err := consumer.Consume(ctx, emailSender.Send)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("consumer stopped", "error", err)
			}
		}()
	} else {
		logger.Warn("no kafka brokers configured, notifications disabled")
	}

	logger.Info("worker started", "reconcile_schedule", cfg.Worker.ReconcileSchedule)
	<-ctx.Done()
	logger.Info("shutting down")
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/railbooking/railbooking/api"
	"github.com/railbooking/railbooking/config"
	"github.com/railbooking/railbooking/internal/bootstrap"
	"github.com/railbooking/railbooking/internal/cache"
	"github.com/railbooking/railbooking/internal/kafka"
	"github.com/railbooking/railbooking/internal/service/auth"
	"github.com/railbooking/railbooking/internal/service/booking"
	"github.com/railbooking/railbooking/internal/service/reconcile"
	"github.com/railbooking/railbooking/internal/service/reports"
	"github.com/railbooking/railbooking/internal/service/trains"
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
	logger := cfg.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := bootstrap.NewRepositories(ctx, cfg.Database, logger)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	defer repos.Close()

	var checks []bootstrap.HealthCheck
	if repos.Ping != nil {
		checks = append(checks, repos.Ping)
	}

	bookingOpts := []booking.BookingServiceOption{
		booking.WithCancellationWindow(cfg.Booking.CancellationWindow),
	}
	reconcileOpts := []reconcile.ReconcileServiceOption{
		reconcile.WithDefaultCapacity(cfg.Booking.DefaultCapacity),
	}

	var trainCache trains.TrainCache
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, cfg.Booking.TrainsCacheDuration())
		trainCache = redisCache
		bookingOpts = append(bookingOpts, booking.WithTrainCache(redisCache))
		reconcileOpts = append(reconcileOpts, reconcile.WithTrainCache(redisCache))
		checks = append(checks, redisCache.Ping)
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, logger)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unavailable at startup", "error", err)
		}
		bookingOpts = append(bookingOpts,
			booking.WithProducer(producer, cfg.Kafka.TicketEventsTopic),
			booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		)
		reconcileOpts = append(reconcileOpts, reconcile.WithProducer(producer, cfg.Kafka.TicketEventsTopic))
	}

	authService := auth.NewAuthService(repos.Users, cfg.Auth.JWTSecret, logger,
		auth.WithTokenTTL(cfg.Auth.TokenTTL),
		auth.WithBcryptCost(cfg.Auth.BcryptCost),
	)
	trainService := trains.NewTrainService(repos.Trains, trainCache, logger)
	bookingService := booking.NewBookingService(repos.Store, repos.Tickets, logger, bookingOpts...)
	reconcileService := reconcile.NewReconcileService(repos.Store, repos.Trains, logger, reconcileOpts...)
	reportService := reports.NewReportService(repos.Reports)

	router := api.NewRouter(logger, authService, api.Handlers{
		Auth:     api.NewAuthHandler(authService),
		Trains:   api.NewTrainHandler(trainService),
		Tickets:  api.NewTicketHandler(bookingService, trainService, reconcileService),
		Payments: api.NewPaymentHandler(repos.Payments),
		Reports:  api.NewReportHandler(reportService),
	})

	if err := bootstrap.Run(ctx, cfg, router, logger, checks...); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

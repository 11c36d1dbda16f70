package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/config"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
	"github.com/railbooking/railbooking/internal/repository/memory"
	"github.com/shopspring/decimal"
)

type Repositories struct {
	Store    repository.Store
	Trains   repository.TrainRepository
	Tickets  repository.TicketRepository
	Payments repository.PaymentRepository
	Users    repository.UserRepository
	Reports  repository.ReportRepository

	// Ping is nil for the memory driver.
	Ping  HealthCheck
	Close func()
}

// NewRepositories opens the configured storage backend.
func NewRepositories(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*Repositories, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logger.Warn("using in-memory storage; data is lost on exit")
		store := memory.NewStore()
		for _, train := range sampleTrains() {
			store.AddTrain(train)
		}
		return &Repositories{
			Store:    store,
			Trains:   store,
			Tickets:  store,
			Payments: store,
			Users:    store,
			Reports:  store,
			Close:    func() {},
		}, nil
	default:
		pool, err := pgxpool.New(ctx, cfg.DSN())
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		if err := repository.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return &Repositories{
			Store:    repository.NewStore(pool),
			Trains:   repository.NewTrainRepository(pool),
			Tickets:  repository.NewTicketRepository(pool),
			Payments: repository.NewPaymentRepository(pool),
			Users:    repository.NewUserRepository(pool),
			Reports:  repository.NewReportRepository(pool),
			Ping:     pool.Ping,
			Close:    pool.Close,
		}, nil
	}
}

func sampleTrains() []domain.Train {
	return []domain.Train{
		{
			TrainNo: 12951, Name: "Mumbai Rajdhani", Source: "Mumbai", Destination: "Delhi",
			TotalCapacity: 50, SeatAvailable: 50,
			Classes: []domain.FareClass{{ClassType: "AC1", Fare: decimal.NewFromInt(4750)}, {ClassType: "AC2", Fare: decimal.NewFromInt(2850)}},
		},
		{
			TrainNo: 12627, Name: "Karnataka Express", Source: "Bangalore", Destination: "Delhi",
			TotalCapacity: 50, SeatAvailable: 50,
			Classes: []domain.FareClass{{ClassType: "SL", Fare: decimal.NewFromInt(820)}, {ClassType: "AC3", Fare: decimal.NewFromInt(2150)}},
		},
	}
}

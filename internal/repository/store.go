package repository

import (
	"context"

	"github.com/railbooking/railbooking/internal/domain"
)

// Store runs a unit of work inside one transaction. fn's error rolls the
// whole unit back; a nil return commits it.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the set of inventory, ticket and payment mutations that are only
// valid inside a Store transaction. Lock methods hold the row until the
// transaction ends.
type Tx interface {
	// LockTrain takes an exclusive lock on the train's inventory row.
	LockTrain(ctx context.Context, trainNo int64) (*domain.CapacitySnapshot, error)
	// LockTicket locks the ticket owned by userID. Another user's PNR is
	// reported as not found.
	LockTicket(ctx context.Context, pnr, userID int64) (*domain.Ticket, error)

	InsertTicket(ctx context.Context, ticket *domain.Ticket) error
	InsertPayment(ctx context.Context, payment *domain.Payment) error
	DeletePayment(ctx context.Context, pnr int64) error
	DeleteTicket(ctx context.Context, pnr int64) error

	DecrementSeat(ctx context.Context, trainNo int64) error
	IncrementSeat(ctx context.Context, trainNo int64) error
	SetSeatAvailable(ctx context.Context, trainNo int64, available int) error

	CountTickets(ctx context.Context, trainNo int64) (int, error)
}

type TrainRepository interface {
	List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error)
	GetByNumber(ctx context.Context, trainNo int64) (*domain.Train, error)
	GetCapacity(ctx context.Context, trainNo int64) (*domain.CapacitySnapshot, error)
	TrainNumbers(ctx context.Context) ([]int64, error)
	Status(ctx context.Context, trainNo int64) (*domain.TrainStatus, error)
}

type TicketRepository interface {
	ListByUser(ctx context.Context, userID int64) ([]domain.MyTicket, error)
}

type PaymentRepository interface {
	GetByPNR(ctx context.Context, pnr, userID int64) (*domain.Payment, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type ReportRepository interface {
	Summary(ctx context.Context) (*domain.Summary, error)
	PopularTrains(ctx context.Context) ([]domain.PopularTrain, error)
}

package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/kafka"
	"github.com/railbooking/railbooking/internal/repository"
)

type ReconcileUseCase interface {
	Reconcile(ctx context.Context) ([]domain.SeatCorrection, error)
}

type TrainCache interface {
	InvalidateTrains(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

// ReconcileService recomputes every train's seat counter from the tickets
// that actually exist: capacity minus booked, never below zero.
type ReconcileService struct {
	store           repository.Store
	trains          repository.TrainRepository
	cache           TrainCache
	producer        Producer
	eventsTopic     string
	defaultCapacity int
	now             func() time.Time
	logger          *slog.Logger
}

type ReconcileServiceOption func(*ReconcileService)

func WithTrainCache(cache TrainCache) ReconcileServiceOption {
	return func(s *ReconcileService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, eventsTopic string) ReconcileServiceOption {
	return func(s *ReconcileService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
	}
}

// WithDefaultCapacity sets the capacity assumed for trains that have none recorded.
func WithDefaultCapacity(capacity int) ReconcileServiceOption {
	return func(s *ReconcileService) {
		s.defaultCapacity = capacity
	}
}

func NewReconcileService(
	store repository.Store,
	trains repository.TrainRepository,
	logger *slog.Logger,
	opts ...ReconcileServiceOption,
) *ReconcileService {
	s := &ReconcileService{
		store:           store,
		trains:          trains,
		defaultCapacity: 50,
		now:             time.Now,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile corrects each train in its own transaction so one train's lock
// is never held while another is counted. Only trains whose counter changed
// are reported.
func (s *ReconcileService) Reconcile(ctx context.Context) ([]domain.SeatCorrection, error) {
	trainNos, err := s.trains.TrainNumbers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list trains: %w", err)
	}

	corrections := make([]domain.SeatCorrection, 0)
	for _, trainNo := range trainNos {
		correction, err := s.reconcileTrain(ctx, trainNo)
		if err != nil {
			// Earlier trains are already committed.
			if len(corrections) > 0 {
				s.afterCommit(ctx, corrections)
			}
			return corrections, fmt.Errorf("reconcile train %d: %w", trainNo, err)
		}
		if correction != nil {
			corrections = append(corrections, *correction)
		}
	}

	if len(corrections) > 0 {
		s.afterCommit(ctx, corrections)
	}
	s.logger.InfoContext(ctx, "seat reconciliation finished",
		"trains", len(trainNos),
		"corrected", len(corrections),
	)
	return corrections, nil
}

func (s *ReconcileService) reconcileTrain(ctx context.Context, trainNo int64) (*domain.SeatCorrection, error) {
	var correction *domain.SeatCorrection
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		snap, err := tx.LockTrain(ctx, trainNo)
		if err != nil {
			return err
		}
		booked, err := tx.CountTickets(ctx, trainNo)
		if err != nil {
			return fmt.Errorf("count tickets: %w", err)
		}

		capacity := snap.TotalCapacity
		if capacity <= 0 {
			capacity = s.defaultCapacity
		}
		want := max(capacity-booked, 0)
		if want == snap.SeatAvailable {
			return nil
		}

		if err := tx.SetSeatAvailable(ctx, trainNo, want); err != nil {
			return fmt.Errorf("set seat available: %w", err)
		}
		correction = &domain.SeatCorrection{
			TrainNo:       trainNo,
			OldAvailable:  snap.SeatAvailable,
			NewAvailable:  want,
			BookedTickets: booked,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if correction != nil {
		s.logger.WarnContext(ctx, "seat counter corrected",
			"train_no", trainNo,
			"old_available", correction.OldAvailable,
			"new_available", correction.NewAvailable,
			"booked_tickets", correction.BookedTickets,
		)
	}
	return correction, nil
}

func (s *ReconcileService) afterCommit(ctx context.Context, corrections []domain.SeatCorrection) {
	if s.cache != nil {
		if err := s.cache.InvalidateTrains(ctx); err != nil {
			s.logger.WarnContext(ctx, "invalidate train cache", "error", err)
		}
	}
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	for _, c := range corrections {
		event := kafka.TicketEvent{
			Type:          kafka.EventInventoryCorrected,
			TrainNo:       c.TrainNo,
			SeatAvailable: c.NewAvailable,
			OccurredAt:    s.now(),
		}
		if err := s.producer.Publish(ctx, s.eventsTopic, event.Key(), event); err != nil {
			s.logger.WarnContext(ctx, "publish inventory event", "train_no", c.TrainNo, "error", err)
		}
	}
}

var _ ReconcileUseCase = (*ReconcileService)(nil)

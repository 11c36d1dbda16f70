package trains

import (
	"context"
	"log/slog"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
)

type TrainUseCase interface {
	List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error)
	GetByNumber(ctx context.Context, trainNo int64) (*domain.Train, error)
	SeatAvailability(ctx context.Context, trainNo int64) (int, error)
	Status(ctx context.Context, trainNo int64) (*domain.TrainStatus, error)
}

type TrainCache interface {
	GetTrains(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error)
	SetTrains(ctx context.Context, filter domain.TrainFilter, trains []domain.Train) error
}

type TrainService struct {
	repo   repository.TrainRepository
	cache  TrainCache
	logger *slog.Logger
}

// NewTrainService accepts a nil cache; listings then always hit the repository.
func NewTrainService(repo repository.TrainRepository, cache TrainCache, logger *slog.Logger) *TrainService {
	return &TrainService{repo: repo, cache: cache, logger: logger}
}

func (s *TrainService) List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	if s.cache != nil {
		cached, err := s.cache.GetTrains(ctx, filter)
		if err != nil {
			s.logger.WarnContext(ctx, "read train cache", "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	trains, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if trains == nil {
		trains = []domain.Train{}
	}
	if s.cache != nil {
		if err := s.cache.SetTrains(ctx, filter, trains); err != nil {
			s.logger.WarnContext(ctx, "write train cache", "error", err)
		}
	}
	return trains, nil
}

func (s *TrainService) GetByNumber(ctx context.Context, trainNo int64) (*domain.Train, error) {
	return s.repo.GetByNumber(ctx, trainNo)
}

// SeatAvailability reads the committed counter; it never consults the cache.
func (s *TrainService) SeatAvailability(ctx context.Context, trainNo int64) (int, error) {
	snap, err := s.repo.GetCapacity(ctx, trainNo)
	if err != nil {
		return 0, err
	}
	return snap.SeatAvailable, nil
}

func (s *TrainService) Status(ctx context.Context, trainNo int64) (*domain.TrainStatus, error) {
	return s.repo.Status(ctx, trainNo)
}

var _ TrainUseCase = (*TrainService)(nil)

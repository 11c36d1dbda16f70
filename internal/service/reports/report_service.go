package reports

import (
	"context"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
)

type ReportUseCase interface {
	Summary(ctx context.Context) (*domain.Summary, error)
	PopularTrains(ctx context.Context) ([]domain.PopularTrain, error)
}

type ReportService struct {
	repo repository.ReportRepository
}

func NewReportService(repo repository.ReportRepository) *ReportService {
	return &ReportService{repo: repo}
}

func (s *ReportService) Summary(ctx context.Context) (*domain.Summary, error) {
	return s.repo.Summary(ctx)
}

// PopularTrains lists trains booked more often than the average booked train.
func (s *ReportService) PopularTrains(ctx context.Context) ([]domain.PopularTrain, error) {
	trains, err := s.repo.PopularTrains(ctx)
	if err != nil {
		return nil, err
	}
	if trains == nil {
		trains = []domain.PopularTrain{}
	}
	return trains, nil
}

var _ ReportUseCase = (*ReportService)(nil)

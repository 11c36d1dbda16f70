package reports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
	"github.com/railbooking/railbooking/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Summary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockReportRepository) PopularTrains(ctx context.Context) ([]domain.PopularTrain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PopularTrain), args.Error(1)
}

func book(t *testing.T, store *memory.Store, trainNo int64, amount string) {
	t.Helper()
	err := store.InTx(context.Background(), func(ctx context.Context, tx repository.Tx) error {
		ticket := &domain.Ticket{TrainNo: trainNo, UserID: 1, PassengerName: "P", ClassType: "SL", Source: "A", Destination: "B", DateTime: time.Now().Add(24 * time.Hour)}
		if err := tx.InsertTicket(ctx, ticket); err != nil {
			return err
		}
		return tx.InsertPayment(ctx, &domain.Payment{PNR: ticket.PNR, Bank: "HDFC", CardNo: "1234", Amount: decimal.RequireFromString(amount)})
	})
	require.NoError(t, err)
}

func TestReportService_WithMemoryStore(t *testing.T) {
	store := memory.NewStore()
	store.AddTrain(domain.Train{TrainNo: 1, Name: "Busy", Source: "A", Destination: "B", TotalCapacity: 10, SeatAvailable: 10})
	store.AddTrain(domain.Train{TrainNo: 2, Name: "Quiet", Source: "A", Destination: "C", TotalCapacity: 10, SeatAvailable: 10})
	book(t, store, 1, "100.50")
	book(t, store, 1, "200.25")
	book(t, store, 1, "50")
	book(t, store, 2, "10")

	service := NewReportService(store)
	ctx := context.Background()

	summary, err := service.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalTrains)
	assert.Equal(t, 4, summary.TotalBookings)
	assert.True(t, decimal.RequireFromString("360.75").Equal(summary.TotalRevenue))

	popular, err := service.PopularTrains(ctx)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, "Busy", popular[0].TrainName)
	assert.Equal(t, 3, popular[0].TotalBookings)
}

func TestReportService_PopularTrains_Empty(t *testing.T) {
	mockRepo := &MockReportRepository{}
	service := NewReportService(mockRepo)
	ctx := context.Background()

	mockRepo.On("PopularTrains", ctx).Return(nil, nil).Once()

	popular, err := service.PopularTrains(ctx)
	require.NoError(t, err)
	assert.NotNil(t, popular)
	assert.Empty(t, popular)
}

func TestReportService_Errors(t *testing.T) {
	mockRepo := &MockReportRepository{}
	service := NewReportService(mockRepo)
	ctx := context.Background()

	expectedErr := errors.New("database error")
	mockRepo.On("Summary", ctx).Return(nil, expectedErr).Once()
	mockRepo.On("PopularTrains", ctx).Return(nil, expectedErr).Once()

	_, err := service.Summary(ctx)
	assert.Equal(t, expectedErr, err)

	_, err = service.PopularTrains(ctx)
	assert.Equal(t, expectedErr, err)
}

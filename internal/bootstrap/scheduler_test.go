package bootstrap

import (
	"context"
	"testing"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockReconciler struct {
	mock.Mock
}

func (m *MockReconciler) Reconcile(ctx context.Context) ([]domain.SeatCorrection, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SeatCorrection), args.Error(1)
}

func TestNewReconcileScheduler(t *testing.T) {
	ctx := context.Background()
	reconciler := &MockReconciler{}
	reconciler.On("Reconcile", ctx).Return([]domain.SeatCorrection{{TrainNo: 1, OldAvailable: 3, NewAvailable: 2}}, nil).Once()

	c, err := NewReconcileScheduler(ctx, "@every 15m", reconciler, discardLogger())
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 1)
	entries[0].Job.Run()

	reconciler.AssertExpectations(t)
}

func TestNewReconcileScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewReconcileScheduler(context.Background(), "every now and then", &MockReconciler{}, discardLogger())
	assert.Error(t, err)
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/service/reports"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPaymentLookup struct {
	mock.Mock
}

func (m *MockPaymentLookup) GetByPNR(ctx context.Context, pnr, userID int64) (*domain.Payment, error) {
	args := m.Called(ctx, pnr, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

type MockReportUseCase struct {
	mock.Mock
}

func (m *MockReportUseCase) Summary(ctx context.Context) (*domain.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Summary), args.Error(1)
}

func (m *MockReportUseCase) PopularTrains(ctx context.Context) ([]domain.PopularTrain, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PopularTrain), args.Error(1)
}

var _ reports.ReportUseCase = (*MockReportUseCase)(nil)

func TestPaymentHandler_byPNR(t *testing.T) {
	mockPayments := &MockPaymentLookup{}
	handler := NewPaymentHandler(mockPayments)

	c, w := newTestContext(http.MethodGet, "/api/payments/pnr/101", nil)
	c.Params = gin.Params{{Key: "pnr", Value: "101"}}
	withIdentity(c, 7)

	mockPayments.On("GetByPNR", c.Request.Context(), int64(101), int64(7)).Return(&domain.Payment{
		TransactionID: 55,
		PNR:           101,
		Bank:          "HDFC",
		CardNo:        "1234",
		Amount:        decimal.RequireFromString("2450.5"),
	}, nil).Once()

	handler.byPNR(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "1234", response["card_no"])
	assert.Equal(t, "2450.5", response["amount"])
}

func TestPaymentHandler_byPNR_NotFound(t *testing.T) {
	mockPayments := &MockPaymentLookup{}
	handler := NewPaymentHandler(mockPayments)

	c, w := newTestContext(http.MethodGet, "/api/payments/pnr/101", nil)
	c.Params = gin.Params{{Key: "pnr", Value: "101"}}
	withIdentity(c, 8)

	mockPayments.On("GetByPNR", c.Request.Context(), int64(101), int64(8)).Return(nil, domain.ErrPaymentNotFound).Once()

	handler.byPNR(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "payment not found", decodeMessage(t, w))
}

func TestReportHandler(t *testing.T) {
	mockService := &MockReportUseCase{}
	handler := NewReportHandler(mockService)

	c, w := newTestContext(http.MethodGet, "/api/reports/summary", nil)
	mockService.On("Summary", c.Request.Context()).Return(&domain.Summary{
		TotalUsers: 2, TotalTrains: 3, TotalBookings: 4, TotalRevenue: decimal.RequireFromString("99.90"), TodayBookings: 1,
	}, nil).Once()

	handler.summary(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalUsers":2,"totalTrains":3,"totalBookings":4,"totalRevenue":"99.9","todayBookings":1}`, w.Body.String())

	c, w = newTestContext(http.MethodGet, "/api/reports/popular-trains", nil)
	mockService.On("PopularTrains", c.Request.Context()).Return([]domain.PopularTrain{
		{TrainName: "Rajdhani Express", Source: "BCT", Destination: "NDLS", TotalBookings: 5},
	}, nil).Once()

	handler.popularTrains(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var popular []domain.PopularTrain
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &popular))
	assert.Len(t, popular, 1)
}

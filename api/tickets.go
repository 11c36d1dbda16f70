package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/service/booking"
	"github.com/railbooking/railbooking/internal/service/reconcile"
	"github.com/railbooking/railbooking/internal/service/trains"
	"github.com/shopspring/decimal"
)

type TicketHandler struct {
	bookings  booking.BookingUseCase
	trains    trains.TrainUseCase
	reconcile reconcile.ReconcileUseCase
}

type bookRequest struct {
	TrainNo       int64           `json:"train_no" binding:"required,gt=0"`
	PassengerName string          `json:"passenger_name" binding:"required"`
	ClassType     string          `json:"class_type" binding:"required"`
	SeatNo        *string         `json:"seat_no"`
	Source        string          `json:"source" binding:"required"`
	Destination   string          `json:"destination" binding:"required"`
	DateTime      string          `json:"date_time" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Bank          string          `json:"bank"`
	CardNo        string          `json:"card_no"`
}

type bookResponse struct {
	Message       string `json:"message"`
	PNR           int64  `json:"pnr_no"`
	TransactionID int64  `json:"transaction_id"`
}

type cancelResponse struct {
	Message string `json:"message"`
	PNR     int64  `json:"pnr_no"`
}

type seatAvailabilityResponse struct {
	TrainNo        int64 `json:"train_no"`
	AvailableSeats int   `json:"available_seats"`
}

type reconcileResponse struct {
	FixesApplied int                     `json:"fixes_applied"`
	Fixes        []domain.SeatCorrection `json:"fixes"`
}

func NewTicketHandler(
	bookings booking.BookingUseCase,
	trains trains.TrainUseCase,
	reconcile reconcile.ReconcileUseCase,
) *TicketHandler {
	return &TicketHandler{bookings: bookings, trains: trains, reconcile: reconcile}
}

func (h *TicketHandler) Register(router *gin.RouterGroup, requireAuth gin.HandlerFunc) {
	router.GET("/seat-availability/:train_no", h.seatAvailability)
	router.GET("/check-train-status/:train_no", h.trainStatus)

	authed := router.Group("", requireAuth)
	authed.POST("/book", h.book)
	authed.DELETE("/cancel/:pnr_no", h.cancel)
	authed.GET("/my", h.my)
	authed.POST("/reconcile", h.reconcileSeats)
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// parseDateTime accepts RFC 3339 and the zone-less forms sent by HTML
// datetime inputs; zone-less values are read as UTC.
func parseDateTime(value string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date_time is invalid", domain.ErrValidation)
}

func (h *TicketHandler) book(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		writeError(c, domain.ErrUnauthorized)
		return
	}

	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, bindError(err))
		return
	}
	departure, err := parseDateTime(req.DateTime)
	if err != nil {
		writeError(c, err)
		return
	}

	result, err := h.bookings.Book(c.Request.Context(), booking.BookInput{
		TrainNo:       req.TrainNo,
		UserID:        identity.UserID,
		PassengerName: req.PassengerName,
		ClassType:     req.ClassType,
		SeatNo:        req.SeatNo,
		Source:        req.Source,
		Destination:   req.Destination,
		DateTime:      departure,
		Amount:        req.Amount,
		Bank:          req.Bank,
		CardNo:        req.CardNo,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookResponse{
		Message:       "Booked successfully",
		PNR:           result.PNR,
		TransactionID: result.TransactionID,
	})
}

func (h *TicketHandler) cancel(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	pnr, err := parseID(c, "pnr_no")
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.bookings.Cancel(c.Request.Context(), pnr, identity.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelResponse{Message: "Ticket cancelled successfully", PNR: pnr})
}

func (h *TicketHandler) my(c *gin.Context) {
	identity, ok := identityFrom(c)
	if !ok {
		writeError(c, domain.ErrUnauthorized)
		return
	}
	tickets, err := h.bookings.MyTickets(c.Request.Context(), identity.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	if tickets == nil {
		tickets = []domain.MyTicket{}
	}
	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) seatAvailability(c *gin.Context) {
	trainNo, err := parseID(c, "train_no")
	if err != nil {
		writeError(c, err)
		return
	}
	available, err := h.trains.SeatAvailability(c.Request.Context(), trainNo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, seatAvailabilityResponse{TrainNo: trainNo, AvailableSeats: available})
}

func (h *TicketHandler) trainStatus(c *gin.Context) {
	trainNo, err := parseID(c, "train_no")
	if err != nil {
		writeError(c, err)
		return
	}
	status, err := h.trains.Status(c.Request.Context(), trainNo)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *TicketHandler) reconcileSeats(c *gin.Context) {
	corrections, err := h.reconcile.Reconcile(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reconcileResponse{FixesApplied: len(corrections), Fixes: corrections})
}

package booking

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/kafka"
	"github.com/railbooking/railbooking/internal/repository"
	"github.com/shopspring/decimal"
)

type BookingUseCase interface {
	Book(ctx context.Context, input BookInput) (*domain.Booking, error)
	Cancel(ctx context.Context, pnr, userID int64) error
	MyTickets(ctx context.Context, userID int64) ([]domain.MyTicket, error)
}

// TrainCache is invalidated after every committed inventory change.
type TrainCache interface {
	InvalidateTrains(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type BookingService struct {
	store              repository.Store
	tickets            repository.TicketRepository
	cache              TrainCache
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	cancellationWindow time.Duration
	now                func() time.Time
	logger             *slog.Logger
}

type BookInput struct {
	TrainNo       int64
	UserID        int64
	PassengerName string
	ClassType     string
	SeatNo        *string
	Source        string
	Destination   string
	DateTime      time.Time
	Amount        decimal.Decimal
	Bank          string
	CardNo        string
}

type BookingServiceOption func(*BookingService)

func WithTrainCache(cache TrainCache) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithProducer(producer Producer, eventsTopic string) BookingServiceOption {
	return func(s *BookingService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
	}
}

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func WithCancellationWindow(window time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.cancellationWindow = window
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	store repository.Store,
	tickets repository.TicketRepository,
	logger *slog.Logger,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		store:              store,
		tickets:            tickets,
		cancellationWindow: 2 * time.Hour,
		now:                time.Now,
		logger:             logger,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (in BookInput) validate() error {
	var missing []string
	if in.TrainNo <= 0 {
		missing = append(missing, "train_no")
	}
	if strings.TrimSpace(in.PassengerName) == "" {
		missing = append(missing, "passenger_name")
	}
	if strings.TrimSpace(in.ClassType) == "" {
		missing = append(missing, "class_type")
	}
	if strings.TrimSpace(in.Source) == "" {
		missing = append(missing, "source")
	}
	if strings.TrimSpace(in.Destination) == "" {
		missing = append(missing, "destination")
	}
	if in.DateTime.IsZero() {
		missing = append(missing, "date_time")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s required", domain.ErrValidation, strings.Join(missing, ", "))
	}
	if in.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", domain.ErrValidation)
	}
	return nil
}

// Book reserves one seat. The train row stays locked from the availability
// check until commit, so ticket, payment and counter land together or not
// at all.
func (s *BookingService) Book(ctx context.Context, input BookInput) (*domain.Booking, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	bank := input.Bank
	if bank == "" {
		bank = domain.DefaultBank
	}

	var (
		booking   domain.Booking
		ticket    domain.Ticket
		available int
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		snap, err := tx.LockTrain(ctx, input.TrainNo)
		if err != nil {
			return err
		}
		if snap.SeatAvailable <= 0 {
			return domain.ErrSeatUnavailable
		}

		ticket = domain.Ticket{
			TrainNo:       input.TrainNo,
			UserID:        input.UserID,
			PassengerName: input.PassengerName,
			ClassType:     input.ClassType,
			SeatNo:        domain.NilIfBlank(input.SeatNo),
			Source:        input.Source,
			Destination:   input.Destination,
			DateTime:      input.DateTime,
		}
		if err := tx.InsertTicket(ctx, &ticket); err != nil {
			return fmt.Errorf("insert ticket: %w", err)
		}

		payment := domain.Payment{
			PNR:    ticket.PNR,
			Bank:   bank,
			CardNo: domain.MaskCardNumber(input.CardNo),
			Amount: input.Amount,
		}
		if err := tx.InsertPayment(ctx, &payment); err != nil {
			return fmt.Errorf("insert payment: %w", err)
		}

		if err := tx.DecrementSeat(ctx, input.TrainNo); err != nil {
			return fmt.Errorf("decrement seat: %w", err)
		}

		booking = domain.Booking{PNR: ticket.PNR, TransactionID: payment.TransactionID}
		available = snap.SeatAvailable - 1
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "ticket booked",
		"pnr_no", booking.PNR,
		"transaction_id", booking.TransactionID,
		"train_no", input.TrainNo,
		"user_id", input.UserID,
		"seat_available", available,
	)

	s.afterCommit(ctx, kafka.TicketEvent{
		Type:          kafka.EventTicketBooked,
		PNR:           booking.PNR,
		TransactionID: booking.TransactionID,
		TrainNo:       ticket.TrainNo,
		UserID:        ticket.UserID,
		PassengerName: ticket.PassengerName,
		DateTime:      ticket.DateTime,
		SeatAvailable: available,
		OccurredAt:    s.now(),
	})
	return &booking, nil
}

// Cancel deletes the caller's ticket and its payment and returns the seat.
// Tickets departing within the cancellation window are kept.
func (s *BookingService) Cancel(ctx context.Context, pnr, userID int64) error {
	if pnr <= 0 {
		return fmt.Errorf("%w: invalid pnr_no", domain.ErrValidation)
	}

	var (
		ticket    *domain.Ticket
		available int
	)
	err := s.store.InTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		var err error
		ticket, err = tx.LockTicket(ctx, pnr, userID)
		if err != nil {
			return err
		}

		if ticket.DateTime.Sub(s.now()) < s.cancellationWindow {
			return fmt.Errorf("%w: cannot cancel ticket within %s of departure",
				domain.ErrCancellationWindowClosed, shortDuration(s.cancellationWindow))
		}

		snap, err := tx.LockTrain(ctx, ticket.TrainNo)
		if err != nil {
			return err
		}

		if err := tx.DeletePayment(ctx, pnr); err != nil {
			return fmt.Errorf("delete payment: %w", err)
		}
		if err := tx.DeleteTicket(ctx, pnr); err != nil {
			return fmt.Errorf("delete ticket: %w", err)
		}
		if err := tx.IncrementSeat(ctx, ticket.TrainNo); err != nil {
			return fmt.Errorf("increment seat: %w", err)
		}

		available = snap.SeatAvailable + 1
		if snap.TotalCapacity > 0 && available > snap.TotalCapacity {
			s.logger.WarnContext(ctx, "seat counter already at capacity on cancel, clamped",
				"train_no", ticket.TrainNo,
				"pnr_no", pnr,
				"total_capacity", snap.TotalCapacity,
			)
			available = snap.TotalCapacity
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "ticket cancelled",
		"pnr_no", pnr,
		"train_no", ticket.TrainNo,
		"user_id", userID,
		"seat_available", available,
	)

	s.afterCommit(ctx, kafka.TicketEvent{
		Type:          kafka.EventTicketCancelled,
		PNR:           pnr,
		TrainNo:       ticket.TrainNo,
		UserID:        userID,
		PassengerName: ticket.PassengerName,
		DateTime:      ticket.DateTime,
		SeatAvailable: available,
		OccurredAt:    s.now(),
	})
	return nil
}

func (s *BookingService) MyTickets(ctx context.Context, userID int64) ([]domain.MyTicket, error) {
	return s.tickets.ListByUser(ctx, userID)
}

// afterCommit runs side effects of a committed change. Their failures are
// logged only; the booking state is already durable.
func (s *BookingService) afterCommit(ctx context.Context, event kafka.TicketEvent) {
	if s.cache != nil {
		if err := s.cache.InvalidateTrains(ctx); err != nil {
			s.logger.WarnContext(ctx, "invalidate train cache", "error", err)
		}
	}
	if err := s.publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "publish ticket event",
			"type", event.Type,
			"pnr_no", event.PNR,
			"error", err,
		)
	}
}

func (s *BookingService) publish(ctx context.Context, event kafka.TicketEvent) error {
	if s.producer == nil || s.eventsTopic == "" {
		return nil
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, event.Key(), event); err != nil {
		return err
	}
	if s.notificationsTopic != "" {
		return s.producer.Publish(ctx, s.notificationsTopic, event.Key(), event)
	}
	return nil
}

// shortDuration drops zero trailing units: 2h0m0s becomes 2h.
func shortDuration(d time.Duration) string {
	out := d.String()
	if strings.HasSuffix(out, "m0s") {
		out = strings.TrimSuffix(out, "0s")
	}
	if strings.HasSuffix(out, "h0m") {
		out = strings.TrimSuffix(out, "0m")
	}
	return out
}

var _ BookingUseCase = (*BookingService)(nil)

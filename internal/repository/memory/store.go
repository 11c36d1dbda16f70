// Package memory is an in-process implementation of the repository
// interfaces. Every transaction holds a single store-wide lock, so
// transactions are serializable and never observe each other's
// intermediate state. Used for local runs without Postgres and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/railbooking/railbooking/internal/domain"
	"github.com/railbooking/railbooking/internal/repository"
	"github.com/shopspring/decimal"
)

type Store struct {
	mu sync.Mutex

	trains   map[int64]*domain.Train
	tickets  map[int64]*domain.Ticket
	payments map[int64]*domain.Payment // keyed by PNR
	users    map[int64]*domain.User

	nextPNR  int64
	nextTxn  int64
	nextUser int64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		trains:   make(map[int64]*domain.Train),
		tickets:  make(map[int64]*domain.Ticket),
		payments: make(map[int64]*domain.Payment),
		users:    make(map[int64]*domain.User),
		now:      time.Now,
	}
}

// AddTrain seeds or replaces a train, including its counter as given.
func (s *Store) AddTrain(train domain.Train) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := train
	t.Classes = append([]domain.FareClass(nil), train.Classes...)
	s.trains[t.TrainNo] = &t
}

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &memTx{s: s}
	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

type memTx struct {
	s    *Store
	undo []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) LockTrain(_ context.Context, trainNo int64) (*domain.CapacitySnapshot, error) {
	train, ok := t.s.trains[trainNo]
	if !ok {
		return nil, domain.ErrTrainNotFound
	}
	return &domain.CapacitySnapshot{TrainNo: trainNo, TotalCapacity: train.TotalCapacity, SeatAvailable: train.SeatAvailable}, nil
}

func (t *memTx) LockTicket(_ context.Context, pnr, userID int64) (*domain.Ticket, error) {
	ticket, ok := t.s.tickets[pnr]
	if !ok || ticket.UserID != userID {
		return nil, domain.ErrTicketNotFound
	}
	cp := *ticket
	return &cp, nil
}

func (t *memTx) InsertTicket(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := t.s.trains[ticket.TrainNo]; !ok {
		return domain.ErrTrainNotFound
	}
	t.s.nextPNR++
	ticket.PNR = t.s.nextPNR
	ticket.BookingTime = t.s.now()

	cp := *ticket
	t.s.tickets[cp.PNR] = &cp
	t.undo = append(t.undo, func() {
		delete(t.s.tickets, cp.PNR)
		t.s.nextPNR--
	})
	return nil
}

func (t *memTx) InsertPayment(_ context.Context, payment *domain.Payment) error {
	if _, ok := t.s.tickets[payment.PNR]; !ok {
		return domain.ErrTicketNotFound
	}
	t.s.nextTxn++
	payment.TransactionID = t.s.nextTxn

	cp := *payment
	t.s.payments[cp.PNR] = &cp
	t.undo = append(t.undo, func() {
		delete(t.s.payments, cp.PNR)
		t.s.nextTxn--
	})
	return nil
}

func (t *memTx) DeletePayment(_ context.Context, pnr int64) error {
	old, ok := t.s.payments[pnr]
	if !ok {
		return nil
	}
	delete(t.s.payments, pnr)
	t.undo = append(t.undo, func() { t.s.payments[pnr] = old })
	return nil
}

func (t *memTx) DeleteTicket(_ context.Context, pnr int64) error {
	old, ok := t.s.tickets[pnr]
	if !ok {
		return domain.ErrTicketNotFound
	}
	delete(t.s.tickets, pnr)
	t.undo = append(t.undo, func() { t.s.tickets[pnr] = old })
	return nil
}

func (t *memTx) DecrementSeat(_ context.Context, trainNo int64) error {
	train, ok := t.s.trains[trainNo]
	if !ok {
		return domain.ErrTrainNotFound
	}
	if train.SeatAvailable <= 0 {
		return domain.ErrSeatUnavailable
	}
	t.setSeats(train, train.SeatAvailable-1)
	return nil
}

func (t *memTx) IncrementSeat(_ context.Context, trainNo int64) error {
	train, ok := t.s.trains[trainNo]
	if !ok {
		return domain.ErrTrainNotFound
	}
	next := train.SeatAvailable + 1
	if train.TotalCapacity > 0 && next > train.TotalCapacity {
		next = train.TotalCapacity
	}
	t.setSeats(train, next)
	return nil
}

func (t *memTx) SetSeatAvailable(_ context.Context, trainNo int64, available int) error {
	train, ok := t.s.trains[trainNo]
	if !ok {
		return domain.ErrTrainNotFound
	}
	t.setSeats(train, available)
	return nil
}

func (t *memTx) setSeats(train *domain.Train, available int) {
	old := train.SeatAvailable
	train.SeatAvailable = available
	t.undo = append(t.undo, func() { train.SeatAvailable = old })
}

func (t *memTx) CountTickets(_ context.Context, trainNo int64) (int, error) {
	return t.s.countTickets(trainNo), nil
}

func (s *Store) countTickets(trainNo int64) int {
	n := 0
	for _, ticket := range s.tickets {
		if ticket.TrainNo == trainNo {
			n++
		}
	}
	return n
}

// Train repository.

func (s *Store) List(_ context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trains := make([]domain.Train, 0, len(s.trains))
	for _, t := range s.trains {
		if filter.Source != "" && t.Source != filter.Source {
			continue
		}
		if filter.Destination != "" && t.Destination != filter.Destination {
			continue
		}
		trains = append(trains, copyTrain(t))
	}
	sort.Slice(trains, func(i, j int) bool { return trains[i].TrainNo < trains[j].TrainNo })
	return trains, nil
}

func (s *Store) GetByNumber(_ context.Context, trainNo int64) (*domain.Train, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trains[trainNo]
	if !ok {
		return nil, domain.ErrTrainNotFound
	}
	cp := copyTrain(t)
	return &cp, nil
}

func (s *Store) GetCapacity(_ context.Context, trainNo int64) (*domain.CapacitySnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trains[trainNo]
	if !ok {
		return nil, domain.ErrTrainNotFound
	}
	return &domain.CapacitySnapshot{TrainNo: trainNo, TotalCapacity: t.TotalCapacity, SeatAvailable: t.SeatAvailable}, nil
}

func (s *Store) TrainNumbers(_ context.Context) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nums := make([]int64, 0, len(s.trains))
	for n := range s.trains {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums, nil
}

func (s *Store) Status(_ context.Context, trainNo int64) (*domain.TrainStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trains[trainNo]
	if !ok {
		return nil, domain.ErrTrainNotFound
	}

	var booked []*domain.Ticket
	for _, ticket := range s.tickets {
		if ticket.TrainNo == trainNo {
			booked = append(booked, ticket)
		}
	}
	sort.Slice(booked, func(i, j int) bool {
		if booked[i].BookingTime.Equal(booked[j].BookingTime) {
			return booked[i].PNR > booked[j].PNR
		}
		return booked[i].BookingTime.After(booked[j].BookingTime)
	})

	status := &domain.TrainStatus{
		Train:           copyTrain(t),
		BookedTickets:   len(booked),
		ActualAvailable: t.SeatAvailable,
		RecentBookings:  make([]domain.RecentBooking, 0, 5),
	}
	for i := 0; i < len(booked) && i < 5; i++ {
		status.RecentBookings = append(status.RecentBookings, domain.RecentBooking{
			PNR:           booked[i].PNR,
			PassengerName: booked[i].PassengerName,
			BookingTime:   booked[i].BookingTime,
		})
	}
	return status, nil
}

func copyTrain(t *domain.Train) domain.Train {
	cp := *t
	cp.Classes = append([]domain.FareClass(nil), t.Classes...)
	return cp
}

// Ticket and payment repositories.

func (s *Store) ListByUser(_ context.Context, userID int64) ([]domain.MyTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets := make([]domain.MyTicket, 0)
	for _, t := range s.tickets {
		if t.UserID != userID {
			continue
		}
		m := domain.MyTicket{Ticket: *t}
		if p, ok := s.payments[t.PNR]; ok {
			id := p.TransactionID
			m.TransactionID = &id
		}
		tickets = append(tickets, m)
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].DateTime.After(tickets[j].DateTime) })
	return tickets, nil
}

func (s *Store) GetByPNR(_ context.Context, pnr, userID int64) (*domain.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tickets[pnr]
	if !ok || t.UserID != userID {
		return nil, domain.ErrPaymentNotFound
	}
	p, ok := s.payments[pnr]
	if !ok {
		return nil, domain.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

// User repository.

func (s *Store) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == user.Username {
			return domain.ErrDuplicateCredential
		}
		if user.MobileNo != nil && u.MobileNo != nil && *u.MobileNo == *user.MobileNo {
			return domain.ErrDuplicateCredential
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	cp := *user
	s.users[cp.ID] = &cp
	return nil
}

func (s *Store) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Report repository.

func (s *Store) Summary(_ context.Context) (*domain.Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.now().Truncate(24 * time.Hour)
	summary := &domain.Summary{
		TotalUsers:    len(s.users),
		TotalTrains:   len(s.trains),
		TotalBookings: len(s.tickets),
		TotalRevenue:  decimal.Zero,
	}
	for _, p := range s.payments {
		summary.TotalRevenue = summary.TotalRevenue.Add(p.Amount)
	}
	for _, t := range s.tickets {
		if t.BookingTime.Truncate(24 * time.Hour).Equal(today) {
			summary.TodayBookings++
		}
	}
	return summary, nil
}

func (s *Store) PopularTrains(_ context.Context) ([]domain.PopularTrain, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make(map[int64]int)
	for _, t := range s.tickets {
		counts[t.TrainNo]++
	}
	popular := make([]domain.PopularTrain, 0)
	if len(counts) == 0 {
		return popular, nil
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	avg := float64(total) / float64(len(counts))

	for trainNo, c := range counts {
		train, ok := s.trains[trainNo]
		if !ok || float64(c) <= avg {
			continue
		}
		popular = append(popular, domain.PopularTrain{
			TrainName:     train.Name,
			Source:        train.Source,
			Destination:   train.Destination,
			TotalBookings: c,
		})
	}
	sort.Slice(popular, func(i, j int) bool { return popular[i].TotalBookings > popular[j].TotalBookings })
	if len(popular) > 10 {
		popular = popular[:10]
	}
	return popular, nil
}

var (
	_ repository.Store             = (*Store)(nil)
	_ repository.TrainRepository   = (*Store)(nil)
	_ repository.TicketRepository  = (*Store)(nil)
	_ repository.PaymentRepository = (*Store)(nil)
	_ repository.UserRepository    = (*Store)(nil)
	_ repository.ReportRepository  = (*Store)(nil)
)

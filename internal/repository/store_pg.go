package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

const uniqueViolation = "23505"

// EnsureSchema creates the tables if they do not exist yet.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

type PGStore struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) LockTrain(ctx context.Context, trainNo int64) (*domain.CapacitySnapshot, error) {
	snap := domain.CapacitySnapshot{TrainNo: trainNo}
	err := t.tx.QueryRow(ctx, `SELECT total_capacity, seat_available FROM train WHERE train_no=$1 FOR UPDATE`, trainNo).
		Scan(&snap.TotalCapacity, &snap.SeatAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTrainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (t *pgTx) LockTicket(ctx context.Context, pnr, userID int64) (*domain.Ticket, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+ticketColumns+` FROM ticket WHERE pnr_no=$1 AND user_id=$2 FOR UPDATE`, pnr, userID)
	ticket, err := scanTicket(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTicketNotFound
	}
	return ticket, err
}

func (t *pgTx) InsertTicket(ctx context.Context, ticket *domain.Ticket) error {
	return t.tx.QueryRow(ctx, `INSERT INTO ticket (train_no, user_id, passenger_name, class_type, seat_no, source, destination, date_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING pnr_no, booking_time`,
		ticket.TrainNo, ticket.UserID, ticket.PassengerName, ticket.ClassType, ticket.SeatNo, ticket.Source, ticket.Destination, ticket.DateTime).
		Scan(&ticket.PNR, &ticket.BookingTime)
}

func (t *pgTx) InsertPayment(ctx context.Context, payment *domain.Payment) error {
	return t.tx.QueryRow(ctx, `INSERT INTO payment (pnr_no, bank, card_no, amount)
		VALUES ($1, $2, $3, $4::numeric)
		RETURNING transaction_id`,
		payment.PNR, payment.Bank, payment.CardNo, payment.Amount.String()).
		Scan(&payment.TransactionID)
}

func (t *pgTx) DeletePayment(ctx context.Context, pnr int64) error {
	_, err := t.tx.Exec(ctx, `DELETE FROM payment WHERE pnr_no=$1`, pnr)
	return err
}

func (t *pgTx) DeleteTicket(ctx context.Context, pnr int64) error {
	cmd, err := t.tx.Exec(ctx, `DELETE FROM ticket WHERE pnr_no=$1`, pnr)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTicketNotFound
	}
	return nil
}

func (t *pgTx) DecrementSeat(ctx context.Context, trainNo int64) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE train SET seat_available = seat_available - 1 WHERE train_no=$1 AND seat_available > 0`, trainNo)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrSeatUnavailable
	}
	return nil
}

func (t *pgTx) IncrementSeat(ctx context.Context, trainNo int64) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE train
		SET seat_available = CASE WHEN total_capacity > 0 THEN LEAST(seat_available + 1, total_capacity) ELSE seat_available + 1 END
		WHERE train_no=$1`, trainNo)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTrainNotFound
	}
	return nil
}

func (t *pgTx) SetSeatAvailable(ctx context.Context, trainNo int64, available int) error {
	cmd, err := t.tx.Exec(ctx, `UPDATE train SET seat_available=$2 WHERE train_no=$1`, trainNo, available)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrTrainNotFound
	}
	return nil
}

func (t *pgTx) CountTickets(ctx context.Context, trainNo int64) (int, error) {
	var n int
	err := t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM ticket WHERE train_no=$1`, trainNo).Scan(&n)
	return n, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

var _ Store = (*PGStore)(nil)
var _ Tx = (*pgTx)(nil)

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/internal/domain"
)

const ticketColumns = `pnr_no, train_no, user_id, passenger_name, class_type, seat_no, source, destination, date_time, booking_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTicket(row rowScanner) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := row.Scan(&t.PNR, &t.TrainNo, &t.UserID, &t.PassengerName, &t.ClassType, &t.SeatNo, &t.Source, &t.Destination, &t.DateTime, &t.BookingTime); err != nil {
		return nil, err
	}
	return &t, nil
}

type PGTicketRepository struct {
	db *pgxpool.Pool
}

func NewTicketRepository(db *pgxpool.Pool) TicketRepository {
	return &PGTicketRepository{db: db}
}

func (r *PGTicketRepository) ListByUser(ctx context.Context, userID int64) ([]domain.MyTicket, error) {
	rows, err := r.db.Query(ctx, `SELECT t.pnr_no, t.train_no, t.user_id, t.passenger_name, t.class_type, t.seat_no, t.source, t.destination, t.date_time, t.booking_time, p.transaction_id
		FROM ticket t
		LEFT JOIN payment p ON t.pnr_no = p.pnr_no
		WHERE t.user_id=$1
		ORDER BY t.date_time DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]domain.MyTicket, 0)
	for rows.Next() {
		var m domain.MyTicket
		t := &m.Ticket
		if err := rows.Scan(&t.PNR, &t.TrainNo, &t.UserID, &t.PassengerName, &t.ClassType, &t.SeatNo, &t.Source, &t.Destination, &t.DateTime, &t.BookingTime, &m.TransactionID); err != nil {
			return nil, err
		}
		tickets = append(tickets, m)
	}
	return tickets, rows.Err()
}

var _ TicketRepository = (*PGTicketRepository)(nil)

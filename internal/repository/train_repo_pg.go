package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/shopspring/decimal"
)

type PGTrainRepository struct {
	db *pgxpool.Pool
}

func NewTrainRepository(db *pgxpool.Pool) TrainRepository {
	return &PGTrainRepository{db: db}
}

func (r *PGTrainRepository) List(ctx context.Context, filter domain.TrainFilter) ([]domain.Train, error) {
	return r.queryTrains(ctx, `WHERE ($1::text = '' OR t.source = $1) AND ($2::text = '' OR t.destination = $2)`, filter.Source, filter.Destination)
}

func (r *PGTrainRepository) GetByNumber(ctx context.Context, trainNo int64) (*domain.Train, error) {
	trains, err := r.queryTrains(ctx, `WHERE t.train_no = $1`, trainNo)
	if err != nil {
		return nil, err
	}
	if len(trains) == 0 {
		return nil, domain.ErrTrainNotFound
	}
	return &trains[0], nil
}

// queryTrains joins fare classes and folds them into their train,
// preserving train_no order.
func (r *PGTrainRepository) queryTrains(ctx context.Context, where string, args ...any) ([]domain.Train, error) {
	rows, err := r.db.Query(ctx, `SELECT t.train_no, t.train_name, t.source, t.destination, t.total_capacity, t.seat_available, c.class_type, c.fare::text
		FROM train t
		LEFT JOIN fare_class c ON c.train_no = t.train_no
		`+where+`
		ORDER BY t.train_no, c.class_type`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]domain.Train, 0)
	for rows.Next() {
		var (
			t         domain.Train
			classType *string
			fare      *string
		)
		if err := rows.Scan(&t.TrainNo, &t.Name, &t.Source, &t.Destination, &t.TotalCapacity, &t.SeatAvailable, &classType, &fare); err != nil {
			return nil, err
		}
		if n := len(trains); n == 0 || trains[n-1].TrainNo != t.TrainNo {
			trains = append(trains, t)
		}
		if classType != nil && fare != nil {
			amount, err := decimal.NewFromString(*fare)
			if err != nil {
				return nil, err
			}
			last := &trains[len(trains)-1]
			last.Classes = append(last.Classes, domain.FareClass{ClassType: *classType, Fare: amount})
		}
	}
	return trains, rows.Err()
}

func (r *PGTrainRepository) GetCapacity(ctx context.Context, trainNo int64) (*domain.CapacitySnapshot, error) {
	snap := domain.CapacitySnapshot{TrainNo: trainNo}
	err := r.db.QueryRow(ctx, `SELECT total_capacity, seat_available FROM train WHERE train_no=$1`, trainNo).
		Scan(&snap.TotalCapacity, &snap.SeatAvailable)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTrainNotFound
	}
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

func (r *PGTrainRepository) TrainNumbers(ctx context.Context) ([]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT train_no FROM train ORDER BY train_no`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int64])
}

func (r *PGTrainRepository) Status(ctx context.Context, trainNo int64) (*domain.TrainStatus, error) {
	train, err := r.GetByNumber(ctx, trainNo)
	if err != nil {
		return nil, err
	}

	status := domain.TrainStatus{Train: *train, ActualAvailable: train.SeatAvailable}
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM ticket WHERE train_no=$1`, trainNo).Scan(&status.BookedTickets); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `SELECT pnr_no, passenger_name, booking_time FROM ticket WHERE train_no=$1 ORDER BY booking_time DESC LIMIT 5`, trainNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	status.RecentBookings = make([]domain.RecentBooking, 0, 5)
	for rows.Next() {
		var b domain.RecentBooking
		if err := rows.Scan(&b.PNR, &b.PassengerName, &b.BookingTime); err != nil {
			return nil, err
		}
		status.RecentBookings = append(status.RecentBookings, b)
	}
	return &status, rows.Err()
}

var _ TrainRepository = (*PGTrainRepository)(nil)

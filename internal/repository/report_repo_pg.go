package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/shopspring/decimal"
)

type PGReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) ReportRepository {
	return &PGReportRepository{db: db}
}

func (r *PGReportRepository) Summary(ctx context.Context) (*domain.Summary, error) {
	var (
		s       domain.Summary
		revenue string
	)
	err := r.db.QueryRow(ctx, `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM train),
		(SELECT COUNT(*) FROM ticket),
		(SELECT COALESCE(SUM(amount), 0)::text FROM payment),
		(SELECT COUNT(*) FROM ticket WHERE booking_time::date = CURRENT_DATE)`).
		Scan(&s.TotalUsers, &s.TotalTrains, &s.TotalBookings, &revenue, &s.TodayBookings)
	if err != nil {
		return nil, err
	}
	if s.TotalRevenue, err = decimal.NewFromString(revenue); err != nil {
		return nil, err
	}
	return &s, nil
}

// PopularTrains lists up to ten trains booked more often than the per-train average.
func (r *PGReportRepository) PopularTrains(ctx context.Context) ([]domain.PopularTrain, error) {
	rows, err := r.db.Query(ctx, `SELECT t.train_name, t.source, t.destination, b.total_bookings
		FROM train t
		JOIN (SELECT train_no, COUNT(*) AS total_bookings FROM ticket GROUP BY train_no) b ON b.train_no = t.train_no
		WHERE b.total_bookings > (SELECT AVG(cnt) FROM (SELECT COUNT(*) AS cnt FROM ticket GROUP BY train_no) avg_bookings)
		ORDER BY b.total_bookings DESC
		LIMIT 10`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trains := make([]domain.PopularTrain, 0)
	for rows.Next() {
		var p domain.PopularTrain
		if err := rows.Scan(&p.TrainName, &p.Source, &p.Destination, &p.TotalBookings); err != nil {
			return nil, err
		}
		trains = append(trains, p)
	}
	return trains, rows.Err()
}

var _ ReportRepository = (*PGReportRepository)(nil)

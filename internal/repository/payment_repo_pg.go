package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/railbooking/railbooking/internal/domain"
	"github.com/shopspring/decimal"
)

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

// GetByPNR only returns payments for tickets owned by userID.
func (r *PGPaymentRepository) GetByPNR(ctx context.Context, pnr, userID int64) (*domain.Payment, error) {
	var (
		p      domain.Payment
		amount string
	)
	err := r.db.QueryRow(ctx, `SELECT p.transaction_id, p.pnr_no, p.bank, p.card_no, p.amount::text
		FROM payment p
		JOIN ticket t ON t.pnr_no = p.pnr_no
		WHERE p.pnr_no=$1 AND t.user_id=$2`, pnr, userID).
		Scan(&p.TransactionID, &p.PNR, &p.Bank, &p.CardNo, &amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	if p.Amount, err = decimal.NewFromString(amount); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)

package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Ticket struct {
	PNR           int64     `json:"pnr_no"`
	TrainNo       int64     `json:"train_no"`
	UserID        int64     `json:"user_id"`
	PassengerName string    `json:"passenger_name"`
	ClassType     string    `json:"class_type"`
	SeatNo        *string   `json:"seat_no"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	DateTime      time.Time `json:"date_time"`
	BookingTime   time.Time `json:"booking_time"`
}

// MyTicket is a ticket joined with its payment transaction id.
type MyTicket struct {
	Ticket
	TransactionID *int64 `json:"transaction_id"`
}

const (
	DefaultBank    = "N/A"
	UnknownCardRef = "XXXX"
)

type Payment struct {
	TransactionID int64           `json:"transaction_id"`
	PNR           int64           `json:"pnr_no"`
	Bank          string          `json:"bank"`
	CardNo        string          `json:"card_no"`
	Amount        decimal.Decimal `json:"amount"`
}

// MaskCardNumber keeps the last four characters of a card number.
// The full number must never reach storage.
func MaskCardNumber(cardNo string) string {
	if cardNo == "" {
		return UnknownCardRef
	}
	runes := []rune(cardNo)
	if len(runes) <= 4 {
		return cardNo
	}
	return string(runes[len(runes)-4:])
}

// NilIfBlank maps a missing or blank optional value to nil, so it is
// stored as NULL.
func NilIfBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

type Booking struct {
	PNR           int64 `json:"pnr_no"`
	TransactionID int64 `json:"transaction_id"`
}

// SeatCorrection records a counter rewrite made by reconciliation.
type SeatCorrection struct {
	TrainNo       int64 `json:"train_no"`
	OldAvailable  int   `json:"old_available"`
	NewAvailable  int   `json:"new_available"`
	BookedTickets int   `json:"booked_tickets"`
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type FareClass struct {
	ClassType string          `json:"class_type"`
	Fare      decimal.Decimal `json:"fare"`
}

type Train struct {
	TrainNo       int64       `json:"train_no"`
	Name          string      `json:"train_name"`
	Source        string      `json:"source"`
	Destination   string      `json:"destination"`
	TotalCapacity int         `json:"total_capacity"`
	SeatAvailable int         `json:"seat_available"`
	Classes       []FareClass `json:"classes,omitempty"`
}

// CapacitySnapshot is the inventory view of a single train.
type CapacitySnapshot struct {
	TrainNo       int64 `json:"train_no"`
	TotalCapacity int   `json:"total_capacity"`
	SeatAvailable int   `json:"seat_available"`
}

type TrainFilter struct {
	Source      string
	Destination string
}

// Key identifies the filter in caches.
func (f TrainFilter) Key() string {
	return f.Source + "|" + f.Destination
}

type RecentBooking struct {
	PNR           int64     `json:"pnr_no"`
	PassengerName string    `json:"passenger_name"`
	BookingTime   time.Time `json:"booking_time"`
}

type TrainStatus struct {
	Train           Train           `json:"train_details"`
	BookedTickets   int             `json:"booked_tickets_count"`
	ActualAvailable int             `json:"actual_available"`
	RecentBookings  []RecentBooking `json:"recent_bookings"`
}

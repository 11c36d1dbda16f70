package domain

import "github.com/shopspring/decimal"

type Summary struct {
	TotalUsers    int             `json:"totalUsers"`
	TotalTrains   int             `json:"totalTrains"`
	TotalBookings int             `json:"totalBookings"`
	TotalRevenue  decimal.Decimal `json:"totalRevenue"`
	TodayBookings int             `json:"todayBookings"`
}

type PopularTrain struct {
	TrainName     string `json:"train_name"`
	Source        string `json:"source"`
	Destination   string `json:"destination"`
	TotalBookings int    `json:"total_bookings"`
}

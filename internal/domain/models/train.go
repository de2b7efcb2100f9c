package models

import "time"

type OperationalStatus string

const (
	StatusOperational OperationalStatus = "OPERATIONAL"
	StatusMaintenance OperationalStatus = "MAINTENANCE"
	StatusSuspended   OperationalStatus = "SUSPENDED"
)

func (s OperationalStatus) Valid() bool {
	switch s {
	case StatusOperational, StatusMaintenance, StatusSuspended:
		return true
	}
	return false
}

// Train is the schedule and seat layout of one service.
type Train struct {
	ID                int64             `json:"id"`
	Name              string            `json:"name"`
	Source            string            `json:"source"`
	Destination       string            `json:"destination"`
	DepartureTime     string            `json:"departure_time"`
	ArrivalTime       string            `json:"arrival_time"`
	IsActive          bool              `json:"is_active"`
	OperationalStatus OperationalStatus `json:"operational_status"`
	Configured        bool              `json:"configured"`
	Seats             SeatConfig        `json:"seats"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// Operational reports the date-independent part of train availability.
func (t Train) Operational() bool {
	return t.IsActive && t.OperationalStatus == StatusOperational
}

// SeatConfigView is the admin representation of a train's configuration.
type SeatConfigView struct {
	TrainID    int64       `json:"train_id"`
	TrainName  string      `json:"train_name"`
	Configured bool        `json:"configured"`
	TotalSeats int         `json:"total_seats"`
	Seats      SeatConfig  `json:"seats"`
	Ranges     []SeatRange `json:"ranges"`
}

func NewSeatConfigView(t Train) SeatConfigView {
	return SeatConfigView{
		TrainID:    t.ID,
		TrainName:  t.Name,
		Configured: t.Configured,
		TotalSeats: t.Seats.TotalSeats(),
		Seats:      t.Seats,
		Ranges:     t.Seats.Ranges(),
	}
}

// PricingUpdate changes per-class prices without touching seat counts.
type PricingUpdate struct {
	SleeperPrice int64 `json:"sleeper_price" binding:"gt=0"`
	AC2Price     int64 `json:"ac2_price" binding:"gt=0"`
	AC1Price     int64 `json:"ac1_price" binding:"gt=0"`
}

// BulkConfigRequest configures every unconfigured train by percentage split.
type BulkConfigRequest struct {
	TotalSeats   int `json:"total_seats" binding:"gt=0"`
	SleeperRatio int `json:"sleeper_ratio" binding:"gte=0,lte=100"`
	AC2Ratio     int `json:"ac2_ratio" binding:"gte=0,lte=100"`
	AC1Ratio     int `json:"ac1_ratio" binding:"gte=0,lte=100"`
}

// ClassOverview is one class line of the admin seat overview.
type ClassOverview struct {
	Class      SeatClass `json:"class"`
	Seats      int       `json:"seats"`
	Price      int64     `json:"price"`
	RatioPct   float64   `json:"ratio_pct"`
	MaxRevenue int64     `json:"max_revenue"`
}

type TrainSeatOverview struct {
	TrainID           int64             `json:"train_id"`
	TrainName         string            `json:"train_name"`
	Source            string            `json:"source"`
	Destination       string            `json:"destination"`
	TotalSeats        int               `json:"total_seats"`
	Configured        bool              `json:"configured"`
	OperationalStatus OperationalStatus `json:"operational_status"`
	Classes           []ClassOverview   `json:"classes"`
	MaxTotalRevenue   int64             `json:"max_total_revenue"`
}

func NewTrainSeatOverview(t Train) TrainSeatOverview {
	total := t.Seats.TotalSeats()
	out := TrainSeatOverview{
		TrainID:           t.ID,
		TrainName:         t.Name,
		Source:            t.Source,
		Destination:       t.Destination,
		TotalSeats:        total,
		Configured:        t.Configured,
		OperationalStatus: t.OperationalStatus,
	}
	for _, c := range SeatClasses {
		a := t.Seats.For(c)
		line := ClassOverview{Class: c, Seats: a.Seats, Price: a.Price, MaxRevenue: int64(a.Seats) * a.Price}
		if total > 0 {
			line.RatioPct = float64(a.Seats) / float64(total) * 100
		}
		out.MaxTotalRevenue += line.MaxRevenue
		out.Classes = append(out.Classes, line)
	}
	return out
}

package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingWaiting   BookingStatus = "WAITING"
)

// Passenger identifies who sits in an allocated seat.
type Passenger struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// SeatBooking is one row of the seat ledger.
type SeatBooking struct {
	ID          int64         `json:"id"`
	TrainID     int64         `json:"train_id"`
	SeatNumber  int           `json:"seat_number"`
	SeatClass   SeatClass     `json:"seat_class"`
	BookingDate time.Time     `json:"booking_date"`
	Passenger   Passenger     `json:"passenger"`
	TicketID    int64         `json:"ticket_id,omitempty"`
	Status      BookingStatus `json:"status"`
	PNR         string        `json:"pnr"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// FormatPNR derives the passenger name record from a ledger id.
func FormatPNR(bookingID int64) string {
	return fmt.Sprintf("PNR%010d", bookingID)
}

// SeatBookingRequest asks the allocation engine for one or more seats.
// PreferredSeat applies to the first unit only; zero means auto-assign.
type SeatBookingRequest struct {
	TrainID       int64     `json:"train_id"`
	SeatClass     SeatClass `json:"seat_class"`
	BookingDate   time.Time `json:"booking_date"`
	NumberOfSeats int       `json:"number_of_seats"`
	PreferredSeat int       `json:"preferred_seat_number,omitempty"`
	Passenger     Passenger `json:"passenger"`
}

// BookingResult is returned once every requested seat is occupied.
type BookingResult struct {
	TrainID      int64     `json:"train_id"`
	TrainName    string    `json:"train_name"`
	SeatClass    SeatClass `json:"seat_class"`
	BookingDate  time.Time `json:"booking_date"`
	BookingIDs   []int64   `json:"booking_ids"`
	SeatNumbers  []int     `json:"seat_numbers"`
	PNR          string    `json:"pnr"`
	PricePerSeat int64     `json:"price_per_seat"`
	TotalAmount  int64     `json:"total_amount"`
	Passenger    Passenger `json:"passenger"`
}

// ClassAvailability is one class line of an availability summary.
type ClassAvailability struct {
	Class      SeatClass `json:"class"`
	RangeStart int       `json:"range_start"`
	RangeEnd   int       `json:"range_end"`
	Total      int       `json:"total"`
	Booked     int       `json:"booked"`
	Available  int       `json:"available"`
	Price      int64     `json:"price"`
}

type Availability struct {
	TrainID        int64               `json:"train_id"`
	TrainName      string              `json:"train_name"`
	Date           string              `json:"date"`
	TotalSeats     int                 `json:"total_seats"`
	TotalBooked    int                 `json:"total_booked"`
	TotalAvailable int                 `json:"total_available"`
	Classes        []ClassAvailability `json:"classes"`
}

// SeatCheck answers a single-seat availability or validity question.
type SeatCheck struct {
	TrainID    int64     `json:"train_id"`
	SeatNumber int       `json:"seat_number"`
	SeatClass  SeatClass `json:"seat_class"`
	Date       string    `json:"date,omitempty"`
	Valid      bool      `json:"valid"`
	Available  bool      `json:"available"`
	RangeStart int       `json:"range_start"`
	RangeEnd   int       `json:"range_end"`
}

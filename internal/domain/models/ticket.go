package models

import "time"

type TicketStatus string

const (
	TicketWaiting   TicketStatus = "WAITING"
	TicketConfirmed TicketStatus = "CONFIRMED"
	TicketCancelled TicketStatus = "CANCELLED"
)

type RefundStatus string

const (
	RefundInitiated     RefundStatus = "INITIATED"
	RefundFailed        RefundStatus = "FAILED"
	RefundNotApplicable RefundStatus = "NOT_APPLICABLE"
)

// Ticket is the passenger-facing record of a paid booking. SeatNumbers is
// loaded from the ledger rows that reference the ticket.
type Ticket struct {
	ID            int64        `json:"id"`
	TicketNumber  string       `json:"ticket_number"`
	OrderID       string       `json:"order_id"`
	PaymentID     string       `json:"payment_id,omitempty"`
	UserEmail     string       `json:"user_email,omitempty"`
	TrainID       int64        `json:"train_id"`
	TrainName     string       `json:"train_name"`
	Source        string       `json:"source"`
	Destination   string       `json:"destination"`
	DepartureTime string       `json:"departure_time"`
	FullName      string       `json:"full_name"`
	Age           int          `json:"age"`
	Email         string       `json:"email"`
	Phone         string       `json:"phone,omitempty"`
	BookingDate   time.Time    `json:"booking_date"`
	SeatClass     SeatClass    `json:"seat_class"`
	SeatNumbers   []int        `json:"seat_numbers"`
	PNR           string       `json:"pnr"`
	PricePerSeat  int64        `json:"price_per_seat"`
	Amount        int64        `json:"amount"`
	TotalAmount   int64        `json:"total_amount"`
	Status        TicketStatus `json:"status"`
	RefundID      string       `json:"refund_id,omitempty"`
	RefundStatus  RefundStatus `json:"refund_status,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

func (t Ticket) NoOfSeats() int { return len(t.SeatNumbers) }

// TicketRequest is the payload of a paid booking.
type TicketRequest struct {
	UserEmail     string    `json:"user_email"`
	FullName      string    `json:"full_name"`
	Age           int       `json:"age"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	SeatClass     SeatClass `json:"seat_class"`
	SeatCount     int       `json:"seat_count"`
	PreferredSeat int       `json:"preferred_seat_number,omitempty"`
	BookingDate   time.Time `json:"booking_date"`
	OrderID       string    `json:"order_id"`
	PaymentID     string    `json:"payment_id"`
	Signature     string    `json:"signature"`
	Amount        int64     `json:"amount"`
}

// CancellationResult reports both outcomes of a cancellation. A failed
// refund does not undo the cancellation.
type CancellationResult struct {
	TicketID           int64        `json:"ticket_id"`
	TicketNumber       string       `json:"ticket_number"`
	Status             TicketStatus `json:"status"`
	Message            string       `json:"message"`
	OriginalAmount     float64      `json:"original_amount"`
	RefundAmount       float64      `json:"refund_amount"`
	CancellationFee    float64      `json:"cancellation_fee"`
	RefundStatus       RefundStatus `json:"refund_status"`
	RefundID           string       `json:"refund_id,omitempty"`
	ExpectedRefundTime string       `json:"expected_refund_time"`
	SeatsReleased      int64        `json:"seats_released"`
	CancelledAt        time.Time    `json:"cancelled_at"`
}

// TicketBookedEvent is published after a ticket is confirmed.
type TicketBookedEvent struct {
	Email         string    `json:"email"`
	TicketNumber  string    `json:"ticketNumber"`
	TrainName     string    `json:"trainName"`
	Source        string    `json:"source"`
	Destination   string    `json:"destination"`
	DepartureTime string    `json:"departureTime"`
	FullName      string    `json:"fullName"`
	Age           int       `json:"age"`
	NoOfSeats     int       `json:"noOfSeats"`
	OrderID       string    `json:"orderId"`
	SeatClass     SeatClass `json:"seatClass"`
	SeatNumbers   []int     `json:"seatNumbers"`
	PNR           string    `json:"pnr"`
	BookingDate   string    `json:"bookingDate"`
}

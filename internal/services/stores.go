package services

import (
	"context"
	"time"

	"railbook/internal/domain/models"
)

// TrainStore is the train table as seen by the services. It also serves as
// the train-detail collaborator.
type TrainStore interface {
	GetByID(ctx context.Context, id int64) (models.Train, error)
	List(ctx context.Context) ([]models.Train, error)
	ListUnconfigured(ctx context.Context) ([]models.Train, error)
	UpdateSeatConfig(ctx context.Context, id int64, cfg models.SeatConfig) error
	// ReconfigureSeats writes cfg only when no confirmed booking dated on or
	// after from would be stranded, checking and writing atomically. It
	// returns the stranded count; nothing is written when it is positive.
	ReconfigureSeats(ctx context.Context, id int64, cfg models.SeatConfig, from time.Time) (stranded int, err error)
	SetActive(ctx context.Context, id int64, active bool) error
	SetOperationalStatus(ctx context.Context, id int64, status models.OperationalStatus) error
	IsInactiveOn(ctx context.Context, id int64, date time.Time) (bool, error)
	AddInactiveDate(ctx context.Context, id int64, date time.Time) error
	RemoveInactiveDate(ctx context.Context, id int64, date time.Time) error
	ListInactiveDates(ctx context.Context, id int64) ([]string, error)
}

// SeatBookingStore is the persistent seat ledger. Insert must fail with a
// SEAT_CONFLICT error when the key already has a CONFIRMED row, and must
// refuse a seat outside the train's current class range.
type SeatBookingStore interface {
	Insert(ctx context.Context, b models.SeatBooking) (int64, error)
	IsConfirmed(ctx context.Context, trainID int64, seat int, class models.SeatClass, date time.Time) (bool, error)
	BookedSeatNumbers(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) ([]int, error)
	CountBooked(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) (int, error)
	CountBookedByClass(ctx context.Context, trainID int64, date time.Time) (map[models.SeatClass]int, error)
	GetByID(ctx context.Context, id int64) (models.SeatBooking, error)
	Cancel(ctx context.Context, id int64) (bool, error)
	ListByPassengerEmail(ctx context.Context, email string) ([]models.SeatBooking, error)
}

type TicketStore interface {
	Create(ctx context.Context, t models.Ticket, bookingIDs []int64) (int64, error)
	GetByID(ctx context.Context, id int64) (models.Ticket, error)
	GetByOrderID(ctx context.Context, orderID string) (models.Ticket, error)
	ExistsByOrderID(ctx context.Context, orderID string) (bool, error)
	ListByEmail(ctx context.Context, email string) ([]models.Ticket, error)
	// Cancel must flip the ticket and release its seats atomically.
	Cancel(ctx context.Context, id int64) (released int64, changed bool, err error)
	UpdateRefund(ctx context.Context, id int64, refundID string, status models.RefundStatus) error
}

// PaymentGateway is the out-of-process payment collaborator.
type PaymentGateway interface {
	VerifyPayment(ctx context.Context, orderID, paymentID, signature string) (bool, error)
	Refund(ctx context.Context, paymentID string, amountMinor int64) (string, error)
}

// Publisher delivers ticket events to the notification pipeline.
type Publisher interface {
	PublishTicketBooked(ctx context.Context, evt models.TicketBookedEvent) error
}

package handlers

import (
	"context"
	"time"

	"railbook/internal/domain/models"
	"railbook/internal/services"
)

type SeatAllocator interface {
	BookSeats(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error)
	BookSpecificSeat(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error)
}

type SeatLedger interface {
	AvailabilitySummary(ctx context.Context, trainID int64, date time.Time) (models.Availability, error)
	CheckSeat(ctx context.Context, trainID int64, seat int, class models.SeatClass, date time.Time) (models.SeatCheck, error)
	NextAvailableSeat(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) (int, bool, error)
	BookedSeatNumbers(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) ([]int, error)
	GetBooking(ctx context.Context, id int64) (models.SeatBooking, error)
	PassengerBookings(ctx context.Context, email string) ([]models.SeatBooking, error)
	ReleaseStandalone(ctx context.Context, bookingID int64) (models.SeatBooking, error)
}

type TicketManager interface {
	BookTicket(ctx context.Context, trainID int64, req models.TicketRequest) (models.Ticket, error)
	GetTicket(ctx context.Context, id int64) (models.Ticket, error)
	GetByOrderID(ctx context.Context, orderID string) (models.Ticket, error)
	ListByEmail(ctx context.Context, email string) ([]models.Ticket, error)
	CancelTicket(ctx context.Context, id int64) (models.CancellationResult, error)
	CancelTicketWithRefund(ctx context.Context, id int64) (models.CancellationResult, error)
}

type DocumentRenderer interface {
	GenerateETicket(ctx context.Context, ticketID int64) ([]byte, string, error)
	GenerateInvoice(ctx context.Context, ticketID int64) ([]byte, string, error)
}

type SeatConfigAdmin interface {
	Get(ctx context.Context, trainID int64) (models.SeatConfigView, error)
	Configure(ctx context.Context, trainID int64, cfg models.SeatConfig) (models.SeatConfigView, error)
	UpdatePricing(ctx context.Context, trainID int64, p models.PricingUpdate) (models.SeatConfigView, error)
	ResetToDefault(ctx context.Context, trainID int64, totalSeats int) (models.SeatConfigView, error)
	BulkConfigure(ctx context.Context, req models.BulkConfigRequest) (int, error)
	Overview(ctx context.Context) ([]models.TrainSeatOverview, error)
}

type TrainAdmin interface {
	GetTrain(ctx context.Context, id int64) (services.TrainDetails, error)
	SetActive(ctx context.Context, id int64, active bool) (services.TrainDetails, error)
	SetOperationalStatus(ctx context.Context, id int64, status models.OperationalStatus) (services.TrainDetails, error)
	AddInactiveDate(ctx context.Context, id int64, date time.Time) (services.TrainDetails, error)
	RemoveInactiveDate(ctx context.Context, id int64, date time.Time) (services.TrainDetails, error)
}

// SchemaChecker reports tables missing from the connected database.
type SchemaChecker func(ctx context.Context) ([]string, error)

// Handler serves the HTTP API on top of the service layer.
type Handler struct {
	Allocator SeatAllocator
	Ledger    SeatLedger
	Tickets   TicketManager
	Docs      DocumentRenderer
	Configs   SeatConfigAdmin
	Trains    TrainAdmin
	Schema    SchemaChecker
}

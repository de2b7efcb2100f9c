package handlers

import (
	"context"
	"time"

	"railbook/internal/domain/models"
	"railbook/internal/services"

	"github.com/stretchr/testify/mock"
)

type mockAllocator struct{ mock.Mock }

func (m *mockAllocator) BookSeats(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.BookingResult), args.Error(1)
}

func (m *mockAllocator) BookSpecificSeat(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(models.BookingResult), args.Error(1)
}

type mockTickets struct{ mock.Mock }

func (m *mockTickets) BookTicket(ctx context.Context, trainID int64, req models.TicketRequest) (models.Ticket, error) {
	args := m.Called(ctx, trainID, req)
	return args.Get(0).(models.Ticket), args.Error(1)
}

func (m *mockTickets) GetTicket(ctx context.Context, id int64) (models.Ticket, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Ticket), args.Error(1)
}

func (m *mockTickets) GetByOrderID(ctx context.Context, orderID string) (models.Ticket, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(models.Ticket), args.Error(1)
}

func (m *mockTickets) ListByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ticket), args.Error(1)
}

func (m *mockTickets) CancelTicket(ctx context.Context, id int64) (models.CancellationResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.CancellationResult), args.Error(1)
}

func (m *mockTickets) CancelTicketWithRefund(ctx context.Context, id int64) (models.CancellationResult, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.CancellationResult), args.Error(1)
}

type mockDocs struct{ mock.Mock }

func (m *mockDocs) GenerateETicket(ctx context.Context, id int64) ([]byte, string, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *mockDocs) GenerateInvoice(ctx context.Context, id int64) ([]byte, string, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

type mockConfigs struct{ mock.Mock }

func (m *mockConfigs) Get(ctx context.Context, id int64) (models.SeatConfigView, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.SeatConfigView), args.Error(1)
}

func (m *mockConfigs) Configure(ctx context.Context, id int64, cfg models.SeatConfig) (models.SeatConfigView, error) {
	args := m.Called(ctx, id, cfg)
	return args.Get(0).(models.SeatConfigView), args.Error(1)
}

func (m *mockConfigs) UpdatePricing(ctx context.Context, id int64, p models.PricingUpdate) (models.SeatConfigView, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(models.SeatConfigView), args.Error(1)
}

func (m *mockConfigs) ResetToDefault(ctx context.Context, id int64, total int) (models.SeatConfigView, error) {
	args := m.Called(ctx, id, total)
	return args.Get(0).(models.SeatConfigView), args.Error(1)
}

func (m *mockConfigs) BulkConfigure(ctx context.Context, req models.BulkConfigRequest) (int, error) {
	args := m.Called(ctx, req)
	return args.Int(0), args.Error(1)
}

func (m *mockConfigs) Overview(ctx context.Context) ([]models.TrainSeatOverview, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.TrainSeatOverview), args.Error(1)
}

type mockTrains struct{ mock.Mock }

func (m *mockTrains) GetTrain(ctx context.Context, id int64) (services.TrainDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(services.TrainDetails), args.Error(1)
}

func (m *mockTrains) SetActive(ctx context.Context, id int64, active bool) (services.TrainDetails, error) {
	args := m.Called(ctx, id, active)
	return args.Get(0).(services.TrainDetails), args.Error(1)
}

func (m *mockTrains) SetOperationalStatus(ctx context.Context, id int64, s models.OperationalStatus) (services.TrainDetails, error) {
	args := m.Called(ctx, id, s)
	return args.Get(0).(services.TrainDetails), args.Error(1)
}

func (m *mockTrains) AddInactiveDate(ctx context.Context, id int64, d time.Time) (services.TrainDetails, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(services.TrainDetails), args.Error(1)
}

func (m *mockTrains) RemoveInactiveDate(ctx context.Context, id int64, d time.Time) (services.TrainDetails, error) {
	args := m.Called(ctx, id, d)
	return args.Get(0).(services.TrainDetails), args.Error(1)
}

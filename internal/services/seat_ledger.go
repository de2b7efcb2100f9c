package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

// SeatLedger answers occupancy questions and is the only writer of seat rows.
type SeatLedger struct {
	Trains   TrainStore
	Bookings SeatBookingStore
}

func (l SeatLedger) IsAvailable(ctx context.Context, trainID int64, seat int, class models.SeatClass, date time.Time) (bool, error) {
	taken, err := l.Bookings.IsConfirmed(ctx, trainID, seat, class, utils.DateOnly(date))
	if err != nil {
		return false, domain.InternalError{Msg: "failed to check seat", Err: err}
	}
	return !taken, nil
}

func (l SeatLedger) BookedSeatNumbers(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) ([]int, error) {
	seats, err := l.Bookings.BookedSeatNumbers(ctx, trainID, class, utils.DateOnly(date))
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list booked seats", Err: err}
	}
	sort.Ints(seats)
	return seats, nil
}

// NextAvailableSeat returns the lowest free seat of the class; ok is false
// when the class is full.
func (l SeatLedger) NextAvailableSeat(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) (seat int, ok bool, err error) {
	train, err := l.Trains.GetByID(ctx, trainID)
	if err != nil {
		return 0, false, err
	}
	booked, err := l.BookedSeatNumbers(ctx, trainID, class, date)
	if err != nil {
		return 0, false, err
	}
	seat, ok = firstFreeSeat(train.Seats.Range(class), booked, nil)
	return seat, ok, nil
}

// firstFreeSeat scans the range upward, skipping booked and skip seats.
func firstFreeSeat(r models.SeatRange, booked []int, skip map[int]bool) (int, bool) {
	taken := make(map[int]bool, len(booked))
	for _, n := range booked {
		taken[n] = true
	}
	for n := r.Start; n <= r.End; n++ {
		if !taken[n] && !skip[n] {
			return n, true
		}
	}
	return 0, false
}

// Occupy creates a CONFIRMED row. Losing a race yields SEAT_CONFLICT; a seat
// dropped from its class by a concurrent reconfigure yields
// INVALID_SEAT_FOR_CLASS.
func (l SeatLedger) Occupy(ctx context.Context, trainID int64, seat int, class models.SeatClass, date time.Time, p models.Passenger) (int64, error) {
	id, err := l.Bookings.Insert(ctx, models.SeatBooking{
		TrainID:     trainID,
		SeatNumber:  seat,
		SeatClass:   class,
		BookingDate: utils.DateOnly(date),
		Passenger:   p,
		Status:      models.BookingConfirmed,
	})
	if err != nil {
		if domain.IsConflict(err) || domain.IsNotFound(err) {
			return 0, err
		}
		return 0, domain.InternalError{Msg: "failed to occupy seat", Err: err}
	}
	utils.LogCtx(ctx, "ledger", "occupy", fmt.Sprintf("train_id=%d class=%s seat=%d booking_id=%d", trainID, class, seat, id))
	return id, nil
}

// Release cancels one row. Releasing a cancelled row is a no-op.
func (l SeatLedger) Release(ctx context.Context, bookingID int64) error {
	changed, err := l.Bookings.Cancel(ctx, bookingID)
	if err != nil {
		return domain.InternalError{Msg: "failed to release seat", Err: err}
	}
	if changed {
		utils.LogCtx(ctx, "ledger", "release", fmt.Sprintf("booking_id=%d", bookingID))
		return nil
	}
	if _, err := l.Bookings.GetByID(ctx, bookingID); err != nil {
		return err
	}
	return nil
}

// ReleaseStandalone releases a row that is not owned by a ticket.
func (l SeatLedger) ReleaseStandalone(ctx context.Context, bookingID int64) (models.SeatBooking, error) {
	b, err := l.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return b, err
	}
	if b.TicketID != 0 {
		return b, domain.ConflictError{
			Resource: "seat booking",
			Msg:      fmt.Sprintf("booking %d belongs to ticket %d; cancel the ticket instead", bookingID, b.TicketID),
		}
	}
	if err := l.Release(ctx, bookingID); err != nil {
		return b, err
	}
	b.Status = models.BookingCancelled
	return b, nil
}

func (l SeatLedger) CountBooked(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) (int, error) {
	n, err := l.Bookings.CountBooked(ctx, trainID, class, utils.DateOnly(date))
	if err != nil {
		return 0, domain.InternalError{Msg: "failed to count booked seats", Err: err}
	}
	return n, nil
}

func (l SeatLedger) AvailabilitySummary(ctx context.Context, trainID int64, date time.Time) (models.Availability, error) {
	train, err := l.Trains.GetByID(ctx, trainID)
	if err != nil {
		return models.Availability{}, err
	}
	booked, err := l.Bookings.CountBookedByClass(ctx, trainID, utils.DateOnly(date))
	if err != nil {
		return models.Availability{}, domain.InternalError{Msg: "failed to load availability", Err: err}
	}

	out := models.Availability{
		TrainID:   train.ID,
		TrainName: train.Name,
		Date:      utils.FormatDate(date),
	}
	for _, r := range train.Seats.Ranges() {
		b := booked[r.Class]
		avail := r.Seats - b
		if avail < 0 {
			avail = 0
		}
		out.Classes = append(out.Classes, models.ClassAvailability{
			Class:      r.Class,
			RangeStart: r.Start,
			RangeEnd:   r.End,
			Total:      r.Seats,
			Booked:     b,
			Available:  avail,
			Price:      r.Price,
		})
		out.TotalSeats += r.Seats
		out.TotalBooked += b
		out.TotalAvailable += avail
	}
	return out, nil
}

// CheckSeat validates a seat against its class and reports availability.
func (l SeatLedger) CheckSeat(ctx context.Context, trainID int64, seat int, class models.SeatClass, date time.Time) (models.SeatCheck, error) {
	train, err := l.Trains.GetByID(ctx, trainID)
	if err != nil {
		return models.SeatCheck{}, err
	}
	r := train.Seats.Range(class)
	out := models.SeatCheck{
		TrainID:    trainID,
		SeatNumber: seat,
		SeatClass:  class,
		Valid:      train.Seats.IsValidSeatForClass(seat, class),
		RangeStart: r.Start,
		RangeEnd:   r.End,
	}
	if date.IsZero() || !out.Valid {
		return out, nil
	}
	out.Date = utils.FormatDate(date)
	out.Available, err = l.IsAvailable(ctx, trainID, seat, class, date)
	return out, err
}

func (l SeatLedger) GetBooking(ctx context.Context, id int64) (models.SeatBooking, error) {
	return l.Bookings.GetByID(ctx, id)
}

func (l SeatLedger) PassengerBookings(ctx context.Context, email string) ([]models.SeatBooking, error) {
	if utils.NormalizeEmail(email) == "" {
		return nil, domain.ValidationError{Field: "email", Msg: "is required"}
	}
	out, err := l.Bookings.ListByPassengerEmail(ctx, email)
	if err != nil {
		return nil, domain.InternalError{Msg: "failed to list bookings", Err: err}
	}
	return out, nil
}

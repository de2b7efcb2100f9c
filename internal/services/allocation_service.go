package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

const (
	defaultMaxAttempts = 5
	defaultMaxSeats    = 6
	maxNameLength      = 100
)

// AllocationService turns a booking request into ledger occupations. A
// request either gets every seat it asked for or leaves none behind.
type AllocationService struct {
	Trains      TrainStore
	Ledger      SeatLedger
	MaxAttempts int
	MaxSeats    int
	Now         func() time.Time
}

func (s AllocationService) maxAttempts() int {
	if s.MaxAttempts > 0 {
		return s.MaxAttempts
	}
	return defaultMaxAttempts
}

func (s AllocationService) maxSeats() int {
	if s.MaxSeats > 0 {
		return s.MaxSeats
	}
	return defaultMaxSeats
}

func (s AllocationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// BookSpecificSeat books exactly the preferred seat or fails.
func (s AllocationService) BookSpecificSeat(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error) {
	if req.PreferredSeat <= 0 {
		return models.BookingResult{}, domain.ValidationError{Field: "preferred_seat_number", Msg: "is required"}
	}
	req.NumberOfSeats = 1
	return s.BookSeats(ctx, req)
}

func (s AllocationService) BookSeats(ctx context.Context, req models.SeatBookingRequest) (models.BookingResult, error) {
	req, err := s.validate(req)
	if err != nil {
		return models.BookingResult{}, err
	}

	train, err := s.Trains.GetByID(ctx, req.TrainID)
	if err != nil {
		return models.BookingResult{}, err
	}
	if err := s.ensureOperational(ctx, train, req.BookingDate); err != nil {
		return models.BookingResult{}, err
	}

	cfg := train.Seats
	capacity := cfg.SeatsFor(req.SeatClass)
	booked, err := s.Ledger.CountBooked(ctx, train.ID, req.SeatClass, req.BookingDate)
	if err != nil {
		return models.BookingResult{}, err
	}
	remaining := capacity - booked
	if remaining < 0 {
		remaining = 0
	}
	if remaining < req.NumberOfSeats {
		return models.BookingResult{}, domain.CapacityError{
			Code:      domain.CodeInsufficientSeats,
			Remaining: remaining,
			Msg: fmt.Sprintf("only %d %s seat(s) left on %s, requested %d",
				remaining, req.SeatClass, utils.FormatDate(req.BookingDate), req.NumberOfSeats),
		}
	}

	occupied := make([]models.SeatBooking, 0, req.NumberOfSeats)
	tried := map[int]bool{}
	for unit := 0; unit < req.NumberOfSeats; unit++ {
		var b models.SeatBooking
		if unit == 0 && req.PreferredSeat > 0 {
			b, err = s.occupyPreferred(ctx, cfg, req)
		} else {
			b, err = s.occupyNext(ctx, cfg, req, tried)
		}
		if err != nil {
			s.rollback(ctx, occupied)
			return models.BookingResult{}, err
		}
		occupied = append(occupied, b)
	}

	price := cfg.PriceFor(req.SeatClass)
	res := models.BookingResult{
		TrainID:      train.ID,
		TrainName:    train.Name,
		SeatClass:    req.SeatClass,
		BookingDate:  req.BookingDate,
		PNR:          models.FormatPNR(occupied[0].ID),
		PricePerSeat: price,
		TotalAmount:  price * int64(len(occupied)),
		Passenger:    req.Passenger,
	}
	for _, b := range occupied {
		res.BookingIDs = append(res.BookingIDs, b.ID)
		res.SeatNumbers = append(res.SeatNumbers, b.SeatNumber)
	}
	utils.LogCtx(ctx, "allocation", "book_seats", fmt.Sprintf("train_id=%d class=%s seats=%v pnr=%s",
		train.ID, req.SeatClass, res.SeatNumbers, res.PNR))
	return res, nil
}

func (s AllocationService) occupyPreferred(ctx context.Context, cfg models.SeatConfig, req models.SeatBookingRequest) (models.SeatBooking, error) {
	seat := req.PreferredSeat
	if !cfg.IsValidSeatForClass(seat, req.SeatClass) {
		r := cfg.Range(req.SeatClass)
		return models.SeatBooking{}, domain.ValidationError{
			Field: "preferred_seat_number",
			Msg:   fmt.Sprintf("seat %d is not in %s range %d-%d", seat, req.SeatClass, r.Start, r.End),
			Code:  domain.CodeInvalidSeatForClass,
		}
	}
	free, err := s.Ledger.IsAvailable(ctx, req.TrainID, seat, req.SeatClass, req.BookingDate)
	if err != nil {
		return models.SeatBooking{}, err
	}
	if !free {
		return models.SeatBooking{}, seatNotAvailable(seat, req.SeatClass)
	}
	id, err := s.Ledger.Occupy(ctx, req.TrainID, seat, req.SeatClass, req.BookingDate, req.Passenger)
	if domain.IsSeatConflict(err) {
		return models.SeatBooking{}, seatNotAvailable(seat, req.SeatClass)
	}
	if err != nil {
		return models.SeatBooking{}, err
	}
	return models.SeatBooking{ID: id, SeatNumber: seat}, nil
}

// occupyNext auto-assigns the lowest free seat, moving past seats lost to
// concurrent bookings until the attempt cap is reached.
func (s AllocationService) occupyNext(ctx context.Context, cfg models.SeatConfig, req models.SeatBookingRequest, tried map[int]bool) (models.SeatBooking, error) {
	r := cfg.Range(req.SeatClass)
	for attempt := 1; attempt <= s.maxAttempts(); attempt++ {
		booked, err := s.Ledger.BookedSeatNumbers(ctx, req.TrainID, req.SeatClass, req.BookingDate)
		if err != nil {
			return models.SeatBooking{}, err
		}
		seat, ok := firstFreeSeat(r, booked, tried)
		if !ok {
			return models.SeatBooking{}, domain.CapacityError{
				Code: domain.CodeNoSeatsAvailable,
				Msg:  fmt.Sprintf("no %s seats available on %s", req.SeatClass, utils.FormatDate(req.BookingDate)),
			}
		}
		id, err := s.Ledger.Occupy(ctx, req.TrainID, seat, req.SeatClass, req.BookingDate, req.Passenger)
		if domain.IsSeatConflict(err) {
			tried[seat] = true
			utils.LogCtx(ctx, "allocation", "seat_conflict", fmt.Sprintf("train_id=%d class=%s seat=%d attempt=%d",
				req.TrainID, req.SeatClass, seat, attempt))
			continue
		}
		if err != nil {
			return models.SeatBooking{}, err
		}
		return models.SeatBooking{ID: id, SeatNumber: seat}, nil
	}
	return models.SeatBooking{}, domain.ConflictError{
		Resource: "seat",
		Msg:      fmt.Sprintf("could not allocate a %s seat after %d attempts", req.SeatClass, s.maxAttempts()),
		Code:     domain.CodeAllocationFailed,
	}
}

// rollback releases seats taken earlier in a failed request. It ignores
// cancellation of ctx so a client disconnect cannot leave seats behind.
func (s AllocationService) rollback(ctx context.Context, occupied []models.SeatBooking) {
	if len(occupied) == 0 {
		return
	}
	bg := context.WithoutCancel(ctx)
	for _, b := range occupied {
		if err := s.Ledger.Release(bg, b.ID); err != nil {
			utils.LogCtx(ctx, "allocation", "rollback_failed", fmt.Sprintf("booking_id=%d err=%v", b.ID, err))
		}
	}
	utils.LogCtx(ctx, "allocation", "rollback", fmt.Sprintf("released=%d", len(occupied)))
}

func (s AllocationService) ensureOperational(ctx context.Context, t models.Train, date time.Time) error {
	if !t.Operational() {
		return trainUnavailable(t, fmt.Sprintf("train %s is not operational (%s)", t.Name, t.OperationalStatus))
	}
	inactive, err := s.Trains.IsInactiveOn(ctx, t.ID, date)
	if err != nil {
		return domain.InternalError{Msg: "failed to check train schedule", Err: err}
	}
	if inactive {
		return trainUnavailable(t, fmt.Sprintf("train %s does not run on %s", t.Name, utils.FormatDate(date)))
	}
	return nil
}

func (s AllocationService) validate(req models.SeatBookingRequest) (models.SeatBookingRequest, error) {
	if req.TrainID <= 0 {
		return req, domain.ValidationError{Field: "train_id", Msg: "is required"}
	}
	if !req.SeatClass.Valid() {
		return req, domain.ValidationError{Field: "seat_class", Msg: "must be one of SLEEPER, AC2, AC1"}
	}
	if req.NumberOfSeats < 1 || req.NumberOfSeats > s.maxSeats() {
		return req, domain.ValidationError{Field: "number_of_seats", Msg: fmt.Sprintf("must be between 1 and %d", s.maxSeats())}
	}
	if req.PreferredSeat < 0 {
		return req, domain.ValidationError{Field: "preferred_seat_number", Msg: "must be positive"}
	}
	if req.BookingDate.IsZero() {
		return req, domain.ValidationError{Field: "booking_date", Msg: "is required"}
	}
	req.BookingDate = utils.DateOnly(req.BookingDate)
	if utils.BeforeDay(req.BookingDate, s.now()) {
		return req, domain.ValidationError{Field: "booking_date", Msg: "must be today or later"}
	}
	p, err := validatePassenger(req.Passenger)
	if err != nil {
		return req, err
	}
	req.Passenger = p
	return req, nil
}

func validatePassenger(p models.Passenger) (models.Passenger, error) {
	p.Name = utils.NormalizeSpace(p.Name)
	p.Email = utils.NormalizeEmail(p.Email)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.Name == "" {
		return p, domain.ValidationError{Field: "passenger_name", Msg: "is required"}
	}
	if len(p.Name) > maxNameLength {
		return p, domain.ValidationError{Field: "passenger_name", Msg: fmt.Sprintf("must be at most %d characters", maxNameLength)}
	}
	if p.Email == "" {
		return p, domain.ValidationError{Field: "passenger_email", Msg: "is required"}
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return p, domain.ValidationError{Field: "passenger_email", Msg: "is not a valid email", Err: err}
	}
	if !utils.ValidPhone(p.Phone) {
		return p, domain.ValidationError{Field: "passenger_phone", Msg: "may only contain digits, spaces and + - ( )"}
	}
	return p, nil
}

func seatNotAvailable(seat int, class models.SeatClass) error {
	return domain.ConflictError{
		Resource: "seat",
		Msg:      fmt.Sprintf("seat %d (%s) is not available", seat, class),
		Code:     domain.CodeSeatNotAvailable,
	}
}

func trainUnavailable(t models.Train, msg string) error {
	return domain.ConflictError{Resource: "train", Msg: msg, Code: domain.CodeTrainUnavailable}
}

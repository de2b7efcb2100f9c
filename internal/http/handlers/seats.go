package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"railbook/internal/domain/models"

	"github.com/gin-gonic/gin"
)

type seatBookingBody struct {
	TrainID        int64            `json:"train_id"`
	SeatClass      models.SeatClass `json:"seat_class"`
	BookingDate    string           `json:"booking_date"`
	NumberOfSeats  int              `json:"number_of_seats"`
	PreferredSeat  int              `json:"preferred_seat_number"`
	PassengerName  string           `json:"passenger_name"`
	PassengerEmail string           `json:"passenger_email"`
	PassengerPhone string           `json:"passenger_phone"`
}

func (b seatBookingBody) toRequest() (models.SeatBookingRequest, error) {
	date, err := parseDate(b.BookingDate, "booking_date")
	if err != nil {
		return models.SeatBookingRequest{}, err
	}
	n := b.NumberOfSeats
	if n == 0 {
		n = 1
	}
	return models.SeatBookingRequest{
		TrainID:       b.TrainID,
		SeatClass:     b.SeatClass,
		BookingDate:   date,
		NumberOfSeats: n,
		PreferredSeat: b.PreferredSeat,
		Passenger: models.Passenger{
			Name:  b.PassengerName,
			Email: b.PassengerEmail,
			Phone: b.PassengerPhone,
		},
	}, nil
}

// POST /api/seats/book
func (h Handler) BookSeats(c *gin.Context) {
	var body seatBookingBody
	if !BindJSONOrError(c, &body) {
		return
	}
	req, err := body.toRequest()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.Allocator.BookSeats(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// POST /api/seats/book-specific
func (h Handler) BookSpecificSeat(c *gin.Context) {
	var body seatBookingBody
	if !BindJSONOrError(c, &body) {
		return
	}
	req, err := body.toRequest()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	res, err := h.Allocator.BookSpecificSeat(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// GET /api/seats/availability/:trainId?date=YYYY-MM-DD
func (h Handler) Availability(c *gin.Context) {
	trainID, ok := parseIDParam(c, "trainId")
	if !ok {
		return
	}
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}
	out, err := h.Ledger.AvailabilitySummary(c.Request.Context(), trainID, date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type seatQuery struct {
	trainID int64
	class   models.SeatClass
	date    time.Time
}

// parseSeatQuery reads trainId, seatClass and, when needDate, date.
func parseSeatQuery(c *gin.Context, needDate bool) (seatQuery, bool) {
	var q seatQuery
	var ok bool
	if q.trainID, ok = parsePositiveQuery(c, "trainId"); !ok {
		return q, false
	}
	if q.class, ok = parseClassQuery(c, "seatClass"); !ok {
		return q, false
	}
	if needDate || strings.TrimSpace(c.Query("date")) != "" {
		if q.date, ok = parseDateQuery(c, "date"); !ok {
			return q, false
		}
	}
	return q, true
}

// GET /api/seats/check?trainId&seatNumber&seatClass&date
func (h Handler) CheckSeat(c *gin.Context) {
	q, ok := parseSeatQuery(c, true)
	if !ok {
		return
	}
	seat, ok := parsePositiveQuery(c, "seatNumber")
	if !ok {
		return
	}
	out, err := h.Ledger.CheckSeat(c.Request.Context(), q.trainID, int(seat), q.class, q.date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/seats/validate?trainId&seatNumber&seatClass
func (h Handler) ValidateSeat(c *gin.Context) {
	q, ok := parseSeatQuery(c, false)
	if !ok {
		return
	}
	seat, ok := parsePositiveQuery(c, "seatNumber")
	if !ok {
		return
	}
	out, err := h.Ledger.CheckSeat(c.Request.Context(), q.trainID, int(seat), q.class, time.Time{})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"train_id":    out.TrainID,
		"seat_number": out.SeatNumber,
		"seat_class":  out.SeatClass,
		"valid":       out.Valid,
		"range_start": out.RangeStart,
		"range_end":   out.RangeEnd,
	})
}

// GET /api/seats/next-available?trainId&seatClass&date
func (h Handler) NextAvailableSeat(c *gin.Context) {
	q, ok := parseSeatQuery(c, true)
	if !ok {
		return
	}
	seat, found, err := h.Ledger.NextAvailableSeat(c.Request.Context(), q.trainID, q.class, q.date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	var next *int
	if found {
		next = &seat
	}
	c.JSON(http.StatusOK, gin.H{"train_id": q.trainID, "seat_class": q.class, "date": c.Query("date"), "next_available_seat": next})
}

// GET /api/seats/booked?trainId&seatClass&date
func (h Handler) BookedSeats(c *gin.Context) {
	q, ok := parseSeatQuery(c, true)
	if !ok {
		return
	}
	seats, err := h.Ledger.BookedSeatNumbers(c.Request.Context(), q.trainID, q.class, q.date)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if seats == nil {
		seats = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"train_id": q.trainID, "seat_class": q.class, "date": c.Query("date"), "booked_seats": seats})
}

// GET /api/seats/bookings/:id
func (h Handler) GetSeatBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	b, err := h.Ledger.GetBooking(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ensureSelfOrAdmin(c, b.Passenger.Email) {
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/seats/bookings?email=
func (h Handler) PassengerBookings(c *gin.Context) {
	email := c.Query("email")
	if !ensureSelfOrAdmin(c, email) {
		return
	}
	out, err := h.Ledger.PassengerBookings(c.Request.Context(), email)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if out == nil {
		out = []models.SeatBooking{}
	}
	c.JSON(http.StatusOK, gin.H{"count": len(out), "bookings": out})
}

// PUT /api/seats/bookings/:id/release
func (h Handler) ReleaseSeatBooking(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	b, err := h.Ledger.GetBooking(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if !ensureSelfOrAdmin(c, b.Passenger.Email) {
		return
	}
	b, err = h.Ledger.ReleaseStandalone(ctx, id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "seat " + strconv.Itoa(b.SeatNumber) + " released", "booking": b})
}

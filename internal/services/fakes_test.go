package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

// memTrains is an in-memory TrainStore.
type memTrains struct {
	mu       sync.Mutex
	trains   map[int64]models.Train
	inactive map[int64]map[string]bool

	// bookings backs the stranded count of ReconfigureSeats.
	bookings *memBookings
}

func newMemTrains(trains ...models.Train) *memTrains {
	m := &memTrains{trains: map[int64]models.Train{}, inactive: map[int64]map[string]bool{}}
	for _, t := range trains {
		m.trains[t.ID] = t
	}
	return m
}

func (m *memTrains) GetByID(_ context.Context, id int64) (models.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trains[id]
	if !ok {
		return models.Train{}, domain.NotFoundError{Resource: "train", Code: domain.CodeTrainNotFound}
	}
	return t, nil
}

func (m *memTrains) List(_ context.Context) ([]models.Train, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Train, 0, len(m.trains))
	for _, t := range m.trains {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memTrains) ListUnconfigured(ctx context.Context) ([]models.Train, error) {
	all, _ := m.List(ctx)
	var out []models.Train
	for _, t := range all {
		if !t.Configured {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memTrains) UpdateSeatConfig(_ context.Context, id int64, cfg models.SeatConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.trains[id]
	t.Seats = cfg
	t.Configured = true
	m.trains[id] = t
	return nil
}

func (m *memTrains) ReconfigureSeats(_ context.Context, id int64, cfg models.SeatConfig, from time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.trains[id]
	if !ok {
		return 0, domain.NotFoundError{Resource: "train", Code: domain.CodeTrainNotFound}
	}
	if m.bookings != nil {
		if n := m.bookings.countStranded(id, cfg, from); n > 0 {
			return n, nil
		}
	}
	t.Seats = cfg
	t.Configured = true
	m.trains[id] = t
	return 0, nil
}

func (m *memTrains) SetActive(_ context.Context, id int64, active bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.trains[id]
	t.IsActive = active
	m.trains[id] = t
	return nil
}

func (m *memTrains) SetOperationalStatus(_ context.Context, id int64, status models.OperationalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.trains[id]
	t.OperationalStatus = status
	m.trains[id] = t
	return nil
}

func (m *memTrains) IsInactiveOn(_ context.Context, id int64, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inactive[id][utils.FormatDate(date)], nil
}

func (m *memTrains) AddInactiveDate(_ context.Context, id int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.inactive[id] == nil {
		m.inactive[id] = map[string]bool{}
	}
	m.inactive[id][utils.FormatDate(date)] = true
	return nil
}

func (m *memTrains) RemoveInactiveDate(_ context.Context, id int64, date time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.inactive[id], utils.FormatDate(date))
	return nil
}

func (m *memTrains) ListInactiveDates(_ context.Context, id int64) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []string{}
	for d := range m.inactive[id] {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}

// memBookings is an in-memory SeatBookingStore enforcing one CONFIRMED row
// per (train, seat, class, date).
type memBookings struct {
	mu     sync.Mutex
	nextID int64
	rows   map[int64]*models.SeatBooking

	// steal makes the next Insert of that seat lose to a competing booking.
	steal map[int]bool
	// failOn makes Insert of that seat fail with a storage error.
	failOn map[int]error
	// conflictAlways makes every Insert report SEAT_CONFLICT.
	conflictAlways bool
	inserts        int
}

func newMemBookings() *memBookings {
	return &memBookings{rows: map[int64]*models.SeatBooking{}, steal: map[int]bool{}, failOn: map[int]error{}}
}

func sameSlot(a *models.SeatBooking, b models.SeatBooking) bool {
	return a.TrainID == b.TrainID && a.SeatNumber == b.SeatNumber && a.SeatClass == b.SeatClass &&
		utils.FormatDate(a.BookingDate) == utils.FormatDate(b.BookingDate)
}

func (m *memBookings) insertLocked(b models.SeatBooking) (int64, error) {
	for _, r := range m.rows {
		if r.Status == models.BookingConfirmed && sameSlot(r, b) {
			return 0, domain.ConflictError{Resource: "seat", Code: domain.CodeSeatConflict, Msg: "duplicate"}
		}
	}
	m.nextID++
	b.ID = m.nextID
	b.PNR = models.FormatPNR(b.ID)
	m.rows[b.ID] = &b
	return b.ID, nil
}

func (m *memBookings) Insert(_ context.Context, b models.SeatBooking) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserts++
	if m.conflictAlways {
		return 0, domain.ConflictError{Resource: "seat", Code: domain.CodeSeatConflict, Msg: "duplicate"}
	}
	if err := m.failOn[b.SeatNumber]; err != nil {
		return 0, err
	}
	if m.steal[b.SeatNumber] {
		delete(m.steal, b.SeatNumber)
		rival := b
		rival.Passenger = models.Passenger{Name: "Rival", Email: "rival@example.com"}
		if _, err := m.insertLocked(rival); err != nil {
			return 0, err
		}
	}
	return m.insertLocked(b)
}

func (m *memBookings) confirmed(trainID int64, class models.SeatClass, date time.Time) []*models.SeatBooking {
	var out []*models.SeatBooking
	d := utils.FormatDate(date)
	for _, r := range m.rows {
		if r.Status == models.BookingConfirmed && r.TrainID == trainID && r.SeatClass == class && utils.FormatDate(r.BookingDate) == d {
			out = append(out, r)
		}
	}
	return out
}

func (m *memBookings) IsConfirmed(_ context.Context, trainID int64, seat int, class models.SeatClass, date time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.confirmed(trainID, class, date) {
		if r.SeatNumber == seat {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBookings) BookedSeatNumbers(_ context.Context, trainID int64, class models.SeatClass, date time.Time) ([]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, r := range m.confirmed(trainID, class, date) {
		out = append(out, r.SeatNumber)
	}
	sort.Ints(out)
	return out, nil
}

func (m *memBookings) CountBooked(_ context.Context, trainID int64, class models.SeatClass, date time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.confirmed(trainID, class, date)), nil
}

func (m *memBookings) CountBookedByClass(_ context.Context, trainID int64, date time.Time) (map[models.SeatClass]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[models.SeatClass]int{}
	for _, c := range models.SeatClasses {
		if n := len(m.confirmed(trainID, c, date)); n > 0 {
			out[c] = n
		}
	}
	return out, nil
}

func (m *memBookings) GetByID(_ context.Context, id int64) (models.SeatBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return models.SeatBooking{}, domain.NotFoundError{Resource: "seat booking", Code: domain.CodeBookingNotFound}
	}
	return *r, nil
}

func (m *memBookings) Cancel(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok || r.Status != models.BookingConfirmed {
		return false, nil
	}
	r.Status = models.BookingCancelled
	return true, nil
}

func (m *memBookings) releaseTicket(ticketID int64) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rows {
		if r.TicketID == ticketID && r.Status == models.BookingConfirmed {
			r.Status = models.BookingCancelled
			n++
		}
	}
	return n
}

func (m *memBookings) ListByPassengerEmail(_ context.Context, email string) ([]models.SeatBooking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.SeatBooking
	for _, r := range m.rows {
		if r.Passenger.Email == utils.NormalizeEmail(email) {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memBookings) countStranded(trainID int64, cfg models.SeatConfig, from time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.rows {
		if r.TrainID != trainID || r.Status != models.BookingConfirmed || utils.BeforeDay(r.BookingDate, from) {
			continue
		}
		if !cfg.IsValidSeatForClass(r.SeatNumber, r.SeatClass) {
			n++
		}
	}
	return n
}

// liveSeats returns confirmed seat numbers across all classes and dates.
func (m *memBookings) liveSeats(trainID int64) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int
	for _, r := range m.rows {
		if r.TrainID == trainID && r.Status == models.BookingConfirmed {
			out = append(out, r.SeatNumber)
		}
	}
	sort.Ints(out)
	return out
}

func (m *memBookings) link(ids []int64, ticketID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		if r, ok := m.rows[id]; ok {
			r.TicketID = ticketID
		}
	}
}

// memTickets is an in-memory TicketStore linked to a memBookings ledger.
type memTickets struct {
	mu        sync.Mutex
	nextID    int64
	rows      map[int64]*models.Ticket
	bookings  *memBookings
	createErr error
	cancelErr error
	refundErr error
}

func newMemTickets(b *memBookings) *memTickets {
	return &memTickets{rows: map[int64]*models.Ticket{}, bookings: b}
}

func (m *memTickets) Create(_ context.Context, t models.Ticket, bookingIDs []int64) (int64, error) {
	m.mu.Lock()
	if m.createErr != nil {
		m.mu.Unlock()
		return 0, m.createErr
	}
	for _, r := range m.rows {
		if r.OrderID == t.OrderID {
			m.mu.Unlock()
			return 0, domain.ConflictError{Resource: "ticket", Code: domain.CodeDuplicateBooking}
		}
	}
	m.nextID++
	t.ID = m.nextID
	m.rows[t.ID] = &t
	m.mu.Unlock()
	m.bookings.link(bookingIDs, t.ID)
	return t.ID, nil
}

func (m *memTickets) GetByID(_ context.Context, id int64) (models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[id]
	if !ok {
		return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Code: domain.CodeTicketNotFound}
	}
	return *r, nil
}

func (m *memTickets) GetByOrderID(_ context.Context, orderID string) (models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.OrderID == orderID {
			return *r, nil
		}
	}
	return models.Ticket{}, domain.NotFoundError{Resource: "ticket", Code: domain.CodeTicketNotFound}
}

func (m *memTickets) ExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	_, err := m.GetByOrderID(ctx, orderID)
	if domain.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

func (m *memTickets) ListByEmail(_ context.Context, email string) ([]models.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Ticket
	for _, r := range m.rows {
		if r.Email == email || r.UserEmail == email {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memTickets) Cancel(_ context.Context, id int64) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancelErr != nil {
		return 0, false, m.cancelErr
	}
	r, ok := m.rows[id]
	if !ok || r.Status != models.TicketConfirmed {
		return 0, false, nil
	}
	r.Status = models.TicketCancelled
	return m.bookings.releaseTicket(id), true, nil
}

func (m *memTickets) UpdateRefund(_ context.Context, id int64, refundID string, status models.RefundStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.refundErr != nil {
		return m.refundErr
	}
	if r, ok := m.rows[id]; ok {
		r.RefundID = refundID
		r.RefundStatus = status
	}
	return nil
}

func (m *memTickets) put(t models.Ticket) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	t.ID = m.nextID
	m.rows[t.ID] = &t
	return t.ID
}

type fakePayments struct {
	verified  bool
	verifyErr error
	delay     time.Duration
	refundID  string
	refundErr error

	mu          sync.Mutex
	refundCalls []int64
}

func (p *fakePayments) VerifyPayment(ctx context.Context, _, _, _ string) (bool, error) {
	if p.delay > 0 {
		select {
		case <-time.After(p.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return p.verified, p.verifyErr
}

func (p *fakePayments) Refund(_ context.Context, _ string, amountMinor int64) (string, error) {
	p.mu.Lock()
	p.refundCalls = append(p.refundCalls, amountMinor)
	p.mu.Unlock()
	if p.refundErr != nil {
		return "", p.refundErr
	}
	return p.refundID, nil
}

type chanPublisher struct {
	events chan models.TicketBookedEvent
	err    error
}

func (p chanPublisher) PublishTicketBooked(_ context.Context, evt models.TicketBookedEvent) error {
	p.events <- evt
	return p.err
}

var errStorage = errors.New("storage unavailable")

var fixedNow = time.Date(2025, 3, 1, 9, 0, 0, 0, time.Local)

var travelDay = time.Date(2025, 3, 10, 0, 0, 0, 0, time.Local)

func testTrain(id int64, cfg models.SeatConfig) models.Train {
	return models.Train{
		ID:                id,
		Name:              "Rajdhani Express",
		Source:            "Delhi",
		Destination:       "Mumbai",
		DepartureTime:     "16:30",
		ArrivalTime:       "08:15",
		IsActive:          true,
		OperationalStatus: models.StatusOperational,
		Configured:        true,
		Seats:             cfg,
	}
}

// cfg10_3_2 is 10 SLEEPER (1-10), 3 AC2 (11-13), 2 AC1 (14-15).
func cfg10_3_2() models.SeatConfig {
	return models.SeatConfig{
		Sleeper: models.ClassAllocation{Seats: 10, Price: 300},
		AC2:     models.ClassAllocation{Seats: 3, Price: 700},
		AC1:     models.ClassAllocation{Seats: 2, Price: 1300},
	}
}

func passenger() models.Passenger {
	return models.Passenger{Name: "Asha Rao", Email: "asha@example.com", Phone: "+91 98765 43210"}
}

type fixture struct {
	trains   *memTrains
	bookings *memBookings
	tickets  *memTickets
	ledger   SeatLedger
	alloc    AllocationService
}

func newFixture(trains ...models.Train) *fixture {
	f := &fixture{trains: newMemTrains(trains...), bookings: newMemBookings()}
	f.trains.bookings = f.bookings
	f.tickets = newMemTickets(f.bookings)
	f.ledger = SeatLedger{Trains: f.trains, Bookings: f.bookings}
	f.alloc = AllocationService{
		Trains: f.trains,
		Ledger: f.ledger,
		Now:    func() time.Time { return fixedNow },
	}
	return f
}

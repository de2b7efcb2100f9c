package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleeperRequest(n int) models.SeatBookingRequest {
	return models.SeatBookingRequest{
		TrainID:       1,
		SeatClass:     models.Sleeper,
		BookingDate:   travelDay,
		NumberOfSeats: n,
		Passenger:     passenger(),
	}
}

func TestBookSeatsAssignsLowestFreeSeats(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))

	res, err := f.alloc.BookSeats(context.Background(), sleeperRequest(3))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, res.SeatNumbers)
	assert.Equal(t, int64(300), res.PricePerSeat)
	assert.Equal(t, int64(900), res.TotalAmount)
	assert.Equal(t, models.FormatPNR(res.BookingIDs[0]), res.PNR)
	assert.Len(t, res.BookingIDs, 3)
	assert.Equal(t, "Rajdhani Express", res.TrainName)
}

func TestBookSeatsStaysInsideClassRange(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	req := sleeperRequest(2)
	req.SeatClass = models.AC1

	res, err := f.alloc.BookSeats(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []int{14, 15}, res.SeatNumbers)
	assert.Equal(t, int64(2600), res.TotalAmount)
}

func TestBookSeatsPreferredSeatTaken(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	ctx := context.Background()
	_, err := f.ledger.Occupy(ctx, 1, 5, models.Sleeper, travelDay, models.Passenger{Name: "Other", Email: "o@example.com"})
	require.NoError(t, err)

	req := sleeperRequest(1)
	req.PreferredSeat = 5
	_, err = f.alloc.BookSeats(ctx, req)

	require.Error(t, err)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, domain.CodeSeatNotAvailable, domain.CodeOf(err))
	assert.Equal(t, []int{5}, f.bookings.liveSeats(1))
}

func TestBookSeatsPreferredSeatOutsideClass(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	req := sleeperRequest(1)
	req.PreferredSeat = 12

	_, err := f.alloc.BookSeats(context.Background(), req)

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, domain.CodeInvalidSeatForClass, domain.CodeOf(err))
	assert.Zero(t, f.bookings.inserts)
}

func TestBookSeatsPreferredFirstThenAutoAssign(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	req := sleeperRequest(3)
	req.PreferredSeat = 7

	res, err := f.alloc.BookSeats(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []int{7, 1, 2}, res.SeatNumbers)
}

func TestBookSpecificSeat(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	ctx := context.Background()

	_, err := f.alloc.BookSpecificSeat(ctx, sleeperRequest(1))
	assert.True(t, domain.IsValidation(err))

	req := sleeperRequest(4)
	req.SeatClass = models.AC2
	req.PreferredSeat = 12
	res, err := f.alloc.BookSpecificSeat(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []int{12}, res.SeatNumbers)
	assert.Equal(t, int64(700), res.TotalAmount)
}

func TestBookSeatsInsufficientSeats(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	req := sleeperRequest(3)
	req.SeatClass = models.AC1

	_, err := f.alloc.BookSeats(context.Background(), req)

	var capErr domain.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Remaining)
	assert.Equal(t, domain.CodeInsufficientSeats, domain.CodeOf(err))
	assert.Zero(t, f.bookings.inserts)
}

func TestBookSeatsTrainUnavailable(t *testing.T) {
	ctx := context.Background()

	maint := testTrain(1, cfg10_3_2())
	maint.OperationalStatus = models.StatusMaintenance
	f := newFixture(maint)
	_, err := f.alloc.BookSeats(ctx, sleeperRequest(1))
	assert.Equal(t, domain.CodeTrainUnavailable, domain.CodeOf(err))

	inactive := testTrain(1, cfg10_3_2())
	inactive.IsActive = false
	f = newFixture(inactive)
	_, err = f.alloc.BookSeats(ctx, sleeperRequest(1))
	assert.Equal(t, domain.CodeTrainUnavailable, domain.CodeOf(err))

	f = newFixture(testTrain(1, cfg10_3_2()))
	require.NoError(t, f.trains.AddInactiveDate(ctx, 1, travelDay))
	_, err = f.alloc.BookSeats(ctx, sleeperRequest(1))
	assert.Equal(t, domain.CodeTrainUnavailable, domain.CodeOf(err))
	assert.Zero(t, f.bookings.inserts)
}

func TestBookSeatsUnknownTrain(t *testing.T) {
	f := newFixture()
	_, err := f.alloc.BookSeats(context.Background(), sleeperRequest(1))
	assert.True(t, domain.IsNotFound(err))
}

func TestBookSeatsValidation(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	ctx := context.Background()

	cases := []struct {
		name  string
		mut   func(*models.SeatBookingRequest)
		field string
	}{
		{"zero seats", func(r *models.SeatBookingRequest) { r.NumberOfSeats = 0 }, "number_of_seats"},
		{"too many seats", func(r *models.SeatBookingRequest) { r.NumberOfSeats = 7 }, "number_of_seats"},
		{"bad class", func(r *models.SeatBookingRequest) { r.SeatClass = 0 }, "seat_class"},
		{"past date", func(r *models.SeatBookingRequest) { r.BookingDate = fixedNow.AddDate(0, 0, -1) }, "booking_date"},
		{"missing name", func(r *models.SeatBookingRequest) { r.Passenger.Name = "  " }, "passenger_name"},
		{"bad email", func(r *models.SeatBookingRequest) { r.Passenger.Email = "not-an-email" }, "passenger_email"},
		{"bad phone", func(r *models.SeatBookingRequest) { r.Passenger.Phone = "call me" }, "passenger_phone"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := sleeperRequest(1)
			tc.mut(&req)
			_, err := f.alloc.BookSeats(ctx, req)
			var vErr domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
	assert.Zero(t, f.bookings.inserts)
}

func TestBookSeatsTodayIsAllowed(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	req := sleeperRequest(1)
	req.BookingDate = fixedNow.Add(3 * time.Hour)

	_, err := f.alloc.BookSeats(context.Background(), req)
	require.NoError(t, err)
}

func TestBookSeatsRetriesPastLostRace(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	f.bookings.steal[1] = true

	res, err := f.alloc.BookSeats(context.Background(), sleeperRequest(1))
	require.NoError(t, err)

	assert.Equal(t, []int{2}, res.SeatNumbers)
	assert.Equal(t, []int{1, 2}, f.bookings.liveSeats(1))
}

func TestBookSeatsGivesUpAfterMaxAttempts(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	f.alloc.MaxAttempts = 3
	f.bookings.conflictAlways = true

	_, err := f.alloc.BookSeats(context.Background(), sleeperRequest(1))

	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, domain.CodeAllocationFailed, domain.CodeOf(err))
	assert.Equal(t, 3, f.bookings.inserts)
}

func TestBookSeatsRollsBackPartialAllocation(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	f.bookings.failOn[3] = errStorage

	_, err := f.alloc.BookSeats(context.Background(), sleeperRequest(3))

	require.Error(t, err)
	assert.True(t, domain.IsInternal(err))
	assert.Empty(t, f.bookings.liveSeats(1))

	delete(f.bookings.failOn, 3)
	res, err := f.alloc.BookSeats(context.Background(), sleeperRequest(3))
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.SeatNumbers)
}

func TestBookSeatsRollbackSurvivesCancelledContext(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	ctx, cancel := context.WithCancel(context.Background())
	f.bookings.failOn[2] = errStorage
	cancel()

	_, err := f.alloc.BookSeats(ctx, sleeperRequest(2))
	require.Error(t, err)
	assert.Empty(t, f.bookings.liveSeats(1))
}

func TestBookSeatsConcurrentRequestsNeverShareSeats(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	f.alloc.MaxAttempts = 20

	const workers = 12
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		seats []int
		full  int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := f.alloc.BookSeats(context.Background(), sleeperRequest(1))
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if domain.IsCapacity(err) {
					full++
				}
				return
			}
			seats = append(seats, res.SeatNumbers...)
		}()
	}
	wg.Wait()

	assert.Len(t, seats, 10)
	assert.Equal(t, workers-10, full)
	seen := map[int]bool{}
	for _, s := range seats {
		assert.False(t, seen[s], "seat %d assigned twice", s)
		assert.True(t, s >= 1 && s <= 10, "seat %d outside SLEEPER range", s)
		seen[s] = true
	}
	assert.Len(t, f.bookings.liveSeats(1), 10)
}

func TestConfirmedRowsMatchSuccessfulAllocationsMinusReleases(t *testing.T) {
	f := newFixture(testTrain(1, cfg10_3_2()))
	ctx := context.Background()

	var ids []int64
	for _, n := range []int{2, 3, 1} {
		res, err := f.alloc.BookSeats(ctx, sleeperRequest(n))
		require.NoError(t, err)
		ids = append(ids, res.BookingIDs...)
	}
	_, err := f.alloc.BookSeats(ctx, sleeperRequest(5))
	require.Error(t, err)

	require.NoError(t, f.ledger.Release(ctx, ids[0]))
	require.NoError(t, f.ledger.Release(ctx, ids[4]))
	require.NoError(t, f.ledger.Release(ctx, ids[4]))

	assert.Len(t, f.bookings.liveSeats(1), len(ids)-2)
}

package repositories

import (
	"context"
	"testing"
	"time"

	"railbook/internal/domain"
	"railbook/internal/domain/models"

	"github.com/DATA-DOG/go-sqlmock"
)

var trainCols = []string{"id", "name", "source", "destination", "departure_time", "arrival_time", "is_active",
	"operational_status", "configured", "sleeper_seats", "ac2_seats", "ac1_seats",
	"sleeper_price", "ac2_price", "ac1_price", "updated_at"}

func TestTrainGetByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM trains WHERE id=\\?").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows(trainCols).
			AddRow(1, "Rajdhani", "Delhi", "Mumbai", "16:55", "08:15", true, "OPERATIONAL", true,
				100, 40, 30, 300, 700, 1300, time.Now()))
	mock.ExpectQuery("FROM trains WHERE id=\\?").WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(trainCols))

	repo := TrainRepo{DB: db}
	tr, err := repo.GetByID(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if !tr.Operational() || tr.Seats.TotalSeats() != 170 || tr.Seats.RangeStart(models.AC1) != 141 {
		t.Fatalf("unexpected train %+v", tr)
	}

	_, err = repo.GetByID(context.Background(), 2)
	if !domain.HasCode(err, domain.CodeTrainNotFound) {
		t.Fatalf("expected TRAIN_NOT_FOUND, got %v", err)
	}
}

func TestTrainUpdateSeatConfigWritesDerivedTotal(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	cfg := models.DefaultSeatConfig(100)
	mock.ExpectExec("UPDATE trains SET").
		WithArgs(50, 20, 30, 100, int64(300), int64(700), int64(1300), int64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := (TrainRepo{DB: db}).UpdateSeatConfig(context.Background(), 4, cfg); err != nil {
		t.Fatalf("UpdateSeatConfig returned error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrainIsInactiveOn(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM train_inactive_dates").WithArgs(int64(1), "2026-12-24").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	inactive, err := TrainRepo{DB: db}.IsInactiveOn(context.Background(), 1, travelDate)
	if err != nil || !inactive {
		t.Fatalf("inactive=%v err=%v", inactive, err)
	}
}

func TestTrainReconfigureSeatsRefusesWhenBookingsWouldStrand(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	cfg := models.SeatConfig{
		Sleeper: models.ClassAllocation{Seats: 10, Price: 1},
		AC2:     models.ClassAllocation{Seats: 0},
		AC1:     models.ClassAllocation{Seats: 5, Price: 1},
	}
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM trains WHERE id=\\? FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seat_bookings").
		WithArgs(int64(1), "2026-12-24",
			"SLEEPER", 1, 10,
			"AC2", 11, 10,
			"AC1", 11, 15).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectRollback()

	n, err := TrainRepo{DB: db}.ReconfigureSeats(context.Background(), 1, cfg, travelDate)
	if err != nil {
		t.Fatalf("ReconfigureSeats returned error: %v", err)
	}
	if n != 2 {
		t.Fatalf("got %d stranded", n)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrainReconfigureSeatsCountsAndUpdatesUnderOneLock(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	cfg := models.SeatConfig{
		Sleeper: models.ClassAllocation{Seats: 12, Price: 500},
		AC2:     models.ClassAllocation{Seats: 6, Price: 700},
		AC1:     models.ClassAllocation{Seats: 4, Price: 1000},
	}
	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM seat_bookings").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectExec("UPDATE trains SET").
		WithArgs(12, 6, 4, 22, int64(500), int64(700), int64(1000), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	n, err := TrainRepo{DB: db}.ReconfigureSeats(context.Background(), 1, cfg, travelDate)
	if err != nil || n != 0 {
		t.Fatalf("ReconfigureSeats: stranded=%d err=%v", n, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTrainReconfigureSeatsUnknownTrain(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock init error: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err = TrainRepo{DB: db}.ReconfigureSeats(context.Background(), 9, models.DefaultSeatConfig(100), travelDate)
	if domain.CodeOf(err) != domain.CodeTrainNotFound {
		t.Fatalf("expected TRAIN_NOT_FOUND, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	intconfig "railbook/internal/config"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// SeatBookingRepo is the seat ledger. Rows are never deleted; release flips
// booking_status to CANCELLED.
type SeatBookingRepo struct {
	DB *sql.DB
}

func (r SeatBookingRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const seatBookingColumns = `id, train_id, seat_number, seat_class, DATE_FORMAT(booking_date, '%Y-%m-%d'),
	passenger_name, passenger_email, passenger_phone, COALESCE(ticket_id, 0), booking_status,
	created_at, updated_at`

func scanSeatBooking(s rowScanner) (models.SeatBooking, error) {
	var (
		b            models.SeatBooking
		class, date  string
		status       string
		created, upd time.Time
	)
	if err := s.Scan(&b.ID, &b.TrainID, &b.SeatNumber, &class, &date,
		&b.Passenger.Name, &b.Passenger.Email, &b.Passenger.Phone, &b.TicketID, &status,
		&created, &upd); err != nil {
		return b, err
	}
	c, err := models.ParseSeatClass(class)
	if err != nil {
		return b, err
	}
	d, err := utils.ParseDate(date)
	if err != nil {
		return b, fmt.Errorf("booking %d date: %w", b.ID, err)
	}
	b.SeatClass = c
	b.BookingDate = d
	b.Status = models.BookingStatus(status)
	b.PNR = models.FormatPNR(b.ID)
	b.CreatedAt = created
	b.UpdatedAt = upd
	return b, nil
}

// Insert occupies a seat. A CONFIRMED row with the same key makes it fail
// with a SEAT_CONFLICT ConflictError. The seat is checked against the
// train's current layout under a share lock on the train row, so a
// concurrent reconfigure cannot strand it.
func (r SeatBookingRepo) Insert(ctx context.Context, b models.SeatBooking) (int64, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin seat insert tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var cfg models.SeatConfig
	err = tx.QueryRowContext(ctx,
		`SELECT sleeper_seats, ac2_seats, ac1_seats FROM trains WHERE id=? LOCK IN SHARE MODE`, b.TrainID).
		Scan(&cfg.Sleeper.Seats, &cfg.AC2.Seats, &cfg.AC1.Seats)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError{Resource: "train", Code: domain.CodeTrainNotFound, Err: err}
	}
	if err != nil {
		return 0, fmt.Errorf("read layout of train %d: %w", b.TrainID, err)
	}
	if !cfg.IsValidSeatForClass(b.SeatNumber, b.SeatClass) {
		return 0, domain.ConflictError{
			Resource: "seat",
			Msg:      fmt.Sprintf("seat %d is no longer part of %s on this train", b.SeatNumber, b.SeatClass),
			Code:     domain.CodeInvalidSeatForClass,
		}
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO seat_bookings
			(train_id, seat_number, seat_class, booking_date, passenger_name, passenger_email,
			 passenger_phone, booking_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 'CONFIRMED', NOW(), NOW())`,
		b.TrainID, b.SeatNumber, b.SeatClass.String(), utils.FormatDate(b.BookingDate),
		b.Passenger.Name, b.Passenger.Email, b.Passenger.Phone)
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{
				Resource: "seat",
				Msg:      fmt.Sprintf("seat %d (%s) is already booked", b.SeatNumber, b.SeatClass),
				Code:     domain.CodeSeatConflict,
				Err:      err,
			}
		}
		return 0, fmt.Errorf("insert seat booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit seat insert: %w", err)
	}
	return id, nil
}

func (r SeatBookingRepo) IsConfirmed(ctx context.Context, trainID int64, seat int, class models.SeatClass, date time.Time) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM seat_bookings
		WHERE train_id=? AND seat_number=? AND seat_class=? AND booking_date=? AND booking_status='CONFIRMED'`,
		trainID, seat, class.String(), utils.FormatDate(date)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check seat: %w", err)
	}
	return n > 0, nil
}

// BookedSeatNumbers returns confirmed seat numbers of one slice, ascending.
func (r SeatBookingRepo) BookedSeatNumbers(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) ([]int, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT seat_number FROM seat_bookings
		WHERE train_id=? AND seat_class=? AND booking_date=? AND booking_status='CONFIRMED'
		ORDER BY seat_number ASC`,
		trainID, class.String(), utils.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("list booked seats: %w", err)
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r SeatBookingRepo) CountBooked(ctx context.Context, trainID int64, class models.SeatClass, date time.Time) (int, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `
		SELECT COUNT(*) FROM seat_bookings
		WHERE train_id=? AND seat_class=? AND booking_date=? AND booking_status='CONFIRMED'`,
		trainID, class.String(), utils.FormatDate(date)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count booked seats: %w", err)
	}
	return n, nil
}

func (r SeatBookingRepo) CountBookedByClass(ctx context.Context, trainID int64, date time.Time) (map[models.SeatClass]int, error) {
	rows, err := r.db().QueryContext(ctx, `
		SELECT seat_class, COUNT(*) FROM seat_bookings
		WHERE train_id=? AND booking_date=? AND booking_status='CONFIRMED'
		GROUP BY seat_class`,
		trainID, utils.FormatDate(date))
	if err != nil {
		return nil, fmt.Errorf("count booked by class: %w", err)
	}
	defer rows.Close()

	out := map[models.SeatClass]int{}
	for rows.Next() {
		var (
			class string
			n     int
		)
		if err := rows.Scan(&class, &n); err != nil {
			return nil, err
		}
		c, err := models.ParseSeatClass(class)
		if err != nil {
			return nil, err
		}
		out[c] = n
	}
	return out, rows.Err()
}

func (r SeatBookingRepo) GetByID(ctx context.Context, id int64) (models.SeatBooking, error) {
	row := r.db().QueryRowContext(ctx, `SELECT `+seatBookingColumns+` FROM seat_bookings WHERE id=?`, id)
	b, err := scanSeatBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return b, domain.NotFoundError{Resource: "seat booking", Code: domain.CodeBookingNotFound, Err: err}
	}
	if err != nil {
		return b, fmt.Errorf("get seat booking %d: %w", id, err)
	}
	return b, nil
}

// Cancel releases one row and reports whether its status changed.
func (r SeatBookingRepo) Cancel(ctx context.Context, id int64) (bool, error) {
	res, err := r.db().ExecContext(ctx, `
		UPDATE seat_bookings SET booking_status='CANCELLED', updated_at=NOW()
		WHERE id=? AND booking_status<>'CANCELLED'`, id)
	if err != nil {
		return false, fmt.Errorf("cancel seat booking %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByPassengerEmail returns a passenger's history, newest first.
func (r SeatBookingRepo) ListByPassengerEmail(ctx context.Context, email string) ([]models.SeatBooking, error) {
	return r.list(ctx, `SELECT `+seatBookingColumns+` FROM seat_bookings WHERE passenger_email=? ORDER BY created_at DESC, id DESC`,
		utils.NormalizeEmail(email))
}

func (r SeatBookingRepo) list(ctx context.Context, query string, args ...any) ([]models.SeatBooking, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list seat bookings: %w", err)
	}
	defer rows.Close()

	out := []models.SeatBooking{}
	for rows.Next() {
		b, err := scanSeatBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seat booking: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "railbook/internal/config"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

type TicketRepo struct {
	DB *sql.DB
}

func (r TicketRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const ticketColumns = `id, ticket_number, order_id, payment_id, user_email, train_id, train_name,
	source, destination, departure_time, full_name, age, email, phone,
	DATE_FORMAT(booking_date, '%Y-%m-%d'), seat_class, pnr, price_per_seat, amount, total_amount,
	status, refund_id, refund_status, created_at, updated_at`

func scanTicket(s rowScanner) (models.Ticket, error) {
	var (
		t                    models.Ticket
		date, class          string
		status, refundStatus string
	)
	if err := s.Scan(&t.ID, &t.TicketNumber, &t.OrderID, &t.PaymentID, &t.UserEmail, &t.TrainID, &t.TrainName,
		&t.Source, &t.Destination, &t.DepartureTime, &t.FullName, &t.Age, &t.Email, &t.Phone,
		&date, &class, &t.PNR, &t.PricePerSeat, &t.Amount, &t.TotalAmount,
		&status, &t.RefundID, &refundStatus, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return t, err
	}
	c, err := models.ParseSeatClass(class)
	if err != nil {
		return t, err
	}
	d, err := utils.ParseDate(date)
	if err != nil {
		return t, fmt.Errorf("ticket %d date: %w", t.ID, err)
	}
	t.SeatClass = c
	t.BookingDate = d
	t.Status = models.TicketStatus(status)
	t.RefundStatus = models.RefundStatus(refundStatus)
	return t, nil
}

// Create inserts the ticket and links its ledger rows in one transaction.
// A second ticket for the same order fails with DUPLICATE_BOOKING.
func (r TicketRepo) Create(ctx context.Context, t models.Ticket, bookingIDs []int64) (int64, error) {
	if len(bookingIDs) == 0 {
		return 0, domain.ValidationError{Field: "seats", Msg: "ticket has no seats"}
	}
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ticket tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO tickets
			(ticket_number, order_id, payment_id, user_email, train_id, train_name, source, destination,
			 departure_time, full_name, age, email, phone, booking_date, seat_class, pnr,
			 price_per_seat, amount, total_amount, status, refund_id, refund_status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', '', NOW(), NOW())`,
		t.TicketNumber, t.OrderID, t.PaymentID, t.UserEmail, t.TrainID, t.TrainName, t.Source, t.Destination,
		t.DepartureTime, t.FullName, t.Age, t.Email, t.Phone, utils.FormatDate(t.BookingDate), t.SeatClass.String(), t.PNR,
		t.PricePerSeat, t.Amount, t.TotalAmount, string(t.Status))
	if err != nil {
		if isDuplicateKey(err) {
			return 0, domain.ConflictError{
				Resource: "ticket",
				Msg:      fmt.Sprintf("a ticket already exists for order %s", t.OrderID),
				Code:     domain.CodeDuplicateBooking,
				Err:      err,
			}
		}
		return 0, fmt.Errorf("insert ticket: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(bookingIDs)), ",")
	args := make([]any, 0, len(bookingIDs)+1)
	args = append(args, id)
	for _, b := range bookingIDs {
		args = append(args, b)
	}
	linked, err := tx.ExecContext(ctx,
		`UPDATE seat_bookings SET ticket_id=?, updated_at=NOW() WHERE id IN (`+placeholders+`) AND booking_status='CONFIRMED'`,
		args...)
	if err != nil {
		return 0, fmt.Errorf("link seats to ticket: %w", err)
	}
	if n, err := linked.RowsAffected(); err == nil && n != int64(len(bookingIDs)) {
		return 0, domain.ConflictError{Resource: "ticket", Msg: "seat bookings changed before the ticket was saved"}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ticket: %w", err)
	}
	return id, nil
}

func (r TicketRepo) GetByID(ctx context.Context, id int64) (models.Ticket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=?`, id)
}

func (r TicketRepo) GetByOrderID(ctx context.Context, orderID string) (models.Ticket, error) {
	return r.getOne(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE order_id=?`, strings.TrimSpace(orderID))
}

func (r TicketRepo) getOne(ctx context.Context, query string, arg any) (models.Ticket, error) {
	t, err := scanTicket(r.db().QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.NotFoundError{Resource: "ticket", Code: domain.CodeTicketNotFound, Err: err}
	}
	if err != nil {
		return t, fmt.Errorf("get ticket: %w", err)
	}
	if t.SeatNumbers, err = r.seatNumbers(ctx, t.ID); err != nil {
		return t, err
	}
	return t, nil
}

func (r TicketRepo) ExistsByOrderID(ctx context.Context, orderID string) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM tickets WHERE order_id=?`, strings.TrimSpace(orderID)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check order %s: %w", orderID, err)
	}
	return n > 0, nil
}

// ListByEmail matches either the passenger or the account email, newest first.
func (r TicketRepo) ListByEmail(ctx context.Context, email string) ([]models.Ticket, error) {
	email = utils.NormalizeEmail(email)
	rows, err := r.db().QueryContext(ctx,
		`SELECT `+ticketColumns+` FROM tickets WHERE email=? OR user_email=? ORDER BY created_at DESC, id DESC`,
		email, email)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	out := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan ticket: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	for i := range out {
		if out[i].SeatNumbers, err = r.seatNumbers(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// seatNumbers keeps cancelled rows so a cancelled ticket still shows its seats.
func (r TicketRepo) seatNumbers(ctx context.Context, ticketID int64) ([]int, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT seat_number FROM seat_bookings WHERE ticket_id=? ORDER BY seat_number ASC`, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket seats: %w", err)
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

// Cancel moves a CONFIRMED ticket to CANCELLED and releases its ledger rows
// in one transaction. changed is false when the ticket was not CONFIRMED;
// nothing is written in that case.
func (r TicketRepo) Cancel(ctx context.Context, id int64) (released int64, changed bool, err error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return 0, false, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE tickets SET status='CANCELLED', updated_at=NOW() WHERE id=? AND status='CONFIRMED'`, id)
	if err != nil {
		return 0, false, fmt.Errorf("cancel ticket %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, false, err
	}
	if n == 0 {
		return 0, false, nil
	}

	seats, err := tx.ExecContext(ctx, `
		UPDATE seat_bookings SET booking_status='CANCELLED', updated_at=NOW()
		WHERE ticket_id=? AND booking_status<>'CANCELLED'`, id)
	if err != nil {
		return 0, false, fmt.Errorf("release seats of ticket %d: %w", id, err)
	}
	released, err = seats.RowsAffected()
	if err != nil {
		return 0, false, err
	}

	if err := tx.Commit(); err != nil {
		return 0, false, fmt.Errorf("commit cancel: %w", err)
	}
	return released, true, nil
}

func (r TicketRepo) UpdateRefund(ctx context.Context, id int64, refundID string, status models.RefundStatus) error {
	_, err := r.db().ExecContext(ctx,
		`UPDATE tickets SET refund_id=?, refund_status=?, updated_at=NOW() WHERE id=?`, refundID, string(status), id)
	if err != nil {
		return fmt.Errorf("update refund of ticket %d: %w", id, err)
	}
	return nil
}

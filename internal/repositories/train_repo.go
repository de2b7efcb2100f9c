package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	intconfig "railbook/internal/config"
	"railbook/internal/domain"
	"railbook/internal/domain/models"
	"railbook/internal/utils"
)

type TrainRepo struct {
	DB *sql.DB
}

func (r TrainRepo) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

const trainColumns = `id, name, source, destination, departure_time, arrival_time, is_active,
	operational_status, configured, sleeper_seats, ac2_seats, ac1_seats,
	sleeper_price, ac2_price, ac1_price, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrain(s rowScanner) (models.Train, error) {
	var (
		t      models.Train
		status string
	)
	err := s.Scan(&t.ID, &t.Name, &t.Source, &t.Destination, &t.DepartureTime, &t.ArrivalTime,
		&t.IsActive, &status, &t.Configured,
		&t.Seats.Sleeper.Seats, &t.Seats.AC2.Seats, &t.Seats.AC1.Seats,
		&t.Seats.Sleeper.Price, &t.Seats.AC2.Price, &t.Seats.AC1.Price, &t.UpdatedAt)
	t.OperationalStatus = models.OperationalStatus(status)
	return t, err
}

func (r TrainRepo) GetByID(ctx context.Context, id int64) (models.Train, error) {
	if id <= 0 {
		return models.Train{}, domain.ValidationError{Field: "train_id", Msg: "invalid id"}
	}
	row := r.db().QueryRowContext(ctx, `SELECT `+trainColumns+` FROM trains WHERE id=?`, id)
	t, err := scanTrain(row)
	if errors.Is(err, sql.ErrNoRows) {
		return t, domain.NotFoundError{Resource: "train", Code: domain.CodeTrainNotFound, Err: err}
	}
	if err != nil {
		return t, fmt.Errorf("get train %d: %w", id, err)
	}
	return t, nil
}

func (r TrainRepo) List(ctx context.Context) ([]models.Train, error) {
	return r.list(ctx, `SELECT `+trainColumns+` FROM trains ORDER BY id ASC`)
}

// ListUnconfigured returns trains whose seat layout was never set.
func (r TrainRepo) ListUnconfigured(ctx context.Context) ([]models.Train, error) {
	return r.list(ctx, `SELECT `+trainColumns+` FROM trains WHERE configured=0 ORDER BY id ASC`)
}

func (r TrainRepo) list(ctx context.Context, query string) ([]models.Train, error) {
	rows, err := r.db().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trains: %w", err)
	}
	defer rows.Close()

	out := []models.Train{}
	for rows.Next() {
		t, err := scanTrain(rows)
		if err != nil {
			return nil, fmt.Errorf("scan train: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UpdateSeatConfig writes counts, prices and the derived total in one statement.
func (r TrainRepo) UpdateSeatConfig(ctx context.Context, id int64, cfg models.SeatConfig) error {
	return updateSeatConfig(ctx, r.db(), id, cfg)
}

func updateSeatConfig(ctx context.Context, e execer, id int64, cfg models.SeatConfig) error {
	_, err := e.ExecContext(ctx, `
		UPDATE trains SET
			sleeper_seats=?, ac2_seats=?, ac1_seats=?, total_seats=?,
			sleeper_price=?, ac2_price=?, ac1_price=?, configured=1, updated_at=NOW()
		WHERE id=?`,
		cfg.Sleeper.Seats, cfg.AC2.Seats, cfg.AC1.Seats, cfg.TotalSeats(),
		cfg.Sleeper.Price, cfg.AC2.Price, cfg.AC1.Price, id)
	if err != nil {
		return fmt.Errorf("update seat config of train %d: %w", id, err)
	}
	return nil
}

// ReconfigureSeats applies cfg unless a confirmed booking dated on or after
// from would fall outside its class range. The train row stays locked from
// the count to the commit; seat inserts read it in share mode, so no booking
// can land between the two. A positive stranded count means nothing was
// written.
func (r TrainRepo) ReconfigureSeats(ctx context.Context, id int64, cfg models.SeatConfig, from time.Time) (stranded int, err error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin reconfigure tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT id FROM trains WHERE id=? FOR UPDATE`, id).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.NotFoundError{Resource: "train", Code: domain.CodeTrainNotFound, Err: err}
	}
	if err != nil {
		return 0, fmt.Errorf("lock train %d: %w", id, err)
	}

	stranded, err = countStranded(ctx, tx, id, cfg, from)
	if err != nil {
		return 0, err
	}
	if stranded > 0 {
		return stranded, nil
	}
	if err := updateSeatConfig(ctx, tx, id, cfg); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit reconfigure: %w", err)
	}
	return 0, nil
}

// countStranded counts confirmed bookings dated on or after from whose seat
// number falls outside its class range under cfg.
func countStranded(ctx context.Context, q queryRower, trainID int64, cfg models.SeatConfig, from time.Time) (int, error) {
	clauses := make([]string, 0, len(models.SeatClasses))
	args := []any{trainID, utils.FormatDate(from)}
	for _, rg := range cfg.Ranges() {
		clauses = append(clauses, "(seat_class=? AND (seat_number<? OR seat_number>?))")
		args = append(args, rg.Class.String(), rg.Start, rg.End)
	}
	query := `
		SELECT COUNT(*) FROM seat_bookings
		WHERE train_id=? AND booking_date>=? AND booking_status='CONFIRMED'
		  AND (` + strings.Join(clauses, " OR ") + `)`

	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count stranded bookings: %w", err)
	}
	return n, nil
}

func (r TrainRepo) SetActive(ctx context.Context, id int64, active bool) error {
	if _, err := r.db().ExecContext(ctx, `UPDATE trains SET is_active=?, updated_at=NOW() WHERE id=?`, active, id); err != nil {
		return fmt.Errorf("set active on train %d: %w", id, err)
	}
	return nil
}

func (r TrainRepo) SetOperationalStatus(ctx context.Context, id int64, status models.OperationalStatus) error {
	if _, err := r.db().ExecContext(ctx, `UPDATE trains SET operational_status=?, updated_at=NOW() WHERE id=?`, string(status), id); err != nil {
		return fmt.Errorf("set status on train %d: %w", id, err)
	}
	return nil
}

func (r TrainRepo) IsInactiveOn(ctx context.Context, id int64, date time.Time) (bool, error) {
	var n int
	err := r.db().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM train_inactive_dates WHERE train_id=? AND inactive_date=?`,
		id, utils.FormatDate(date)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check inactive date: %w", err)
	}
	return n > 0, nil
}

func (r TrainRepo) AddInactiveDate(ctx context.Context, id int64, date time.Time) error {
	_, err := r.db().ExecContext(ctx,
		`INSERT IGNORE INTO train_inactive_dates (train_id, inactive_date) VALUES (?, ?)`,
		id, utils.FormatDate(date))
	if err != nil {
		return fmt.Errorf("add inactive date: %w", err)
	}
	return nil
}

func (r TrainRepo) RemoveInactiveDate(ctx context.Context, id int64, date time.Time) error {
	_, err := r.db().ExecContext(ctx,
		`DELETE FROM train_inactive_dates WHERE train_id=? AND inactive_date=?`,
		id, utils.FormatDate(date))
	if err != nil {
		return fmt.Errorf("remove inactive date: %w", err)
	}
	return nil
}

func (r TrainRepo) ListInactiveDates(ctx context.Context, id int64) ([]string, error) {
	rows, err := r.db().QueryContext(ctx,
		`SELECT DATE_FORMAT(inactive_date, '%Y-%m-%d') FROM train_inactive_dates WHERE train_id=? ORDER BY inactive_date ASC`, id)
	if err != nil {
		return nil, fmt.Errorf("list inactive dates: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

package db

import (
	"context"
	"database/sql"
	"fmt"
)

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Tables lists every table the service owns, in creation order.
var Tables = []string{"trains", "train_inactive_dates", "seat_bookings", "tickets"}

// seat_bookings.active_slot is 1 for CONFIRMED rows and NULL otherwise, so the
// unique key only binds live occupations and a released seat can be sold again.
var ddl = []string{`
CREATE TABLE IF NOT EXISTS trains (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	name VARCHAR(150) NOT NULL,
	source VARCHAR(100) NOT NULL,
	destination VARCHAR(100) NOT NULL,
	departure_time VARCHAR(20) NOT NULL DEFAULT '',
	arrival_time VARCHAR(20) NOT NULL DEFAULT '',
	is_active TINYINT(1) NOT NULL DEFAULT 1,
	operational_status VARCHAR(20) NOT NULL DEFAULT 'OPERATIONAL',
	configured TINYINT(1) NOT NULL DEFAULT 0,
	sleeper_seats INT NOT NULL DEFAULT 0,
	ac2_seats INT NOT NULL DEFAULT 0,
	ac1_seats INT NOT NULL DEFAULT 0,
	total_seats INT NOT NULL DEFAULT 0,
	sleeper_price BIGINT NOT NULL DEFAULT 0,
	ac2_price BIGINT NOT NULL DEFAULT 0,
	ac1_price BIGINT NOT NULL DEFAULT 0,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, `
CREATE TABLE IF NOT EXISTS train_inactive_dates (
	train_id BIGINT NOT NULL,
	inactive_date DATE NOT NULL,
	PRIMARY KEY (train_id, inactive_date)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, `
CREATE TABLE IF NOT EXISTS seat_bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	train_id BIGINT NOT NULL,
	seat_number INT NOT NULL,
	seat_class VARCHAR(10) NOT NULL,
	booking_date DATE NOT NULL,
	passenger_name VARCHAR(100) NOT NULL,
	passenger_email VARCHAR(150) NOT NULL,
	passenger_phone VARCHAR(30) NOT NULL DEFAULT '',
	ticket_id BIGINT NULL,
	booking_status VARCHAR(20) NOT NULL DEFAULT 'CONFIRMED',
	active_slot TINYINT AS (CASE WHEN booking_status = 'CONFIRMED' THEN 1 ELSE NULL END) STORED,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_active_seat (train_id, seat_number, seat_class, booking_date, active_slot),
	KEY idx_slice (train_id, seat_class, booking_date, booking_status),
	KEY idx_ticket (ticket_id),
	KEY idx_passenger_email (passenger_email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`, `
CREATE TABLE IF NOT EXISTS tickets (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	ticket_number VARCHAR(20) NOT NULL,
	order_id VARCHAR(100) NOT NULL,
	payment_id VARCHAR(100) NOT NULL DEFAULT '',
	user_email VARCHAR(150) NOT NULL DEFAULT '',
	train_id BIGINT NOT NULL,
	train_name VARCHAR(150) NOT NULL,
	source VARCHAR(100) NOT NULL,
	destination VARCHAR(100) NOT NULL,
	departure_time VARCHAR(20) NOT NULL DEFAULT '',
	full_name VARCHAR(100) NOT NULL,
	age INT NOT NULL DEFAULT 0,
	email VARCHAR(150) NOT NULL,
	phone VARCHAR(30) NOT NULL DEFAULT '',
	booking_date DATE NOT NULL,
	seat_class VARCHAR(10) NOT NULL,
	pnr VARCHAR(20) NOT NULL,
	price_per_seat BIGINT NOT NULL,
	amount BIGINT NOT NULL,
	total_amount BIGINT NOT NULL,
	status VARCHAR(20) NOT NULL,
	refund_id VARCHAR(100) NOT NULL DEFAULT '',
	refund_status VARCHAR(20) NOT NULL DEFAULT '',
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_order (order_id),
	UNIQUE KEY uniq_ticket_number (ticket_number),
	KEY idx_email (email),
	KEY idx_user_email (user_email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

// Migrate creates missing tables. Existing tables are left untouched.
func Migrate(ctx context.Context, e Execer) error {
	for i, stmt := range ddl {
		if _, err := e.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create table %s: %w", Tables[i], err)
		}
	}
	return nil
}

// HasTable reports whether table exists in the current schema.
func HasTable(ctx context.Context, q QueryRower, table string) (bool, error) {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name.Valid && name.String != "", nil
}

// MissingTables returns the owned tables that do not exist yet.
func MissingTables(ctx context.Context, q QueryRower) ([]string, error) {
	missing := []string{}
	for _, t := range Tables {
		ok, err := HasTable(ctx, q, t)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, t)
		}
	}
	return missing, nil
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NullIfEmpty helps store optional strings as NULL.
func NullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// HasTable reports whether table exists in the current schema. Any query
// failure is treated as absence.
func HasTable(ctx context.Context, q QueryRower, table string) bool {
	var name sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = DATABASE()
		  AND table_name = ?
		LIMIT 1
	`, table).Scan(&name)
	if err != nil {
		return false
	}
	return name.Valid && name.String != ""
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}

// WithTx runs fn in a transaction, rolling back on error or panic.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var schema = map[string]string{
	"bookings": `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	booking_id VARCHAR(20) NOT NULL,
	service_type VARCHAR(50) NOT NULL,
	vehicle_type VARCHAR(50) NOT NULL DEFAULT 'standard',
	pickup_location VARCHAR(200) NOT NULL,
	dropoff_location VARCHAR(200) NOT NULL,
	pickup_date DATE NOT NULL,
	pickup_time TIME NOT NULL,
	passengers INT NOT NULL,
	first_name VARCHAR(50) NOT NULL,
	last_name VARCHAR(50) NULL,
	email VARCHAR(120) NOT NULL,
	phone VARCHAR(20) NOT NULL,
	special_requests TEXT NULL,
	return_trip TINYINT(1) NOT NULL DEFAULT 0,
	waiting_time TINYINT(1) NOT NULL DEFAULT 0,
	meet_greet TINYINT(1) NOT NULL DEFAULT 0,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	estimated_price DECIMAL(10,2) NOT NULL DEFAULT 0,
	final_price DECIMAL(10,2) NULL,
	created_at DATETIME(6) NOT NULL,
	updated_at DATETIME(6) NOT NULL,
	admin_notes TEXT NULL,
	driver_assigned VARCHAR(100) NULL,
	UNIQUE KEY uniq_booking_code (booking_id),
	KEY idx_status_created (status, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
	"users": `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	username VARCHAR(80) NOT NULL,
	email VARCHAR(120) NOT NULL,
	password_hash VARCHAR(128) NOT NULL,
	is_admin TINYINT(1) NOT NULL DEFAULT 0,
	created_at DATETIME(6) NOT NULL,
	UNIQUE KEY uniq_username (username),
	UNIQUE KEY uniq_email (email)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci;
`,
}

// EnsureSchema creates the bookings and users tables when missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, table := range []string{"bookings", "users"} {
		if HasTable(ctx, db, table) {
			continue
		}
		if _, err := db.ExecContext(ctx, schema[table]); err != nil {
			return fmt.Errorf("create table %s: %w", table, err)
		}
	}
	return nil
}

package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	intdb "ridebooking/internal/db"
	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
	"ridebooking/internal/utils"
)

const bookingColumns = `
	id, booking_id, service_type, vehicle_type,
	pickup_location, dropoff_location, pickup_date, pickup_time, passengers,
	first_name, COALESCE(last_name, ''), email, phone, COALESCE(special_requests, ''),
	return_trip, waiting_time, meet_greet,
	status, estimated_price, final_price, created_at, updated_at,
	COALESCE(admin_notes, ''), COALESCE(driver_assigned, '')`

// BookingRepo is the MySQL booking store.
type BookingRepo struct {
	DB *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var (
		b          models.Booking
		pickupDate time.Time
		pickupTime string
		status     string
		finalPrice sql.NullFloat64
	)
	err := row.Scan(
		&b.ID,
		&b.BookingID,
		&b.ServiceType,
		&b.VehicleType,
		&b.PickupLocation,
		&b.DropoffLocation,
		&pickupDate,
		&pickupTime,
		&b.Passengers,
		&b.FirstName,
		&b.LastName,
		&b.Email,
		&b.Phone,
		&b.SpecialRequests,
		&b.ReturnTrip,
		&b.WaitingTime,
		&b.MeetGreet,
		&status,
		&b.EstimatedPrice,
		&finalPrice,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.AdminNotes,
		&b.DriverAssigned,
	)
	if err != nil {
		return models.Booking{}, err
	}
	b.PickupDate = utils.FormatDate(pickupDate)
	b.PickupTime = utils.ClockHM(pickupTime)
	b.Status = models.BookingStatus(status)
	if finalPrice.Valid {
		v := finalPrice.Float64
		b.FinalPrice = &v
	}
	b.CreatedAt = b.CreatedAt.UTC()
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// Create inserts b in one transaction and fills b.ID. A duplicate booking
// code yields domain.ConflictError.
func (r BookingRepo) Create(ctx context.Context, b *models.Booking) error {
	err := intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			INSERT INTO bookings (
				booking_id, service_type, vehicle_type,
				pickup_location, dropoff_location, pickup_date, pickup_time, passengers,
				first_name, last_name, email, phone, special_requests,
				return_trip, waiting_time, meet_greet,
				status, estimated_price, final_price, created_at, updated_at,
				admin_notes, driver_assigned
			) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			b.BookingID, b.ServiceType, b.VehicleType,
			b.PickupLocation, b.DropoffLocation, b.PickupDate, b.PickupTime, b.Passengers,
			b.FirstName, intdb.NullIfEmpty(b.LastName), b.Email, b.Phone, intdb.NullIfEmpty(b.SpecialRequests),
			b.ReturnTrip, b.WaitingTime, b.MeetGreet,
			string(b.Status), b.EstimatedPrice, nullFloat(b.FinalPrice), b.CreatedAt, b.UpdatedAt,
			intdb.NullIfEmpty(b.AdminNotes), intdb.NullIfEmpty(b.DriverAssigned),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		b.ID = id
		return nil
	})
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return domain.ConflictError{Resource: "booking", Msg: "booking_id already exists", Err: err}
		}
		return domain.PersistenceError{Op: "create booking", Err: err}
	}
	return nil
}

// GetByCode fetches a booking by its public booking_id.
func (r BookingRepo) GetByCode(ctx context.Context, code string) (models.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=? LIMIT 1`, code)
	b, err := scanBooking(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: code, Err: err}
		}
		return models.Booking{}, domain.PersistenceError{Op: "load booking", Err: err}
	}
	return b, nil
}

// List returns one page ordered newest first plus the total match count.
func (r BookingRepo) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	where := ""
	args := []any{}
	if f.Status != "" {
		where = " WHERE status=?"
		args = append(args, string(f.Status))
	}

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings`+where, args...).Scan(&total); err != nil {
		return nil, 0, domain.PersistenceError{Op: "count bookings", Err: err}
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := r.DB.QueryContext(ctx, query, append(args, p.PerPage, p.Offset())...)
	if err != nil {
		return nil, 0, domain.PersistenceError{Op: "list bookings", Err: err}
	}
	defer rows.Close()

	out := []models.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, 0, domain.PersistenceError{Op: "list bookings", Err: err}
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, domain.PersistenceError{Op: "list bookings", Err: err}
	}
	return out, total, nil
}

// Update locks the row, lets check veto the change, then writes the present
// fields and updated_at in the same transaction.
func (r BookingRepo) Update(ctx context.Context, code string, upd models.BookingUpdate, now time.Time, check func(current models.Booking) error) (models.Booking, error) {
	var updated models.Booking
	err := intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE booking_id=? LIMIT 1 FOR UPDATE`, code)
		current, err := scanBooking(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.NotFoundError{Resource: "booking", Key: code, Err: err}
			}
			return err
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}

		sets := []string{}
		args := []any{}
		if upd.Status != nil {
			sets = append(sets, "status=?")
			args = append(args, string(*upd.Status))
		}
		if upd.FinalPrice != nil {
			sets = append(sets, "final_price=?")
			args = append(args, *upd.FinalPrice)
		}
		if upd.AdminNotes != nil {
			sets = append(sets, "admin_notes=?")
			args = append(args, *upd.AdminNotes)
		}
		if upd.DriverAssigned != nil {
			sets = append(sets, "driver_assigned=?")
			args = append(args, *upd.DriverAssigned)
		}
		sets = append(sets, "updated_at=?")
		args = append(args, now, current.ID)

		if _, err := tx.ExecContext(ctx, `UPDATE bookings SET `+strings.Join(sets, ",")+` WHERE id=?`, args...); err != nil {
			return err
		}

		upd.Apply(&current, now)
		updated = current
		return nil
	})
	if err != nil {
		if domain.IsNotFound(err) || domain.IsValidation(err) {
			return models.Booking{}, err
		}
		return models.Booking{}, domain.PersistenceError{Op: "update booking", Err: err}
	}
	return updated, nil
}

// Delete removes the booking permanently.
func (r BookingRepo) Delete(ctx context.Context, code string) error {
	err := intdb.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE booking_id=?`, code)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.NotFoundError{Resource: "booking", Key: code}
		}
		return nil
	})
	if err != nil {
		if domain.IsNotFound(err) {
			return err
		}
		return domain.PersistenceError{Op: "delete booking", Err: err}
	}
	return nil
}

// Stats aggregates status counts and completed revenue in one query.
func (r BookingRepo) Stats(ctx context.Context) (models.BookingStats, error) {
	var (
		s       models.BookingStats
		revenue sql.NullFloat64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status='pending' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status='confirmed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status='completed' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status='cancelled' THEN 1 ELSE 0 END), 0),
			SUM(CASE WHEN status='completed' THEN final_price ELSE NULL END)
		FROM bookings`).Scan(&s.Total, &s.Pending, &s.Confirmed, &s.Completed, &s.Cancelled, &revenue)
	if err != nil {
		return models.BookingStats{}, domain.PersistenceError{Op: "compute stats", Err: err}
	}
	if revenue.Valid {
		s.Revenue = utils.RoundMoney(revenue.Float64)
	}
	return s, nil
}

func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

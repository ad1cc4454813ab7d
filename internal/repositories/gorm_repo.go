package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
	"ridebooking/internal/utils"
)

type bookingRecord struct {
	ID              int64     `gorm:"primaryKey;autoIncrement"`
	BookingID       string    `gorm:"size:20;not null;uniqueIndex"`
	ServiceType     string    `gorm:"size:50;not null"`
	VehicleType     string    `gorm:"size:50;not null;default:standard"`
	PickupLocation  string    `gorm:"size:200;not null"`
	DropoffLocation string    `gorm:"size:200;not null"`
	PickupDate      time.Time `gorm:"type:date;not null"`
	PickupTime      string    `gorm:"size:5;not null"`
	Passengers      int       `gorm:"not null"`
	FirstName       string    `gorm:"size:50;not null"`
	LastName        string    `gorm:"size:50"`
	Email           string    `gorm:"size:120;not null"`
	Phone           string    `gorm:"size:20;not null"`
	SpecialRequests string    `gorm:"type:text"`
	ReturnTrip      bool      `gorm:"not null;default:false"`
	WaitingTime     bool      `gorm:"not null;default:false"`
	MeetGreet       bool      `gorm:"not null;default:false"`
	Status          string    `gorm:"size:20;not null;default:pending;index:idx_status_created,priority:1"`
	EstimatedPrice  float64   `gorm:"type:numeric(10,2);not null"`
	FinalPrice      *float64  `gorm:"type:numeric(10,2)"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime:false;index:idx_status_created,priority:2"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime:false"`
	AdminNotes      string    `gorm:"type:text"`
	DriverAssigned  string    `gorm:"size:100"`
}

func (bookingRecord) TableName() string { return "bookings" }

func toBookingRecord(b models.Booking) (bookingRecord, error) {
	date, err := utils.ParseDate(b.PickupDate)
	if err != nil {
		return bookingRecord{}, err
	}
	return bookingRecord{
		ID:              b.ID,
		BookingID:       b.BookingID,
		ServiceType:     b.ServiceType,
		VehicleType:     b.VehicleType,
		PickupLocation:  b.PickupLocation,
		DropoffLocation: b.DropoffLocation,
		PickupDate:      date,
		PickupTime:      b.PickupTime,
		Passengers:      b.Passengers,
		FirstName:       b.FirstName,
		LastName:        b.LastName,
		Email:           b.Email,
		Phone:           b.Phone,
		SpecialRequests: b.SpecialRequests,
		ReturnTrip:      b.ReturnTrip,
		WaitingTime:     b.WaitingTime,
		MeetGreet:       b.MeetGreet,
		Status:          string(b.Status),
		EstimatedPrice:  b.EstimatedPrice,
		FinalPrice:      b.FinalPrice,
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
		AdminNotes:      b.AdminNotes,
		DriverAssigned:  b.DriverAssigned,
	}, nil
}

func (r bookingRecord) toModel() models.Booking {
	return models.Booking{
		ID:              r.ID,
		BookingID:       r.BookingID,
		ServiceType:     r.ServiceType,
		VehicleType:     r.VehicleType,
		PickupLocation:  r.PickupLocation,
		DropoffLocation: r.DropoffLocation,
		PickupDate:      utils.FormatDate(r.PickupDate),
		PickupTime:      utils.ClockHM(r.PickupTime),
		Passengers:      r.Passengers,
		FirstName:       r.FirstName,
		LastName:        r.LastName,
		Email:           r.Email,
		Phone:           r.Phone,
		SpecialRequests: r.SpecialRequests,
		ReturnTrip:      r.ReturnTrip,
		WaitingTime:     r.WaitingTime,
		MeetGreet:       r.MeetGreet,
		Status:          models.BookingStatus(r.Status),
		EstimatedPrice:  r.EstimatedPrice,
		FinalPrice:      r.FinalPrice,
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
		AdminNotes:      r.AdminNotes,
		DriverAssigned:  r.DriverAssigned,
	}
}

type userRecord struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"size:80;not null;uniqueIndex"`
	Email        string    `gorm:"size:120;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:128;not null"`
	IsAdmin      bool      `gorm:"not null;default:false"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userRecord) TableName() string { return "users" }

func (r userRecord) toModel() models.User {
	return models.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

// AutoMigrate creates or updates the bookings and users tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&bookingRecord{}, &userRecord{})
}

// GormBookingRepo is the PostgreSQL booking store.
type GormBookingRepo struct {
	DB *gorm.DB
}

func (r GormBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	rec, err := toBookingRecord(*b)
	if err != nil {
		return domain.ValidationError{Field: "pickup_date", Msg: "invalid date", Err: err}
	}
	if err := r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ConflictError{Resource: "booking", Msg: "booking_id already exists", Err: err}
		}
		return domain.PersistenceError{Op: "create booking", Err: err}
	}
	b.ID = rec.ID
	return nil
}

func (r GormBookingRepo) GetByCode(ctx context.Context, code string) (models.Booking, error) {
	var rec bookingRecord
	if err := r.DB.WithContext(ctx).Where("booking_id = ?", code).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Booking{}, domain.NotFoundError{Resource: "booking", Key: code, Err: err}
		}
		return models.Booking{}, domain.PersistenceError{Op: "load booking", Err: err}
	}
	return rec.toModel(), nil
}

func (r GormBookingRepo) List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error) {
	filtered := func() *gorm.DB {
		q := r.DB.WithContext(ctx).Model(&bookingRecord{})
		if f.Status != "" {
			q = q.Where("status = ?", string(f.Status))
		}
		return q
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, domain.PersistenceError{Op: "count bookings", Err: err}
	}

	var recs []bookingRecord
	if err := filtered().Order("created_at DESC, id DESC").Limit(p.PerPage).Offset(p.Offset()).Find(&recs).Error; err != nil {
		return nil, 0, domain.PersistenceError{Op: "list bookings", Err: err}
	}

	out := make([]models.Booking, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, int(total), nil
}

func (r GormBookingRepo) Update(ctx context.Context, code string, upd models.BookingUpdate, now time.Time, check func(current models.Booking) error) (models.Booking, error) {
	var updated models.Booking
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec bookingRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("booking_id = ?", code).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFoundError{Resource: "booking", Key: code, Err: err}
			}
			return err
		}
		current := rec.toModel()
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}

		changes := map[string]any{"updated_at": now}
		if upd.Status != nil {
			changes["status"] = string(*upd.Status)
		}
		if upd.FinalPrice != nil {
			changes["final_price"] = *upd.FinalPrice
		}
		if upd.AdminNotes != nil {
			changes["admin_notes"] = *upd.AdminNotes
		}
		if upd.DriverAssigned != nil {
			changes["driver_assigned"] = *upd.DriverAssigned
		}
		if err := tx.Model(&bookingRecord{}).Where("id = ?", rec.ID).Updates(changes).Error; err != nil {
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

func (r GormBookingRepo) Delete(ctx context.Context, code string) error {
	res := r.DB.WithContext(ctx).Where("booking_id = ?", code).Delete(&bookingRecord{})
	if res.Error != nil {
		return domain.PersistenceError{Op: "delete booking", Err: res.Error}
	}
	if res.RowsAffected == 0 {
		return domain.NotFoundError{Resource: "booking", Key: code}
	}
	return nil
}

func (r GormBookingRepo) Stats(ctx context.Context) (models.BookingStats, error) {
	var row struct {
		Total     int
		Pending   int
		Confirmed int
		Completed int
		Cancelled int
		Revenue   *float64
	}
	err := r.DB.WithContext(ctx).Model(&bookingRecord{}).Select(`
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status = 'confirmed' THEN 1 ELSE 0 END), 0) AS confirmed,
		COALESCE(SUM(CASE WHEN status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
		COALESCE(SUM(CASE WHEN status = 'cancelled' THEN 1 ELSE 0 END), 0) AS cancelled,
		SUM(CASE WHEN status = 'completed' THEN final_price END) AS revenue`).Scan(&row).Error
	if err != nil {
		return models.BookingStats{}, domain.PersistenceError{Op: "compute stats", Err: err}
	}

	s := models.BookingStats{
		Total:     row.Total,
		Pending:   row.Pending,
		Confirmed: row.Confirmed,
		Completed: row.Completed,
		Cancelled: row.Cancelled,
	}
	if row.Revenue != nil {
		s.Revenue = utils.RoundMoney(*row.Revenue)
	}
	return s, nil
}

// GormUserRepo is the PostgreSQL staff account store.
type GormUserRepo struct {
	DB *gorm.DB
}

func (r GormUserRepo) GetByUsername(ctx context.Context, username string) (models.User, error) {
	var rec userRecord
	if err := r.DB.WithContext(ctx).Where("username = ?", username).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, domain.NotFoundError{Resource: "user", Key: username, Err: err}
		}
		return models.User{}, domain.PersistenceError{Op: "load user", Err: err}
	}
	return rec.toModel(), nil
}

func (r GormUserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var rec userRecord
	if err := r.DB.WithContext(ctx).First(&rec, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, domain.NotFoundError{Resource: "user", Err: err}
		}
		return models.User{}, domain.PersistenceError{Op: "load user", Err: err}
	}
	return rec.toModel(), nil
}

func (r GormUserRepo) Create(ctx context.Context, u *models.User) error {
	rec := userRecord{
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		CreatedAt:    u.CreatedAt,
	}
	if err := r.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ConflictError{Resource: "user", Msg: "username or email already registered", Err: err}
		}
		return domain.PersistenceError{Op: "create user", Err: err}
	}
	u.ID = rec.ID
	return nil
}

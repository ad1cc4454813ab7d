package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
	"ridebooking/internal/utils"
)

const maxCodeAttempts = 5

// BookingStore is implemented by the MySQL and gorm repositories.
type BookingStore interface {
	Create(ctx context.Context, b *models.Booking) error
	GetByCode(ctx context.Context, code string) (models.Booking, error)
	List(ctx context.Context, f models.BookingFilter, p domain.Pagination) ([]models.Booking, int, error)
	Update(ctx context.Context, code string, upd models.BookingUpdate, now time.Time, check func(current models.Booking) error) (models.Booking, error)
	Delete(ctx context.Context, code string) error
	Stats(ctx context.Context) (models.BookingStats, error)
}

type Notifier interface {
	BookingCreated(ctx context.Context, b models.Booking) error
}

// BookingInput is the raw intake form. Passengers stays a string so that
// "6+" style values can be parsed here.
type BookingInput struct {
	ServiceType     string
	VehicleType     string
	PickupLocation  string
	DropoffLocation string
	PickupDate      string
	PickupTime      string
	Passengers      string
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	SpecialRequests string
	ReturnTrip      bool
	WaitingTime     bool
	MeetGreet       bool
}

// Quote is a price estimate without a stored booking.
type Quote struct {
	ServiceType    string  `json:"service_type"`
	VehicleType    string  `json:"vehicle_type"`
	Passengers     int     `json:"passengers"`
	EstimatedPrice float64 `json:"estimated_price"`
}

type BookingService struct {
	Store        BookingStore
	Notifier     Notifier
	StrictStatus bool
	RequestID    string
	// Actor is the admin username recorded on management log lines.
	Actor        string

	Now     func() time.Time
	NewCode func() (string, error)
}

// WithRequestID returns a copy of s that tags its log lines with id.
func (s BookingService) WithRequestID(id string) BookingService {
	s.RequestID = id
	return s
}

// WithActor returns a copy of s that attributes updates and deletes to username.
func (s BookingService) WithActor(username string) BookingService {
	s.Actor = username
	return s
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s BookingService) newCode() (string, error) {
	if s.NewCode != nil {
		return s.NewCode()
	}
	return utils.NewBookingCode()
}

// Create validates the intake form, prices it and stores a pending booking.
// The notification is best effort: its failure never fails the request.
func (s BookingService) Create(ctx context.Context, in BookingInput) (models.Booking, error) {
	b, err := buildBooking(in)
	if err != nil {
		return models.Booking{}, err
	}
	now := s.now()
	b.Status = models.StatusPending
	b.CreatedAt = now
	b.UpdatedAt = now
	b.EstimatedPrice = utils.EstimatePrice(b.ServiceType, b.VehicleType, b.Passengers)
	if !utils.IsKnownService(b.ServiceType) || !utils.IsKnownVehicle(b.VehicleType) {
		utils.LogEvent(s.RequestID, "bookings", "create", "unlisted service or vehicle priced with defaults",
			zap.String("service_type", b.ServiceType), zap.String("vehicle_type", b.VehicleType))
	}

	var lastErr error
	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return models.Booking{}, domain.PersistenceError{Op: "generate booking id", Err: err}
		}
		b.BookingID = code
		lastErr = s.Store.Create(ctx, &b)
		if lastErr == nil {
			break
		}
		if !domain.IsConflict(lastErr) {
			utils.LogFailure(s.RequestID, "bookings", "create", "store booking failed", lastErr)
			return models.Booking{}, lastErr
		}
		utils.LogEvent(s.RequestID, "bookings", "create", "booking id collision, regenerating",
			zap.String("booking_id", code), zap.Int("attempt", attempt))
	}
	if lastErr != nil {
		return models.Booking{}, domain.PersistenceError{Op: "allocate booking id", Err: lastErr}
	}

	utils.LogEvent(s.RequestID, "bookings", "create", "booking created",
		zap.String("booking_id", b.BookingID), zap.Float64("estimated_price", b.EstimatedPrice))

	if s.Notifier != nil {
		if err := s.Notifier.BookingCreated(ctx, b); err != nil {
			utils.LogFailure(s.RequestID, "bookings", "notify", "booking notification not queued", err,
				zap.String("booking_id", b.BookingID))
		}
	}
	return b, nil
}

// Quote prices a trip using the same parsing rules as Create.
func (s BookingService) Quote(in BookingInput) (Quote, error) {
	service := strings.TrimSpace(in.ServiceType)
	if service == "" {
		return Quote{}, domain.MissingField("service")
	}
	if strings.TrimSpace(in.Passengers) == "" {
		return Quote{}, domain.MissingField("passengers")
	}
	passengers, err := parsePassengers(in.Passengers)
	if err != nil {
		return Quote{}, err
	}
	vehicle := vehicleOrDefault(in.VehicleType)
	return Quote{
		ServiceType:    service,
		VehicleType:    vehicle,
		Passengers:     passengers,
		EstimatedPrice: utils.EstimatePrice(service, vehicle, passengers),
	}, nil
}

func (s BookingService) Get(ctx context.Context, code string) (models.Booking, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return models.Booking{}, domain.NotFoundError{Resource: "booking"}
	}
	return s.Store.GetByCode(ctx, code)
}

// List returns one page of bookings, newest first. An empty status matches
// every booking.
func (s BookingService) List(ctx context.Context, status string, page, perPage int) (models.BookingPage, error) {
	var filter models.BookingFilter
	if status = strings.ToLower(strings.TrimSpace(status)); status != "" {
		st := models.BookingStatus(status)
		if !st.IsValid() {
			return models.BookingPage{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", status)}
		}
		filter.Status = st
	}

	p := domain.NewPagination(page, perPage)
	items, total, err := s.Store.List(ctx, filter, p)
	if err != nil {
		return models.BookingPage{}, err
	}
	if items == nil {
		items = []models.Booking{}
	}
	return models.BookingPage{
		Bookings:    items,
		Total:       total,
		Pages:       p.Pages(total),
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
	}, nil
}

// Update applies the staff-editable fields. The lifecycle check runs against
// the locked row inside the store transaction.
func (s BookingService) Update(ctx context.Context, code string, upd models.BookingUpdate) (models.Booking, error) {
	if upd.Status != nil {
		st := models.BookingStatus(strings.ToLower(strings.TrimSpace(string(*upd.Status))))
		if !st.IsValid() {
			return models.Booking{}, domain.ValidationError{Field: "status", Msg: fmt.Sprintf("unknown status %q", *upd.Status)}
		}
		upd.Status = &st
	}
	if upd.FinalPrice != nil {
		if math.IsNaN(*upd.FinalPrice) || math.IsInf(*upd.FinalPrice, 0) {
			return models.Booking{}, domain.ValidationError{Field: "final_price", Msg: "must be a finite number"}
		}
		if *upd.FinalPrice < 0 {
			return models.Booking{}, domain.ValidationError{Field: "final_price", Msg: "must not be negative"}
		}
		v := utils.RoundMoney(*upd.FinalPrice)
		upd.FinalPrice = &v
	}

	check := func(current models.Booking) error {
		if upd.Status == nil || !s.StrictStatus {
			return nil
		}
		if current.Status.IsTerminal() && *upd.Status != current.Status {
			return domain.ValidationError{
				Field: "status",
				Msg:   fmt.Sprintf("booking is already %s", current.Status),
			}
		}
		if !current.Status.CanTransitionTo(*upd.Status) {
			return domain.ValidationError{
				Field: "status",
				Msg:   fmt.Sprintf("cannot change status from %s to %s", current.Status, *upd.Status),
			}
		}
		return nil
	}

	b, err := s.Store.Update(ctx, strings.TrimSpace(code), upd, s.now(), check)
	if err != nil {
		if !domain.IsNotFound(err) && !domain.IsValidation(err) {
			utils.LogFailure(s.RequestID, "bookings", "update", "update booking failed", err, zap.String("booking_id", code))
		}
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "bookings", "update", "booking updated",
		zap.String("booking_id", b.BookingID), zap.String("status", string(b.Status)), zap.String("admin", s.Actor))
	return b, nil
}

func (s BookingService) Delete(ctx context.Context, code string) error {
	if err := s.Store.Delete(ctx, strings.TrimSpace(code)); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "bookings", "delete", "booking deleted",
		zap.String("booking_id", code), zap.String("admin", s.Actor))
	return nil
}

func (s BookingService) Stats(ctx context.Context) (models.BookingStats, error) {
	st, err := s.Store.Stats(ctx)
	if err != nil {
		return models.BookingStats{}, err
	}
	st.Revenue = utils.RoundMoney(st.Revenue)
	return st, nil
}

func buildBooking(in BookingInput) (models.Booking, error) {
	required := []struct {
		field string
		value string
	}{
		{"service", in.ServiceType},
		{"pickup_location", in.PickupLocation},
		{"dropoff_location", in.DropoffLocation},
		{"pickup_date", in.PickupDate},
		{"pickup_time", in.PickupTime},
		{"passengers", in.Passengers},
		{"first_name", in.FirstName},
		{"email", in.Email},
		{"phone", in.Phone},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return models.Booking{}, domain.MissingField(r.field)
		}
	}

	date, err := utils.ParseDate(in.PickupDate)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "pickup_date", Msg: "must be YYYY-MM-DD", Err: err}
	}
	clock, err := utils.ParseClock(in.PickupTime)
	if err != nil {
		return models.Booking{}, domain.ValidationError{Field: "pickup_time", Msg: "must be HH:MM", Err: err}
	}
	passengers, err := parsePassengers(in.Passengers)
	if err != nil {
		return models.Booking{}, err
	}

	return models.Booking{
		ServiceType:     strings.TrimSpace(in.ServiceType),
		VehicleType:     vehicleOrDefault(in.VehicleType),
		PickupLocation:  utils.NormalizeSpace(in.PickupLocation),
		DropoffLocation: utils.NormalizeSpace(in.DropoffLocation),
		PickupDate:      utils.FormatDate(date),
		PickupTime:      clock.Format(utils.LayoutClock),
		Passengers:      passengers,
		FirstName:       utils.TrimOrEmpty(in.FirstName),
		LastName:        utils.TrimOrEmpty(in.LastName),
		Email:           utils.TrimOrEmpty(in.Email),
		Phone:           utils.TrimOrEmpty(in.Phone),
		SpecialRequests: utils.TrimOrEmpty(in.SpecialRequests),
		ReturnTrip:      in.ReturnTrip,
		WaitingTime:     in.WaitingTime,
		MeetGreet:       in.MeetGreet,
	}, nil
}

func parsePassengers(raw string) (int, error) {
	n, err := utils.ParsePassengerCount(raw)
	if err != nil {
		return 0, domain.ValidationError{Field: "passengers", Msg: "must be a whole number of at least 1", Err: err}
	}
	return n, nil
}

func vehicleOrDefault(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return "standard"
	}
	return v
}

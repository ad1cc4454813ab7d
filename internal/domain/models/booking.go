package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

var statusTransitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
	StatusCompleted: {},
	StatusCancelled: {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := statusTransitions[s]
	return ok
}

// CanTransitionTo reports whether s may move to target. Staying in the same
// status is always allowed so that repeated updates are idempotent.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	if s == target {
		return s.IsValid()
	}
	for _, t := range statusTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(statusTransitions[s]) == 0
}

// Booking is one customer trip request. ID is the storage key; BookingID is
// the public code and never changes after creation.
type Booking struct {
	ID              int64         `json:"id"`
	BookingID       string        `json:"booking_id"`
	ServiceType     string        `json:"service_type"`
	VehicleType     string        `json:"vehicle_type"`
	PickupLocation  string        `json:"pickup_location"`
	DropoffLocation string        `json:"dropoff_location"`
	PickupDate      string        `json:"pickup_date"`
	PickupTime      string        `json:"pickup_time"`
	Passengers      int           `json:"passengers"`
	FirstName       string        `json:"first_name"`
	LastName        string        `json:"last_name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	SpecialRequests string        `json:"special_requests"`
	ReturnTrip      bool          `json:"return_trip"`
	WaitingTime     bool          `json:"waiting_time"`
	MeetGreet       bool          `json:"meet_greet"`
	Status          BookingStatus `json:"status"`
	EstimatedPrice  float64       `json:"estimated_price"`
	FinalPrice      *float64      `json:"final_price"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	AdminNotes      string        `json:"admin_notes"`
	DriverAssigned  string        `json:"driver_assigned"`
}

// CustomerName joins first and last name, skipping an empty last name.
func (b Booking) CustomerName() string {
	if b.LastName == "" {
		return b.FirstName
	}
	return b.FirstName + " " + b.LastName
}

// BookingUpdate supports PATCH-style updates via key presence. Only staff
// fields are representable.
type BookingUpdate struct {
	Status         *BookingStatus
	FinalPrice     *float64
	AdminNotes     *string
	DriverAssigned *string
}

// Apply copies the present fields onto b and stamps UpdatedAt.
func (u BookingUpdate) Apply(b *Booking, now time.Time) {
	if u.Status != nil {
		b.Status = *u.Status
	}
	if u.FinalPrice != nil {
		v := *u.FinalPrice
		b.FinalPrice = &v
	}
	if u.AdminNotes != nil {
		b.AdminNotes = *u.AdminNotes
	}
	if u.DriverAssigned != nil {
		b.DriverAssigned = *u.DriverAssigned
	}
	b.UpdatedAt = now
}

// BookingFilter narrows list queries. An empty Status matches every booking.
type BookingFilter struct {
	Status BookingStatus
}

// BookingPage is one page of a list query.
type BookingPage struct {
	Bookings    []Booking `json:"bookings"`
	Total       int       `json:"total"`
	Pages       int       `json:"pages"`
	CurrentPage int       `json:"current_page"`
	PerPage     int       `json:"per_page"`
}

// BookingStats aggregates counts by status and revenue from completed bookings.
type BookingStats struct {
	Total     int     `json:"total_bookings"`
	Pending   int     `json:"pending_bookings"`
	Confirmed int     `json:"confirmed_bookings"`
	Completed int     `json:"completed_bookings"`
	Cancelled int     `json:"cancelled_bookings"`
	Revenue   float64 `json:"total_revenue"`
}

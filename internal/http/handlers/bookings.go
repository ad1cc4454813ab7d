package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
	"ridebooking/internal/http/middleware"
	"ridebooking/internal/services"
)

type BookingHandler struct {
	Bookings services.BookingService
	Docs     services.DocsService
}

type bookingPayload struct {
	Service         Stringish `json:"service"`
	ServiceType     Stringish `json:"service_type"`
	VehicleType     Stringish `json:"vehicle_type"`
	Vehicle         Stringish `json:"vehicle"`
	PickupLocation  Stringish `json:"pickup_location"`
	DropoffLocation Stringish `json:"dropoff_location"`
	PickupDate      Stringish `json:"pickup_date"`
	PickupTime      Stringish `json:"pickup_time"`
	Passengers      Stringish `json:"passengers"`
	FirstName       Stringish `json:"first_name"`
	LastName        Stringish `json:"last_name"`
	Email           Stringish `json:"email"`
	Phone           Stringish `json:"phone"`
	SpecialRequests Stringish `json:"special_requests"`
	ReturnTrip      Flag      `json:"return_trip"`
	WaitingTime     Flag      `json:"waiting_time"`
	MeetGreet       Flag      `json:"meet_greet"`
}

func (p bookingPayload) toInput() services.BookingInput {
	return services.BookingInput{
		ServiceType:     firstNonEmpty(p.Service, p.ServiceType),
		VehicleType:     firstNonEmpty(p.VehicleType, p.Vehicle),
		PickupLocation:  p.PickupLocation.String(),
		DropoffLocation: p.DropoffLocation.String(),
		PickupDate:      p.PickupDate.String(),
		PickupTime:      p.PickupTime.String(),
		Passengers:      p.Passengers.String(),
		FirstName:       p.FirstName.String(),
		LastName:        p.LastName.String(),
		Email:           p.Email.String(),
		Phone:           p.Phone.String(),
		SpecialRequests: p.SpecialRequests.String(),
		ReturnTrip:      bool(p.ReturnTrip),
		WaitingTime:     bool(p.WaitingTime),
		MeetGreet:       bool(p.MeetGreet),
	}
}

// updatePayload lists the staff-editable keys. Anything else in the body is
// ignored.
type updatePayload struct {
	Status         *string    `json:"status"`
	FinalPrice     *Stringish `json:"final_price"`
	AdminNotes     *string    `json:"admin_notes"`
	DriverAssigned *string    `json:"driver_assigned"`
}

func (p updatePayload) toUpdate() (models.BookingUpdate, error) {
	var upd models.BookingUpdate
	if p.Status != nil {
		st := models.BookingStatus(*p.Status)
		upd.Status = &st
	}
	if p.FinalPrice != nil && strings.TrimSpace(p.FinalPrice.String()) != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(p.FinalPrice.String()), 64)
		if err != nil {
			return upd, domain.ValidationError{Field: "final_price", Msg: "must be a number", Err: err}
		}
		upd.FinalPrice = &v
	}
	upd.AdminNotes = p.AdminNotes
	upd.DriverAssigned = p.DriverAssigned
	return upd, nil
}

// POST /api/bookings
func (h BookingHandler) Create(c *gin.Context) {
	var req bookingPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	svc := h.Bookings.WithRequestID(middleware.GetRequestID(c))
	b, err := svc.Create(c.Request.Context(), req.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":         true,
		"booking_id":      b.BookingID,
		"estimated_price": b.EstimatedPrice,
		"message":         "Booking submitted successfully! You will receive a confirmation email shortly.",
	})
}

// POST /api/bookings/quote
func (h BookingHandler) Quote(c *gin.Context) {
	var req bookingPayload
	if !BindJSONOrError(c, &req) {
		return
	}
	q, err := h.Bookings.Quote(req.toInput())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

// GET /api/bookings
func (h BookingHandler) List(c *gin.Context) {
	svc := h.Bookings.WithRequestID(middleware.GetRequestID(c))
	page, err := svc.List(c.Request.Context(), c.Query("status"), queryInt(c, "page"), queryInt(c, "per_page"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GET /api/bookings/:booking_id
func (h BookingHandler) Get(c *gin.Context) {
	b, err := h.Bookings.Get(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:booking_id
func (h BookingHandler) Update(c *gin.Context) {
	var req updatePayload
	if !BindJSONOrError(c, &req) {
		return
	}
	upd, err := req.toUpdate()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	svc := h.bookingsFor(c)
	b, err := svc.Update(c.Request.Context(), c.Param("booking_id"), upd)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/bookings/:booking_id
func (h BookingHandler) Delete(c *gin.Context) {
	svc := h.bookingsFor(c)
	if err := svc.Delete(c.Request.Context(), c.Param("booking_id")); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted successfully"})
}

// GET /api/stats
func (h BookingHandler) Stats(c *gin.Context) {
	st, err := h.Bookings.Stats(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// GET /api/bookings/:booking_id/confirmation.pdf
func (h BookingHandler) ConfirmationPDF(c *gin.Context) {
	svc := h.Docs.WithRequestID(middleware.GetRequestID(c))
	pdfBytes, filename, err := svc.GenerateConfirmation(c.Request.Context(), c.Param("booking_id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func firstNonEmpty(values ...Stringish) string {
	for _, v := range values {
		if s := strings.TrimSpace(v.String()); s != "" {
			return s
		}
	}
	return ""
}

// bookingsFor scopes the service to the request and the admin behind it.
func (h BookingHandler) bookingsFor(c *gin.Context) services.BookingService {
	svc := h.Bookings.WithRequestID(middleware.GetRequestID(c))
	if rc, ok := middleware.GetRequestContext(c); ok {
		svc = svc.WithActor(rc.Username)
	}
	return svc
}

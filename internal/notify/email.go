package notify

import (
	"bytes"
	"html/template"
	"time"

	"ridebooking/internal/domain/models"
	"ridebooking/internal/utils"
)

type Email struct {
	To      string
	Subject string
	HTML    string
}

type emailData struct {
	models.Booking
	CustomerName   string
	ServiceLabel   string
	VehicleLabel   string
	StatusLabel    string
	EstimatedPrice string
	Submitted      string
	Year           int
}

var customerTemplate = template.Must(template.New("customer").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #003366; color: white; padding: 20px; text-align: center;">
      <h1>Zoom &amp; Go Rides</h1>
      <h2>Booking Confirmation</h2>
    </div>
    <p>Dear {{.CustomerName}},</p>
    <p>Thank you for choosing Zoom &amp; Go Rides! Your booking has been received and is currently being processed.</p>
    <h3>Booking Details</h3>
    <p><strong>Booking ID:</strong> {{.BookingID}}</p>
    <p><strong>Status:</strong> {{.StatusLabel}}</p>
    <p><strong>Service:</strong> {{.ServiceLabel}}</p>
    <p><strong>Vehicle:</strong> {{.VehicleLabel}}</p>
    <p><strong>Date &amp; Time:</strong> {{.PickupDate}} at {{.PickupTime}}</p>
    <p><strong>Pickup Location:</strong> {{.PickupLocation}}</p>
    <p><strong>Drop-off Location:</strong> {{.DropoffLocation}}</p>
    <p><strong>Passengers:</strong> {{.Passengers}}</p>
    <p><strong>Estimated Price:</strong> {{.EstimatedPrice}}</p>
    {{if .SpecialRequests}}<p><strong>Special Requests:</strong> {{.SpecialRequests}}</p>{{end}}
    <p><strong>What's Next?</strong></p>
    <ul>
      <li>Our team will review your booking within 2 hours</li>
      <li>You will receive a confirmation call or email with final details</li>
      <li>A driver will be assigned and you'll receive their contact information</li>
    </ul>
    <p style="font-size: 12px;">&copy; {{.Year}} Zoom &amp; Go Rides. All rights reserved.</p>
  </div>
</body>
</html>`))

var staffTemplate = template.Must(template.New("staff").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <div style="background-color: #dc3545; color: white; padding: 20px; text-align: center;">
      <h1>New Booking Alert</h1>
    </div>
    <p><strong>Action Required:</strong> New booking needs review and confirmation</p>
    <h3>Booking Information</h3>
    <p><strong>Booking ID:</strong> {{.BookingID}}</p>
    <p><strong>Customer:</strong> {{.CustomerName}}</p>
    <p><strong>Email:</strong> {{.Email}}</p>
    <p><strong>Phone:</strong> {{.Phone}}</p>
    <p><strong>Service:</strong> {{.ServiceLabel}}</p>
    <p><strong>Vehicle:</strong> {{.VehicleLabel}}</p>
    <p><strong>Date &amp; Time:</strong> {{.PickupDate}} at {{.PickupTime}}</p>
    <p><strong>Pickup:</strong> {{.PickupLocation}}</p>
    <p><strong>Drop-off:</strong> {{.DropoffLocation}}</p>
    <p><strong>Passengers:</strong> {{.Passengers}}</p>
    <p><strong>Options:</strong>{{if .ReturnTrip}} return trip{{end}}{{if .WaitingTime}} waiting time{{end}}{{if .MeetGreet}} meet &amp; greet{{end}}</p>
    <p><strong>Estimated Price:</strong> {{.EstimatedPrice}}</p>
    <p><strong>Submitted:</strong> {{.Submitted}}</p>
    {{if .SpecialRequests}}<p><strong>Special Requests:</strong> {{.SpecialRequests}}</p>{{end}}
    <p><strong>Next Steps:</strong></p>
    <ul>
      <li>Review booking details</li>
      <li>Confirm availability</li>
      <li>Assign driver</li>
      <li>Contact customer for confirmation</li>
    </ul>
  </div>
</body>
</html>`))

func newEmailData(b models.Booking) emailData {
	return emailData{
		Booking:        b,
		CustomerName:   b.CustomerName(),
		ServiceLabel:   utils.TitleWords(b.ServiceType),
		VehicleLabel:   utils.TitleWords(b.VehicleType),
		StatusLabel:    utils.TitleWords(string(b.Status)),
		EstimatedPrice: utils.FormatUSD(b.EstimatedPrice),
		Submitted:      b.CreatedAt.Format("2006-01-02 15:04:05"),
		Year:           time.Now().Year(),
	}
}

// CustomerConfirmation renders the email sent to the customer.
func CustomerConfirmation(b models.Booking) (Email, error) {
	var buf bytes.Buffer
	if err := customerTemplate.Execute(&buf, newEmailData(b)); err != nil {
		return Email{}, err
	}
	return Email{
		To:      b.Email,
		Subject: "Booking Confirmation - " + b.BookingID,
		HTML:    buf.String(),
	}, nil
}

// StaffAlert renders the new-booking alert sent to the company inbox.
func StaffAlert(b models.Booking, companyEmail string) (Email, error) {
	var buf bytes.Buffer
	if err := staffTemplate.Execute(&buf, newEmailData(b)); err != nil {
		return Email{}, err
	}
	return Email{
		To:      companyEmail,
		Subject: "New Booking Received - " + b.BookingID,
		HTML:    buf.String(),
	}, nil
}

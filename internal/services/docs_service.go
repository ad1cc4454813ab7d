package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"

	"ridebooking/internal/domain/models"
	"ridebooking/internal/utils"
)

// DocsService renders booking documents.
type DocsService struct {
	Bookings  BookingStore
	RequestID string
	Loader    func(ctx context.Context, code string) (models.Booking, error)
}

func (s DocsService) WithRequestID(id string) DocsService {
	s.RequestID = id
	return s
}

// GenerateConfirmation returns the confirmation PDF and its file name.
func (s DocsService) GenerateConfirmation(ctx context.Context, code string) ([]byte, string, error) {
	b, err := s.load(ctx, code)
	if err != nil {
		return nil, "", err
	}
	utils.LogEvent(s.RequestID, "docs", "generate_confirmation", "booking_id="+b.BookingID)
	return buildConfirmationPDF(b)
}

func (s DocsService) load(ctx context.Context, code string) (models.Booking, error) {
	if s.Loader != nil {
		return s.Loader(ctx, code)
	}
	return s.Bookings.GetByCode(ctx, strings.TrimSpace(code))
}

func buildConfirmationPDF(b models.Booking) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Confirmation "+b.BookingID, false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "Zoom & Go Rides")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Booking ID       : %s", b.BookingID),
		fmt.Sprintf("Status           : %s", utils.TitleWords(string(b.Status))),
		fmt.Sprintf("Customer         : %s", safe(b.CustomerName(), "-")),
		fmt.Sprintf("Email / Phone    : %s / %s", safe(b.Email, "-"), safe(b.Phone, "-")),
		fmt.Sprintf("Service          : %s", safe(utils.TitleWords(b.ServiceType), "-")),
		fmt.Sprintf("Vehicle          : %s", safe(utils.TitleWords(b.VehicleType), "-")),
		fmt.Sprintf("Date / Time      : %s %s", safe(b.PickupDate, "-"), safe(utils.ClockHM(b.PickupTime), "-")),
		fmt.Sprintf("Pickup           : %s", safe(b.PickupLocation, "-")),
		fmt.Sprintf("Drop-off         : %s", safe(b.DropoffLocation, "-")),
		fmt.Sprintf("Passengers       : %d", b.Passengers),
		fmt.Sprintf("Options          : %s", options(b)),
		fmt.Sprintf("Driver           : %s", safe(b.DriverAssigned, "to be assigned")),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Estimated price  : "+utils.FormatUSD(b.EstimatedPrice))
	pdf.Ln(7)
	if b.FinalPrice != nil {
		pdf.Cell(0, 7, "Final price      : "+utils.FormatUSD(*b.FinalPrice))
		pdf.Ln(7)
	}

	if strings.TrimSpace(b.SpecialRequests) != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Special requests: "+b.SpecialRequests, "", "", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, "Generated "+time.Now().UTC().Format("2006-01-02 15:04")+" UTC")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("CONFIRMATION_%s.pdf", safeFilenamePart(b.BookingID)), nil
}

func options(b models.Booking) string {
	var out []string
	if b.ReturnTrip {
		out = append(out, "return trip")
	}
	if b.WaitingTime {
		out = append(out, "waiting time")
	}
	if b.MeetGreet {
		out = append(out, "meet & greet")
	}
	if len(out) == 0 {
		return "-"
	}
	return strings.Join(out, ", ")
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}

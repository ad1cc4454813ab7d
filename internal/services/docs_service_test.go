package services

import (
	"bytes"
	"context"
	"testing"

	"ridebooking/internal/domain"
	"ridebooking/internal/domain/models"
)

func TestDocsServiceGenerateConfirmation(t *testing.T) {
	final := 120.0
	loader := func(_ context.Context, code string) (models.Booking, error) {
		return models.Booking{
			BookingID:      code,
			ServiceType:    "corporate",
			VehicleType:    "suv",
			PickupDate:     "2025-07-04",
			PickupTime:     "08:30",
			Passengers:     3,
			FirstName:      "Tester",
			Email:          "t@example.com",
			Phone:          "555",
			MeetGreet:      true,
			Status:         models.StatusConfirmed,
			EstimatedPrice: 78,
			FinalPrice:     &final,
		}, nil
	}

	pdf, filename, err := DocsService{Loader: loader}.GenerateConfirmation(context.Background(), "ZGR123456")
	if err != nil {
		t.Fatalf("GenerateConfirmation returned error: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("output is not a PDF")
	}
	if filename != "CONFIRMATION_ZGR123456.pdf" {
		t.Fatalf("unexpected filename %q", filename)
	}
}

func TestDocsServiceUnknownBooking(t *testing.T) {
	svc := DocsService{Bookings: newMemBookingStore()}
	if _, _, err := svc.GenerateConfirmation(context.Background(), "ZGR000000"); !domain.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

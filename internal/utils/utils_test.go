package utils

import (
	"errors"
	"regexp"
	"testing"
)

func TestEstimatePrice(t *testing.T) {
	cases := []struct {
		service    string
		vehicle    string
		passengers int
		want       float64
	}{
		{"airport", "standard", 4, 75.00},
		{"tour", "limousine", 2, 300.00},
		{"event", "van", 8, 243.00},
		{"corporate", "luxury", 3, 90.00},
		{"corporate", "suv", 1, 78.00},
		{"wedding", "standard", 2, 75.00},
		{"airport", "spaceship", 2, 75.00},
		{"AIRPORT", " Luxury ", 7, 168.75},
		{"tour", "standard", 6, 120.00},
	}
	for _, tc := range cases {
		got := EstimatePrice(tc.service, tc.vehicle, tc.passengers)
		if got != tc.want {
			t.Fatalf("EstimatePrice(%q, %q, %d) = %v, want %v", tc.service, tc.vehicle, tc.passengers, got, tc.want)
		}
	}
}

func TestKnownServiceAndVehicle(t *testing.T) {
	if !IsKnownService(" Airport ") || IsKnownService("wedding") {
		t.Fatalf("service lookup mismatch")
	}
	if !IsKnownVehicle("LIMOUSINE") || IsKnownVehicle("spaceship") {
		t.Fatalf("vehicle lookup mismatch")
	}
}

func TestRoundMoneyHalfAwayFromZero(t *testing.T) {
	if got := RoundMoney(10.125); got != 10.13 {
		t.Fatalf("RoundMoney(10.125) = %v", got)
	}
	if got := RoundMoney(-10.125); got != -10.13 {
		t.Fatalf("RoundMoney(-10.125) = %v", got)
	}
	if got := RoundMoney(243.00000000000003); got != 243 {
		t.Fatalf("RoundMoney float noise = %v", got)
	}
}

func TestParsePassengerCount(t *testing.T) {
	ok := map[string]int{"4": 4, "6+": 6, " 10 ": 10, "1": 1}
	for in, want := range ok {
		got, err := ParsePassengerCount(in)
		if err != nil {
			t.Fatalf("ParsePassengerCount(%q) error: %v", in, err)
		}
		if got != want {
			t.Fatalf("ParsePassengerCount(%q) = %d, want %d", in, got, want)
		}
	}

	for _, in := range []string{"abc", "", "+", "0", "-2", "3.5"} {
		if _, err := ParsePassengerCount(in); !errors.Is(err, ErrInvalidPassengerCount) {
			t.Fatalf("ParsePassengerCount(%q) expected ErrInvalidPassengerCount, got %v", in, err)
		}
	}
}

func TestNewBookingCodeFormat(t *testing.T) {
	re := regexp.MustCompile(`^ZGR\d{6}$`)
	for i := 0; i < 200; i++ {
		code, err := NewBookingCode()
		if err != nil {
			t.Fatalf("NewBookingCode error: %v", err)
		}
		if !re.MatchString(code) {
			t.Fatalf("unexpected booking code %q", code)
		}
	}
}

func TestParseDateAndClock(t *testing.T) {
	if _, err := ParseDate("2025-02-30"); err == nil {
		t.Fatalf("expected invalid calendar date to fail")
	}
	if _, err := ParseDate("2025-07-04"); err != nil {
		t.Fatalf("ParseDate valid: %v", err)
	}
	if _, err := ParseClock("25:00"); err == nil {
		t.Fatalf("expected 25:00 to fail")
	}
	if _, err := ParseClock("7:30pm"); err == nil {
		t.Fatalf("expected 12-hour clock to fail")
	}
	if _, err := ParseClock("07:30"); err != nil {
		t.Fatalf("ParseClock valid: %v", err)
	}
	if got := ClockHM("07:30:00"); got != "07:30" {
		t.Fatalf("ClockHM = %q", got)
	}
}

func TestFormatUSD(t *testing.T) {
	if got := FormatUSD(1234.5); got != "$1,234.50" {
		t.Fatalf("FormatUSD = %q", got)
	}
	if got := FormatUSD(75); got != "$75.00" {
		t.Fatalf("FormatUSD = %q", got)
	}
}

func TestTitleWords(t *testing.T) {
	if got := TitleWords("meet_greet"); got != "Meet Greet" {
		t.Fatalf("TitleWords = %q", got)
	}
}

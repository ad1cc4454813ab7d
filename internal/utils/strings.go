package utils

import (
	"errors"
	"strconv"
	"strings"
)

var ErrInvalidPassengerCount = errors.New("invalid passenger count")

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParsePassengerCount accepts "4" or the "6+" form meaning "at least 6".
func ParsePassengerCount(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if strings.Contains(s, "+") {
		s = strings.TrimSpace(strings.ReplaceAll(s, "+", ""))
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, ErrInvalidPassengerCount
	}
	if n < 1 {
		return 0, ErrInvalidPassengerCount
	}
	return n, nil
}

// TitleWords turns "meet_greet" or "airport transfer" into "Meet Greet" /
// "Airport Transfer".
func TitleWords(s string) string {
	parts := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, p := range parts {
		parts[i] = strings.ToUpper(p[:1]) + strings.ToLower(p[1:])
	}
	return strings.Join(parts, " ")
}

package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	BookingCodePrefix = "ZGR"
	bookingCodeDigits = 6
)

var bookingCodeSpace = big.NewInt(1_000_000)

// NewBookingCode returns "ZGR" followed by 6 random decimal digits.
// Uniqueness is enforced by the store, callers retry on conflict.
func NewBookingCode() (string, error) {
	n, err := rand.Int(rand.Reader, bookingCodeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", BookingCodePrefix, bookingCodeDigits, n.Int64()), nil
}

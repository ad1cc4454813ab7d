package utils

import (
	"strings"
	"time"
)

const (
	LayoutDate  = "2006-01-02"
	LayoutClock = "15:04"
)

// NowUTC returns current time in UTC truncated to microseconds, the
// precision kept by the bookings table.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// ParseDate parses YYYY-MM-DD.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(LayoutDate, strings.TrimSpace(s))
}

// ParseClock parses a 24-hour HH:MM time of day.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(LayoutClock, strings.TrimSpace(s))
}

func FormatDate(t time.Time) string {
	return t.Format(LayoutDate)
}

// ClockHM trims "15:04:05" style values down to HH:MM.
func ClockHM(v string) string {
	v = strings.TrimSpace(v)
	if len(v) >= 5 {
		return v[:5]
	}
	return v
}

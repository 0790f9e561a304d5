package timezone

import (
	"fmt"
	"time"
)

// DefaultTimezone is used when BOOKING_TIMEZONE is unset.
const DefaultTimezone = "America/New_York"

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

// Resolve loads tz, falling back to DefaultTimezone when tz is empty.
// An unknown zone name is an error so a typo in configuration fails at
// startup instead of silently shifting the booking day.
func Resolve(tz string) (*time.Location, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return loc, nil
}

// DateString formats t as the YYYY-MM-DD day the platform API expects.
func DateString(t time.Time) string {
	return t.Format(time.DateOnly)
}

// ParseDate reads a YYYY-MM-DD day at midnight in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(time.DateOnly, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	return t, nil
}

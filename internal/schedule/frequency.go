package schedule

import (
	"fmt"
	"strings"
	"time"
)

// Frequency is how often a checkpoint must be filled out.
type Frequency string

const (
	FreqDaily   Frequency = "Daily"
	FreqWeekly  Frequency = "Weekly"
	FreqMonthly Frequency = "Monthly"
	FreqYearly  Frequency = "Yearly"
)

// Frequencies lists all supported frequencies in reporting order.
var Frequencies = []Frequency{FreqDaily, FreqWeekly, FreqMonthly, FreqYearly}

// ParseFrequency converts a request-supplied literal into a Frequency.
// Matching is case-insensitive; anything else is a validation error.
func ParseFrequency(s string) (Frequency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily":
		return FreqDaily, nil
	case "weekly":
		return FreqWeekly, nil
	case "monthly":
		return FreqMonthly, nil
	case "yearly":
		return FreqYearly, nil
	}
	return "", fmt.Errorf("unknown frequency %q", s)
}

// Valid reports whether f is one of the four supported frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FreqDaily, FreqWeekly, FreqMonthly, FreqYearly:
		return true
	}
	return false
}

// TrailingWindowStart returns the start of the interval before "now" within which a
// submission keeps a checkpoint of this frequency satisfied. Used by
// the "as of now, what's pending" views; the calendar-bucket model in
// occurrence.go answers range queries instead.
func (f Frequency) TrailingWindowStart(now time.Time) time.Time {
	switch f {
	case FreqDaily:
		return now.Add(-8 * time.Hour)
	case FreqWeekly:
		return now.AddDate(0, 0, -7)
	case FreqMonthly:
		return now.AddDate(0, -1, 0)
	case FreqYearly:
		return now.AddDate(-1, 0, 0)
	}
	return now
}

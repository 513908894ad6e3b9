package schedule

import "time"

// Shift is one of the three daily work periods.
type Shift string

const (
	ShiftA Shift = "A"
	ShiftB Shift = "B"
	ShiftC Shift = "C"

	// ShiftNone marks submissions whose frequency has no shift dimension.
	ShiftNone Shift = ""
)

// Shifts lists the daily shifts in rota order.
var Shifts = []Shift{ShiftA, ShiftB, ShiftC}

// Canonical shift boundary table. The legacy system carried two
// conflicting tables; this one is the plant's posted rota and is the
// single source of truth for every shift computation in this codebase:
//
//	A = [06:00, 14:00)
//	B = [14:00, 22:00)
//	C = [22:00, 06:00)
const (
	shiftAStartHour = 6
	shiftBStartHour = 14
	shiftCStartHour = 22
)

// ShiftFor returns the shift a timestamp falls into. Pure function of
// the local hour-of-day, so re-labelling the same timestamp always
// yields the same shift.
func ShiftFor(t time.Time) Shift {
	h := t.Hour()
	switch {
	case h >= shiftAStartHour && h < shiftBStartHour:
		return ShiftA
	case h >= shiftBStartHour && h < shiftCStartHour:
		return ShiftB
	default:
		return ShiftC
	}
}

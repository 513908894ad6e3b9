package schedule

import "time"

// Occurrence is one abstract "this checkpoint is due" instance for a
// frequency class: a calendar bucket plus, for Daily, a shift.
type Occurrence struct {
	BucketStart time.Time
	Shift       Shift
}

// BucketStart returns the calendar bucket a timestamp is attributed to
// for the given frequency: midnight of the same day (Daily), the
// Monday of the ISO week (Weekly), the 1st of the month (Monthly) or
// January 1 (Yearly). The result carries t's location.
func BucketStart(f Frequency, t time.Time) time.Time {
	y, m, d := t.Date()
	switch f {
	case FreqDaily:
		return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	case FreqWeekly:
		day := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
		// time.Weekday has Sunday = 0; ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case FreqMonthly:
		return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	case FreqYearly:
		return time.Date(y, time.January, 1, 0, 0, 0, 0, t.Location())
	}
	return t
}

// nextBucket advances a bucket start to the following one.
func nextBucket(f Frequency, bucket time.Time) time.Time {
	switch f {
	case FreqDaily:
		return bucket.AddDate(0, 0, 1)
	case FreqWeekly:
		return bucket.AddDate(0, 0, 7)
	case FreqMonthly:
		return bucket.AddDate(0, 1, 0)
	case FreqYearly:
		return bucket.AddDate(1, 0, 0)
	}
	return bucket
}

// Occurrences enumerates every required occurrence of one checkpoint of
// the given frequency over [from, to]. Daily checkpoints produce one
// occurrence per shift per day; the other frequencies produce one per
// bucket with no shift dimension. A bucket counts as in range when its
// start falls in [BucketStart(f, from), to].
func Occurrences(f Frequency, from, to time.Time) []Occurrence {
	if to.Before(from) {
		return nil
	}

	var out []Occurrence
	for bucket := BucketStart(f, from); !bucket.After(to); bucket = nextBucket(f, bucket) {
		if f == FreqDaily {
			for _, s := range Shifts {
				out = append(out, Occurrence{BucketStart: bucket, Shift: s})
			}
			continue
		}
		out = append(out, Occurrence{BucketStart: bucket, Shift: ShiftNone})
	}
	return out
}

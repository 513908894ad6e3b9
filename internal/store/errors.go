package store

import "errors"

// Sentinel errors surfaced to handlers, which map them onto HTTP
// statuses. Anything else coming out of the store is infrastructure
// failure and rolls back atomically.
var (
	// ErrNotFound means a referenced row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrConflict means a uniqueness constraint was hit (duplicate
	// email, duplicate role or department name).
	ErrConflict = errors.New("record already exists")

	// ErrFrequencyMismatch means a caller-supplied submission frequency
	// disagrees with the referenced checkpoint's own frequency.
	ErrFrequencyMismatch = errors.New("submission frequency does not match checkpoint frequency")

	// ErrInvalidStatus means a status literal other than "ok"/"not ok"
	// was supplied.
	ErrInvalidStatus = errors.New("status must be \"ok\" or \"not ok\"")

	// ErrInvalidFrequency means a frequency literal outside
	// Daily/Weekly/Monthly/Yearly was supplied.
	ErrInvalidFrequency = errors.New("unknown frequency")
)

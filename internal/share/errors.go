package share

import "errors"

var (
	// ErrInvalidDescriptor marks a pkg.json that failed to parse or is
	// missing required fields. It is fatal for the offending install
	// but never corrupts the rest of the store.
	ErrInvalidDescriptor = errors.New("invalid shared package descriptor")
	ErrNotFound          = errors.New("shared package not found")
)

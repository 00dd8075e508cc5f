package config

import "errors"

var (
	ErrUnknownBackend      = errors.New("unknown archive backend")
	ErrInvalidAssignment   = errors.New("invalid -D assignment")
	ErrMinimumVersionUnmet = errors.New("project requires a newer Bob version")
)

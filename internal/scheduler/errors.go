package scheduler

import "errors"

var (
	// ErrJobServerAuth names the case of a MAKEFLAGS string that carries
	// no usable --jobserver-auth= token. ParseJobServerAuth reports that
	// case through its boolean result and does not return this error.
	ErrJobServerAuth = errors.New("no job-server auth found")
)

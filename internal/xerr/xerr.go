// Package xerr provides sentinel-error wrapping and a reconfigurable slog
// handler used throughout bob.
package xerr

import "fmt"

// Wrap joins a sentinel error with a cause, so that errors.Is matches both.
func Wrap(sentinel, cause error) error {
	if cause == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}

// Wrapf joins a sentinel error with a formatted message. The format string's
// final verb may be %w to additionally wrap a causing error.
func Wrapf(sentinel error, format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{sentinel}, args...)...)
}

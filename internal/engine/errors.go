package engine

import "errors"

var (
	// ErrNoRoots is returned when a build/dev invocation's root filter
	// matches no recipe.
	ErrNoRoots = errors.New("engine: no matching root recipes")

	// ErrMinimumVersion is returned when the resolved configuration's
	// bobMinimumVersion exceeds this build's version.
	ErrMinimumVersion = errors.New("engine: project requires a newer bob version")

	// ErrUnknownArchiveBackend mirrors config.ErrUnknownBackend for
	// archive entries the engine cannot construct a live backend for.
	ErrUnknownArchiveBackend = errors.New("engine: unknown archive backend")
)

package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/bobbuildtool/bob/internal/bobinfo"
	"github.com/bobbuildtool/bob/internal/cli"
	"github.com/bobbuildtool/bob/internal/engine"
	"github.com/bobbuildtool/bob/internal/xerr"
)

// Exit codes (§6): 0 success, 1 user error, 2 invocation error, >2
// internal fatal.
const (
	exitSuccess     = 0
	exitUserError   = 1
	exitInvocation  = 2
	exitInternalMin = 3
)

func main() {
	slog.SetDefault(logger())

	slog.Debug("build", "version", bobinfo.VersionString())

	if err := cli.Execute(); err != nil {
		slog.Error(err.Error())
		os.Exit(exitCode(err))
	}
}

func logger() *slog.Logger {
	handler := xerr.NewHandler()
	return slog.New(handler.WithGroup(bobinfo.Name))
}

// exitCode classifies an error from the command tree into one of the
// documented exit codes. Errors surfaced before any step ran (bad
// flags, unresolvable recipes, unsupported project requirements) are
// invocation errors; anything else is a build/test failure.
func exitCode(err error) int {
	switch {
	case errors.Is(err, engine.ErrMinimumVersion),
		errors.Is(err, engine.ErrNoRoots),
		errors.Is(err, engine.ErrUnknownArchiveBackend):
		return exitInvocation
	default:
		return exitUserError
	}
}

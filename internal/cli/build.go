package cli

import (
	"context"

	"github.com/bobbuildtool/bob/internal/engine"
	"github.com/bobbuildtool/bob/internal/paths"
)

// buildFlags are the flags build/dev share.
type buildFlags struct {
	Packages     []string `arg:"" optional:"" help:"Root recipe name(s)/glob(s) to build (default: project rootFilter)."`
	KeepGoing    bool     `short:"k" help:"Keep building unaffected siblings after a step fails."`
	Concurrency  int      `short:"j" help:"Maximum concurrent steps (default: number of CPUs)."`
	Resume       bool     `help:"Resume from the last recorded per-step status instead of rebuilding everything."`
	UpdateLayers bool     `help:"Re-sync configured layers before expanding recipes."`
}

func (f buildFlags) options() engine.BuildOptions {
	return engine.BuildOptions{
		RootFilter:  f.Packages,
		KeepGoing:   f.KeepGoing,
		Concurrency: f.Concurrency,
		Resume:      f.Resume,
	}
}

// BuildCmd implements `bob build`: the release-mode pipeline.
type BuildCmd struct {
	buildFlags
}

func (c *BuildCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, c.UpdateLayers)
	if err != nil {
		return err
	}
	defer e.Close()
	return e.Build(ctx, c.options())
}

// DevCmd implements `bob dev`: the develop-mode pipeline.
type DevCmd struct {
	buildFlags
}

func (c *DevCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Develop, c.UpdateLayers)
	if err != nil {
		return err
	}
	defer e.Close()
	return e.Dev(ctx, c.options())
}

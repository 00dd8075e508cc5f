package cli

import (
	"context"
	"fmt"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/paths"
)

// StatusCmd implements `bob status`: prints the recorded build-index
// status of every step of every matched package.
type StatusCmd struct {
	Packages []string `arg:"" optional:"" help:"Root recipe name(s)/glob(s) to report (default: project rootFilter)."`
	Dev      bool     `help:"Report the develop-mode tree instead of release."`
}

func (c *StatusCmd) Run(ctx context.Context) error {
	mode := paths.Release
	if c.Dev {
		mode = paths.Develop
	}

	e, err := newEngine(ctx, mode, false)
	if err != nil {
		return err
	}
	defer e.Close()

	roots, _, err := e.Expand(c.Packages)
	if err != nil {
		return err
	}

	type stage struct {
		kind string
		step *graph.Step
	}
	for _, pkg := range allPackages(roots) {
		for _, s := range []stage{{"checkout", pkg.Checkout}, {"build", pkg.Build}, {"package", pkg.Package}} {
			if s.step == nil {
				continue
			}
			status := e.State.Get(s.step.VariantId)
			fmt.Printf("%s\t%s\t%s\n", pkg.RecipePath, s.kind, status)
		}
	}
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/paths"
)

// ShowCmd implements `bob show`: prints a package's per-step
// Variant-Id and, once computed, Build-Id.
type ShowCmd struct {
	Package string `arg:"" help:"Recipe path of the package to show."`
	Dev     bool   `help:"Resolve in develop mode instead of release."`
}

func (c *ShowCmd) Run(ctx context.Context) error {
	mode := paths.Release
	if c.Dev {
		mode = paths.Develop
	}

	e, err := newEngine(ctx, mode, false)
	if err != nil {
		return err
	}
	defer e.Close()

	roots, _, err := e.Expand(nil)
	if err != nil {
		return err
	}

	pkg := findPackage(roots, c.Package)
	if pkg == nil {
		return fmt.Errorf("bob show: no package %q in the expanded tree", c.Package)
	}

	type stage struct {
		kind string
		step *graph.Step
	}
	for _, s := range []stage{{"checkout", pkg.Checkout}, {"build", pkg.Build}, {"package", pkg.Package}} {
		if s.step == nil {
			continue
		}
		fmt.Printf("%s:\n  variant-id: %s\n", s.kind, s.step.VariantId)
		if buildID, ok := e.Identity.Predict(s.step.VariantId); ok {
			fmt.Printf("  build-id:   %s\n", buildID)
		}
	}
	return nil
}

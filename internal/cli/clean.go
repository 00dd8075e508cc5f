package cli

import (
	"context"
	"os"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/paths"
)

// CleanCmd implements `bob clean`: removes matched packages' build
// workspaces, and/or reclaims the shared-package store.
type CleanCmd struct {
	Packages  []string `arg:"" optional:"" help:"Root recipe name(s)/glob(s) to clean (default: project rootFilter)."`
	Dev       bool     `help:"Clean the develop-mode tree instead of release."`
	Shared    bool     `help:"Also reclaim the shared-package store."`
	AllUnused bool     `help:"With --shared, remove every shared install not referenced by the current build-index."`
}

func (c *CleanCmd) Run(ctx context.Context) error {
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

	for _, pkg := range allPackages(roots) {
		for _, step := range []*graph.Step{pkg.Checkout, pkg.Build, pkg.Package} {
			if step == nil {
				continue
			}
			stage := paths.StageOf(step.Kind)
			ws := e.Layout.Workspace(pkg.RecipePath, stage, 0)
			packageDir := filepath.Dir(filepath.Dir(ws))
			if err := os.RemoveAll(packageDir); err != nil {
				return err
			}
		}
	}

	if c.Shared && e.Share != nil {
		live := map[string]bool{}
		return e.Share.Clean(ctx, c.AllUnused, live)
	}
	return nil
}

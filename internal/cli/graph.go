package cli

import (
	"context"
	"fmt"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/paths"
)

// GraphCmd implements `bob graph`: prints the dependency graph as
// "parent -> child" edges, root-first.
type GraphCmd struct {
	Packages []string `arg:"" optional:"" help:"Root recipe name(s)/glob(s) to expand (default: project rootFilter)."`
	Dev      bool     `help:"Expand in develop mode instead of release."`
}

func (c *GraphCmd) Run(ctx context.Context) error {
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

	seen := map[*graph.Package]bool{}
	var walk func(pkg *graph.Package)
	walk = func(pkg *graph.Package) {
		if pkg == nil || seen[pkg] {
			return
		}
		seen[pkg] = true
		for _, dep := range pkg.Deps {
			fmt.Printf("%s -> %s\n", pkg.RecipePath, dep.RecipePath)
			walk(dep)
		}
	}
	for _, r := range roots {
		fmt.Println(r.RecipePath)
		walk(r)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobbuildtool/bob/internal/paths"
)

// LsCmd implements `bob ls`: lists every expanded package reachable
// from the matched roots, root-first, declaration order.
type LsCmd struct {
	Packages []string `arg:"" optional:"" help:"Root recipe name(s)/glob(s) to expand (default: project rootFilter)."`
	Dev      bool     `help:"Expand in develop mode instead of release."`
}

func (c *LsCmd) Run(ctx context.Context) error {
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
		fmt.Println(pkg.RecipePath)
	}
	return nil
}

// LsRecipesCmd implements `bob ls-recipes`: lists every recipe known to
// the project's recipe store, classes included.
type LsRecipesCmd struct {
	Classes bool `help:"List classes instead of recipes."`
}

func (c *LsRecipesCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()

	var names []string
	if c.Classes {
		for name := range e.Store.Classes {
			names = append(names, name)
		}
	} else {
		for name := range e.Store.Recipes {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}

package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/paths"
)

// LayersCmd groups the externally sourced recipe layer operations
// (§6 [MODULE] Layers).
type LayersCmd struct {
	Status LayersStatusCmd `cmd:"" help:"Report each layer's checkout state."`
	Update LayersUpdateCmd `cmd:"" help:"Check out or update every configured layer."`
	Ls     LayersLsCmd     `cmd:"" help:"Print the effective recipe search path."`
}

// LayersStatusCmd implements `bob layers status`.
type LayersStatusCmd struct{}

func (c *LayersStatusCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()

	statuses, err := e.Layers.Status(ctx)
	if err != nil {
		return err
	}
	for _, s := range statuses {
		dirty := ""
		if s.Dirty {
			dirty = " (dirty)"
		}
		fmt.Printf("%s\t%s%s\n", s.Name, s.Workspace, dirty)
	}
	return nil
}

// LayersUpdateCmd implements `bob layers update`.
type LayersUpdateCmd struct{}

func (c *LayersUpdateCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, true)
	if err != nil {
		return err
	}
	defer e.Close()
	return nil
}

// LayersLsCmd implements `bob layers ls`: prints the effective recipe
// search path, project recipes first.
type LayersLsCmd struct{}

func (c *LayersLsCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()

	for _, p := range e.Layers.RecipeSearchPath(filepath.Join(RootCmd.Directory, "recipes")) {
		fmt.Println(p)
	}
	return nil
}

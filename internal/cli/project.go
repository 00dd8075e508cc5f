package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/paths"
)

// ProjectCmd implements `bob project`: prints the resolved project
// root, build tree root, and recipe search path.
type ProjectCmd struct{}

func (c *ProjectCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Printf("project:    %s\n", RootCmd.Directory)
	fmt.Printf("build root: %s\n", e.Layout.Root)
	for _, p := range e.Layers.RecipeSearchPath(filepath.Join(RootCmd.Directory, "recipes")) {
		fmt.Printf("recipes:    %s\n", p)
	}
	return nil
}

// InitCmd implements `bob init <project> <buildtree>`: scaffolds an
// empty project directory and, when it differs from the project root,
// a separate build tree directory (§6 "a build tree may live outside
// the project root").
type InitCmd struct {
	Project   string `arg:"" help:"Project root to create."`
	BuildTree string `arg:"" optional:"" help:"Build tree root to create (default: project root)."`
}

func (c *InitCmd) Run(ctx context.Context) error {
	buildTree := c.BuildTree
	if buildTree == "" {
		buildTree = c.Project
	}

	for _, dir := range []string{
		filepath.Join(c.Project, "recipes"),
		filepath.Join(c.Project, "classes"),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(buildTree, 0o755); err != nil {
		return err
	}

	defaultYAML := filepath.Join(c.Project, "default.yaml")
	if _, err := os.Stat(defaultYAML); os.IsNotExist(err) {
		if err := os.WriteFile(defaultYAML, []byte("bobMinimumVersion: \"0.1\"\n"), 0o644); err != nil {
			return err
		}
	}

	fmt.Printf("initialized project %s\n", c.Project)
	if buildTree != c.Project {
		fmt.Printf("build tree at %s: pass --build-root=%s on every invocation\n", buildTree, buildTree)
	}
	return nil
}

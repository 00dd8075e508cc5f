package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/paths"
)

// QueryPathCmd implements `bob query-path`: prints a package's
// per-stage workspace directory.
type QueryPathCmd struct {
	Package string `arg:"" help:"Recipe path of the package to query."`
	Dev     bool   `help:"Resolve in develop mode instead of release."`
}

func (c *QueryPathCmd) Run(ctx context.Context) error {
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
		return fmt.Errorf("bob query-path: no package %q in the expanded tree", c.Package)
	}

	type stage struct {
		name string
		s    paths.Stage
		step *graph.Step
	}
	for _, st := range []stage{
		{"checkout", paths.StageSrc, pkg.Checkout},
		{"build", paths.StageBuild, pkg.Build},
		{"package", paths.StageDist, pkg.Package},
	} {
		if st.step == nil {
			continue
		}
		fmt.Printf("%s\t%s\n", st.name, e.Layout.Workspace(pkg.RecipePath, st.s, 0))
	}
	return nil
}

// QueryMetaCmd implements `bob query-meta`: prints a recipe's
// metaEnv.* tags.
type QueryMetaCmd struct {
	Recipe string `arg:"" help:"Name of the recipe to query."`
}

func (c *QueryMetaCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()

	r, ok := e.Store.Recipes[c.Recipe]
	if !ok {
		return fmt.Errorf("bob query-meta: no recipe %q", c.Recipe)
	}

	keys := make([]string, 0, len(r.Environment.Meta))
	for k := range r.Environment.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, r.Environment.Meta[k])
	}
	return nil
}

// QueryRecipeCmd implements `bob query-recipe`: prints a resolved
// recipe's declared shape.
type QueryRecipeCmd struct {
	Recipe string `arg:"" help:"Name of the recipe to query."`
}

func (c *QueryRecipeCmd) Run(ctx context.Context) error {
	e, err := newEngine(ctx, paths.Release, false)
	if err != nil {
		return err
	}
	defer e.Close()

	r, ok := e.Store.Recipes[c.Recipe]
	if !ok {
		return fmt.Errorf("bob query-recipe: no recipe %q", c.Recipe)
	}

	fmt.Printf("name: %s\n", r.Name)
	fmt.Printf("root: %t\n", r.Root)
	fmt.Printf("relocatable: %t\n", r.Relocatable)
	if len(r.Classes) > 0 {
		fmt.Printf("classes: %v\n", r.Classes)
	}
	for _, dep := range r.Deps {
		fmt.Printf("dep: %s\n", dep.Name)
	}
	for name := range r.ProvideTools {
		fmt.Printf("provides tool: %s\n", name)
	}
	for _, name := range r.ProvideDeps {
		fmt.Printf("provides dep: %s\n", name)
	}
	return nil
}

// QueryScmCmd implements `bob query-scm`: prints a package's checkout
// SCM declarations.
type QueryScmCmd struct {
	Package string `arg:"" help:"Recipe path of the package to query."`
	Dev     bool   `help:"Resolve in develop mode instead of release."`
}

func (c *QueryScmCmd) Run(ctx context.Context) error {
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
		return fmt.Errorf("bob query-scm: no package %q in the expanded tree", c.Package)
	}
	if pkg.Checkout == nil {
		return nil
	}
	for _, s := range pkg.Checkout.Scms {
		fmt.Printf("%s\t%s\t%s\n", s.Kind, s.URL, s.Dir)
	}
	return nil
}

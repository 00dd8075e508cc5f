package cli

import (
	"context"

	"github.com/bobbuildtool/bob/internal/engine"
	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/paths"
)

// newEngine constructs an Engine from the parsed global flags, the
// shared entry point every subcommand's Run method uses.
func newEngine(ctx context.Context, mode paths.Mode, updateLayers bool) (*engine.Engine, error) {
	return engine.New(ctx, engine.Options{
		ProjectRoot:       RootCmd.Directory,
		BuildRoot:         RootCmd.BuildRoot,
		Mode:              mode,
		ConfigOverrides:   RootCmd.Config,
		Defines:           RootCmd.Define,
		UpdateLayers:      updateLayers,
		HelperPath:        RootCmd.HelperPath,
		ContainerdAddress: RootCmd.ContainerdAddress,
		ContainerdNS:      RootCmd.ContainerdNS,
	})
}

// findPackage searches an expanded forest for the package whose
// RecipePath matches path exactly.
func findPackage(roots []*graph.Package, path string) *graph.Package {
	seen := map[*graph.Package]bool{}
	var walk func(pkg *graph.Package) *graph.Package
	walk = func(pkg *graph.Package) *graph.Package {
		if pkg == nil || seen[pkg] {
			return nil
		}
		seen[pkg] = true
		if pkg.RecipePath == path {
			return pkg
		}
		for _, d := range pkg.Deps {
			if found := walk(d); found != nil {
				return found
			}
		}
		return nil
	}
	for _, r := range roots {
		if found := walk(r); found != nil {
			return found
		}
	}
	return nil
}

// allPackages flattens an expanded forest into every distinct package
// reachable from roots, root-first, declaration order.
func allPackages(roots []*graph.Package) []*graph.Package {
	seen := map[*graph.Package]bool{}
	var out []*graph.Package
	var walk func(pkg *graph.Package)
	walk = func(pkg *graph.Package) {
		if pkg == nil || seen[pkg] {
			return
		}
		seen[pkg] = true
		out = append(out, pkg)
		for _, d := range pkg.Deps {
			walk(d)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

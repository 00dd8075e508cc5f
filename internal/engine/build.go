package engine

import (
	"context"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/paths"
	"github.com/bobbuildtool/bob/internal/scheduler"
)

// stepInfo recovers the context an executed graph.Step itself doesn't
// carry: which package produced it, needed to build its workspace path
// and BOB_* environment.
type stepInfo struct {
	Package *graph.Package
}

// BuildOptions controls one Build/Dev invocation.
type BuildOptions struct {
	RootFilter  []string
	KeepGoing   bool
	Concurrency int
	Resume      bool
}

// Expand expands every root recipe matching opts.RootFilter (falling
// back to the project's configured rootFilter, then every root: true
// recipe), canonicalizes structurally-identical packages reached via
// different dependency paths onto one representative so the scheduler's
// pointer-based dedup applies across the whole forest rather than only
// within one root's own subtree, and indexes every step back to its
// owning package.
func (e *Engine) Expand(filter []string) ([]*graph.Package, map[*graph.Step]stepInfo, error) {
	patterns := filter
	if len(patterns) == 0 {
		patterns = e.Config.RootFilter
	}

	expander := graph.NewExpander(e.Store)
	roots, err := expander.ExpandRoots(patterns)
	if err != nil {
		return nil, nil, err
	}
	if len(roots) == 0 {
		return nil, nil, ErrNoRoots
	}

	info := indexSteps(roots)
	canonicalizeDedup(expander.Dedup())
	return roots, info, nil
}

// indexSteps maps every step reachable from roots (via Deps, which
// covers every expanded package instance including ones later
// discarded by canonicalizeDedup) back to its owning package.
func indexSteps(roots []*graph.Package) map[*graph.Step]stepInfo {
	out := map[*graph.Step]stepInfo{}
	seen := map[*graph.Package]bool{}

	var walk func(pkg *graph.Package)
	walk = func(pkg *graph.Package) {
		if pkg == nil || seen[pkg] {
			return
		}
		seen[pkg] = true
		if pkg.Checkout != nil {
			out[pkg.Checkout] = stepInfo{Package: pkg}
		}
		if pkg.Build != nil {
			out[pkg.Build] = stepInfo{Package: pkg}
		}
		if pkg.Package != nil {
			out[pkg.Package] = stepInfo{Package: pkg}
		}
		for _, d := range pkg.Deps {
			walk(d)
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return out
}

// canonicalizeDedup rewrites in place the Inputs of every step reachable
// from a package in groups (Expander.Dedup registers every expanded
// package, roots included, so in practice every step) so that any
// reference to a package's Checkout/Build/Package step that turned out
// to be structurally identical to another package's (reached via a
// different dependency path) points at one representative's steps
// instead. Without this, internal/scheduler's pointer-keyed dedup only
// ever dedups work within a single root's own subtree: two roots
// depending on the same recipe with the same resolved inputs would
// otherwise build it twice, once per expansion.
func canonicalizeDedup(groups map[hash.Digest][]*graph.Package) {
	remap := map[*graph.Step]*graph.Step{}
	for _, group := range groups {
		if len(group) < 2 {
			continue
		}
		canonical := group[0]
		for _, dup := range group[1:] {
			if dup.Checkout != nil && canonical.Checkout != nil {
				remap[dup.Checkout] = canonical.Checkout
			}
			if dup.Build != nil && canonical.Build != nil {
				remap[dup.Build] = canonical.Build
			}
			if dup.Package != nil && canonical.Package != nil {
				remap[dup.Package] = canonical.Package
			}
		}
	}
	if len(remap) == 0 {
		return
	}

	seen := map[*graph.Step]bool{}
	var rewrite func(step *graph.Step)
	rewrite = func(step *graph.Step) {
		if step == nil || seen[step] {
			return
		}
		seen[step] = true
		for i, in := range step.Inputs {
			if canon, ok := remap[in]; ok {
				step.Inputs[i] = canon
			}
		}
		for _, in := range step.Inputs {
			rewrite(in)
		}
	}
	for _, group := range groups {
		for _, pkg := range group {
			rewrite(pkg.Checkout)
			rewrite(pkg.Build)
			rewrite(pkg.Package)
		}
	}
}

// Terminal returns a package's last step: Package if declared, else
// Build, else Checkout. Every dependency of a package is already
// reachable from its terminal step via Inputs, so the scheduler only
// needs a build forest's terminal steps as roots.
func Terminal(pkg *graph.Package) *graph.Step {
	switch {
	case pkg.Package != nil:
		return pkg.Package
	case pkg.Build != nil:
		return pkg.Build
	default:
		return pkg.Checkout
	}
}

// Build runs the release-mode pipeline over every matched root package.
func (e *Engine) Build(ctx context.Context, opts BuildOptions) error {
	return e.run(ctx, paths.Release, opts)
}

// Dev runs the develop-mode pipeline over every matched root package.
func (e *Engine) Dev(ctx context.Context, opts BuildOptions) error {
	return e.run(ctx, paths.Develop, opts)
}

func (e *Engine) run(ctx context.Context, mode paths.Mode, opts BuildOptions) error {
	e.Layout = paths.NewLayout(e.Layout.Root, mode)

	roots, info, err := e.Expand(opts.RootFilter)
	if err != nil {
		return err
	}
	e.steps = info

	terminals := make([]*graph.Step, 0, len(roots))
	for _, r := range roots {
		if t := Terminal(r); t != nil {
			terminals = append(terminals, t)
		}
	}

	if !opts.Resume {
		e.State.Statuses = map[string]scheduler.Status{}
	}

	runner := &scheduler.Runner{
		Concurrency: opts.Concurrency,
		KeepGoing:   opts.KeepGoing,
		State:       e.State,
		Execute:     e.executeStep,
	}
	return runner.Run(ctx, terminals)
}

package engine

import (
	"testing"

	"github.com/bobbuildtool/bob/internal/graph"
	"github.com/bobbuildtool/bob/internal/hash"
)

func TestIndexStepsWalksDeps(t *testing.T) {
	leaf := &graph.Package{RecipePath: "app/lib", Checkout: &graph.Step{}, Build: &graph.Step{}}
	root := &graph.Package{RecipePath: "app", Checkout: &graph.Step{}, Package: &graph.Step{}, Deps: []*graph.Package{leaf}}

	info := indexSteps([]*graph.Package{root})

	if info[root.Package].Package != root {
		t.Fatalf("root.Package not indexed to root")
	}
	if info[leaf.Checkout].Package != leaf {
		t.Fatalf("leaf.Checkout not indexed to leaf")
	}
	if info[leaf.Build].Package != leaf {
		t.Fatalf("leaf.Build not indexed to leaf")
	}
}

func TestTerminalPrefersPackageOverBuildOverCheckout(t *testing.T) {
	checkout := &graph.Step{}
	build := &graph.Step{}
	pkgStep := &graph.Step{}

	if got := Terminal(&graph.Package{Checkout: checkout}); got != checkout {
		t.Fatalf("expected checkout as terminal when only checkout is set")
	}
	if got := Terminal(&graph.Package{Checkout: checkout, Build: build}); got != build {
		t.Fatalf("expected build as terminal over checkout")
	}
	if got := Terminal(&graph.Package{Checkout: checkout, Build: build, Package: pkgStep}); got != pkgStep {
		t.Fatalf("expected package as terminal over build")
	}
}

// TestCanonicalizeDedupRewritesInputs builds two roots that each depend
// on their own instance of a structurally-identical leaf package, and
// checks that after canonicalizeDedup both roots' build steps reference
// the same leaf Build step. As in Expander.Dedup, the roots are
// registered too, each in its own singleton group.
func TestCanonicalizeDedupRewritesInputs(t *testing.T) {
	leafA := &graph.Package{RecipePath: "a/shared", Build: &graph.Step{}}
	leafB := &graph.Package{RecipePath: "b/shared", Build: &graph.Step{}}

	rootA := &graph.Package{RecipePath: "a", Build: &graph.Step{Inputs: []*graph.Step{leafA.Build}}, Deps: []*graph.Package{leafA}}
	rootB := &graph.Package{RecipePath: "b", Build: &graph.Step{Inputs: []*graph.Step{leafB.Build}}, Deps: []*graph.Package{leafB}}

	digest := hash.Digest{1}
	groups := map[hash.Digest][]*graph.Package{
		digest:         {leafA, leafB},
		hash.Digest{2}: {rootA},
		hash.Digest{3}: {rootB},
	}

	canonicalizeDedup(groups)

	if rootA.Build.Inputs[0] != leafA.Build {
		t.Fatalf("canonical group member's own reference should stay untouched")
	}
	if rootB.Build.Inputs[0] != leafA.Build {
		t.Fatalf("expected rootB to be rewritten onto leafA.Build, got %p want %p", rootB.Build.Inputs[0], leafA.Build)
	}
}

func TestCanonicalizeDedupIgnoresSingletonGroups(t *testing.T) {
	leaf := &graph.Package{RecipePath: "a/only", Build: &graph.Step{}}
	root := &graph.Package{RecipePath: "a", Build: &graph.Step{Inputs: []*graph.Step{leaf.Build}}, Deps: []*graph.Package{leaf}}

	groups := map[hash.Digest][]*graph.Package{{2}: {leaf}}
	canonicalizeDedup(groups)

	if root.Build.Inputs[0] != leaf.Build {
		t.Fatalf("singleton group must not rewrite anything")
	}
}

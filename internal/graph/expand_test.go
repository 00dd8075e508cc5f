package graph

import (
	"testing"

	"github.com/bobbuildtool/bob/internal/recipe"
)

func fixtureStore() *recipe.Store {
	return &recipe.Store{
		Recipes: map[string]*recipe.Recipe{
			"gcc-toolchain": {
				Name: "gcc-toolchain",
				ProvideTools: map[string]recipe.ToolProvide{
					"cc": {Path: "/usr/bin/gcc"},
				},
			},
			"clang-toolchain": {
				Name: "clang-toolchain",
				ProvideTools: map[string]recipe.ToolProvide{
					"cc": {Path: "/usr/bin/clang"},
				},
			},
			"lib": {
				Name: "lib",
				Build: &recipe.StepDef{
					Script: "build-lib",
					Tools:  []recipe.ToolRef{{Name: "cc"}},
				},
			},
			"app-gcc": {
				Name: "app-gcc",
				Root: true,
				Deps: []recipe.Dependency{
					{Name: "gcc-toolchain", Use: recipe.Use{Tools: true}, Forward: true},
					{Name: "lib", Use: recipe.Use{Results: true}},
				},
			},
			"app-clang": {
				Name: "app-clang",
				Root: true,
				Deps: []recipe.Dependency{
					{Name: "clang-toolchain", Use: recipe.Use{Tools: true}, Forward: true},
					{Name: "lib", Use: recipe.Use{Results: true}},
				},
			},
		},
	}
}

func TestExpandAmbiguousToolchainsProduceDistinctPackages(t *testing.T) {
	store := fixtureStore()
	e := NewExpander(store)

	roots, err := e.ExpandRoots(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(roots))
	}

	var gccLib, clangLib *Package
	for _, r := range roots {
		for _, d := range r.Deps {
			if d.RecipeName == "lib" {
				switch r.RecipeName {
				case "app-gcc":
					gccLib = d
				case "app-clang":
					clangLib = d
				}
			}
		}
	}
	if gccLib == nil || clangLib == nil {
		t.Fatal("expected both roots to expand a lib dependency")
	}
	if gccLib.Build.VariantId == clangLib.Build.VariantId {
		t.Fatal("lib built against different toolchains must have distinct Variant-Ids")
	}

	if len(e.Dedup()) < 2 {
		t.Fatalf("expected at least 2 distinct dedup groups, got %d", len(e.Dedup()))
	}
}

func TestExpandSameInputsDedup(t *testing.T) {
	store := &recipe.Store{
		Recipes: map[string]*recipe.Recipe{
			"leaf": {Name: "leaf", Build: &recipe.StepDef{Script: "build-leaf"}},
			"a":    {Name: "a", Root: true, Deps: []recipe.Dependency{{Name: "leaf", Use: recipe.Use{Results: true}}}},
			"b":    {Name: "b", Root: true, Deps: []recipe.Dependency{{Name: "leaf", Use: recipe.Use{Results: true}}}},
		},
	}
	e := NewExpander(store)
	roots, err := e.ExpandRoots(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(roots) != 2 {
		t.Fatalf("len(roots) = %d, want 2", len(roots))
	}
	var leafA, leafB *Package
	for _, r := range roots {
		for _, d := range r.Deps {
			if r.RecipeName == "a" {
				leafA = d
			} else {
				leafB = d
			}
		}
	}
	if leafA.Build.VariantId != leafB.Build.VariantId {
		t.Fatal("identical leaf dependency reached via two roots must share a Variant-Id")
	}
}

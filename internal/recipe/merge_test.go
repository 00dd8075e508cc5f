package recipe

import "testing"

func TestMergeRecipeScalarChildWins(t *testing.T) {
	base := &Recipe{Build: &StepDef{Script: "base-script"}}
	overlay := &Recipe{Build: &StepDef{Script: "overlay-script"}}

	out := mergeRecipe(base, overlay)
	if out.Build.Script != "overlay-script" {
		t.Fatalf("Build.Script = %q, want overlay-script", out.Build.Script)
	}
}

func TestMergeRecipeListsConcatenate(t *testing.T) {
	base := &Recipe{Deps: []Dependency{{Name: "a"}}}
	overlay := &Recipe{Deps: []Dependency{{Name: "b"}}}

	out := mergeRecipe(base, overlay)
	if len(out.Deps) != 2 || out.Deps[0].Name != "a" || out.Deps[1].Name != "b" {
		t.Fatalf("Deps = %+v, want [a b] in order", out.Deps)
	}
}

func TestMergeRecipeMapsMerge(t *testing.T) {
	base := &Recipe{ProvideVars: map[string]string{"A": "1", "B": "2"}}
	overlay := &Recipe{ProvideVars: map[string]string{"B": "override", "C": "3"}}

	out := mergeRecipe(base, overlay)
	want := map[string]string{"A": "1", "B": "override", "C": "3"}
	for k, v := range want {
		if out.ProvideVars[k] != v {
			t.Fatalf("ProvideVars[%s] = %q, want %q", k, out.ProvideVars[k], v)
		}
	}
}

func TestResolveClassesSelfCycle(t *testing.T) {
	classes := map[string]*Recipe{
		"a": {Name: "a", Classes: []string{"a"}},
	}
	_, err := ResolveClasses(classes)
	if err == nil {
		t.Fatal("expected error for self-inheriting class")
	}
}

func TestResolveClassesMutualCycle(t *testing.T) {
	classes := map[string]*Recipe{
		"a": {Name: "a", Classes: []string{"b"}},
		"b": {Name: "b", Classes: []string{"a"}},
	}
	_, err := ResolveClasses(classes)
	if err == nil {
		t.Fatal("expected error for mutually inheriting classes")
	}
}

func TestResolveClassesLinearInheritance(t *testing.T) {
	classes := map[string]*Recipe{
		"base": {Name: "base", ProvideVars: map[string]string{"X": "base"}},
		"mid":  {Name: "mid", Classes: []string{"base"}, ProvideVars: map[string]string{"X": "mid"}},
	}
	resolved, err := ResolveClasses(classes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved["mid"].ProvideVars["X"] != "mid" {
		t.Fatalf("mid.ProvideVars[X] = %q, want mid (child wins)", resolved["mid"].ProvideVars["X"])
	}
}

func TestResolveRecipeInheritsFromClassesInOrder(t *testing.T) {
	classes := map[string]*Recipe{
		"a": {Name: "a", ProvideVars: map[string]string{"X": "a"}},
		"b": {Name: "b", ProvideVars: map[string]string{"X": "b"}},
	}
	resolved, err := ResolveClasses(classes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r := &Recipe{Name: "app", Classes: []string{"a", "b"}}
	out, err := ResolveRecipe(r, resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.ProvideVars["X"] != "b" {
		t.Fatalf("ProvideVars[X] = %q, want b (later class wins, inherit-earlier-loses)", out.ProvideVars["X"])
	}
}

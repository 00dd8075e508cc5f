package recipe

import "testing"

func TestParseRecipeBasic(t *testing.T) {
	src := []byte(`
root: true
checkoutStep:
  script: "git clone ..."
buildStep:
  script: "make"
  tools: ["!gcc", "make"]
depends:
  - depends: libfoo
    use: ["result", "environment"]
`)
	recipes, err := ParseRecipe("app", src, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 1 {
		t.Fatalf("len(recipes) = %d, want 1", len(recipes))
	}
	r := recipes[0]
	if !r.Root {
		t.Fatal("expected root recipe")
	}
	if len(r.Build.Tools) != 2 || !r.Build.Tools[0].Strong || r.Build.Tools[0].Name != "gcc" {
		t.Fatalf("Build.Tools = %+v", r.Build.Tools)
	}
	if len(r.Deps) != 1 || r.Deps[0].Name != "libfoo" || !r.Deps[0].Use.Results || !r.Deps[0].Use.Env {
		t.Fatalf("Deps = %+v", r.Deps)
	}
}

func TestParseRecipeMultiPackage(t *testing.T) {
	src := []byte(`
buildStep:
  script: "make all"
multiPackage:
  "":
    packageStep:
      script: "make install-main"
  dev:
    packageStep:
      script: "make install-dev"
`)
	recipes, err := ParseRecipe("app", src, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recipes) != 2 {
		t.Fatalf("len(recipes) = %d, want 2", len(recipes))
	}

	names := map[string]*Recipe{}
	for _, r := range recipes {
		names[r.Name] = r
	}
	if _, ok := names["app"]; !ok {
		t.Fatalf("missing base variant, got names %v", keysOf(names))
	}
	if _, ok := names["app-dev"]; !ok {
		t.Fatalf("missing dev variant, got names %v", keysOf(names))
	}
	if names["app"].Build.Script != "make all" {
		t.Fatalf("base buildStep not inherited from shared base: %q", names["app"].Build.Script)
	}
	if names["app-dev"].Package.Script != "make install-dev" {
		t.Fatalf("dev packageStep = %q", names["app-dev"].Package.Script)
	}
}

func TestParseRecipeUnknownScmKind(t *testing.T) {
	src := []byte(`
checkoutSCM:
  - scm: "mercurial"
    url: "https://example.com/repo"
`)
	_, err := ParseRecipe("app", src, false)
	if err == nil {
		t.Fatal("expected error for unknown scm kind")
	}
}

func keysOf(m map[string]*Recipe) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

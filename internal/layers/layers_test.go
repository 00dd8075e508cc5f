package layers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/bobbuildtool/bob/internal/config"
)

func TestUpdateChecksOutEachLayer(t *testing.T) {
	source := t.TempDir()
	if err := os.WriteFile(filepath.Join(source, "recipe.yaml"), []byte("name: x\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	root := t.TempDir()
	m := &Manager{
		Root: root,
		Layers: []config.Layer{
			{Name: "vendor-a", Scm: config.Scm{Kind: "import", URL: source}},
		},
	}

	if err := m.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "vendor-a", "recipe.yaml")); err != nil {
		t.Fatalf("expected layer checked out: %v", err)
	}
}

func TestUpdateRejectsDuplicateNames(t *testing.T) {
	source := t.TempDir()
	m := &Manager{
		Root: t.TempDir(),
		Layers: []config.Layer{
			{Name: "dup", Scm: config.Scm{Kind: "import", URL: source}},
			{Name: "dup", Scm: config.Scm{Kind: "import", URL: source}},
		},
	}
	if err := m.Update(context.Background()); err == nil {
		t.Fatal("expected an error for duplicate layer names")
	}
}

func TestRecipeSearchPathOrdersProjectFirst(t *testing.T) {
	m := &Manager{
		Root: "/build/layers",
		Layers: []config.Layer{
			{Name: "a", Scm: config.Scm{Kind: "import"}},
			{Name: "b", Scm: config.Scm{Kind: "import"}},
		},
	}
	paths := m.RecipeSearchPath("/project/recipes")
	want := []string{
		"/project/recipes",
		"/build/layers/a/recipes",
		"/build/layers/b/recipes",
	}
	if len(paths) != len(want) {
		t.Fatalf("RecipeSearchPath = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("RecipeSearchPath[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestStatusReportsDigestPerLayer(t *testing.T) {
	source := t.TempDir()
	m := &Manager{
		Root: t.TempDir(),
		Layers: []config.Layer{
			{Name: "vendor-a", Scm: config.Scm{Kind: "import", URL: source}},
		},
	}
	statuses, err := m.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if len(statuses) != 1 || statuses[0].Name != "vendor-a" {
		t.Fatalf("Status = %v", statuses)
	}
}

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bobbuildtool/bob/internal/layers"
	"github.com/bobbuildtool/bob/internal/recipe"
)

// loadStore loads the project's own recipe store, then layers in each
// configured layer's recipes directory in search-path order, with the
// project's own recipes and earlier layers taking precedence over later
// ones (§6 "layers": "layer-local names take the lowest precedence").
func loadStore(projectRoot string, mgr *layers.Manager) (*recipe.Store, error) {
	store, err := recipe.Load(projectRoot)
	if err != nil {
		return nil, err
	}

	searchPath := mgr.RecipeSearchPath(filepath.Join(projectRoot, "recipes"))
	for _, dir := range searchPath[1:] {
		extra, err := loadLayerRecipes(dir, store.Classes)
		if err != nil {
			return nil, err
		}
		for name, r := range extra {
			if _, exists := store.Recipes[name]; exists {
				continue
			}
			store.Recipes[name] = r
		}
	}
	return store, nil
}

// loadLayerRecipes parses every *.yaml file directly under dir as a
// recipe (layers contribute recipes only, never classes) and resolves
// it against the project's already-resolved classes, mirroring
// internal/recipe.Store.Load's own recipe pass.
func loadLayerRecipes(dir string, classes map[string]*recipe.Recipe) (map[string]*recipe.Recipe, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]*recipe.Recipe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading layer recipes %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAMLFile(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make(map[string]*recipe.Recipe)
	for _, fname := range names {
		base := strings.TrimSuffix(strings.TrimSuffix(fname, ".yaml"), ".yml")
		src, err := os.ReadFile(filepath.Join(dir, fname))
		if err != nil {
			return nil, err
		}
		parsed, err := recipe.ParseRecipe(base, src, false)
		if err != nil {
			return nil, err
		}
		for _, r := range parsed {
			merged, err := recipe.ResolveRecipe(r, classes)
			if err != nil {
				return nil, fmt.Errorf("layer recipe %s: %w", r.Name, err)
			}
			out[merged.Name] = merged
		}
	}
	return out, nil
}

func isYAMLFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

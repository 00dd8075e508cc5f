package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is the fully-parsed and class-resolved recipe set for one project
// root: every recipes/*.yaml file (root and non-root recipes, including
// multiPackage expansions) merged against every classes/*.yaml file.
type Store struct {
	Recipes map[string]*Recipe
	Classes map[string]*Recipe // resolved, IsClass set
}

// Load reads classes/*.yaml and recipes/*.yaml under root, resolves class
// inheritance, and merges every recipe against its class list.
func Load(root string) (*Store, error) {
	rawClasses, err := loadDir(filepath.Join(root, "classes"), true)
	if err != nil {
		return nil, err
	}
	resolvedClasses, err := ResolveClasses(rawClasses)
	if err != nil {
		return nil, err
	}

	rawRecipes, err := loadDir(filepath.Join(root, "recipes"), false)
	if err != nil {
		return nil, err
	}

	recipes := make(map[string]*Recipe, len(rawRecipes))
	for name, r := range rawRecipes {
		merged, err := ResolveRecipe(r, resolvedClasses)
		if err != nil {
			return nil, fmt.Errorf("recipe %s: %w", name, err)
		}
		recipes[name] = merged
	}

	return &Store{Recipes: recipes, Classes: resolvedClasses}, nil
}

// loadDir parses every *.yaml file directly under dir. A file with no
// multiPackage block contributes one entity named after the file; a
// multiPackage file contributes one entity per map key, suffixed onto the
// file's base name.
func loadDir(dir string, isClass bool) (map[string]*Recipe, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return map[string]*Recipe{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidYAML, dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isYAML(e.Name()) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make(map[string]*Recipe)
	for _, fname := range names {
		base := strings.TrimSuffix(strings.TrimSuffix(fname, ".yaml"), ".yml")
		src, err := os.ReadFile(filepath.Join(dir, fname))
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYAML, fname, err)
		}
		parsed, err := ParseRecipe(base, src, isClass)
		if err != nil {
			return nil, err
		}
		for _, r := range parsed {
			if _, dup := out[r.Name]; dup {
				return nil, fmt.Errorf("%w: duplicate entity name %q", ErrInvalidYAML, r.Name)
			}
			out[r.Name] = r
		}
	}
	return out, nil
}

func isYAML(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}

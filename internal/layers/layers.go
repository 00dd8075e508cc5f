package layers

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/config"
	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/recipe"
	"github.com/bobbuildtool/bob/internal/scm"
)

// Status describes one layer's current checkout state for the
// "layers status" CLI contract.
type Status struct {
	Name      string
	Workspace string
	Digest    scm.StateVector
	Dirty     bool
}

// Manager checks out and tracks the project's configured layers.
type Manager struct {
	Root   string // directory layers are checked out under
	Layers []config.Layer
}

// toRecipeScm converts a config-level Scm declaration into the shape
// internal/scm expects, since layers are configured independently of
// recipe YAML but checked out through the same SCM implementations.
func toRecipeScm(s config.Scm) (recipe.Scm, error) {
	var kind recipe.ScmKind
	switch s.Kind {
	case "git":
		kind = recipe.ScmGit
	case "svn":
		kind = recipe.ScmSvn
	case "url":
		kind = recipe.ScmUrl
	case "cvs":
		kind = recipe.ScmCvs
	case "import":
		kind = recipe.ScmImport
	default:
		return recipe.Scm{}, fmt.Errorf("%w: %q", ErrUnknownScmKind, s.Kind)
	}
	return recipe.Scm{
		Kind:      kind,
		URL:       s.URL,
		Branch:    s.Branch,
		Tag:       s.Tag,
		Commit:    s.Commit,
		Submodule: s.Submodule,
		Dir:       s.Dir,
	}, nil
}

func (m *Manager) workspace(name string) string {
	return filepath.Join(m.Root, name)
}

// Update checks out (or re-syncs) every configured layer. A layer
// workspace its SCM reports as dirty is first moved to the attic;
// otherwise the SCM's Checkout updates the existing workspace in place.
// A change of a layer's URL or ref alone does not move its workspace to
// the attic.
func (m *Manager) Update(ctx context.Context) error {
	seen := map[string]bool{}
	for _, l := range m.Layers {
		if seen[l.Name] {
			return fmt.Errorf("%w: %q", ErrDuplicateLayerName, l.Name)
		}
		seen[l.Name] = true

		decl, err := toRecipeScm(l.Scm)
		if err != nil {
			return err
		}
		impl, err := scm.New(decl)
		if err != nil {
			return err
		}

		workspace := m.workspace(l.Name)
		if dirty, _ := impl.Dirty(ctx, workspace); dirty {
			if err := atticMove(workspace, layerVariantID(l.Name)); err != nil {
				return err
			}
		}

		if err := impl.Checkout(ctx, workspace); err != nil {
			return fmt.Errorf("updating layer %s: %w", l.Name, err)
		}
		slog.Info("layer updated", "name", l.Name, "workspace", workspace)
	}
	return nil
}

// Status reports the checkout state of every configured layer without
// mutating any workspace.
func (m *Manager) Status(ctx context.Context) ([]Status, error) {
	var out []Status
	for _, l := range m.Layers {
		decl, err := toRecipeScm(l.Scm)
		if err != nil {
			return nil, err
		}
		impl, err := scm.New(decl)
		if err != nil {
			return nil, err
		}
		workspace := m.workspace(l.Name)
		dirty, _ := impl.Dirty(ctx, workspace)
		out = append(out, Status{
			Name:      l.Name,
			Workspace: workspace,
			Digest:    impl.Digest(),
			Dirty:     dirty,
		})
	}
	return out, nil
}

// RecipeSearchPath returns the project's own recipe directory followed
// by each layer's recipe directory in declaration order, so a name
// defined by two layers resolves to the earlier one and the project's
// own recipes always take precedence over any layer (§6/[MODULE]
// Layers: "layer-local names take the lowest precedence").
func (m *Manager) RecipeSearchPath(projectRecipeDir string) []string {
	paths := []string{projectRecipeDir}
	for _, l := range m.Layers {
		paths = append(paths, filepath.Join(m.workspace(l.Name), "recipes"))
	}
	return paths
}

// atticMove is a thin wrapper kept separate so tests can stub it out
// without touching the filesystem.
var atticMove = scm.MoveToAttic

// layerVariantID stands in for a recipe step's Variant-Id when attic-ing
// a layer workspace: layers have no graph step of their own, so the
// attic entry is tagged by a digest of the layer's name instead.
func layerVariantID(name string) hash.Digest {
	return hash.H(hash.Map{"layer": hash.Str(name)})
}

package scm

import (
	"context"
	"errors"
	"fmt"

	"github.com/bobbuildtool/bob/internal/recipe"
)

// ErrUnsupportedKind is returned by New for an Scm kind not in the
// closed sum type (§9 "Replacing dynamic dispatch").
var ErrUnsupportedKind = errors.New("unsupported scm kind")

// Scm is the interface every concrete SCM backend implements (§4.5).
type Scm interface {
	// Digest returns the deterministic state vector for this
	// declaration.
	Digest() StateVector
	// Dirty reports whether the workspace has changes the SCM considers
	// uncommitted/unexpected, by its own notion of dirtiness.
	Dirty(ctx context.Context, workspace string) (bool, error)
	// Checkout materializes this declaration's state into workspace,
	// either by cloning fresh or updating an existing clone in place.
	Checkout(ctx context.Context, workspace string) error
}

// New constructs the concrete Scm backend for a recipe's SCM declaration.
func New(s recipe.Scm) (Scm, error) {
	switch s.Kind {
	case recipe.ScmGit:
		return NewGit(s), nil
	case recipe.ScmUrl:
		return NewURL(s), nil
	case recipe.ScmImport:
		return NewImport(s), nil
	case recipe.ScmSvn:
		return NewSvn(s), nil
	case recipe.ScmCvs:
		return NewCvs(s), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedKind, s.Kind)
	}
}

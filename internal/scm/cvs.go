package scm

import (
	"context"
	"os"

	"github.com/bobbuildtool/bob/internal/recipe"
)

// Cvs is a thin adapter over the `cvs` command-line client, same
// rationale as Svn: the CVS protocol itself is not reimplemented.
type Cvs struct {
	decl recipe.Scm
}

// NewCvs builds a Cvs backend for decl.
func NewCvs(decl recipe.Scm) *Cvs { return &Cvs{decl: decl} }

func (c *Cvs) Digest() StateVector { return FromScm(c.decl) }

func (c *Cvs) Dirty(ctx context.Context, workspace string) (bool, error) {
	out, err := runCommand(ctx, workspace, "cvs", "-q", "diff")
	if err != nil {
		return false, err
	}
	return len(out) > 0, nil
}

func (c *Cvs) Checkout(ctx context.Context, workspace string) error {
	if _, err := os.Stat(workspace); os.IsNotExist(err) {
		_, err := runCommand(ctx, "", "cvs", "-d", c.decl.URL, "checkout", "-d", workspace, c.decl.Dir)
		return err
	}
	_, err := runCommand(ctx, workspace, "cvs", "update")
	return err
}

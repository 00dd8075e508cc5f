package scm

import (
	"context"
	"os"
	"os/exec"

	"github.com/bobbuildtool/bob/internal/recipe"
)

// Svn is a thin adapter over the `svn` command-line client. Unlike Git,
// Bob does not reimplement Subversion's wire protocol — svn's CLI
// surface is treated as a fixed external interface, same as the
// namespace-sandbox helper (§1 "out of scope").
type Svn struct {
	decl recipe.Scm
}

// NewSvn builds an Svn backend for decl.
func NewSvn(decl recipe.Scm) *Svn { return &Svn{decl: decl} }

func (s *Svn) Digest() StateVector { return FromScm(s.decl) }

func (s *Svn) Dirty(ctx context.Context, workspace string) (bool, error) {
	out, err := runCommand(ctx, workspace, "svn", "status")
	if err != nil {
		return false, err
	}
	return len(out) > 0, nil
}

func (s *Svn) Checkout(ctx context.Context, workspace string) error {
	if _, err := os.Stat(workspace); os.IsNotExist(err) {
		ref := s.decl.URL
		if s.decl.Commit != "" {
			ref += "@" + s.decl.Commit
		}
		_, err := runCommand(ctx, "", "svn", "checkout", ref, workspace)
		return err
	}
	_, err := runCommand(ctx, workspace, "svn", "update")
	return err
}

func runCommand(ctx context.Context, dir string, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

package scm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	"github.com/bobbuildtool/bob/internal/recipe"
)

// Git checks out a git SCM declaration via go-git, replacing the
// original tool's shell-out to the `git` binary with an equivalent
// pure-Go implementation of the same checkout/fetch/submodule contract.
type Git struct {
	decl    recipe.Scm
	Timeout time.Duration // scm.git.timeout config key
}

// NewGit builds a Git backend for decl.
func NewGit(decl recipe.Scm) *Git {
	return &Git{decl: decl, Timeout: 5 * time.Minute}
}

func (g *Git) Digest() StateVector { return FromScm(g.decl) }

func (g *Git) Dirty(ctx context.Context, workspace string) (bool, error) {
	repo, err := git.PlainOpen(workspace)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("opening %s: %w", workspace, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return false, fmt.Errorf("worktree %s: %w", workspace, err)
	}
	status, err := wt.Status()
	if err != nil {
		return false, fmt.Errorf("status %s: %w", workspace, err)
	}
	return !status.IsClean(), nil
}

// Checkout clones the repository into workspace if it doesn't exist yet,
// otherwise fetches and checks out the declared ref in place. Network
// operations retry with exponential backoff (cenkalti/backoff), since
// transient fetch/clone failures must not immediately attic-move a
// perfectly good workspace.
func (g *Git) Checkout(ctx context.Context, workspace string) error {
	ctx, cancel := context.WithTimeout(ctx, g.Timeout)
	defer cancel()

	repo, err := git.PlainOpen(workspace)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return g.clone(ctx, workspace)
	}
	if err != nil {
		return fmt.Errorf("opening %s: %w", workspace, err)
	}
	return g.fetchAndCheckout(ctx, repo)
}

func (g *Git) clone(ctx context.Context, workspace string) error {
	return retryNetwork(ctx, func() error {
		opts := &git.CloneOptions{
			URL:               g.decl.URL,
			RecurseSubmodules: submoduleRecursion(g.decl.Submodule),
		}
		if g.decl.Branch != "" {
			opts.ReferenceName = plumbing.NewBranchReferenceName(g.decl.Branch)
		}
		repo, err := git.PlainCloneContext(ctx, workspace, false, opts)
		if err != nil {
			return err
		}
		return g.checkoutRef(repo)
	})
}

func (g *Git) fetchAndCheckout(ctx context.Context, repo *git.Repository) error {
	err := retryNetwork(ctx, func() error {
		err := repo.FetchContext(ctx, &git.FetchOptions{})
		if errors.Is(err, git.NoErrAlreadyUpToDate) {
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	return g.checkoutRef(repo)
}

func (g *Git) checkoutRef(repo *git.Repository) error {
	wt, err := repo.Worktree()
	if err != nil {
		return err
	}
	opts := &git.CheckoutOptions{Force: true}
	switch {
	case g.decl.Commit != "":
		opts.Hash = plumbing.NewHash(g.decl.Commit)
	case g.decl.Tag != "":
		opts.Branch = plumbing.NewTagReferenceName(g.decl.Tag)
	case g.decl.Branch != "":
		opts.Branch = plumbing.NewRemoteReferenceName("origin", g.decl.Branch)
	}
	return wt.Checkout(opts)
}

func submoduleRecursion(enabled bool) git.SubmoduleRescursivity {
	if enabled {
		return git.DefaultSubmoduleRecursionDepth
	}
	return git.NoRecurseSubmodules
}

// retryNetwork retries fn with exponential backoff, giving up on context
// cancellation, when the backoff's elapsed-time limit is reached, or on
// an authentication-required error; every other error is retried.
func retryNetwork(ctx context.Context, fn func() error) error {
	policy := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)
	return backoff.Retry(func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, transport.ErrAuthenticationRequired) {
			return backoff.Permanent(err)
		}
		return err
	}, policy)
}

package scm

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/recipe"
)

// Import mirrors a local filesystem directory into the workspace. It
// always refreshes its destination, even in build-only mode, and never
// triggers an attic move of its own accord except when the import path
// itself changes (§4.5).
type Import struct {
	decl recipe.Scm
}

// NewImport builds an Import backend for decl. decl.URL holds the
// source path on the local filesystem.
func NewImport(decl recipe.Scm) *Import { return &Import{decl: decl} }

func (i *Import) Digest() StateVector { return FromScm(i.decl) }

func (i *Import) Dirty(ctx context.Context, workspace string) (bool, error) {
	return false, nil
}

// Checkout re-syncs the workspace from the import source unconditionally.
func (i *Import) Checkout(ctx context.Context, workspace string) error {
	if err := os.RemoveAll(workspace); err != nil {
		return err
	}
	return copyTree(i.decl.URL, workspace)
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

package scm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/bobbuildtool/bob/internal/recipe"
)

// ErrHashMismatch is returned when a downloaded file's digest doesn't
// match the declared digestSHA256 entry.
var ErrHashMismatch = errors.New("downloaded file hash mismatch")

// URL downloads a single file by HTTP(S) GET and verifies its hash sum,
// per the url SCM kind.
type URL struct {
	decl recipe.Scm
}

// NewURL builds a URL backend for decl.
func NewURL(decl recipe.Scm) *URL { return &URL{decl: decl} }

func (u *URL) Digest() StateVector { return FromScm(u.decl) }

func (u *URL) Dirty(ctx context.Context, workspace string) (bool, error) {
	path := filepath.Join(workspace, u.destName())
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return true, nil
	}
	return false, err
}

func (u *URL) destName() string {
	if u.decl.Dir != "" {
		return u.decl.Dir
	}
	return filepath.Base(u.decl.URL)
}

// Checkout downloads the declared URL into workspace and verifies any
// declared digestSHA256 entries, retrying transient network failures.
func (u *URL) Checkout(ctx context.Context, workspace string) error {
	return retryNetwork(ctx, func() error {
		dest := filepath.Join(workspace, u.destName())
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.decl.URL, nil)
		if err != nil {
			return err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("GET %s: %s", u.decl.URL, resp.Status)
		}

		f, err := os.Create(dest)
		if err != nil {
			return err
		}
		defer f.Close()

		h := sha256.New()
		if _, err := io.Copy(io.MultiWriter(f, h), resp.Body); err != nil {
			return err
		}

		if want, ok := u.decl.HashSums[u.destName()]; ok {
			got := hex.EncodeToString(h.Sum(nil))
			if got != want {
				return fmt.Errorf("%w: %s: want %s, got %s", ErrHashMismatch, dest, want, got)
			}
		}
		return nil
	})
}

package scm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/recipe"
)

func TestDecideTransitionNoOp(t *testing.T) {
	v := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git", Branch: "main"}
	if got := DecideTransition(v, v, false); got != NoOp {
		t.Fatalf("got %v, want NoOp", got)
	}
}

func TestDecideTransitionDirtyForcesNonNoOp(t *testing.T) {
	v := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git", Branch: "main"}
	if got := DecideTransition(v, v, true); got == NoOp {
		t.Fatal("a dirty workspace must not resolve to NoOp even with identical state")
	}
}

func TestDecideTransitionGitBranchChangeInPlace(t *testing.T) {
	old := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git", Branch: "main"}
	new_ := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git", Branch: "release"}
	if got := DecideTransition(old, new_, false); got != InPlaceUpdate {
		t.Fatalf("got %v, want InPlaceUpdate", got)
	}
}

func TestDecideTransitionUrlChangeAtticMoves(t *testing.T) {
	old := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git"}
	new_ := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/other.git"}
	if got := DecideTransition(old, new_, false); got != AtticMove {
		t.Fatalf("got %v, want AtticMove", got)
	}
}

func TestDecideTransitionSubmodulePolicyChangeAlwaysAttics(t *testing.T) {
	old := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git", Submodule: false}
	new_ := StateVector{Kind: recipe.ScmGit, URL: "https://example.com/repo.git", Submodule: true}
	if got := DecideTransition(old, new_, false); got != AtticMove {
		t.Fatalf("got %v, want AtticMove", got)
	}
}

func TestDecideTransitionUrlScmDigestOnlyChangeInPlace(t *testing.T) {
	old := StateVector{Kind: recipe.ScmUrl, URL: "https://example.com/file.tgz", HashSums: map[string]string{"file.tgz": "aaa"}}
	new_ := StateVector{Kind: recipe.ScmUrl, URL: "https://example.com/file.tgz", HashSums: map[string]string{"file.tgz": "bbb"}}
	if got := DecideTransition(old, new_, false); got != InPlaceUpdate {
		t.Fatalf("got %v, want InPlaceUpdate", got)
	}
}

func TestMoveToAtticPreservesContent(t *testing.T) {
	root := t.TempDir()
	workspace := filepath.Join(root, "workspace")
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(workspace, "marker"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	variantID := hash.H(hash.Str("test-variant"))
	if err := MoveToAttic(workspace, variantID); err != nil {
		t.Fatalf("MoveToAttic: %v", err)
	}
	if _, err := os.Stat(workspace); !os.IsNotExist(err) {
		t.Fatal("expected workspace to be gone after attic move")
	}

	entries, err := os.ReadDir(filepath.Join(root, "attic"))
	if err != nil {
		t.Fatalf("reading attic dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected exactly one attic entry, got %d", len(entries))
	}
	if _, err := os.Stat(filepath.Join(root, "attic", entries[0].Name(), "marker")); err != nil {
		t.Fatalf("expected marker file preserved in attic: %v", err)
	}
}

func TestMoveToAtticNoopOnMissingWorkspace(t *testing.T) {
	if err := MoveToAttic(filepath.Join(t.TempDir(), "does-not-exist"), hash.Digest{}); err != nil {
		t.Fatalf("MoveToAttic on missing workspace: %v", err)
	}
}

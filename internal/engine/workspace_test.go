package engine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/paths"
	"github.com/bobbuildtool/bob/internal/scm"
)

func TestWorkspaceIndexResolveWipesOnVariantChangeInRelease(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenWorkspaceIndex(filepath.Join(dir, ".bob-index.json"))
	if err != nil {
		t.Fatalf("OpenWorkspaceIndex: %v", err)
	}
	layout := paths.NewLayout(dir, paths.Release)

	variant1 := hash.Digest{1}
	ws, err := idx.Resolve(layout, "app", paths.StageBuild, variant1, paths.Release)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := os.MkdirAll(ws, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	marker := filepath.Join(ws, "marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	variant2 := hash.Digest{2}
	ws2, err := idx.Resolve(layout, "app", paths.StageBuild, variant2, paths.Release)
	if err != nil {
		t.Fatalf("Resolve (2nd): %v", err)
	}
	if ws2 != ws {
		t.Fatalf("workspace path should be stable across variant changes, got %q want %q", ws2, ws)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatalf("expected workspace to be wiped on variant change in release mode")
	}
}

func TestWorkspaceIndexResolveKeepsWorkspaceInDevelop(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenWorkspaceIndex(filepath.Join(dir, ".bob-index.json"))
	if err != nil {
		t.Fatalf("OpenWorkspaceIndex: %v", err)
	}
	layout := paths.NewLayout(dir, paths.Develop)

	variant1 := hash.Digest{1}
	ws, err := idx.Resolve(layout, "app", paths.StageBuild, variant1, paths.Develop)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := os.MkdirAll(ws, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	marker := filepath.Join(ws, "marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	variant2 := hash.Digest{2}
	if _, err := idx.Resolve(layout, "app", paths.StageBuild, variant2, paths.Develop); err != nil {
		t.Fatalf("Resolve (2nd): %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("develop mode must never auto-wipe a changed workspace: %v", err)
	}
}

func TestWorkspaceIndexNeverWipesCheckoutStage(t *testing.T) {
	dir := t.TempDir()
	idx, err := OpenWorkspaceIndex(filepath.Join(dir, ".bob-index.json"))
	if err != nil {
		t.Fatalf("OpenWorkspaceIndex: %v", err)
	}
	layout := paths.NewLayout(dir, paths.Release)

	ws, err := idx.Resolve(layout, "app", paths.StageSrc, hash.Digest{1}, paths.Release)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if err := os.MkdirAll(ws, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	marker := filepath.Join(ws, "marker")
	if err := os.WriteFile(marker, []byte("x"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := idx.Resolve(layout, "app", paths.StageSrc, hash.Digest{2}, paths.Release); err != nil {
		t.Fatalf("Resolve (2nd): %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("checkout stage must never be auto-wiped by Resolve: %v", err)
	}
}

func TestWorkspaceIndexPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".bob-index.json")

	idx, err := OpenWorkspaceIndex(path)
	if err != nil {
		t.Fatalf("OpenWorkspaceIndex: %v", err)
	}
	key := "app#scm#0"
	state := scm.StateVector{Kind: "git", URL: "https://example.com/repo.git", Commit: "deadbeef"}
	if err := idx.RecordScmState(key, state); err != nil {
		t.Fatalf("RecordScmState: %v", err)
	}

	reopened, err := OpenWorkspaceIndex(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, ok := reopened.PriorScmState(key)
	if !ok {
		t.Fatalf("expected persisted scm state to survive reopen")
	}
	if got.Commit != "deadbeef" {
		t.Fatalf("got commit %q, want %q", got.Commit, "deadbeef")
	}
}

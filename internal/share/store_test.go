package share

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bobbuildtool/bob/internal/hash"
)

func digestOf(b byte) hash.Digest {
	var d hash.Digest
	d[0] = b
	return d
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestInstallAndLookup(t *testing.T) {
	root := t.TempDir()
	content := t.TempDir()
	writeFile(t, filepath.Join(content, "bin", "tool"), 128)

	s := &Store{Root: root}
	d := digestOf(1)
	workspace, err := s.Install(d, content)
	if err != nil {
		t.Fatalf("Install: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workspace, "bin", "tool")); err != nil {
		t.Fatalf("expected installed file: %v", err)
	}

	dir, ok := s.Lookup(d)
	if !ok {
		t.Fatal("expected Lookup to find the install")
	}
	if filepath.Join(dir, "workspace") != workspace {
		t.Fatalf("Lookup dir = %s, want parent of %s", dir, workspace)
	}
}

func TestLookupMissing(t *testing.T) {
	s := &Store{Root: t.TempDir()}
	if _, ok := s.Lookup(digestOf(9)); ok {
		t.Fatal("expected no install to be found")
	}
}

func TestReclaimEvictsOldestFirst(t *testing.T) {
	root := t.TempDir()
	s := &Store{Root: root, Quota: 150}

	restore := installTime
	defer func() { installTime = restore }()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, size := range []int{100, 100, 100} {
		content := t.TempDir()
		writeFile(t, filepath.Join(content, "f"), size)
		at := base.Add(time.Duration(i) * time.Hour)
		installTime = func() time.Time { return at }
		if _, err := s.Install(digestOf(byte(i+1)), content); err != nil {
			t.Fatalf("Install %d: %v", i, err)
		}
	}

	if err := s.Reclaim(context.Background()); err != nil {
		t.Fatalf("Reclaim: %v", err)
	}

	if _, ok := s.Lookup(digestOf(1)); ok {
		t.Fatal("oldest install should have been reclaimed")
	}
	if _, ok := s.Lookup(digestOf(3)); !ok {
		t.Fatal("newest install should survive reclamation")
	}
}

func TestCleanAllUnusedRemovesDeadInstalls(t *testing.T) {
	root := t.TempDir()
	s := &Store{Root: root}

	content := t.TempDir()
	writeFile(t, filepath.Join(content, "f"), 10)

	live := digestOf(1)
	dead := digestOf(2)
	if _, err := s.Install(live, content); err != nil {
		t.Fatalf("Install live: %v", err)
	}
	if _, err := s.Install(dead, content); err != nil {
		t.Fatalf("Install dead: %v", err)
	}

	if err := s.Clean(context.Background(), true, map[string]bool{live.String(): true}); err != nil {
		t.Fatalf("Clean: %v", err)
	}

	if _, ok := s.Lookup(live); !ok {
		t.Fatal("live install must survive clean --all-unused")
	}
	if _, ok := s.Lookup(dead); ok {
		t.Fatal("dead install must be removed by clean --all-unused")
	}
}

func TestScanSkipsInvalidDescriptor(t *testing.T) {
	root := t.TempDir()
	bogus := filepath.Join(root, "aa", "bb", "cccc-0")
	if err := os.MkdirAll(bogus, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(bogus, descriptorName), []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := &Store{Root: root}
	installs, err := s.scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(installs) != 0 {
		t.Fatalf("expected invalid descriptor to be skipped, got %d installs", len(installs))
	}
}

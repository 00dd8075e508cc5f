package engine

import (
	"testing"

	"github.com/bobbuildtool/bob/internal/graph"
)

func TestToolPathsOrdersByNameAndJoinsLibraryPaths(t *testing.T) {
	tools := map[string]graph.Tool{
		"zcc": {Path: "/opt/zcc/bin", LibraryPaths: []string{"/opt/zcc/lib"}},
		"acc": {Path: "/opt/acc/bin", LibraryPaths: []string{"/opt/acc/lib"}},
	}

	path, ld := toolPaths(tools)

	if path != "/opt/acc/bin:/opt/zcc/bin" {
		t.Fatalf("got path %q, want tools ordered by name", path)
	}
	if ld != "/opt/acc/lib:/opt/zcc/lib" {
		t.Fatalf("got ld path %q, want library paths ordered by tool name", ld)
	}
}

func TestToolPathsSkipsToolsWithoutAPath(t *testing.T) {
	tools := map[string]graph.Tool{
		"headers-only": {LibraryPaths: []string{"/opt/h/include"}},
	}
	path, ld := toolPaths(tools)
	if path != "" {
		t.Fatalf("expected no PATH entry for a tool without Path, got %q", path)
	}
	if ld != "/opt/h/include" {
		t.Fatalf("library path should still be collected, got %q", ld)
	}
}

func TestJoinPaths(t *testing.T) {
	if got := joinPaths(nil); got != "" {
		t.Fatalf("joinPaths(nil) = %q, want empty", got)
	}
	if got := joinPaths([]string{"a"}); got != "a" {
		t.Fatalf("joinPaths single = %q, want %q", got, "a")
	}
	if got := joinPaths([]string{"a", "b", "c"}); got != "a:b:c" {
		t.Fatalf("joinPaths = %q, want %q", got, "a:b:c")
	}
}

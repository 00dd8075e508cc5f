package paths

import (
	"path/filepath"
	"testing"

	"github.com/bobbuildtool/bob/internal/identity"
)

func TestStageOf(t *testing.T) {
	cases := map[identity.StepKind]Stage{
		identity.Checkout: StageSrc,
		identity.Build:    StageBuild,
		identity.Package:  StageDist,
	}
	for kind, want := range cases {
		if got := StageOf(kind); got != want {
			t.Fatalf("StageOf(%v) = %v, want %v", kind, got, want)
		}
	}
}

func TestWorkspaceReleaseLayout(t *testing.T) {
	l := NewLayout("/tree", Release)
	got := l.Workspace("app/lib", StageBuild, 3)
	want := filepath.Join("/tree", "work", "app/lib", "build", "3", "workspace")
	if got != want {
		t.Fatalf("Workspace = %q, want %q", got, want)
	}
}

func TestWorkspaceDevelopLayout(t *testing.T) {
	l := NewLayout("/tree", Develop)
	got := l.Workspace("app/lib", StageBuild, 3)
	want := filepath.Join("/tree", "dev", "build", "app/lib", "3", "workspace")
	if got != want {
		t.Fatalf("Workspace = %q, want %q", got, want)
	}
}

func TestAtticIsSiblingOfGenerations(t *testing.T) {
	l := NewLayout("/tree", Release)
	workspace := l.Workspace("app/lib", StageSrc, 0)
	attic := l.Attic("app/lib", StageSrc)
	if filepath.Dir(filepath.Dir(workspace)) != filepath.Dir(attic) {
		t.Fatalf("attic %q is not a sibling of generation dir in %q", attic, workspace)
	}
}

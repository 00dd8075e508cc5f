package identity

import (
	"testing"

	"github.com/bobbuildtool/bob/internal/hash"
)

func TestVariantIDStableAcrossEnvOrder(t *testing.T) {
	a := VariantID(StepShape{Kind: Build, Script: "make", Env: map[string]string{"A": "1", "B": "2"}})
	b := VariantID(StepShape{Kind: Build, Script: "make", Env: map[string]string{"B": "2", "A": "1"}})
	if a != b {
		t.Fatal("env map iteration order must not affect VariantID")
	}
}

func TestVariantIDWeakToolIgnoresContent(t *testing.T) {
	base := StepShape{Kind: Build, Script: "make", Tools: []ToolInput{{Name: "gcc", Path: "/bin/gcc"}}}
	a := VariantID(base)

	changed := base
	changed.Tools = []ToolInput{{Name: "gcc", Path: "/bin/gcc-other"}}
	// Path change on a weak tool does affect identity (path is always hashed);
	// but VariantId/ProvidedEnv changes on a weak tool must not.
	weakContentChanged := base
	weakContentChanged.Tools = []ToolInput{{Name: "gcc", Path: "/bin/gcc", VariantId: [32]byte{1}}}
	c := VariantID(weakContentChanged)
	if a != c {
		t.Fatal("weak tool's VariantId must not affect step VariantID")
	}

	b := VariantID(changed)
	if a == b {
		t.Fatal("tool path change must affect VariantID")
	}
}

func TestVariantIDStrongToolContentMatters(t *testing.T) {
	a := VariantID(StepShape{Kind: Build, Tools: []ToolInput{{Name: "gcc", Strong: true, VariantId: [32]byte{1}}}})
	b := VariantID(StepShape{Kind: Build, Tools: []ToolInput{{Name: "gcc", Strong: true, VariantId: [32]byte{2}}}})
	if a == b {
		t.Fatal("strong tool's VariantId must affect step VariantID")
	}
}

func TestVariantIDRenameWeakToolChangesIdentity(t *testing.T) {
	a := VariantID(StepShape{Kind: Build, Tools: []ToolInput{{Name: "gcc"}}})
	b := VariantID(StepShape{Kind: Build, Tools: []ToolInput{{Name: "clang"}}})
	if a == b {
		t.Fatal("renaming a tool must change VariantID even when weak")
	}
}

func TestVariantIDInputOrderMatters(t *testing.T) {
	var d1, d2 hash.Digest
	d1[0] = 1
	d2[0] = 2

	a := VariantID(StepShape{Kind: Build, Inputs: []hash.Digest{d1, d2}})
	b := VariantID(StepShape{Kind: Build, Inputs: []hash.Digest{d2, d1}})
	if a == b {
		t.Fatal("input step order must affect VariantID")
	}
}

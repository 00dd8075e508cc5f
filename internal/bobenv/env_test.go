package bobenv

import "testing"

func TestSetAppendsNewOverridesExisting(t *testing.T) {
	e := New([2]string{"A", "1"}, [2]string{"B", "2"})
	e = e.Set("A", "override")

	if v, _ := e.Get("A"); v != "override" {
		t.Fatalf("A = %q, want override", v)
	}
	if got := e.Keys(); len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("keys = %v, want [A B] (position preserved)", got)
	}
}

func TestMergeAppendWithOverride(t *testing.T) {
	base := New([2]string{"A", "1"}, [2]string{"B", "2"})
	overlay := New([2]string{"B", "override"}, [2]string{"C", "3"})

	merged := base.Merge(overlay)

	want := map[string]string{"A": "1", "B": "override", "C": "3"}
	for k, v := range want {
		if got, _ := merged.Get(k); got != v {
			t.Fatalf("merged[%s] = %q, want %q", k, got, v)
		}
	}
	if got := merged.Keys(); len(got) != 3 {
		t.Fatalf("keys = %v, want 3 entries", got)
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	e := New([2]string{"A", "1"}, [2]string{"B", "2"}, [2]string{"C", "3"})
	f := e.Filter([]string{"C", "A"})

	if got := f.Keys(); len(got) != 2 || got[0] != "A" || got[1] != "C" {
		t.Fatalf("keys = %v, want [A C] in original order", got)
	}
}

func TestEnvironmentImmutable(t *testing.T) {
	base := New([2]string{"A", "1"})
	_ = base.Set("B", "2")

	if base.Has("B") {
		t.Fatal("Set mutated the receiver")
	}
}

func TestHashIgnoresDeclarationOrder(t *testing.T) {
	a := New([2]string{"A", "1"}, [2]string{"B", "2"})
	b := New([2]string{"B", "2"}, [2]string{"A", "1"})

	ha, hb := a.Hash(), b.Hash()
	if len(ha) != len(hb) {
		t.Fatal("hash maps differ in size")
	}
	for k, v := range ha {
		if hb[k] != v {
			t.Fatalf("hash map differs for key %s", k)
		}
	}
}

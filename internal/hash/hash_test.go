package hash

import "testing"

func TestHDeterministic(t *testing.T) {
	t1 := Map{"a": Str("1"), "b": List{Int(1), Int(2)}}
	t2 := Map{"b": List{Int(1), Int(2)}, "a": Str("1")}

	if H(t1) != H(t2) {
		t.Fatal("map key order changed the digest")
	}
}

func TestHListOrderSignificant(t *testing.T) {
	a := List{Str("x"), Str("y")}
	b := List{Str("y"), Str("x")}

	if H(a) == H(b) {
		t.Fatal("list order did not affect the digest")
	}
}

func TestHDistinguishesTypes(t *testing.T) {
	cases := []Tree{
		Bytes{},
		List{},
		Map{},
		Int(0),
	}
	seen := make(map[Digest]bool)
	for _, c := range cases {
		d := H(c)
		if seen[d] {
			t.Fatalf("collision between distinct empty primitives: %T", c)
		}
		seen[d] = true
	}
}

func TestHFixture(t *testing.T) {
	// Pins a concrete digest for a representative step-identity-shaped tree
	// so that any change to the serialization format is caught immediately.
	tr := Map{
		"kind":   Str("build"),
		"script": Str("make all"),
		"tools": List{
			Map{"name": Str("gcc"), "toolPath": Str("/bin"), "toolVariantId": Bytes{1, 2, 3}},
		},
		"env": Map{"CFLAGS": Str("-O2"), "PATH": Str("/usr/bin")},
	}

	const want = "830efa9502041ad0d4e11e2ab5a47586a13460c7ae5c9e2916665ed75b6290bf"
	if got := H(tr).String(); got != want {
		t.Fatalf("H(tr) = %s, want %s (serialization format changed)", got, want)
	}
}

func TestHEmptyMapVsEmptyList(t *testing.T) {
	if H(Map{}) == H(List{}) {
		t.Fatal("empty map and empty list must not collide")
	}
}

func TestHIntSignExtension(t *testing.T) {
	if H(Int(-1)) == H(Int(0)) {
		t.Fatal("Int(-1) collided with Int(0)")
	}
}

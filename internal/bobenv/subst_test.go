package bobenv

import (
	"errors"
	"testing"
)

func TestSubstitute(t *testing.T) {
	e := New([2]string{"NAME", "bob"}, [2]string{"VERSION", "1.0"})

	got, err := Substitute("hello ${NAME} v${VERSION}", e)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "hello bob v1.0" {
		t.Fatalf("got %q", got)
	}
}

func TestSubstituteUndefined(t *testing.T) {
	_, err := Substitute("${MISSING}", Empty)
	if !errors.Is(err, ErrUndefinedVariable) {
		t.Fatalf("err = %v, want ErrUndefinedVariable", err)
	}
}

func TestReferencedVariables(t *testing.T) {
	got := ReferencedVariables("${A}/${B}/${A}")
	if len(got) != 2 || got[0] != "A" || got[1] != "B" {
		t.Fatalf("got %v, want [A B]", got)
	}
}

func TestConditionEval(t *testing.T) {
	c, err := CompileCondition(`ARCH == "amd64"`)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	e := New([2]string{"ARCH", "amd64"})
	ok, err := c.Eval(e)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if !ok {
		t.Fatal("expected condition to be true")
	}

	e2 := New([2]string{"ARCH", "arm64"})
	ok2, err := c.Eval(e2)
	if err != nil {
		t.Fatalf("eval: %v", err)
	}
	if ok2 {
		t.Fatal("expected condition to be false")
	}
}

package bobinfo

import (
	"testing"

	"github.com/bobbuildtool/bob/internal/bobenv"
)

func TestInjectSetsBobVariables(t *testing.T) {
	env := bobenv.New([2]string{"FOO", "bar"})
	out := Inject(env, StepEnv{
		RecipeName:  "app",
		PackageName: "lib",
		PackagePath: "app/lib",
		Cwd:         "/work/app/lib/build/0/workspace",
	})

	cases := map[string]string{
		"BOB_RECIPE_NAME":  "app",
		"BOB_PACKAGE_NAME": "lib",
		"BOB_PACKAGE_PATH": "app/lib",
		"BOB_CWD":          "/work/app/lib/build/0/workspace",
		"BOB_ORIG_ENV":     "FOO",
	}
	for k, want := range cases {
		got, ok := out.Get(k)
		if !ok || got != want {
			t.Fatalf("%s = %q, %v; want %q", k, got, ok, want)
		}
	}
	if _, ok := out.Get("BOB_HOST_PLATFORM"); !ok {
		t.Fatal("expected BOB_HOST_PLATFORM to be set")
	}
	if v, _ := out.Get("FOO"); v != "bar" {
		t.Fatalf("expected original FOO to survive injection, got %q", v)
	}
}

func TestInjectOmitsSourcesWhenEmpty(t *testing.T) {
	out := Inject(bobenv.Empty, StepEnv{})
	if out.Has("BOB_SOURCES") {
		t.Fatal("expected BOB_SOURCES to be absent when unset")
	}
}

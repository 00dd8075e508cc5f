package bobinfo

import (
	"runtime"

	"github.com/bobbuildtool/bob/internal/bobenv"
)

// StepEnv is the per-step context the engine injects as BOB_* variables
// ahead of running a step's script (§6 "Environment variables").
type StepEnv struct {
	RecipeName  string
	PackageName string
	PackagePath string
	Cwd         string
	Sources     string // reproducibility timestamp seed, BOB_SOURCES
}

// Inject returns env with the BOB_* variables appended, overriding any
// recipe-declared variable of the same name: these identify the running
// step to its own script and are never left to recipe authors to set.
func Inject(env bobenv.Environment, s StepEnv) bobenv.Environment {
	origEnv := ""
	for _, k := range env.Keys() {
		if origEnv != "" {
			origEnv += " "
		}
		origEnv += k
	}

	out := env.
		Set("BOB_RECIPE_NAME", s.RecipeName).
		Set("BOB_PACKAGE_NAME", s.PackageName).
		Set("BOB_PACKAGE_PATH", s.PackagePath).
		Set("BOB_ORIG_ENV", origEnv).
		Set("BOB_CWD", s.Cwd).
		Set("BOB_HOST_PLATFORM", runtime.GOOS+"/"+runtime.GOARCH)
	if s.Sources != "" {
		out = out.Set("BOB_SOURCES", s.Sources)
	}
	return out
}

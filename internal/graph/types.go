package graph

import (
	"github.com/bobbuildtool/bob/internal/bobenv"
	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/identity"
	"github.com/bobbuildtool/bob/internal/recipe"
)

// Tool is a fully-resolved tool input: the package that provides it and
// the path/library-paths/environment it contributes.
type Tool struct {
	Name         string
	Providers    string // providing package's path, for diagnostics
	Path         string
	LibraryPaths []string
	Environment  map[string]string
	Strong       bool
	VariantId    hash.Digest
	BuildId      hash.Digest
}

// Sandbox is a fully-resolved sandbox input.
type Sandbox struct {
	Present      bool
	ProviderPath string
	Paths        []string
	VariantId    hash.Digest
	BuildId      hash.Digest
}

// Step is one checkout/build/package step of a Package, fully bound to
// concrete tools, environment, and sandbox. After expansion the only
// mutation is the engine's dedup canonicalization, which rewrites Inputs
// in place.
type Step struct {
	Kind        identity.StepKind
	Script      string
	Env         bobenv.Environment
	Tools       map[string]Tool
	Sandbox     Sandbox
	SandboxMode string            // recipe-declared §4.7 mode; empty defers to the project default, then Sandbox.Present
	Meta        map[string]string // metaEnv.* tags surfaced in the audit trail
	Inputs      []*Step           // direct input steps, declaration order
	Scms        []recipe.Scm
	Fingerprint *recipe.Fingerprint
	VariantId   hash.Digest

	Deterministic bool
	JobServer     string
	Relocatable   bool
}

// Package is one instantiation of a recipe against a resolved input
// tuple. Packages are uniquely identified within a build by Path (§3).
type Package struct {
	RecipePath string // chain of dependency names from a root, "/"-joined
	RecipeName string
	Root       bool

	Checkout *Step
	Build    *Step
	Package  *Step

	ProvideTools   map[string]Tool
	ProvideDeps    []string
	ProvideSandbox *Sandbox
	ProvideEnv     bobenv.Environment

	Deps []*Package // direct dependency packages, declaration order
}

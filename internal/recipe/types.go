// Package recipe implements the normalized in-memory representation of
// recipes, classes, multiPackage splitting, and class-inheritance merging
// (§3, §4.1). Recipe source files are YAML, parsed with
// github.com/goccy/go-yaml, but this package's exported types are the
// normalized model the package expander consumes — never the raw YAML
// document shape.
package recipe

// ScmKind is the closed set of source-control kinds a checkout step may
// declare (§9 "Replacing dynamic dispatch").
type ScmKind string

const (
	ScmGit    ScmKind = "git"
	ScmSvn    ScmKind = "svn"
	ScmUrl    ScmKind = "url"
	ScmCvs    ScmKind = "cvs"
	ScmImport ScmKind = "import"
)

// Scm is one declared source-control dependency of a checkout step.
type Scm struct {
	Kind      ScmKind
	URL       string
	Branch    string
	Tag       string
	Commit    string
	Submodule bool
	Dir       string
	HashSums  map[string]string // for the url SCM: path -> expected hash
	If        string            // raw condition source, evaluated at expansion time
}

// StepDef is one of the three scripts a recipe declares (checkout, build,
// package), together with the tool and environment declarations scoped to
// it.
type StepDef struct {
	Script          string
	Tools           []ToolRef
	Vars            []string // consumed environment variable names
	Deterministic   bool
	JobServer       string // "", "true", "pipe", "fifo", "fifo-or-pipe"
	Relocatable     bool
	FingerprintIf   string
	FingerprintScript string

	// SandboxMode selects one of the five §4.7 sandbox policies
	// ("no-sandbox", "sandbox", "slim-sandbox", "dev-sandbox",
	// "strict-sandbox") this step runs under. Empty means the step
	// falls back to the project's default sandbox mode and, when none is
	// configured, to whether a sandbox dependency was injected.
	SandboxMode string
}

// ToolRef names a tool dependency of a step. Strong tools contribute their
// content (Variant-Id) to the step's identity; weak tools contribute only
// their name (§4.3).
type ToolRef struct {
	Name   string
	Strong bool
}

// ToolProvide describes a tool a recipe makes available to its consumers:
// the path inside the package's result plus extra library search paths.
type ToolProvide struct {
	Path         string
	LibraryPaths []string
	Environment  map[string]string
}

// SandboxProvide describes a recipe's result being usable as a sandbox
// image.
type SandboxProvide struct {
	Paths []string // additional PATH entries inside the sandbox
}

// Use lists what a dependency's results are injected into the parent's
// inputs (§4.2 "A dependency may request injection of its outputs").
type Use struct {
	Results bool
	Env     bool
	Tools   bool
	Sandbox bool
	Deps    bool
}

// Dependency is one edge in the recipe graph.
type Dependency struct {
	Name        string
	Use         Use
	ToolsRemap  map[string]string // tools: directive, old-name -> new-name
	Forward     bool              // forward: re-export to later siblings
	If          string            // raw condition source
	EnvWhitelist []string         // environment mask applied to the inherited environment
	CheckoutDep bool              // checkoutDep: this dependency's checkout step is an input to ours
}

// EnvironmentSets groups a recipe's four environment variable sets (§3).
type EnvironmentSets struct {
	Consumed []string          // variables this recipe's scripts may read
	Provided map[string]string // variables exported to consumers via use: environment
	Private  map[string]string // variables visible only within this recipe's own steps
	Meta     map[string]string // metaEnv.* tags surfaced in the audit trail
}

// Fingerprint is the optional predicate+script pair that discriminates
// builds by host-specific state (§4.3, §4.4).
type Fingerprint struct {
	If     string
	Script string
}

// Recipe is a named, declarative blueprint (§3). Classes share this same
// shape (§4.1: "syntactically identical to a recipe but cannot be a root").
type Recipe struct {
	Name    string
	IsClass bool

	Classes []string // inherited class names, declaration order

	Checkout *StepDef
	Build    *StepDef
	Package  *StepDef

	Deps []Dependency

	ProvideTools   map[string]ToolProvide
	ProvideDeps    []string
	ProvideSandbox *SandboxProvide
	ProvideVars    map[string]string

	Environment EnvironmentSets

	Scms []Scm

	Fingerprint *Fingerprint

	Root          bool
	Relocatable   bool
	NoUndefinedTools bool
}

// Clone returns a deep-enough copy of r suitable for use as the base of a
// field-wise merge without aliasing slices/maps the merge might mutate.
func (r *Recipe) Clone() *Recipe {
	n := *r
	n.Classes = append([]string{}, r.Classes...)
	n.Deps = append([]Dependency{}, r.Deps...)
	n.ProvideDeps = append([]string{}, r.ProvideDeps...)
	n.Scms = append([]Scm{}, r.Scms...)
	n.ProvideTools = cloneToolMap(r.ProvideTools)
	n.ProvideVars = cloneStringMap(r.ProvideVars)
	n.Environment = EnvironmentSets{
		Consumed: append([]string{}, r.Environment.Consumed...),
		Provided: cloneStringMap(r.Environment.Provided),
		Private:  cloneStringMap(r.Environment.Private),
		Meta:     cloneStringMap(r.Environment.Meta),
	}
	if r.Checkout != nil {
		c := *r.Checkout
		n.Checkout = &c
	}
	if r.Build != nil {
		c := *r.Build
		n.Build = &c
	}
	if r.Package != nil {
		c := *r.Package
		n.Package = &c
	}
	if r.Fingerprint != nil {
		f := *r.Fingerprint
		n.Fingerprint = &f
	}
	if r.ProvideSandbox != nil {
		s := *r.ProvideSandbox
		n.ProvideSandbox = &s
	}
	return &n
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	n := make(map[string]string, len(m))
	for k, v := range m {
		n[k] = v
	}
	return n
}

func cloneToolMap(m map[string]ToolProvide) map[string]ToolProvide {
	if m == nil {
		return nil
	}
	n := make(map[string]ToolProvide, len(m))
	for k, v := range m {
		n[k] = v
	}
	return n
}

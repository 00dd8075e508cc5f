package recipe

import (
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
)

// rawStep mirrors one of the checkout/build/package YAML blocks before
// normalization.
type rawStep struct {
	Script            string   `yaml:"script"`
	Tools             []string `yaml:"tools"`
	Vars              []string `yaml:"vars"`
	Deterministic     bool     `yaml:"deterministic"`
	JobServer         string   `yaml:"jobServer"`
	Relocatable       bool     `yaml:"relocatable"`
	FingerprintIf     string   `yaml:"fingerprintIf"`
	FingerprintScript string   `yaml:"fingerprintScript"`
	SandboxMode       string   `yaml:"sandbox"`
}

type rawScm struct {
	Kind      string            `yaml:"scm"`
	URL       string            `yaml:"url"`
	Branch    string            `yaml:"branch"`
	Tag       string            `yaml:"tag"`
	Commit    string            `yaml:"commit"`
	Submodule bool              `yaml:"submodule"`
	Dir       string            `yaml:"dir"`
	HashSums  map[string]string `yaml:"digestSHA256"`
	If        string            `yaml:"if"`
}

type rawDep struct {
	Name        string   `yaml:"depends"`
	Use         []string `yaml:"use"`
	Tools       map[string]string `yaml:"tools"`
	Forward     bool     `yaml:"forward"`
	If          string   `yaml:"if"`
	Environment []string `yaml:"environment"`
	CheckoutDep bool     `yaml:"checkoutDep"`
}

type rawToolProvide struct {
	Path         string            `yaml:"path"`
	LibraryPaths []string          `yaml:"libraryPath"`
	Environment  map[string]string `yaml:"environment"`
}

type rawFingerprint struct {
	If     string `yaml:"if"`
	Script string `yaml:"script"`
}

// rawDoc is the top-level shape of a recipe or class YAML document. A
// recipe file may either describe a single entity directly, or a
// multiPackage map of entities sharing this same base.
type rawDoc struct {
	Inherit []string `yaml:"inherit"`

	Checkout *rawStep `yaml:"checkoutStep"`
	Build    *rawStep `yaml:"buildStep"`
	Package  *rawStep `yaml:"packageStep"`

	Depends []rawDep `yaml:"depends"`

	ProvideTools map[string]rawToolProvide `yaml:"provideTools"`
	ProvideDeps  []string                  `yaml:"provideDeps"`
	ProvideSandbox *struct {
		Paths []string `yaml:"paths"`
	} `yaml:"provideSandbox"`
	ProvideVars map[string]string `yaml:"provideVars"`

	Environment struct {
		Vars    []string          `yaml:"vars"`
		Provide map[string]string `yaml:"provide"`
		Private map[string]string `yaml:"private"`
		Meta    map[string]string `yaml:"meta"`
	} `yaml:"environment"`

	Scm []rawScm `yaml:"checkoutSCM"`

	Fingerprint *rawFingerprint `yaml:"fingerprint"`

	Root             bool `yaml:"root"`
	Relocatable      bool `yaml:"relocatable"`
	NoUndefinedTools bool `yaml:"noUndefinedTools"`

	MultiPackage map[string]rawDoc `yaml:"multiPackage"`
}

// ParseRecipe parses a single recipe YAML document, identified by name,
// producing one Recipe per multiPackage entry (or exactly one Recipe if
// the document has no multiPackage block).
func ParseRecipe(name string, src []byte, isClass bool) ([]*Recipe, error) {
	var doc rawDoc
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidYAML, name, err)
	}

	if len(doc.MultiPackage) == 0 {
		r, err := doc.toRecipe(name, isClass)
		if err != nil {
			return nil, err
		}
		return []*Recipe{r}, nil
	}

	if isClass {
		return nil, fmt.Errorf("%w: %s: classes cannot declare multiPackage", ErrMultiPackageConflict, name)
	}

	base := doc
	base.MultiPackage = nil

	var out []*Recipe
	for suffix, variant := range doc.MultiPackage {
		merged, err := mergeRawDoc(base, variant)
		if err != nil {
			return nil, fmt.Errorf("%w: %s/%s: %v", ErrMultiPackageConflict, name, suffix, err)
		}
		fullName := name
		if suffix != "" {
			fullName = name + "-" + suffix
		}
		r, err := merged.toRecipe(fullName, false)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// mergeRawDoc merges a multiPackage variant on top of the shared base
// before any class inheritance happens, per §4.1 ("the base is merged
// into every variant before any class inheritance").
func mergeRawDoc(base, variant rawDoc) (rawDoc, error) {
	baseRecipe, err := base.toRecipe("__base__", true)
	if err != nil {
		return rawDoc{}, err
	}
	variantRecipe, err := variant.toRecipe("__variant__", true)
	if err != nil {
		return rawDoc{}, err
	}
	merged := mergeRecipe(baseRecipe, variantRecipe)

	out := base
	out.Inherit = merged.Classes
	return out, recipeIntoRawDoc(&out, merged)
}

// recipeIntoRawDoc writes the fields of a merged Recipe back into a
// rawDoc so toRecipe can be applied uniformly. This indirection lets
// multiPackage merging reuse the exact same merge rules as class
// inheritance instead of duplicating them over the raw YAML shape.
func recipeIntoRawDoc(out *rawDoc, merged *Recipe) error {
	out.Root = merged.Root
	out.Relocatable = merged.Relocatable
	out.NoUndefinedTools = merged.NoUndefinedTools
	out.ProvideDeps = merged.ProvideDeps
	out.ProvideVars = merged.ProvideVars
	out.Environment.Vars = merged.Environment.Consumed
	out.Environment.Provide = merged.Environment.Provided
	out.Environment.Private = merged.Environment.Private
	out.Environment.Meta = merged.Environment.Meta

	out.Checkout = stepToRaw(merged.Checkout)
	out.Build = stepToRaw(merged.Build)
	out.Package = stepToRaw(merged.Package)

	out.Depends = nil
	for _, d := range merged.Deps {
		out.Depends = append(out.Depends, depToRaw(d))
	}

	out.Scm = nil
	for _, s := range merged.Scms {
		out.Scm = append(out.Scm, scmToRaw(s))
	}

	out.ProvideTools = nil
	for k, v := range merged.ProvideTools {
		if out.ProvideTools == nil {
			out.ProvideTools = map[string]rawToolProvide{}
		}
		out.ProvideTools[k] = rawToolProvide{Path: v.Path, LibraryPaths: v.LibraryPaths, Environment: v.Environment}
	}

	if merged.ProvideSandbox != nil {
		out.ProvideSandbox = &struct {
			Paths []string `yaml:"paths"`
		}{Paths: merged.ProvideSandbox.Paths}
	}

	if merged.Fingerprint != nil {
		out.Fingerprint = &rawFingerprint{If: merged.Fingerprint.If, Script: merged.Fingerprint.Script}
	}

	return nil
}

func stepToRaw(s *StepDef) *rawStep {
	if s == nil {
		return nil
	}
	r := &rawStep{
		Script:            s.Script,
		Vars:              s.Vars,
		Deterministic:     s.Deterministic,
		JobServer:         s.JobServer,
		Relocatable:       s.Relocatable,
		FingerprintIf:     s.FingerprintIf,
		FingerprintScript: s.FingerprintScript,
		SandboxMode:       s.SandboxMode,
	}
	for _, t := range s.Tools {
		name := t.Name
		if t.Strong {
			name = "!" + name
		}
		r.Tools = append(r.Tools, name)
	}
	return r
}

func depToRaw(d Dependency) rawDep {
	r := rawDep{Name: d.Name, Forward: d.Forward, If: d.If, Environment: d.EnvWhitelist, CheckoutDep: d.CheckoutDep, Tools: d.ToolsRemap}
	if d.Use.Results {
		r.Use = append(r.Use, "result")
	}
	if d.Use.Env {
		r.Use = append(r.Use, "environment")
	}
	if d.Use.Tools {
		r.Use = append(r.Use, "tools")
	}
	if d.Use.Sandbox {
		r.Use = append(r.Use, "sandbox")
	}
	if d.Use.Deps {
		r.Use = append(r.Use, "deps")
	}
	return r
}

func scmToRaw(s Scm) rawScm {
	return rawScm{
		Kind: string(s.Kind), URL: s.URL, Branch: s.Branch, Tag: s.Tag, Commit: s.Commit,
		Submodule: s.Submodule, Dir: s.Dir, HashSums: s.HashSums, If: s.If,
	}
}

func (d rawDoc) toRecipe(name string, isClass bool) (*Recipe, error) {
	r := &Recipe{
		Name:             name,
		IsClass:          isClass,
		Classes:          d.Inherit,
		Root:             d.Root,
		Relocatable:      d.Relocatable,
		NoUndefinedTools: d.NoUndefinedTools,
		ProvideDeps:      d.ProvideDeps,
		ProvideVars:      d.ProvideVars,
	}

	r.Environment = EnvironmentSets{
		Consumed: d.Environment.Vars,
		Provided: d.Environment.Provide,
		Private:  d.Environment.Private,
		Meta:     d.Environment.Meta,
	}

	var err error
	if r.Checkout, err = d.Checkout.toStep(); err != nil {
		return nil, fmt.Errorf("%w: %s: checkoutStep: %v", ErrInvalidYAML, name, err)
	}
	if r.Build, err = d.Build.toStep(); err != nil {
		return nil, fmt.Errorf("%w: %s: buildStep: %v", ErrInvalidYAML, name, err)
	}
	if r.Package, err = d.Package.toStep(); err != nil {
		return nil, fmt.Errorf("%w: %s: packageStep: %v", ErrInvalidYAML, name, err)
	}

	for _, sc := range d.Scm {
		kind := ScmKind(sc.Kind)
		switch kind {
		case ScmGit, ScmSvn, ScmUrl, ScmCvs, ScmImport:
		default:
			return nil, fmt.Errorf("%w: %s: unknown scm kind %q", ErrInvalidYAML, name, sc.Kind)
		}
		r.Scms = append(r.Scms, Scm{
			Kind: kind, URL: sc.URL, Branch: sc.Branch, Tag: sc.Tag, Commit: sc.Commit,
			Submodule: sc.Submodule, Dir: sc.Dir, HashSums: sc.HashSums, If: sc.If,
		})
	}

	for _, rd := range d.Depends {
		dep := Dependency{
			Name: rd.Name, Forward: rd.Forward, If: rd.If,
			EnvWhitelist: rd.Environment, CheckoutDep: rd.CheckoutDep, ToolsRemap: rd.Tools,
		}
		for _, u := range rd.Use {
			switch u {
			case "result":
				dep.Use.Results = true
			case "environment":
				dep.Use.Env = true
			case "tools":
				dep.Use.Tools = true
			case "sandbox":
				dep.Use.Sandbox = true
			case "deps":
				dep.Use.Deps = true
			default:
				return nil, fmt.Errorf("%w: %s: depends %s: unknown use: %q", ErrInvalidYAML, name, rd.Name, u)
			}
		}
		r.Deps = append(r.Deps, dep)
	}

	if len(d.ProvideTools) > 0 {
		r.ProvideTools = make(map[string]ToolProvide, len(d.ProvideTools))
		for k, v := range d.ProvideTools {
			r.ProvideTools[k] = ToolProvide{Path: v.Path, LibraryPaths: v.LibraryPaths, Environment: v.Environment}
		}
	}

	if d.ProvideSandbox != nil {
		r.ProvideSandbox = &SandboxProvide{Paths: d.ProvideSandbox.Paths}
	}

	if d.Fingerprint != nil {
		r.Fingerprint = &Fingerprint{If: d.Fingerprint.If, Script: d.Fingerprint.Script}
	}

	return r, nil
}

func (s *rawStep) toStep() (*StepDef, error) {
	if s == nil {
		return nil, nil
	}
	out := &StepDef{
		Script:            s.Script,
		Vars:              s.Vars,
		Deterministic:     s.Deterministic,
		JobServer:         s.JobServer,
		Relocatable:       s.Relocatable,
		FingerprintIf:     s.FingerprintIf,
		FingerprintScript: s.FingerprintScript,
		SandboxMode:       s.SandboxMode,
	}
	for _, t := range s.Tools {
		strong := strings.HasPrefix(t, "!")
		out.Tools = append(out.Tools, ToolRef{Name: strings.TrimPrefix(t, "!"), Strong: strong})
	}
	switch out.SandboxMode {
	case "", "no-sandbox", "sandbox", "slim-sandbox", "dev-sandbox", "strict-sandbox":
	default:
		return nil, fmt.Errorf("%w: unknown sandbox mode %q", ErrInvalidYAML, out.SandboxMode)
	}
	return out, nil
}

package graph

import (
	"fmt"
	"sort"

	"github.com/bobbuildtool/bob/internal/bobenv"
	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/identity"
	"github.com/bobbuildtool/bob/internal/recipe"
)

// Expander walks a resolved recipe.Store and produces the concrete
// Package tree for a set of root recipes.
type Expander struct {
	store *recipe.Store

	// dedup groups packages that turned out to be identical (same
	// Variant-Id on every step) even though they were reached via
	// different paths, per §4.2's ambiguity-resolution rule.
	dedup map[hash.Digest][]*Package
}

// NewExpander creates an Expander over an already-loaded, class-resolved
// recipe store.
func NewExpander(store *recipe.Store) *Expander {
	return &Expander{store: store, dedup: make(map[hash.Digest][]*Package)}
}

// Dedup returns the groups of packages that share a combined Variant-Id
// across every step, keyed by that combined digest.
func (e *Expander) Dedup() map[hash.Digest][]*Package {
	return e.dedup
}

// ExpandRoots expands every root recipe in the store whose name matches
// one of the given glob patterns (doublestar syntax). A nil or empty
// patterns list expands every recipe flagged root: true.
func (e *Expander) ExpandRoots(patterns []string) ([]*Package, error) {
	names := make([]string, 0, len(e.store.Recipes))
	for name, r := range e.store.Recipes {
		if !r.Root {
			continue
		}
		if len(patterns) > 0 && !matchesAny(patterns, name) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*Package, 0, len(names))
	for _, name := range names {
		pkg, err := e.expand(name, name, bobenv.Empty, map[string]Tool{}, Sandbox{})
		if err != nil {
			return nil, err
		}
		out = append(out, pkg)
	}
	return out, nil
}

// expand instantiates one recipe against a resolved input tuple,
// recursing into its dependencies left-to-right and propagating
// environment, tools, and sandbox per the use:/forward: rules.
func (e *Expander) expand(name, path string, inheritedEnv bobenv.Environment, inheritedTools map[string]Tool, sandbox Sandbox) (*Package, error) {
	r, ok := e.store.Recipes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDependency, name)
	}

	selfEnv := inheritedEnv.Filter(r.Environment.Consumed)
	selfEnv = selfEnv.Merge(bobenv.NewFromMap(r.Environment.Private))
	selfEnv = selfEnv.Merge(bobenv.NewFromMap(r.Environment.Provided))

	selfTools := cloneTools(inheritedTools)
	selfSandbox := sandbox

	// pool* accumulate forward: contributions visible to subsequent
	// sibling dependencies, independent of whether this recipe's own
	// use: consumed them.
	poolEnv := inheritedEnv
	poolTools := cloneTools(inheritedTools)
	poolSandbox := sandbox

	var resultInputs []*Package
	var checkoutDeps []*Package
	deps := make([]*Package, 0, len(r.Deps))
	provideDeps := append([]string{}, r.ProvideDeps...)

	for _, d := range r.Deps {
		if d.Name == name {
			return nil, fmt.Errorf("%w: %s", ErrSelfDependency, name)
		}

		if d.If != "" {
			cond, err := bobenv.CompileCondition(d.If)
			if err != nil {
				return nil, fmt.Errorf("recipe %s: dependency %s: %w", name, d.Name, err)
			}
			ok, err := cond.Eval(poolEnv)
			if err != nil {
				return nil, fmt.Errorf("recipe %s: dependency %s: %w", name, d.Name, err)
			}
			if !ok {
				continue
			}
		}

		depEnv := poolEnv
		if len(d.EnvWhitelist) > 0 {
			depEnv = poolEnv.Filter(d.EnvWhitelist)
		}
		depTools := remapTools(poolTools, d.ToolsRemap)

		depPkg, err := e.expand(d.Name, path+"/"+d.Name, depEnv, depTools, poolSandbox)
		if err != nil {
			return nil, err
		}
		deps = append(deps, depPkg)

		if d.CheckoutDep && depPkg.Checkout != nil {
			checkoutDeps = append(checkoutDeps, depPkg)
		}

		if d.Use.Results {
			resultInputs = append(resultInputs, depPkg)
		}
		if d.Use.Env {
			selfEnv = selfEnv.Merge(depPkg.ProvideEnv)
		}
		if d.Use.Tools {
			mergeToolMap(selfTools, depPkg.ProvideTools)
		}
		if d.Use.Sandbox && depPkg.ProvideSandbox != nil {
			selfSandbox = *depPkg.ProvideSandbox
		}
		if d.Use.Deps {
			provideDeps = append(provideDeps, depPkg.ProvideDeps...)
		}

		if d.Forward {
			mergeToolMap(poolTools, depPkg.ProvideTools)
			poolEnv = poolEnv.Merge(depPkg.ProvideEnv)
			if depPkg.ProvideSandbox != nil {
				poolSandbox = *depPkg.ProvideSandbox
			}
		}
	}

	pkg := &Package{
		RecipePath:  path,
		RecipeName:  name,
		Root:        r.Root,
		ProvideDeps: provideDeps,
		ProvideEnv:  bobenv.NewFromMap(r.Environment.Provided),
		Deps:        deps,
	}

	if len(r.ProvideTools) > 0 {
		pkg.ProvideTools = make(map[string]Tool, len(r.ProvideTools))
		for tname, tp := range r.ProvideTools {
			pkg.ProvideTools[tname] = Tool{
				Name: tname, Providers: path, Path: tp.Path,
				LibraryPaths: tp.LibraryPaths, Environment: tp.Environment,
			}
		}
	}
	if r.ProvideSandbox != nil {
		pkg.ProvideSandbox = &Sandbox{Present: true, ProviderPath: path, Paths: r.ProvideSandbox.Paths}
	}

	var checkoutStep *Step
	if r.Checkout != nil {
		step, err := e.buildStep(r, r.Checkout, identity.Checkout, selfEnv, selfTools, selfSandbox, stepsOf(checkoutDeps, checkoutStepOf), name)
		if err != nil {
			return nil, err
		}
		step.Scms = r.Scms
		step.VariantId = identity.VariantID(shapeOf(step))
		checkoutStep = step
	}
	pkg.Checkout = checkoutStep

	buildInputs := stepsOf(resultInputs, packageStepOf)
	if checkoutStep != nil {
		buildInputs = append([]*Step{checkoutStep}, buildInputs...)
	}
	var buildStep *Step
	if r.Build != nil {
		step, err := e.buildStep(r, r.Build, identity.Build, selfEnv, selfTools, selfSandbox, buildInputs, name)
		if err != nil {
			return nil, err
		}
		step.Fingerprint = r.Fingerprint
		step.VariantId = identity.VariantID(shapeOf(step))
		buildStep = step
	}
	pkg.Build = buildStep

	var packageStep *Step
	if r.Package != nil {
		inputs := []*Step{}
		if buildStep != nil {
			inputs = append(inputs, buildStep)
		}
		step, err := e.buildStep(r, r.Package, identity.Package, selfEnv, selfTools, selfSandbox, inputs, name)
		if err != nil {
			return nil, err
		}
		step.VariantId = identity.VariantID(shapeOf(step))
		packageStep = step
	}
	pkg.Package = packageStep

	e.registerDedup(pkg)
	return pkg, nil
}

func (e *Expander) buildStep(r *recipe.Recipe, def *recipe.StepDef, kind identity.StepKind, env bobenv.Environment, tools map[string]Tool, sandbox Sandbox, inputs []*Step, recipeName string) (*Step, error) {
	stepEnv := env
	if len(def.Vars) > 0 {
		stepEnv = env.Filter(def.Vars)
	}

	resolved := make(map[string]Tool)
	for _, ref := range def.Tools {
		t, ok := tools[ref.Name]
		if !ok {
			if r.NoUndefinedTools {
				return nil, fmt.Errorf("%w: %s: %s", ErrUnknownTool, recipeName, ref.Name)
			}
			continue
		}
		t.Strong = ref.Strong
		resolved[ref.Name] = t
	}

	return &Step{
		Kind:          kind,
		Script:        def.Script,
		Env:           stepEnv,
		Tools:         resolved,
		Sandbox:       sandbox,
		SandboxMode:   def.SandboxMode,
		Meta:          r.Environment.Meta,
		Inputs:        inputs,
		Deterministic: def.Deterministic,
		JobServer:     def.JobServer,
		Relocatable:   def.Relocatable,
	}, nil
}

func (e *Expander) registerDedup(pkg *Package) {
	m := hash.Map{"recipe": hash.Str(pkg.RecipeName)}
	if pkg.Checkout != nil {
		m["checkout"] = hash.Bytes(pkg.Checkout.VariantId[:])
	}
	if pkg.Build != nil {
		m["build"] = hash.Bytes(pkg.Build.VariantId[:])
	}
	if pkg.Package != nil {
		m["package"] = hash.Bytes(pkg.Package.VariantId[:])
	}
	digest := hash.H(m)
	e.dedup[digest] = append(e.dedup[digest], pkg)
}

func shapeOf(s *Step) identity.StepShape {
	toolNames := make([]string, 0, len(s.Tools))
	for n := range s.Tools {
		toolNames = append(toolNames, n)
	}
	sort.Strings(toolNames)

	tools := make([]identity.ToolInput, 0, len(toolNames))
	for _, n := range toolNames {
		t := s.Tools[n]
		tools = append(tools, identity.ToolInput{
			Name: n, Path: t.Path, LibraryPaths: t.LibraryPaths,
			Strong: t.Strong, VariantId: t.VariantId, ProvidedEnv: t.Environment,
		})
	}

	inputs := make([]hash.Digest, 0, len(s.Inputs))
	for _, in := range s.Inputs {
		inputs = append(inputs, in.VariantId)
	}

	return identity.StepShape{
		Kind:    s.Kind,
		Script:  s.Script,
		Tools:   tools,
		Env:     s.Env.AsMap(),
		Sandbox: identity.SandboxInput{Present: s.Sandbox.Present, VariantId: s.Sandbox.VariantId},
		Inputs:  inputs,
	}
}

func cloneTools(m map[string]Tool) map[string]Tool {
	out := make(map[string]Tool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func mergeToolMap(dst, src map[string]Tool) {
	for k, v := range src {
		dst[k] = v
	}
}

func remapTools(m map[string]Tool, remap map[string]string) map[string]Tool {
	if len(remap) == 0 {
		return cloneTools(m)
	}
	out := make(map[string]Tool, len(m))
	for k, v := range m {
		if newName, ok := remap[k]; ok {
			out[newName] = v
			continue
		}
		out[k] = v
	}
	return out
}

func stepsOf(pkgs []*Package, pick func(*Package) *Step) []*Step {
	out := make([]*Step, 0, len(pkgs))
	for _, p := range pkgs {
		if s := pick(p); s != nil {
			out = append(out, s)
		}
	}
	return out
}

func checkoutStepOf(p *Package) *Step { return p.Checkout }
func packageStepOf(p *Package) *Step {
	if p.Package != nil {
		return p.Package
	}
	return p.Build
}

package identity

import "github.com/bobbuildtool/bob/internal/hash"

// StepKind is one of the three step kinds a package declares (§3).
type StepKind string

const (
	Checkout StepKind = "checkout"
	Build    StepKind = "build"
	Package  StepKind = "package"
)

// ToolInput is one step's reference to a tool, fully resolved against the
// package providing it. Weak tools omit VariantId/ProvidedEnv from the
// Variant-Id computation: renaming a weak tool changes identity, changing
// how it was built does not (§4.3).
type ToolInput struct {
	Name         string
	Path         string
	LibraryPaths []string
	Strong       bool
	VariantId    hash.Digest
	ProvidedEnv  map[string]string
	BuildId      hash.Digest
}

// SandboxInput is a step's resolved sandbox, if any.
type SandboxInput struct {
	Present   bool
	VariantId hash.Digest
	BuildId   hash.Digest
}

// StepShape is everything about a step that is known purely from
// expansion — its declared script, resolved tool/sandbox inputs, final
// environment values, and the identities of its direct input steps —
// independent of anything the filesystem or an SCM has settled yet.
type StepShape struct {
	Kind    StepKind
	Script  string
	Tools   []ToolInput
	Env     map[string]string
	Sandbox SandboxInput
	Inputs  []hash.Digest // Variant-Ids of direct input steps, declaration order
}

// VariantID computes the step's Variant-Id: a structural hash over its
// kind, script, tool inputs (name/path/libraryPaths always; VariantId and
// ProvidedEnv only for strong tools), sorted environment values, sandbox
// Variant-Id when sandboxed, and the Variant-Ids of its direct inputs.
func VariantID(s StepShape) hash.Digest {
	tools := make(hash.List, 0, len(s.Tools))
	for _, t := range s.Tools {
		m := hash.Map{
			"name": hash.Str(t.Name),
			"path": hash.Str(t.Path),
			"lib":  libraryPathList(t.LibraryPaths),
		}
		if t.Strong {
			m["variantId"] = hash.Bytes(t.VariantId[:])
			m["providedEnv"] = envMap(t.ProvidedEnv)
		}
		tools = append(tools, m)
	}

	inputs := make(hash.List, 0, len(s.Inputs))
	for _, v := range s.Inputs {
		inputs = append(inputs, hash.Bytes(v[:]))
	}

	sandbox := hash.Map{"present": hash.Int(0)}
	if s.Sandbox.Present {
		sandbox["present"] = hash.Int(1)
		sandbox["variantId"] = hash.Bytes(s.Sandbox.VariantId[:])
	}

	tree := hash.Map{
		"kind":    hash.Str(string(s.Kind)),
		"script":  hash.Str(s.Script),
		"tools":   tools,
		"env":     envMap(s.Env),
		"sandbox": sandbox,
		"inputs":  inputs,
	}
	return hash.H(tree)
}

func libraryPathList(paths []string) hash.List {
	l := make(hash.List, 0, len(paths))
	for _, p := range paths {
		l = append(l, hash.Str(p))
	}
	return l
}

func envMap(m map[string]string) hash.Map {
	out := make(hash.Map, len(m))
	for k, v := range m {
		out[k] = hash.Str(v)
	}
	return out
}

package identity

import "github.com/bobbuildtool/bob/internal/hash"

// CheckoutInput is what a checkout step's Build-Id is computed from: the
// settled state vector digests of its declared SCMs, plus any checkout
// steps of dependencies it opted into via checkoutDep (§4.4 readiness
// rule).
type CheckoutInput struct {
	ScmDigests  []hash.Digest
	InputBuildIds []hash.Digest
}

// BuildInput is what a build or package step's Build-Id is computed
// from: the Build-Ids of the tools it references (regardless of
// strong/weak — tool content always affects what a step produces, even
// when it doesn't affect the step's identity), the Build-Ids of its
// direct input steps, and an optional fingerprint script output (§4.3).
type BuildInput struct {
	ToolBuildIds      map[string]hash.Digest
	InputBuildIds     []hash.Digest
	FingerprintOutput []byte
	HasFingerprint    bool
}

// CheckoutBuildID computes a checkout step's Build-Id from its settled
// SCM state.
func CheckoutBuildID(script string, in CheckoutInput) hash.Digest {
	scms := make(hash.List, 0, len(in.ScmDigests))
	for _, d := range in.ScmDigests {
		scms = append(scms, hash.Bytes(d[:]))
	}
	inputs := digestList(in.InputBuildIds)
	return hash.H(hash.Map{
		"kind":   hash.Str(string(Checkout)),
		"script": hash.Str(script),
		"scms":   scms,
		"inputs": inputs,
	})
}

// BuildID computes a build or package step's Build-Id from the settled
// (or predicted) identities of everything it consumes.
func BuildID(kind StepKind, script string, in BuildInput) hash.Digest {
	tools := make(hash.Map, len(in.ToolBuildIds))
	for name, id := range in.ToolBuildIds {
		tools[name] = hash.Bytes(id[:])
	}

	m := hash.Map{
		"kind":   hash.Str(string(kind)),
		"script": hash.Str(script),
		"tools":  tools,
		"inputs": digestList(in.InputBuildIds),
	}
	if in.HasFingerprint {
		m["fingerprint"] = hash.Bytes(in.FingerprintOutput)
	}
	return hash.H(m)
}

func digestList(ds []hash.Digest) hash.List {
	l := make(hash.List, 0, len(ds))
	for _, d := range ds {
		l = append(l, hash.Bytes(d[:]))
	}
	return l
}

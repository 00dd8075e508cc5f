package scm

import (
	"net/url"

	"github.com/bobbuildtool/bob/internal/hash"
	"github.com/bobbuildtool/bob/internal/recipe"
)

// StateVector is the deterministic digest input of one SCM declaration:
// kind, url (without userinfo), ref, tag, commit, submodule policy, dir,
// and hash-sums (§4.5).
type StateVector struct {
	Kind       recipe.ScmKind
	URL        string
	Branch     string
	Tag        string
	Commit     string
	Submodule  bool
	Dir        string
	HashSums   map[string]string
}

// FromScm builds a StateVector from a recipe's SCM declaration,
// stripping the URL's userinfo per the scmIgnoreUser policy (§4.5: "The
// URL SCM's userinfo is excluded from identity").
func FromScm(s recipe.Scm) StateVector {
	return StateVector{
		Kind: s.Kind, URL: stripUserinfo(s.URL), Branch: s.Branch, Tag: s.Tag,
		Commit: s.Commit, Submodule: s.Submodule, Dir: s.Dir, HashSums: s.HashSums,
	}
}

func stripUserinfo(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	u.User = nil
	return u.String()
}

// Digest computes the StateVector's canonical structural hash.
func (v StateVector) Digest() hash.Digest {
	hashSums := make(hash.Map, len(v.HashSums))
	for k, val := range v.HashSums {
		hashSums[k] = hash.Str(val)
	}
	sub := hash.Int(0)
	if v.Submodule {
		sub = hash.Int(1)
	}
	return hash.H(hash.Map{
		"kind":     hash.Str(string(v.Kind)),
		"url":      hash.Str(v.URL),
		"branch":   hash.Str(v.Branch),
		"tag":      hash.Str(v.Tag),
		"commit":   hash.Str(v.Commit),
		"submodule": sub,
		"dir":      hash.Str(v.Dir),
		"hashSums": hashSums,
	})
}

// Indeterministic reports whether this state vector can settle to a
// different concrete commit across checkouts of the same declaration
// (§4.4 "indeterministic checkouts") — a git SCM without a fixed commit.
func (v StateVector) Indeterministic() bool {
	return v.Kind == recipe.ScmGit && v.Commit == ""
}

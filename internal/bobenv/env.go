package bobenv

import (
	"sort"

	"github.com/bobbuildtool/bob/internal/hash"
)

// Environment is an immutable, ordered mapping of variable names to values.
//
// Order reflects declaration/merge order (child after parents, as declared),
// which matters only for human-facing listing and for the deterministic
// "append-with-override" merge rule; the structural hasher always sorts map
// entries by key regardless of this order (§4.3).
type Environment struct {
	order  []string
	values map[string]string
}

// Empty is the zero-value environment.
var Empty = Environment{}

// New returns an environment populated from name/value pairs in the given
// order, later duplicates overriding earlier ones in place.
func New(pairs ...[2]string) Environment {
	e := Environment{values: map[string]string{}}
	for _, p := range pairs {
		e = e.Set(p[0], p[1])
	}
	return e
}

// NewFromMap builds an environment from an unordered map, using
// byte-lexicographic key order so the result is deterministic even though
// Go map iteration is not.
func NewFromMap(m map[string]string) Environment {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	e := Environment{values: map[string]string{}}
	for _, k := range keys {
		e = e.Set(k, m[k])
	}
	return e
}

// Get returns the value of name and whether it is defined.
func (e Environment) Get(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Has reports whether name is defined.
func (e Environment) Has(name string) bool {
	_, ok := e.values[name]
	return ok
}

// Set returns a copy of e with name bound to value. If name is already
// defined its value is overridden in place, preserving its position;
// otherwise the new entry is appended.
func (e Environment) Set(name, value string) Environment {
	n := e.clone()
	if n.values == nil {
		n.values = map[string]string{}
	}
	if _, exists := n.values[name]; !exists {
		n.order = append(n.order, name)
	}
	n.values[name] = value
	return n
}

// Merge returns a copy of e with other's entries applied via
// append-with-override: existing keys are overridden in place, new keys are
// appended in other's order.
func (e Environment) Merge(other Environment) Environment {
	n := e.clone()
	for _, k := range other.order {
		n = n.Set(k, other.values[k])
	}
	return n
}

// Filter returns the subset of e whose names appear in allowed, preserving
// e's relative order. This implements the "inherited environment filtered
// by the dependency's environment mask" rule of §4.2.
func (e Environment) Filter(allowed []string) Environment {
	set := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		set[a] = true
	}
	n := Environment{values: map[string]string{}}
	for _, k := range e.order {
		if set[k] {
			n = n.Set(k, e.values[k])
		}
	}
	return n
}

// Keys returns variable names in declaration order.
func (e Environment) Keys() []string {
	out := make([]string, len(e.order))
	copy(out, e.order)
	return out
}

// Len reports the number of defined variables.
func (e Environment) Len() int { return len(e.order) }

// Strings renders the environment as "KEY=VALUE" entries in declaration
// order, suitable for passing to a script runner's exec environment.
func (e Environment) Strings() []string {
	out := make([]string, 0, len(e.order))
	for _, k := range e.order {
		out = append(out, k+"="+e.values[k])
	}
	return out
}

// AsMap returns a defensive copy of the underlying map.
func (e Environment) AsMap() map[string]string {
	out := make(map[string]string, len(e.values))
	for k, v := range e.values {
		out[k] = v
	}
	return out
}

// Hash renders the environment as a hash.Map for structural hashing. The
// hasher itself sorts map entries by key, so declaration order is
// irrelevant to the resulting digest (§4.3's "sorted values of its
// declared environment variables").
func (e Environment) Hash() hash.Map {
	m := make(hash.Map, len(e.values))
	for k, v := range e.values {
		m[k] = hash.Str(v)
	}
	return m
}

func (e Environment) clone() Environment {
	n := Environment{
		order:  append([]string{}, e.order...),
		values: make(map[string]string, len(e.values)),
	}
	for k, v := range e.values {
		n.values[k] = v
	}
	return n
}

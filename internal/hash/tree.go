// Package hash implements the structural hasher used to compute Variant-Id
// and Build-Id digests: a single fixed function H: tree -> 32 bytes over
// {bytes, int, ordered-list, sorted-map}.
//
// The byte serialization of each primitive, the map-sort order (by
// byte-lexicographic key), and the list-length prefix are frozen here and
// must never change without invalidating every previously computed digest.
package hash

import "sort"

// Tree is the closed set of primitives the hasher accepts: byte strings,
// signed integers, ordered lists, and maps sorted by key before hashing.
type Tree interface {
	isTree()
}

// Bytes is a length-prefixed UTF-8 or raw byte string leaf.
type Bytes []byte

func (Bytes) isTree() {}

// Str is a convenience constructor for a UTF-8 string leaf.
func Str(s string) Bytes { return Bytes(s) }

// Int is a little-endian fixed-width signed integer leaf.
type Int int64

func (Int) isTree() {}

// List is an ordered, length-prefixed sequence of trees. Order is
// significant and is never sorted by the hasher.
type List []Tree

func (List) isTree() {}

// Map is a string-keyed collection whose entries are sorted by
// byte-lexicographic key before hashing, making the hash independent of
// the map's iteration or declaration order.
type Map map[string]Tree

func (Map) isTree() {}

// sortedKeys returns m's keys in byte-lexicographic order.
func sortedKeys(m Map) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

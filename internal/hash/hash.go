package hash

import (
	"encoding/binary"

	"github.com/zeebo/blake3"
)

// Digest is a 32-byte structural hash, used as both Variant-Id and Build-Id.
type Digest [32]byte

// Type tags distinguish primitives that would otherwise serialize
// ambiguously (e.g. an empty list vs an empty map).
const (
	tagBytes byte = iota
	tagInt
	tagList
	tagMap
)

// H canonicalizes t and returns its structural digest.
func H(t Tree) Digest {
	h := blake3.New()
	write(h, t)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

type writer interface {
	Write(p []byte) (int, error)
}

func write(w writer, t Tree) {
	switch v := t.(type) {
	case Bytes:
		w.Write([]byte{tagBytes})
		writeUint64(w, uint64(len(v)))
		w.Write(v)
	case Int:
		w.Write([]byte{tagInt})
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		w.Write(buf[:])
	case List:
		w.Write([]byte{tagList})
		writeUint64(w, uint64(len(v)))
		for _, e := range v {
			write(w, e)
		}
	case Map:
		w.Write([]byte{tagMap})
		keys := sortedKeys(v)
		writeUint64(w, uint64(len(keys)))
		for _, k := range keys {
			write(w, Str(k))
			write(w, v[k])
		}
	default:
		panic("hash: unknown Tree implementation")
	}
}

func writeUint64(w writer, n uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], n)
	w.Write(buf[:])
}

// String renders the digest as lowercase hex, the form used in workspace and
// artifact paths.
func (d Digest) String() string {
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(d)*2)
	for i, b := range d {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0xf]
	}
	return string(out)
}

// IsZero reports whether d is the zero digest (never a valid hash output,
// used as a sentinel for "not yet computed").
func (d Digest) IsZero() bool {
	return d == Digest{}
}

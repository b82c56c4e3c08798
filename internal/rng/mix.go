package rng

import "hash/fnv"

// golden is the 64-bit golden-ratio constant used by the seed mix.
const golden = 0x9E3779B97F4A7C15

// Mix derives a child seed from a parent seed, an offset and a context name.
// The result depends only on its inputs: fnv1a64 over the UTF-8 bytes of name
// folded in with the golden-ratio hash-combine.
func Mix(parent, offset uint64, name string) uint64 {
	v0 := parent ^ (offset + golden + (parent << 6) + (parent >> 2))
	h := fnv.New64a()
	h.Write([]byte(name))
	return v0 ^ (h.Sum64() + golden + (v0 << 6) + (v0 >> 2))
}

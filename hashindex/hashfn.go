package hashindex

import "github.com/cespare/xxhash/v2"

// StringHash returns a hash function over string keys seeded with seed,
// the default injected hash spec.md §4.2's `new(type, seed)` expects.
func StringHash(seed uint64) func(string) uint64 {
	return func(s string) uint64 {
		return xxhash.Sum64String(s) ^ seed
	}
}

// BytesHash returns a hash function over []byte keys seeded with seed.
// Not directly usable as a Table[[]byte, V] key (slices aren't
// comparable); callers needing byte-string keys should convert to
// string first (Go string conversion of a []byte is a copy, matching
// the atom pool's own interning semantics).
func BytesHash(seed uint64) func([]byte) uint64 {
	return func(b []byte) uint64 {
		return xxhash.Sum64(b) ^ seed
	}
}

// Uint64Hash returns a hash function over uint64 keys (atom-pool IDs,
// interned-member surrogate keys) seeded with seed.
func Uint64Hash(seed uint64) func(uint64) uint64 {
	return func(v uint64) uint64 {
		var b [8]byte
		b[0] = byte(v)
		b[1] = byte(v >> 8)
		b[2] = byte(v >> 16)
		b[3] = byte(v >> 24)
		b[4] = byte(v >> 32)
		b[5] = byte(v >> 40)
		b[6] = byte(v >> 48)
		b[7] = byte(v >> 56)
		return xxhash.Sum64(b[:]) ^ seed
	}
}

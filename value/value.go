// Package value implements the tagged-union scalar that flexset's
// ordered-set and multimap tiers sort and store. It stands in for the
// "databox" collaborator spec.md §1 describes as externally supplied:
// since this module ships standalone, nothing else provides it.
//
// Value supports exactly the variants spec.md §3.1 lists (signed/unsigned
// 64-bit integers, 32/64-bit floats, inline/owned byte strings, the two
// boolean tags, and an external-reference handle into an atom pool), and
// exposes the trait spec.md §9 asks for: Compare, Equal, Float64, Clone,
// and a deterministic binary encoding that backs flex's packed-array
// byte layout.
package value

import (
	"bytes"
	"math"
)

// Kind discriminates the tagged union's active variant.
type Kind uint8

const (
	KindInt64 Kind = iota
	KindUint64
	KindFloat32
	KindFloat64
	KindInlineBytes
	KindOwnedBytes
	KindBoolFalse
	KindBoolTrue
	KindExternalRef
)

func (k Kind) String() string {
	switch k {
	case KindInt64:
		return "int64"
	case KindUint64:
		return "uint64"
	case KindFloat32:
		return "float32"
	case KindFloat64:
		return "float64"
	case KindInlineBytes:
		return "inline_bytes"
	case KindOwnedBytes:
		return "owned_bytes"
	case KindBoolFalse:
		return "bool_false"
	case KindBoolTrue:
		return "bool_true"
	case KindExternalRef:
		return "external_ref"
	default:
		return "unknown"
	}
}

// maxInline is the largest byte string stored without a heap
// allocation. Chosen so Value stays a small, copyable value type (a
// [32]byte ID stored by value follows the same reasoning); longer
// strings fall back to OwnedBytes.
const maxInline = 44

// Value is deliberately a plain struct, not an interface: spec.md §9
// explicitly prefers a small trait over a union of concrete types only
// "if that better suits the target language" — in Go, a closed tagged
// union as a struct avoids an interface-allocation per scalar, which
// matters because every sorted-set entry carries two of these.
type Value struct {
	kind Kind

	num uint64 // Int64/Uint64/Float32/Float64 bit pattern, or ExternalRef handle

	// inline holds InlineBytes payloads by value; inlineLen is the valid
	// prefix length. OwnedBytes instead uses owned, a heap slice.
	inline    [maxInline]byte
	inlineLen uint8
	owned     []byte
}

// Int64 constructs a signed-integer Value.
func Int64(v int64) Value { return Value{kind: KindInt64, num: uint64(v)} }

// Uint64 constructs an unsigned-integer Value.
func Uint64(v uint64) Value { return Value{kind: KindUint64, num: v} }

// Float32 constructs a 32-bit float Value.
func Float32(v float32) Value {
	return Value{kind: KindFloat32, num: uint64(math.Float32bits(v))}
}

// Float64 constructs a 64-bit float Value.
func Float64(v float64) Value {
	return Value{kind: KindFloat64, num: math.Float64bits(v)}
}

// Bool constructs a boolean Value. True and false are distinct kinds
// per spec.md §3.1, not a bool field on a shared kind.
func Bool(v bool) Value {
	if v {
		return Value{kind: KindBoolTrue}
	}
	return Value{kind: KindBoolFalse}
}

// ExternalRef constructs a Value holding an opaque atom-pool handle.
func ExternalRef(id uint64) Value { return Value{kind: KindExternalRef, num: id} }

// Bytes constructs a byte-string Value, inlining it if it fits in
// maxInline bytes and falling back to an owned (heap) copy otherwise.
// The input is always copied: Value never aliases caller-owned memory.
func Bytes(b []byte) Value {
	if len(b) <= maxInline {
		var v Value
		v.kind = KindInlineBytes
		v.inlineLen = uint8(len(b))
		copy(v.inline[:], b)
		return v
	}
	owned := make([]byte, len(b))
	copy(owned, b)
	return Value{kind: KindOwnedBytes, owned: owned}
}

// String is a convenience wrapper around Bytes.
func String(s string) Value { return Bytes([]byte(s)) }

// Kind reports the active variant.
func (v Value) Kind() Kind { return v.kind }

// IsNumeric reports whether v holds one of the four numeric kinds.
func (v Value) IsNumeric() bool {
	switch v.kind {
	case KindInt64, KindUint64, KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

// IsBytes reports whether v holds InlineBytes or OwnedBytes.
func (v Value) IsBytes() bool {
	return v.kind == KindInlineBytes || v.kind == KindOwnedBytes
}

// Int64 returns v's integer value and whether v is exactly an Int64.
func (v Value) Int64() (int64, bool) {
	if v.kind != KindInt64 {
		return 0, false
	}
	return int64(v.num), true
}

// Uint64 returns v's unsigned value and whether v is exactly a Uint64.
func (v Value) Uint64() (uint64, bool) {
	if v.kind != KindUint64 {
		return 0, false
	}
	return v.num, true
}

// ExternalRef returns the handle and whether v is an ExternalRef.
func (v Value) ExternalRef() (uint64, bool) {
	if v.kind != KindExternalRef {
		return 0, false
	}
	return v.num, true
}

// Bool returns v's boolean value and whether v holds one of the bool kinds.
func (v Value) Bool() (bool, bool) {
	switch v.kind {
	case KindBoolTrue:
		return true, true
	case KindBoolFalse:
		return false, true
	default:
		return false, false
	}
}

// Bytes returns v's byte payload and whether v holds InlineBytes or
// OwnedBytes. The returned slice must not be mutated by the caller when
// it aliases an OwnedBytes backing array.
func (v Value) Bytes() ([]byte, bool) {
	switch v.kind {
	case KindInlineBytes:
		return v.inline[:v.inlineLen], true
	case KindOwnedBytes:
		return v.owned, true
	default:
		return nil, false
	}
}

// Float64 converts v to a double per spec.md §4.4.7's arithmetic
// coercion rule ("all arithmetic operations coerce to double
// precision"). Reports false for non-numeric kinds (spec.md §7's
// TypeMismatch).
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case KindInt64:
		return float64(int64(v.num)), true
	case KindUint64:
		return float64(v.num), true
	case KindFloat32:
		return float64(math.Float32frombits(uint32(v.num))), true
	case KindFloat64:
		return math.Float64frombits(v.num), true
	default:
		return 0, false
	}
}

// Clone returns a deep, independent copy. InlineBytes values are
// already independent (value semantics); OwnedBytes values are
// recopied, matching the "copied from the underlying bytes" discipline
// spec.md §3.7 requires for Full-tier range bounds.
func (v Value) Clone() Value {
	if v.kind == KindOwnedBytes {
		owned := make([]byte, len(v.owned))
		copy(owned, v.owned)
		v.owned = owned
	}
	return v
}

// classOrder gives the total order across incomparable kinds (spec.md
// §3.1: "mixed numeric/string orderings are defined and total").
// Numeric kinds all collapse into the same class and are compared via
// Float64; everything else gets its own class.
func classOrder(k Kind) int {
	switch k {
	case KindInt64, KindUint64, KindFloat32, KindFloat64:
		return 0
	case KindInlineBytes, KindOwnedBytes:
		return 1
	case KindBoolFalse, KindBoolTrue:
		return 2
	case KindExternalRef:
		return 3
	default:
		return 4
	}
}

// Compare imposes flexset's total order over Value: numerics compare
// numerically (same-kind pairs compare exactly; cross-kind pairs coerce
// through Float64, so the documented precision loss above 2^53 applies
// only to mixed comparisons), strings compare lexicographically, and
// otherwise-incomparable kinds fall back to a fixed class ordering so
// the order stays total. Returns <0, 0, or >0 like bytes.Compare.
func Compare(a, b Value) int {
	ca, cb := classOrder(a.kind), classOrder(b.kind)
	if ca != cb {
		if ca < cb {
			return -1
		}
		return 1
	}

	switch ca {
	case 0: // numeric
		return compareNumeric(a, b)
	case 1: // bytes
		ab, _ := a.Bytes()
		bb, _ := b.Bytes()
		return bytes.Compare(ab, bb)
	case 2: // bool
		return int(a.kind) - int(b.kind) // KindBoolFalse < KindBoolTrue
	case 3: // external ref
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	default:
		return int(a.kind) - int(b.kind)
	}
}

// compareNumeric compares two numeric Values. Exact same-kind integer
// comparisons avoid float coercion entirely; every other pairing (any
// float involved, or mixed int64/uint64/float kinds) goes through
// Float64, per spec.md §4.4.7.
//
// NaN resolves the spec.md §8 "boundary behaviour" open question: NaN
// compares greater than every other numeric value and equal to itself,
// a single fixed convention applied consistently on both sides of the
// comparison.
func compareNumeric(a, b Value) int {
	if a.kind == KindInt64 && b.kind == KindInt64 {
		x, y := int64(a.num), int64(b.num)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		default:
			return 0
		}
	}
	if a.kind == KindUint64 && b.kind == KindUint64 {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		default:
			return 0
		}
	}

	af, _ := a.Float64()
	bf, _ := b.Float64()
	aNaN, bNaN := math.IsNaN(af), math.IsNaN(bf)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b compare equal under Compare. It is not
// simply "same kind and same bits": e.g. Int64(2) and Float64(2.0) are
// Equal.
func Equal(a, b Value) bool { return Compare(a, b) == 0 }

// AppendBinary appends v's deterministic wire encoding to dst and
// returns the extended slice. Two Values that compare Equal under
// Compare are not guaranteed to produce identical bytes (Int64(2) and
// Float64(2.0) differ in kind tag); two Values constructed the same way
// from the same bits always do — this is the property flex's full-width
// encoding-determinism tests (spec.md §8 item 11) rely on.
func (v Value) AppendBinary(dst []byte) []byte {
	dst = append(dst, byte(v.kind))
	switch v.kind {
	case KindInt64, KindUint64, KindFloat32, KindFloat64, KindExternalRef:
		var buf [8]byte
		putUint64LE(buf[:], v.num)
		dst = append(dst, buf[:]...)
	case KindInlineBytes:
		dst = append(dst, v.inline[:v.inlineLen]...)
	case KindOwnedBytes:
		dst = append(dst, v.owned...)
	case KindBoolFalse, KindBoolTrue:
		// kind tag alone is the full payload
	}
	return dst
}

// Decode parses a Value previously produced by AppendBinary from the
// front of b. It is the inverse operation flex uses to materialise a
// Value out of a packed array's entry payload.
func Decode(b []byte) Value {
	if len(b) == 0 {
		return Value{}
	}
	kind := Kind(b[0])
	rest := b[1:]
	switch kind {
	case KindInt64, KindUint64, KindFloat32, KindFloat64, KindExternalRef:
		return Value{kind: kind, num: uint64LE(rest)}
	case KindInlineBytes:
		var v Value
		v.kind = kind
		v.inlineLen = uint8(len(rest))
		copy(v.inline[:], rest)
		return v
	case KindOwnedBytes:
		owned := make([]byte, len(rest))
		copy(owned, rest)
		return Value{kind: kind, owned: owned}
	case KindBoolFalse, KindBoolTrue:
		return Value{kind: kind}
	default:
		return Value{}
	}
}

func uint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8 && i < len(b); i++ {
		v |= uint64(b[i]) << (8 * uint(i))
	}
	return v
}

func putUint64LE(b []byte, v uint64) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
	b[4] = byte(v >> 32)
	b[5] = byte(v >> 40)
	b[6] = byte(v >> 48)
	b[7] = byte(v >> 56)
}

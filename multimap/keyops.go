package multimap

import (
	"sort"

	"github.com/latticedb/flexset/value"
)

// sortedKeys returns m's single-element groups' keys in ascending order.
// Callers must only use this on a key-only (n=1) multimap, per spec.md
// §4.6's "single-element (key-only) multimaps" scoping for the
// intersect/difference/copy primitives below.
func sortedKeys(m *MultiMap) []value.Value {
	if m.n != 1 {
		panic("multimap: key-set operations require a key-only (elements_per_entry=1) multimap")
	}
	entries := m.t.entries()
	keys := make([]value.Value, len(entries))
	for i, e := range entries {
		keys[i] = e[0]
	}
	sort.Slice(keys, func(i, j int) bool { return value.Compare(keys[i], keys[j]) < 0 })
	return keys
}

func group1(v value.Value) []value.Value { return []value.Value{v} }

// IntersectKeys implements spec.md §4.6's merge-zipper intersect:
// advance both cursors, emitting and advancing both on equal keys,
// advancing the lesser cursor otherwise.
func IntersectKeys(a, b *MultiMap) *MultiMap {
	ka, kb := sortedKeys(a), sortedKeys(b)
	out := New(1, false)
	i, j := 0, 0
	for i < len(ka) && j < len(kb) {
		c := value.Compare(ka[i], kb[j])
		switch {
		case c == 0:
			out.Insert(group1(ka[i]))
			i++
			j++
		case c < 0:
			i++
		default:
			j++
		}
	}
	return out
}

// DifferenceKeys implements spec.md §4.6's A \ B merge-zipper: emit a and
// advance a when a<b, advance b when a>b, advance both on equal keys, and
// drain whatever remains of A once B is exhausted.
func DifferenceKeys(a, b *MultiMap) *MultiMap {
	ka, kb := sortedKeys(a), sortedKeys(b)
	out := New(1, false)
	i, j := 0, 0
	for i < len(ka) && j < len(kb) {
		c := value.Compare(ka[i], kb[j])
		switch {
		case c < 0:
			out.Insert(group1(ka[i]))
			i++
		case c > 0:
			j++
		default:
			i++
			j++
		}
	}
	for ; i < len(ka); i++ {
		out.Insert(group1(ka[i]))
	}
	return out
}

// SymmetricDifferenceKeys is DifferenceKeys's symmetric variant (spec.md
// §4.6's "symmetric optional"): keys present in exactly one of a, b, also
// draining whatever remains of B once A is exhausted.
func SymmetricDifferenceKeys(a, b *MultiMap) *MultiMap {
	ka, kb := sortedKeys(a), sortedKeys(b)
	out := New(1, false)
	i, j := 0, 0
	for i < len(ka) && j < len(kb) {
		c := value.Compare(ka[i], kb[j])
		switch {
		case c < 0:
			out.Insert(group1(ka[i]))
			i++
		case c > 0:
			out.Insert(group1(kb[j]))
			j++
		default:
			i++
			j++
		}
	}
	for ; i < len(ka); i++ {
		out.Insert(group1(ka[i]))
	}
	for ; j < len(kb); j++ {
		out.Insert(group1(kb[j]))
	}
	return out
}

// CopyKeys implements spec.md §4.6's copy_keys: the union of a's and b's
// keys, deduplicated.
func CopyKeys(a, b *MultiMap) *MultiMap {
	ka, kb := sortedKeys(a), sortedKeys(b)
	out := New(1, false)
	i, j := 0, 0
	for i < len(ka) && j < len(kb) {
		c := value.Compare(ka[i], kb[j])
		switch {
		case c == 0:
			out.Insert(group1(ka[i]))
			i++
			j++
		case c < 0:
			out.Insert(group1(ka[i]))
			i++
		default:
			out.Insert(group1(kb[j]))
			j++
		}
	}
	for ; i < len(ka); i++ {
		out.Insert(group1(ka[i]))
	}
	for ; j < len(kb); j++ {
		out.Insert(group1(kb[j]))
	}
	return out
}

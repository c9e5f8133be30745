package hashindex

import "github.com/latticedb/flexset/internal/debug"

// Iterator walks every live key/value pair in a Table. Safe iterators
// (NewSafeIterator) suspend incremental rehashing for their lifetime, so
// the table may be mutated while one is open without invalidating it —
// at the cost of Add/Delete calls no longer making rehash progress until
// Close (spec.md §4.2 "Safe iteration"). Unsafe iterators (NewIterator)
// make no such guarantee: mutating the table during an unsafe iteration
// is undefined, and debug builds assert on it via a fingerprint.
type Iterator[K comparable, V any] struct {
	t    *Table[K, V]
	safe bool

	inOld       bool
	pos         int
	closed      bool
	fingerprint uint64
}

func fingerprintOf[K comparable, V any](t *Table[K, V]) uint64 {
	fp := uint64(t.cur.count) * 0x9E3779B97F4A7C15
	if t.rehashing() {
		fp ^= uint64(t.old.count)*0xC2B2AE3D27D4EB4F + 1
	}
	return fp
}

func newIterator[K comparable, V any](t *Table[K, V], safe bool) *Iterator[K, V] {
	it := &Iterator[K, V]{t: t, safe: safe, inOld: t.rehashing(), fingerprint: fingerprintOf(t)}
	if safe {
		t.safeIterators++
	}
	return it
}

// NewSafeIterator returns an iterator that tolerates concurrent mutation
// of t for its lifetime; call Close when done to resume rehashing.
func NewSafeIterator[K comparable, V any](t *Table[K, V]) *Iterator[K, V] {
	return newIterator(t, true)
}

// NewIterator returns an unsafe iterator: t must not be mutated while it
// is in use.
func NewIterator[K comparable, V any](t *Table[K, V]) *Iterator[K, V] {
	return newIterator(t, false)
}

// Close releases a safe iterator's hold on rehashing. A no-op for unsafe
// iterators.
func (it *Iterator[K, V]) Close() {
	if it.closed || !it.safe {
		return
	}
	it.closed = true
	it.t.safeIterators--
}

// Next advances the iterator, returning the next key/value pair and
// true, or the zero values and false once exhausted.
func (it *Iterator[K, V]) Next() (key K, value V, ok bool) {
	if !it.safe && fingerprintOf(it.t) != it.fingerprint {
		debug.Log("hashindex", "unsafe iterator observed table mutation mid-traversal")
	}

	if it.inOld {
		if it.t.old != nil {
			for it.pos < len(it.t.old.buckets) {
				b := &it.t.old.buckets[it.pos]
				it.pos++
				if b.state == stateOccupied {
					return b.key, b.value, true
				}
			}
		}
		it.inOld = false
		it.pos = 0
	}

	for it.pos < len(it.t.cur.buckets) {
		b := &it.t.cur.buckets[it.pos]
		it.pos++
		if b.state == stateOccupied {
			return b.key, b.value, true
		}
	}

	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}

// RandomKey returns an arbitrary live key (and its value), or ok=false if
// the table is empty. Used by ordered-set operations that need a member
// without caring which one (spec.md §4.2's `random_key`).
func (t *Table[K, V]) RandomKey(randIndex func(n int) int) (key K, value V, ok bool) {
	n := t.Count()
	if n == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}
	target := randIndex(n)
	it := NewIterator(t)
	for i := 0; i <= target; i++ {
		k, v, more := it.Next()
		if !more {
			var zeroK K
			var zeroV V
			return zeroK, zeroV, false
		}
		if i == target {
			return k, v, true
		}
	}
	var zeroK K
	var zeroV V
	return zeroK, zeroV, false
}

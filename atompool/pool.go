// Package atompool implements the refcounted string-interning pool
// spec.md §4.3 calls the Atom Pool (C3): an ordered set created with a
// pool attached (owned or shared), or a multimap through
// InsertWithSurrogateKey, stores short, frequently repeated member strings
// once and references them by a small integer id instead of carrying a
// full byte string in every packed-array entry.
//
// Two interchangeable backends implement Pool: NewHash (O(1),
// iteration/lookup-heavy workloads) and NewTree (O(log n), more compact,
// write-heavy/memory-constrained workloads) — spec.md §4.3's "Backend
// selection guidance".
package atompool

// Pool is the refcounted interning contract both backends implement.
//
// The external API is 1-based: a fresh Intern yields refcount 1 (spec.md
// §4.3's "Semantic note on refcount"). Id 0 is never valid and signals
// absence/failure.
type Pool interface {
	// Intern returns s's id, incrementing its refcount (creating the
	// entry with refcount 1 if s was not already interned).
	Intern(s []byte) uint64
	// GetID returns s's id without changing its refcount, or 0 if s is
	// not interned.
	GetID(s []byte) uint64
	// Exists reports whether s is currently interned.
	Exists(s []byte) bool
	// Lookup returns the bytes for id, or ok=false if id is not live.
	Lookup(id uint64) (data []byte, ok bool)
	// Retain increments id's refcount. No-op if id is not live.
	Retain(id uint64)
	// Release decrements id's refcount, returning true iff it dropped to
	// zero and the entry was freed.
	Release(id uint64) bool
	// Refcount returns id's current (1-based) refcount, or 0 if not live.
	Refcount(id uint64) uint64
	// Count returns the number of distinct interned strings.
	Count() int
	// Bytes returns the total size of interned string data, excluding
	// bookkeeping overhead.
	Bytes() int
	// Reset clears every interned entry. On the tree backend this is
	// documented as a no-op (spec.md §4.3) rather than an error.
	Reset()
	// Free releases all resources; the pool must not be used afterward.
	Free()
}

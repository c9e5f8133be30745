package flex

import "github.com/latticedb/flexset/value"

// InsertSortedGroup implements spec.md §4.1's "insert-or-replace
// policy": locate the group matching elements under the comparison mode
// mapIsSet selects (key-only when false, full-width when true), then
// either overwrite it in place (count unchanged, replaced=true) or
// insert a new group at the position that keeps the array sorted
// (replaced=false).
//
// This is the one behavioural contract spec.md §4.1 calls out as the
// "root of the single hardest behavioural bug this design protects
// against": mapIsSet must travel with every call exactly as documented,
// or duplicate keys silently proliferate. It is a required, explicit
// parameter here rather than a package-level mode precisely so a caller
// can never forget to pass it.
func (a *Array) InsertSortedGroup(n int, elements []value.Value, mapIsSet bool) (replaced bool) {
	if len(elements) != n {
		panic("flex: InsertSortedGroup: len(elements) must equal n")
	}

	idx, found := a.FindSortedGroup(n, elements, mapIsSet)
	entries := a.decodeAll()

	if found {
		copy(entries[idx:idx+n], elements)
		a.encodeAll(entries)
		a.recomputeMiddle(n)
		return true
	}

	merged := make([]value.Value, 0, len(entries)+n)
	merged = append(merged, entries[:idx]...)
	merged = append(merged, elements...)
	merged = append(merged, entries[idx:]...)
	a.encodeAll(merged)
	a.recomputeMiddle(n)
	return false
}

// ReplaceGroup overwrites the n-element group starting at raw-entry
// index idx with elements, without touching the array's sort order
// (callers are responsible for idx already being the right place — used
// by incr_by-style in-place score updates where the key doesn't move).
func (a *Array) ReplaceGroup(n, idx int, elements []value.Value) {
	entries := a.decodeAll()
	copy(entries[idx:idx+len(elements)], elements)
	a.encodeAll(entries)
	a.recomputeMiddle(n)
}

// ResizeEntry replaces the single raw entry at index idx with v.
// spec.md §4.1 separates resize_entry (grow/shrink a payload in place)
// from replace; because flex always re-encodes the whole buffer on a
// size-changing mutation anyway (see the package doc), the two reduce
// to the same operation here.
func (a *Array) ResizeEntry(n, idx int, v value.Value) {
	entries := a.decodeAll()
	entries[idx] = v
	a.encodeAll(entries)
	a.recomputeMiddle(n)
}

// Delete removes count consecutive raw entries starting at raw-entry
// index idx.
func (a *Array) Delete(n, idx, count int) {
	entries := a.decodeAll()
	entries = append(entries[:idx], entries[idx+count:]...)
	a.encodeAll(entries)
	a.recomputeMiddle(n)
}

// AppendArray concatenates other onto the end of a, in place.
func (a *Array) AppendArray(n int, other *Array) {
	entries := a.decodeAll()
	entries = append(entries, other.decodeAll()...)
	a.encodeAll(entries)
	a.recomputeMiddle(n)
}

// SplitMiddle splits a at its cached midpoint group boundary: a keeps
// the lower half, and SplitMiddle returns a fresh Array holding the
// upper half (spec.md §4.1).
func (a *Array) SplitMiddle(n int) *Array {
	a.recomputeMiddle(n)
	entries := a.decodeAll()
	splitIdx := a.midIdx

	lower := entries[:splitIdx]
	upper := entries[splitIdx:]

	a.encodeAll(lower)
	a.recomputeMiddle(n)

	upperArr := New()
	upperArr.encodeAll(upper)
	upperArr.recomputeMiddle(n)
	return upperArr
}

// MergeAll concatenates arrays (in order) into one fresh Array.
func MergeAll(n int, arrays []*Array) *Array {
	total := 0
	for _, arr := range arrays {
		total += arr.Count()
	}
	entries := make([]value.Value, 0, total)
	for _, arr := range arrays {
		entries = append(entries, arr.decodeAll()...)
	}
	out := New()
	out.encodeAll(entries)
	out.recomputeMiddle(n)
	return out
}

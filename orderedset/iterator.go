package orderedset

import "github.com/latticedb/flexset/value"

// Iterator walks a Set's (member, score) pairs in ascending or
// descending (score, member) order. It snapshots the set's contents at
// creation time: spec.md §5's ownership discipline already says
// "mutation through the same instance invalidates every outstanding
// iterator", so a point-in-time copy satisfies that contract without a
// live cursor into mutable tier state, at the (already-paid, since
// Set.sortedEntries is O(n) regardless) cost of one slice copy.
type Iterator struct {
	set     *Set
	entries []entry
	pos     int
	forward bool
}

// IteratorInit returns an iterator over every entry, in ascending order
// if forward is true, descending otherwise (spec.md §6.2).
func (s *Set) IteratorInit(forward bool) *Iterator {
	it := &Iterator{set: s, entries: s.sortedEntries(), forward: forward, pos: -1}
	if !forward {
		it.pos = len(it.entries)
	}
	return it
}

// IteratorInitAtScore positions an iterator at the first entry whose
// score is >= score (forward) or <= score (backward), returning whether
// such an entry exists.
func (s *Set) IteratorInitAtScore(score value.Value, forward bool) (*Iterator, bool) {
	it := &Iterator{set: s, entries: s.sortedEntries(), forward: forward}
	if forward {
		idx := 0
		for idx < len(it.entries) && value.Compare(it.entries[idx].score, score) < 0 {
			idx++
		}
		if idx >= len(it.entries) {
			it.pos = len(it.entries) - 1
			return it, false
		}
		it.pos = idx - 1
		return it, true
	}
	idx := len(it.entries) - 1
	for idx >= 0 && value.Compare(it.entries[idx].score, score) > 0 {
		idx--
	}
	if idx < 0 {
		it.pos = 0
		return it, false
	}
	it.pos = idx + 1
	return it, true
}

// IteratorInitAtRank positions an iterator at rank (spec.md §6.2's
// negative-rank convention applies), returning whether rank was valid.
func (s *Set) IteratorInitAtRank(rank int, forward bool) (*Iterator, bool) {
	it := &Iterator{set: s, entries: s.sortedEntries(), forward: forward}
	idx, ok := normaliseRank(rank, len(it.entries))
	if !ok {
		it.pos = -1
		return it, false
	}
	if forward {
		it.pos = idx - 1
	} else {
		it.pos = idx + 1
	}
	return it, true
}

// Next advances the iterator, returning the next (member, score) and
// true, or false once exhausted.
func (it *Iterator) Next() (member, score value.Value, more bool) {
	if it.forward {
		it.pos++
		if it.pos >= len(it.entries) {
			return value.Value{}, value.Value{}, false
		}
	} else {
		it.pos--
		if it.pos < 0 {
			return value.Value{}, value.Value{}, false
		}
	}
	e := it.entries[it.pos]
	return it.set.resolveMember(e.member), e.score, true
}

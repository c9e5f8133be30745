package flex

import "github.com/latticedb/flexset/value"

// groupCompare is the comparator used while walking the buffer during a
// search: positive means the group stored at pos sorts after target,
// negative before, zero equal — under either key-only or full-width
// comparison (spec.md §4.1 "search policy").
type groupCompare func(pos int) int

func keyOnlyCompare(a *Array, target value.Value) groupCompare {
	return func(pos int) int {
		return value.Compare(a.Get(pos), target)
	}
}

func fullWidthCompare(a *Array, n int, target []value.Value) groupCompare {
	return func(pos int) int {
		cur := pos
		for i := 0; i < n; i++ {
			c := value.Compare(a.Get(cur), target[i])
			if c != 0 {
				return c
			}
			cur = a.Next(cur)
		}
		return 0
	}
}

// recomputeMiddle re-derives the cached midpoint after a mutation,
// targeting the entry group nearest raw-entry-index floor(count/(2n))*n
// (spec.md §3.2/§4.1).
func (a *Array) recomputeMiddle(n int) {
	count := a.Count()
	if count == 0 {
		a.mid, a.midIdx = a.Head(), 0
		return
	}
	targetIdx := (count / (2 * n)) * n
	if targetIdx >= count {
		targetIdx = count - n
		if targetIdx < 0 {
			targetIdx = 0
		}
	}
	a.mid = a.Index(targetIdx)
	a.midIdx = targetIdx
}

// Middle returns the cached midpoint byte offset for entry groups of
// size n, recomputing it first for that n so callers never observe a
// stale value.
func (a *Array) Middle(n int) int {
	a.recomputeMiddle(n)
	return a.mid
}

// search performs the bidirectional walk from the cached midpoint
// spec.md §4.1 describes: start at mid, go forward if the target sorts
// after it, backward otherwise, until an equal group is found or the
// walk passes the correct position. Returns the raw-entry-index of the
// matching group (found=true) or of the insertion point (found=false).
func (a *Array) search(n int, cmp groupCompare) (idx int, found bool) {
	count := a.Count()
	if count == 0 {
		return 0, false
	}
	if a.mid >= a.End() || a.midIdx >= count {
		a.recomputeMiddle(n)
	}

	pos := a.mid
	idx = a.midIdx
	c := cmp(pos)
	if c == 0 {
		return idx, true
	}

	if c < 0 {
		for {
			nextPos := a.advance(pos, n)
			nextIdx := idx + n
			if nextPos >= a.End() {
				return count, false
			}
			c = cmp(nextPos)
			if c == 0 {
				return nextIdx, true
			}
			if c > 0 {
				return nextIdx, false
			}
			pos, idx = nextPos, nextIdx
		}
	}

	for {
		if idx == 0 {
			return 0, false
		}
		prevIdx := idx - n
		prevPos := a.Index(prevIdx)
		c = cmp(prevPos)
		if c == 0 {
			return prevIdx, true
		}
		if c < 0 {
			return idx, false
		}
		pos, idx = prevPos, prevIdx
	}
}

func (a *Array) advance(pos, n int) int {
	for i := 0; i < n; i++ {
		pos = a.Next(pos)
	}
	return pos
}

// FindSortedGroup searches for a group whose key matches target under
// the requested comparison mode, returning the raw-entry-index of the
// group (whether found or, if not, the index a new group would be
// inserted at — the "insertion point" spec.md §4.1's *GetEntry variants
// describe, folded into one call since flex never needs a second pass
// to recover it).
//
// fullWidth selects between key-only comparison (only the group's first
// element, used by map_is_set=false / multimap lookups) and full-width
// comparison (all n elements, used by sets and insert_full_width).
func (a *Array) FindSortedGroup(n int, target []value.Value, fullWidth bool) (idx int, found bool) {
	var cmp groupCompare
	if fullWidth {
		cmp = fullWidthCompare(a, n, target)
	} else {
		cmp = keyOnlyCompare(a, target[0])
	}
	return a.search(n, cmp)
}

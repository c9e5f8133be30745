package orderedset

import (
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/value"
)

// tier is the common surface every Small/Medium/Full implementation
// provides; Set dispatches through it rather than through bit-tagged
// pointers (see the package doc).
type tier interface {
	count() int
	bytes() int
	// add upserts (score, member); returns whether an existing entry for
	// member was replaced.
	add(score, member value.Value) bool
	// remove deletes member if present, returning its prior score.
	remove(member value.Value) (value.Value, bool)
	exists(member value.Value) bool
	getScore(member value.Value) (value.Value, bool)
	// entries returns every (score, member) pair in ascending sorted
	// order. Tier-specific operations that need more than a point lookup
	// (rank, range, iteration, set algebra) all build on this — which is
	// the same O(n) cost spec.md §4.4.5 explicitly accepts for Full-tier
	// rank, and is already the cost of Small/Medium's linear member scans
	// (spec.md §4.4.1's table).
	entries() []entry
	duplicate() tier
}

// smallTier (spec.md §3.5) is a single packed array of (score, member)
// groups.
type smallTier struct {
	arr *flex.Array
}

func newSmallTier() *smallTier {
	return &smallTier{arr: flex.New()}
}

func (t *smallTier) count() int { return t.arr.Count() / 2 }
func (t *smallTier) bytes() int { return t.arr.Bytes() }

// findMember linearly scans for member, returning its raw-entry index
// and current score (spec.md §4.4.1: Small does a linear scan).
func (t *smallTier) findMember(member value.Value) (idx int, score value.Value, found bool) {
	pos := t.arr.Head()
	i := 0
	for pos < t.arr.End() {
		s := t.arr.Get(pos)
		m := t.arr.Get(t.arr.Next(pos))
		if value.Equal(m, member) {
			return i, s, true
		}
		pos = t.arr.Next(t.arr.Next(pos))
		i += 2
	}
	return 0, value.Value{}, false
}

func (t *smallTier) add(score, member value.Value) bool {
	replaced := false
	if idx, _, found := t.findMember(member); found {
		t.arr.Delete(2, idx, 2)
		replaced = true
	}
	t.arr.InsertSortedGroup(2, []value.Value{score, member}, true)
	return replaced
}

func (t *smallTier) remove(member value.Value) (value.Value, bool) {
	idx, score, found := t.findMember(member)
	if !found {
		return value.Value{}, false
	}
	t.arr.Delete(2, idx, 2)
	return score, true
}

func (t *smallTier) exists(member value.Value) bool {
	_, _, found := t.findMember(member)
	return found
}

func (t *smallTier) getScore(member value.Value) (value.Value, bool) {
	_, score, found := t.findMember(member)
	return score, found
}

func (t *smallTier) entries() []entry {
	out := make([]entry, 0, t.count())
	pos := t.arr.Head()
	for pos < t.arr.End() {
		score := t.arr.Get(pos)
		next := t.arr.Next(pos)
		member := t.arr.Get(next)
		out = append(out, entry{score: score, member: member})
		pos = t.arr.Next(next)
	}
	return out
}

func (t *smallTier) duplicate() tier {
	return &smallTier{arr: t.arr.Duplicate()}
}

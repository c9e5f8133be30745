package multimap

import (
	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/value"
)

// smallTier is a single packed array of N-element groups (spec.md §3.5's
// Small shape, generalised to arbitrary arity).
type smallTier struct {
	arr *flex.Array
	n   int
}

func newSmallTier(n int) *smallTier {
	return &smallTier{arr: flex.New(), n: n}
}

func (t *smallTier) count() int { return t.arr.Count() / t.n }
func (t *smallTier) bytes() int { return t.arr.Bytes() }

func (t *smallTier) insertGroup(group []value.Value, fullWidth bool) bool {
	return t.arr.InsertSortedGroup(t.n, group, fullWidth)
}

func (t *smallTier) removeByKey(key value.Value) ([]value.Value, bool) {
	idx, found := t.arr.FindSortedGroup(t.n, []value.Value{key}, false)
	if !found {
		return nil, false
	}
	group := t.arr.GetGroup(t.arr.Index(idx), t.n)
	t.arr.Delete(t.n, idx, t.n)
	return group, true
}

func (t *smallTier) removeExact(group []value.Value) bool {
	idx, found := t.arr.FindSortedGroup(t.n, group, true)
	if !found {
		return false
	}
	t.arr.Delete(t.n, idx, t.n)
	return true
}

func (t *smallTier) existsKey(key value.Value) bool {
	_, found := t.arr.FindSortedGroup(t.n, []value.Value{key}, false)
	return found
}

func (t *smallTier) getByKey(key value.Value) ([]value.Value, bool) {
	idx, found := t.arr.FindSortedGroup(t.n, []value.Value{key}, false)
	if !found {
		return nil, false
	}
	return t.arr.GetGroup(t.arr.Index(idx), t.n), true
}

func (t *smallTier) entries() [][]value.Value {
	out := make([][]value.Value, 0, t.count())
	pos := t.arr.Head()
	for pos < t.arr.End() {
		out = append(out, t.arr.GetGroup(pos, t.n))
		pos = stepGroup(t.arr, pos, t.n)
	}
	return out
}

func (t *smallTier) duplicate() tier {
	return &smallTier{arr: t.arr.Duplicate(), n: t.n}
}

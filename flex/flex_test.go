package flex_test

import (
	"testing"

	"github.com/latticedb/flexset/flex"
	"github.com/latticedb/flexset/internal/testutil"
	"github.com/latticedb/flexset/value"
)

func group(score float64, member string) []value.Value {
	return []value.Value{value.Float64(score), value.String(member)}
}

func TestInsertSortedGroupOrdering(t *testing.T) {
	a := flex.New()
	a.InsertSortedGroup(2, group(2.0, "b"), true)
	a.InsertSortedGroup(2, group(1.0, "a"), true)
	a.InsertSortedGroup(2, group(1.5, "c"), true)

	testutil.Equals(t, 6, a.Count())
}

func TestForwardIterationOrder(t *testing.T) {
	a := flex.New()
	a.InsertSortedGroup(2, group(2.0, "b"), true)
	a.InsertSortedGroup(2, group(1.0, "a"), true)
	a.InsertSortedGroup(2, group(1.5, "c"), true)

	var members []string
	pos := a.Head()
	for pos < a.End() {
		g := a.GetGroup(pos, 2)
		m, _ := g[1].Bytes()
		members = append(members, string(m))
		pos = a.Next(a.Next(pos))
	}
	testutil.Equals(t, []string{"a", "c", "b"}, members)
}

func TestUpsertReplaces(t *testing.T) {
	a := flex.New()
	// Key-only mode compares element 0, so the key "k" leads each group.
	replaced := a.InsertSortedGroup(2, []value.Value{value.String("k"), value.Float64(10)}, false)
	testutil.Assert(t, !replaced, "first insert is not a replace")
	replaced = a.InsertSortedGroup(2, []value.Value{value.String("k"), value.Float64(99)}, false)
	testutil.Assert(t, replaced, "second insert replaces")
	testutil.Equals(t, 2, a.Count())

	idx, found := a.FindSortedGroup(2, []value.Value{value.String("k"), value.Float64(0)}, false)
	testutil.Assert(t, found, "k must be found")
	g := a.GetGroup(a.Index(idx), 2)
	score, _ := g[1].Float64()
	testutil.Equals(t, 99.0, score)
}

func TestFullWidthAllowsDuplicateKeys(t *testing.T) {
	a := flex.New()
	a.InsertSortedGroup(2, []value.Value{value.Float64(1), value.String("x")}, true)
	a.InsertSortedGroup(2, []value.Value{value.Float64(1), value.String("y")}, true)
	testutil.Equals(t, 4, a.Count())
}

func TestDeleteRemovesGroup(t *testing.T) {
	a := flex.New()
	a.InsertSortedGroup(2, group(1, "a"), true)
	a.InsertSortedGroup(2, group(2, "b"), true)
	idx, found := a.FindSortedGroup(2, []value.Value{value.Float64(1), value.String("a")}, false)
	testutil.Assert(t, found, "a must exist")
	a.Delete(2, idx, 2)
	testutil.Equals(t, 2, a.Count())
	_, found = a.FindSortedGroup(2, []value.Value{value.Float64(1), value.String("a")}, false)
	testutil.Assert(t, !found, "a must be gone")
}

func TestSplitMiddleAndMerge(t *testing.T) {
	a := flex.New()
	for i := 0; i < 10; i++ {
		a.InsertSortedGroup(2, group(float64(i), string(rune('a'+i))), true)
	}
	upper := a.SplitMiddle(2)
	testutil.Assert(t, a.Count() > 0, "lower half non-empty")
	testutil.Assert(t, upper.Count() > 0, "upper half non-empty")
	testutil.Equals(t, 20, a.Count()+upper.Count())

	merged := flex.MergeAll(2, []*flex.Array{a, upper})
	testutil.Equals(t, 20, merged.Count())

	var members []string
	pos := merged.Head()
	for pos < merged.End() {
		g := merged.GetGroup(pos, 2)
		m, _ := g[1].Bytes()
		members = append(members, string(m))
		pos = merged.Next(merged.Next(pos))
	}
	for i := 1; i < len(members); i++ {
		testutil.Assert(t, members[i-1] < members[i], "merged array stays sorted: %v", members)
	}
}

func TestEncodingDeterminism(t *testing.T) {
	build := func() *flex.Array {
		a := flex.New()
		a.InsertSortedGroup(2, group(3, "c"), true)
		a.InsertSortedGroup(2, group(1, "a"), true)
		a.InsertSortedGroup(2, group(2, "b"), true)
		return a
	}
	a1, a2 := build(), build()
	testutil.Equals(t, a1.RawBytes(), a2.RawBytes(), "identical insert sequences must produce identical bytes")
}

func TestDuplicateIndependence(t *testing.T) {
	a := flex.New()
	a.InsertSortedGroup(2, group(1, "a"), true)
	b := a.Duplicate()
	b.InsertSortedGroup(2, group(2, "b"), true)
	testutil.Equals(t, 2, a.Count())
	testutil.Equals(t, 4, b.Count())
}

func TestPrevWalksBackward(t *testing.T) {
	a := flex.New()
	a.InsertSortedGroup(2, group(1, "a"), true)
	a.InsertSortedGroup(2, group(2, "b"), true)
	a.InsertSortedGroup(2, group(3, "c"), true)

	// Tail is the last raw entry (the member of the last group); the
	// group itself starts one entry earlier.
	last := a.Prev(a.Tail())
	g := a.GetGroup(last, 2)
	m, _ := g[1].Bytes()
	testutil.Equals(t, "c", string(m))

	prev := a.Prev(a.Prev(last))
	g = a.GetGroup(prev, 2)
	m, _ = g[1].Bytes()
	testutil.Equals(t, "b", string(m))
}

func TestFindInEmptyArray(t *testing.T) {
	a := flex.New()
	_, found := a.FindSortedGroup(2, []value.Value{value.Float64(1), value.String("x")}, false)
	testutil.Assert(t, !found, "empty array has nothing to find")
}

func TestLargeScaleSortedInsert(t *testing.T) {
	a := flex.New()
	n := 500
	for i := n - 1; i >= 0; i-- {
		a.InsertSortedGroup(2, group(float64(i), "m"), true)
	}
	testutil.Equals(t, n*2, a.Count())

	var prevScore float64
	pos := a.Head()
	first := true
	for pos < a.End() {
		g := a.GetGroup(pos, 2)
		score, _ := g[0].Float64()
		if !first {
			testutil.Assert(t, score >= prevScore, "sorted ascending")
		}
		first = false
		prevScore = score
		pos = a.Next(a.Next(pos))
	}
}

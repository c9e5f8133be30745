package orderedset

import (
	"fmt"
	"testing"

	"github.com/latticedb/flexset/atompool"
	"github.com/latticedb/flexset/internal/testutil"
	"github.com/latticedb/flexset/value"
)

func mustFloat(t *testing.T, v value.Value) float64 {
	t.Helper()
	f, ok := v.Float64()
	testutil.Assert(t, ok, "value %v is not numeric", v)
	return f
}

// S1: Small-tier basics -- add, exists, score lookup, remove.
func TestSmallTierBasics(t *testing.T) {
	s := New()
	replaced := s.Add(value.Float64(1.5), value.String("alice"))
	testutil.Assert(t, !replaced, "first add should not report a replace")
	s.Add(value.Float64(2.5), value.String("bob"))
	s.Add(value.Float64(0.5), value.String("carol"))

	testutil.Equals(t, 3, s.Count())
	testutil.Assert(t, s.Exists(value.String("bob")), "bob should exist")

	score, ok := s.GetScore(value.String("alice"))
	testutil.Assert(t, ok, "alice should have a score")
	testutil.Equals(t, 1.5, mustFloat(t, score))

	member, score, ok := s.First()
	testutil.Assert(t, ok, "First() should succeed on a non-empty set")
	testutil.Equals(t, 0.5, mustFloat(t, score))
	b, _ := member.Bytes()
	testutil.Equals(t, "carol", string(b))

	prev, existed := s.RemoveGetScore(value.String("alice"))
	testutil.Assert(t, existed, "alice should have existed")
	testutil.Equals(t, 1.5, mustFloat(t, prev))
	testutil.Assert(t, !s.Exists(value.String("alice")), "alice should be gone")
	testutil.Equals(t, 2, s.Count())
}

// S2: repeated upsert of the same member does not grow the entry count.
func TestUpsertDoesNotGrowCount(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Add(value.Float64(float64(i)), value.String("x"))
	}
	testutil.Equals(t, 1, s.Count())
	score, ok := s.GetScore(value.String("x"))
	testutil.Assert(t, ok, "x should exist")
	testutil.Equals(t, 9.0, mustFloat(t, score))
}

// S3: NX/XX semantics.
func TestAddNXAddXX(t *testing.T) {
	s := New()
	testutil.Assert(t, s.AddNX(value.Float64(1), value.String("a")), "AddNX on absent member should insert")
	testutil.Assert(t, !s.AddNX(value.Float64(2), value.String("a")), "AddNX on present member should not insert")
	score, _ := s.GetScore(value.String("a"))
	testutil.Equals(t, 1.0, mustFloat(t, score))

	testutil.Assert(t, !s.AddXX(value.Float64(5), value.String("b")), "AddXX on absent member should not insert")
	testutil.Assert(t, !s.Exists(value.String("b")), "AddXX must not have inserted b")
	testutil.Assert(t, s.AddXX(value.Float64(5), value.String("a")), "AddXX on present member should update")
	score, _ = s.GetScore(value.String("a"))
	testutil.Equals(t, 5.0, mustFloat(t, score))
}

// S4: promotion Small -> Medium -> Full under sustained inserts.
func TestPromotionToFullUnderLoad(t *testing.T) {
	s := NewWithLimit(256)
	const n = 5000
	for i := 0; i < n; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("member-%06d", i))))
	}
	testutil.Equals(t, n, s.Count())
	_, ok := s.t.(*fullTier)
	testutil.Assert(t, ok, "tier should be *fullTier after %d inserts, got %T", n, s.t)

	for i := 0; i < n; i += 777 {
		member := value.Bytes([]byte(fmt.Sprintf("member-%06d", i)))
		score, ok := s.GetScore(member)
		testutil.Assert(t, ok, "member-%06d should exist", i)
		testutil.Equals(t, float64(i), mustFloat(t, score))
	}
}

// S5: range removal by score.
func TestRemoveRangeByScore(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("m%02d", i))))
	}
	removed := s.RemoveRangeByScore(ScoreRange{Min: value.Float64(5), Max: value.Float64(10)})
	testutil.Equals(t, 6, removed)
	testutil.Equals(t, 14, s.Count())
	for i := 5; i <= 10; i++ {
		testutil.Assert(t, !s.Exists(value.Bytes([]byte(fmt.Sprintf("m%02d", i)))), "m%02d should have been removed", i)
	}
}

// S6: union with SUM aggregation.
func TestUnionSum(t *testing.T) {
	a := New()
	a.Add(value.Float64(1), value.String("x"))
	a.Add(value.Float64(2), value.String("y"))

	b := New()
	b.Add(value.Float64(10), value.String("y"))
	b.Add(value.Float64(3), value.String("z"))

	out := Union([]*Set{a, b}, nil, AggregateSum)
	testutil.Equals(t, 3, out.Count())
	score, ok := out.GetScore(value.String("y"))
	testutil.Assert(t, ok, "union should contain y")
	testutil.Equals(t, 12.0, mustFloat(t, score))
	score, _ = out.GetScore(value.String("x"))
	testutil.Equals(t, 1.0, mustFloat(t, score))
}

func TestIntersectMin(t *testing.T) {
	a := New()
	a.Add(value.Float64(5), value.String("x"))
	a.Add(value.Float64(1), value.String("y"))

	b := New()
	b.Add(value.Float64(2), value.String("x"))

	out := Intersect([]*Set{a, b}, nil, AggregateMin)
	testutil.Equals(t, 1, out.Count())
	score, ok := out.GetScore(value.String("x"))
	testutil.Assert(t, ok, "intersect should contain x")
	testutil.Equals(t, 2.0, mustFloat(t, score))
}

func TestDifference(t *testing.T) {
	a := New()
	a.Add(value.Float64(1), value.String("x"))
	a.Add(value.Float64(2), value.String("y"))

	b := New()
	b.Add(value.Float64(99), value.String("y"))

	out := Difference([]*Set{a, b})
	testutil.Equals(t, 1, out.Count())
	testutil.Assert(t, out.Exists(value.String("x")), "difference should keep x")
}

// S7: PopMin ordering.
func TestPopMinOrdering(t *testing.T) {
	s := New()
	s.Add(value.Float64(3), value.String("c"))
	s.Add(value.Float64(1), value.String("a"))
	s.Add(value.Float64(2), value.String("b"))

	members, scores := s.PopMin(2)
	testutil.Equals(t, 2, len(members))
	b0, _ := members[0].Bytes()
	b1, _ := members[1].Bytes()
	testutil.Equals(t, "a", string(b0))
	testutil.Equals(t, "b", string(b1))
	testutil.Equals(t, 1.0, mustFloat(t, scores[0]))
	testutil.Equals(t, 2.0, mustFloat(t, scores[1]))
	testutil.Equals(t, 1, s.Count())
}

func TestPopMaxOrdering(t *testing.T) {
	s := New()
	s.Add(value.Float64(3), value.String("c"))
	s.Add(value.Float64(1), value.String("a"))
	s.Add(value.Float64(2), value.String("b"))

	members, scores := s.PopMax(2)
	b0, _ := members[0].Bytes()
	b1, _ := members[1].Bytes()
	testutil.Equals(t, "c", string(b0))
	testutil.Equals(t, "b", string(b1))
	testutil.Equals(t, 3.0, mustFloat(t, scores[0]))
	testutil.Equals(t, 2.0, mustFloat(t, scores[1]))
}

// S8: iterator positioned at a score.
func TestIteratorInitAtScore(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("m%d", i))))
	}
	it, ok := s.IteratorInitAtScore(value.Float64(5), true)
	testutil.Assert(t, ok, "expected a valid position at score 5")
	_, score, more := it.Next()
	testutil.Assert(t, more, "iterator should yield an entry")
	testutil.Equals(t, 5.0, mustFloat(t, score))
	count := 1
	for {
		_, _, more := it.Next()
		if !more {
			break
		}
		count++
	}
	testutil.Equals(t, 5, count)
}

func TestIteratorBackward(t *testing.T) {
	s := New()
	for i := 0; i < 5; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("m%d", i))))
	}
	it := s.IteratorInit(false)
	var order []float64
	for {
		_, score, more := it.Next()
		if !more {
			break
		}
		order = append(order, mustFloat(t, score))
	}
	testutil.Equals(t, []float64{4, 3, 2, 1, 0}, order)
}

// Rank round trips across tiers.
func TestGetRankAndGetByRank(t *testing.T) {
	s := New()
	for i := 0; i < 20; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("m%02d", i))))
	}
	rank, ok := s.GetRank(value.Bytes([]byte("m10")))
	testutil.Assert(t, ok, "m10 should have a rank")
	testutil.Equals(t, 10, rank)

	revRank, ok := s.GetReverseRank(value.Bytes([]byte("m10")))
	testutil.Assert(t, ok, "m10 should have a reverse rank")
	testutil.Equals(t, 9, revRank)

	_, score, ok := s.GetByRank(-1)
	testutil.Assert(t, ok, "GetByRank(-1) should succeed")
	testutil.Equals(t, 19.0, mustFloat(t, score))

	_, _, ok = s.GetByRank(100)
	testutil.Assert(t, !ok, "GetByRank out of range should fail")
}

// Full-tier sub-map split and merge round trip.
func TestFullTierSplitAndMerge(t *testing.T) {
	s := NewWithLimit(64)
	const n = 2000
	for i := 0; i < n; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("m%05d", i))))
	}
	full, ok := s.t.(*fullTier)
	testutil.Assert(t, ok, "expected full tier, got %T", s.t)
	testutil.Assert(t, len(full.subMaps) > 1, "expected the full tier to have split into multiple sub-maps")
	testutil.Equals(t, len(full.subMaps)-1, len(full.ranges))

	deleted := 0
	for i := 0; i < n; i += 13 {
		testutil.Assert(t, s.Remove(value.Bytes([]byte(fmt.Sprintf("m%05d", i)))), "remove m%05d failed", i)
		deleted++
	}
	testutil.Equals(t, n-deleted, s.Count())
	for i := 0; i < n; i += 13 {
		testutil.Assert(t, !s.Exists(value.Bytes([]byte(fmt.Sprintf("m%05d", i)))), "m%05d should have been removed", i)
	}
}

// Atom-pool-backed set: refcount integrity across add/remove/copy.
func TestPoolBackedRefcountIntegrity(t *testing.T) {
	pool := atompool.NewHash(1)
	s := NewWithOwnedPool(256, pool)

	s.Add(value.Float64(1), value.String("shared-member"))
	testutil.Equals(t, uint64(1), pool.Refcount(pool.GetID([]byte("shared-member"))))

	// Re-adding the same member must not leak a reference.
	s.Add(value.Float64(2), value.String("shared-member"))
	id := pool.GetID([]byte("shared-member"))
	testutil.Equals(t, uint64(1), pool.Refcount(id))

	cp := s.Copy()
	testutil.Equals(t, uint64(2), pool.Refcount(id))

	cp.Remove(value.String("shared-member"))
	testutil.Equals(t, uint64(1), pool.Refcount(id))

	s.Remove(value.String("shared-member"))
	testutil.Assert(t, !pool.Exists([]byte("shared-member")), "shared-member should be gone from the pool once every reference is released")
}

func TestPoolBackedResolveMember(t *testing.T) {
	pool := atompool.NewHash(1)
	s := NewWithOwnedPool(256, pool)
	s.Add(value.Float64(1), value.String("hello"))

	member, _, ok := s.First()
	testutil.Assert(t, ok, "expected a first entry")
	b, ok := member.Bytes()
	testutil.Assert(t, ok, "resolved member should be bytes")
	testutil.Equals(t, "hello", string(b))
}

// Boundary counts.
func TestEmptySet(t *testing.T) {
	s := New()
	testutil.Equals(t, 0, s.Count())
	_, _, ok := s.First()
	testutil.Assert(t, !ok, "First on empty set should fail")
	testutil.Assert(t, !s.Remove(value.String("nope")), "Remove on empty set should return false")
}

func TestSingleAndTwoMemberSets(t *testing.T) {
	s := New()
	s.Add(value.Float64(1), value.String("only"))
	testutil.Equals(t, 1, s.Count())
	member, _, ok := s.Last()
	testutil.Assert(t, ok, "Last should succeed on a single-member set")
	b, _ := member.Bytes()
	testutil.Equals(t, "only", string(b))

	s.Add(value.Float64(0), value.String("before"))
	testutil.Equals(t, 2, s.Count())
	member, _, _ = s.First()
	b, _ = member.Bytes()
	testutil.Equals(t, "before", string(b))
}

// NaN/boundary score handling: under value.Compare's total order NaN
// equals itself and sorts above every other number; a member with a NaN
// score must still round-trip through the set.
func TestNaNScoreRoundTrips(t *testing.T) {
	s := New()
	s.Add(value.Float64(1), value.String("finite"))
	s.Add(value.Float64(nan()), value.String("nanny"))
	testutil.Equals(t, 2, s.Count())
	testutil.Assert(t, s.Exists(value.String("nanny")), "nanny should exist despite its NaN score")
	_, _, ok := s.First()
	testutil.Assert(t, ok, "First should still succeed with a NaN score present")
}

func nan() float64 {
	var zero float64
	return zero / zero
}

func TestIncrBy(t *testing.T) {
	s := New()
	v, ok := s.IncrBy(5, value.String("counter"))
	testutil.Assert(t, ok, "IncrBy on absent member should succeed")
	testutil.Equals(t, 5.0, v)

	v, ok = s.IncrBy(3, value.String("counter"))
	testutil.Assert(t, ok, "IncrBy on present member should succeed")
	testutil.Equals(t, 8.0, v)

	s.Add(value.String("not-a-number"), value.String("mismatched"))
	_, ok = s.IncrBy(1, value.String("mismatched"))
	testutil.Assert(t, !ok, "IncrBy on a non-numeric score should fail")
}

func TestRemoveRangeByRank(t *testing.T) {
	s := New()
	for i := 0; i < 10; i++ {
		s.Add(value.Float64(float64(i)), value.Bytes([]byte(fmt.Sprintf("m%d", i))))
	}
	removed := s.RemoveRangeByRank(0, 2)
	testutil.Equals(t, 3, removed)
	testutil.Equals(t, 7, s.Count())
	testutil.Assert(t, !s.Exists(value.Bytes([]byte("m0"))), "rank 0 should have been removed")
	testutil.Assert(t, !s.Exists(value.Bytes([]byte("m1"))), "rank 1 should have been removed")
	testutil.Assert(t, !s.Exists(value.Bytes([]byte("m2"))), "rank 2 should have been removed")
}

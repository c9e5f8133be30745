// Package orderedset implements the three-tier auto-promoting ordered
// set spec.md calls C4 (Small/Medium/Full tiers) wrapped by the tier
// dispatcher C5: a sorted container mapping unique members to numeric
// scores, ordered by (score, member), with O(1) member lookup and
// ranked/ranged iteration.
//
// Tier dispatch (spec.md §4.5) is expressed as a Go interface value
// rather than bit-tagged pointers: a Set holds one `tier` implementation
// at a time (*smallTier, *mediumTier, or *fullTier) and promotion simply
// reassigns that field. This is the translation spec.md §9 itself
// suggests ("a sum type... otherwise a plain enum discriminant is
// adequate") — interface dispatch is its direct Go idiom.
package orderedset

import "github.com/latticedb/flexset/value"

// entry is a decoded (score, member) pair, used by every operation that
// needs a materialised, sorted view of a tier's contents (rank queries,
// range removal, pop, iteration, set algebra).
type entry struct {
	score  value.Value
	member value.Value
}

func compareEntries(a, b entry) int {
	if c := value.Compare(a.score, b.score); c != 0 {
		return c
	}
	return value.Compare(a.member, b.member)
}

// ScoreRange describes an inclusive/exclusive score window, spec.md
// §6.2's "Rank and range semantics": a score s matches iff
// (min_exclusive ? s>min : s>=min) && (max_exclusive ? s<max : s<=max).
type ScoreRange struct {
	Min, Max                   value.Value
	MinExclusive, MaxExclusive bool
}

// Matches reports whether score falls within r.
func (r ScoreRange) Matches(score value.Value) bool {
	if r.MinExclusive {
		if value.Compare(score, r.Min) <= 0 {
			return false
		}
	} else if value.Compare(score, r.Min) < 0 {
		return false
	}
	if r.MaxExclusive {
		if value.Compare(score, r.Max) >= 0 {
			return false
		}
	} else if value.Compare(score, r.Max) > 0 {
		return false
	}
	return true
}

// Aggregate selects how union/intersect combine per-set weighted scores
// for a member present in more than one input (spec.md §4.4.8).
type Aggregate int

const (
	AggregateSum Aggregate = iota
	AggregateMin
	AggregateMax
)

func combine(agg Aggregate, acc float64, have bool, v float64) float64 {
	if !have {
		return v
	}
	switch agg {
	case AggregateMin:
		if v < acc {
			return v
		}
		return acc
	case AggregateMax:
		if v > acc {
			return v
		}
		return acc
	default:
		return acc + v
	}
}

// normaliseRank converts a possibly-negative rank (spec.md §6.2: -1 is
// the last element) into a 0-based index, or reports false if it falls
// outside [0, count).
func normaliseRank(rank, count int) (int, bool) {
	if rank < 0 {
		rank += count
	}
	if rank < 0 || rank >= count {
		return 0, false
	}
	return rank, true
}

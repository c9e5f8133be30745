package orderedset

import "github.com/latticedb/flexset/value"

func weightOrDefault(weights []float64, i int) float64 {
	if i < len(weights) {
		return weights[i]
	}
	return 1.0
}

// Union combines every set's (weighted) scores for the union of their
// members, aggregating scores for members present in more than one
// input set via agg (spec.md §4.4.8). Always returns a fresh Set.
func Union(sets []*Set, weights []float64, agg Aggregate) *Set {
	acc := make(map[string]float64)
	members := make(map[string]value.Value)
	have := make(map[string]bool)

	for i, s := range sets {
		w := weightOrDefault(weights, i)
		for _, e := range s.sortedEntries() {
			m := s.resolveMember(e.member)
			key := memberKey(m)
			raw, numeric := e.score.Float64()
			if !numeric {
				raw = 0
			}
			acc[key] = combine(agg, acc[key], have[key], raw*w)
			have[key] = true
			members[key] = m
		}
	}

	out := New()
	for key, score := range acc {
		out.Add(value.Float64(score), members[key])
	}
	return out
}

// Intersect iterates the smallest input set, keeping members present in
// every other set and aggregating their weighted scores via agg
// (spec.md §4.4.8).
func Intersect(sets []*Set, weights []float64, agg Aggregate) *Set {
	out := New()
	if len(sets) == 0 {
		return out
	}

	smallest := 0
	for i, s := range sets {
		if s.Count() < sets[smallest].Count() {
			smallest = i
		}
	}

	for _, e := range sets[smallest].sortedEntries() {
		m := sets[smallest].resolveMember(e.member)
		var acc float64
		have := false
		inAll := true
		for i, s := range sets {
			score, ok := s.GetScore(m)
			if !ok {
				inAll = false
				break
			}
			raw, numeric := score.Float64()
			if !numeric {
				raw = 0
			}
			acc = combine(agg, acc, have, raw*weightOrDefault(weights, i))
			have = true
		}
		if inAll {
			out.Add(value.Float64(acc), m)
		}
	}
	return out
}

// Difference copies sets[0] and removes every member appearing in any
// of sets[1:] (spec.md §4.4.8).
func Difference(sets []*Set) *Set {
	out := New()
	if len(sets) == 0 {
		return out
	}
	for _, e := range sets[0].sortedEntries() {
		m := sets[0].resolveMember(e.member)
		excluded := false
		for _, s := range sets[1:] {
			if s.Exists(m) {
				excluded = true
				break
			}
		}
		if !excluded {
			out.Add(e.score, m)
		}
	}
	return out
}

// Package pointbuy implements the stateless point-buy engine: cost lookup,
// single-step adjustment validation, limit reconciliation, bonus aggregation
// and derived score computation.
//
// Every function is pure. Callers own all state and pass a full snapshot on
// each call.
package pointbuy

import "sort"

// Baseline is the score every cost table is cumulative from.
const Baseline = 8

// Domain bounds for any cost table. Scores outside [MinScore, MaxScore] are
// never purchasable.
const (
	MinScore = 2
	MaxScore = 20
)

// MaxCost bounds the magnitude of any cost entry. Entries beyond it are
// unreachable, which keeps a six-ability total far from int overflow.
const MaxCost = 1000

// ValidCost reports whether cost lies within [-MaxCost, MaxCost].
func ValidCost(cost int) bool {
	return cost >= -MaxCost && cost <= MaxCost
}

// CostTable maps a raw purchased score to its cumulative point cost from
// Baseline. A score with no entry is unreachable.
type CostTable map[int]int

// CostOf returns the cost of score and true when the table defines it within
// [MinScore, MaxScore] with a cost inside [-MaxCost, MaxCost]; otherwise ok
// is false and the score cannot be bought.
func (t CostTable) CostOf(score int) (cost int, ok bool) {
	if score < MinScore || score > MaxScore {
		return 0, false
	}
	cost, ok = t[score]
	if !ok || !ValidCost(cost) {
		return 0, false
	}
	return cost, true
}

// CostOf is the free-function form of CostTable.CostOf.
func CostOf(score int, table CostTable) (int, bool) {
	return table.CostOf(score)
}

// Reachable reports whether score has a defined cost.
func (t CostTable) Reachable(score int) bool {
	_, ok := t.CostOf(score)
	return ok
}

// Clone returns an independent copy of t.
func (t CostTable) Clone() CostTable {
	c := make(CostTable, len(t))
	for k, v := range t {
		c[k] = v
	}
	return c
}

// WithoutRefunds returns a copy of t in which negative costs for scores below
// Baseline read as zero, so lowering a score never returns points.
func (t CostTable) WithoutRefunds() CostTable {
	c := t.Clone()
	for score, cost := range c {
		if score < Baseline && cost < 0 {
			c[score] = 0
		}
	}
	return c
}

// Scores returns the defined scores within the domain in ascending order.
func (t CostTable) Scores() []int {
	scores := make([]int, 0, len(t))
	for score := range t {
		if score >= MinScore && score <= MaxScore {
			scores = append(scores, score)
		}
	}
	sort.Ints(scores)
	return scores
}

// LowestReachable returns the lowest score in [lo, hi] that the table can
// price, scanning upward.
//
// Postcondition: ok is false when no score in the range is reachable.
func (t CostTable) LowestReachable(lo, hi int) (score int, ok bool) {
	if lo < MinScore {
		lo = MinScore
	}
	if hi > MaxScore {
		hi = MaxScore
	}
	for s := lo; s <= hi; s++ {
		if t.Reachable(s) {
			return s, true
		}
	}
	return 0, false
}

// Monotonic reports whether cost never decreases between adjacent defined
// scores.
func (t CostTable) Monotonic() bool {
	scores := t.Scores()
	for i := 1; i < len(scores); i++ {
		if t[scores[i]] < t[scores[i-1]] {
			return false
		}
	}
	return true
}

package pointbuy

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
)

// Rejection reasons returned by ValidateAdjustment. The scores returned with
// any of these are the unchanged input.
var (
	ErrInvalidDelta   = errors.New("adjustment must be +1 or -1")
	ErrOutOfRange     = errors.New("score outside purchasable limits")
	ErrUnreachable    = errors.New("score has no defined cost")
	ErrBudgetExceeded = errors.New("allocation exceeds point pool")
)

// Limits bounds the raw purchasable score before any bonuses.
type Limits struct {
	Min int
	Max int
}

// Contains reports whether score lies in [Min, Max].
func (l Limits) Contains(score int) bool {
	return score >= l.Min && score <= l.Max
}

// Valid reports whether the range is non-empty.
func (l Limits) Valid() bool {
	return l.Min <= l.Max
}

// Clamp pulls score into [Min, Max]. An inverted range clamps to Min.
func (l Limits) Clamp(score int) int {
	if score > l.Max {
		score = l.Max
	}
	if score < l.Min {
		score = l.Min
	}
	return score
}

// Params is the pool configuration the engine validates against.
type Params struct {
	// Table is the active cost table (standard or custom).
	Table CostTable
	// Limits bounds purchasable scores.
	Limits Limits
	// Pool is the total point budget.
	Pool int
	// FallbackMin is the ruleset's hard-coded minimum purchasable score,
	// used when no score within Limits is reachable.
	FallbackMin int
}

// TotalSpent sums the cost of every purchased score.
//
// Postcondition: ok is false if any score is unreachable; total then covers
// only the reachable scores.
func TotalSpent(scores character.Scores, table CostTable) (total int, ok bool) {
	ok = true
	for _, a := range character.All {
		cost, defined := table.CostOf(scores.Get(a))
		if !defined {
			ok = false
			continue
		}
		total += cost
	}
	return total, ok
}

// ValidateAdjustment applies a single +1/-1 step to ability if the result is
// within limits, priced by the table, and keeps the whole allocation within
// the pool. The total is re-summed across all six abilities because costs are
// not linear in the score.
//
// Postcondition: On success returns scores with only ability changed and a
// nil error. On rejection returns the input scores unchanged with an error
// wrapping one of the Err* sentinels.
func ValidateAdjustment(scores character.Scores, ability character.Ability, delta int, p Params) (character.Scores, error) {
	if !ability.Valid() {
		return scores, fmt.Errorf("ability %d: %w", int(ability), ErrInvalidDelta)
	}
	if delta != 1 && delta != -1 {
		return scores, fmt.Errorf("delta %d: %w", delta, ErrInvalidDelta)
	}

	candidate := scores.Get(ability) + delta
	if !p.Limits.Contains(candidate) {
		return scores, fmt.Errorf("%s %d not in [%d, %d]: %w",
			ability, candidate, p.Limits.Min, p.Limits.Max, ErrOutOfRange)
	}
	if !p.Table.Reachable(candidate) {
		return scores, fmt.Errorf("%s %d: %w", ability, candidate, ErrUnreachable)
	}

	next := scores.With(ability, candidate)
	total, ok := TotalSpent(next, p.Table)
	if !ok {
		return scores, fmt.Errorf("current allocation: %w", ErrUnreachable)
	}
	if total > p.Pool {
		return scores, fmt.Errorf("%d points needed, pool is %d: %w", total, p.Pool, ErrBudgetExceeded)
	}
	return next, nil
}

// ResetValue returns the score every ability falls back to when an
// allocation cannot be kept: the lowest reachable score within Limits, or
// FallbackMin when none is reachable.
func ResetValue(p Params) int {
	if s, ok := p.Table.LowestReachable(p.Limits.Min, p.Limits.Max); ok {
		return s
	}
	return p.FallbackMin
}

// ReconcileLimits brings an allocation back into a valid state after the
// limits, pool or cost table changed. Each score is clamped into Limits and
// replaced by ResetValue if the clamped score is unreachable. If any score is
// still unreachable or the total exceeds the pool, all six scores reset to
// ResetValue together.
//
// Precondition: p.Limits were validated by the caller.
// Postcondition: The result is a fixed point: reconciling it again with the
// same params returns it unchanged.
func ReconcileLimits(scores character.Scores, p Params) character.Scores {
	reset := ResetValue(p)

	var out character.Scores
	for _, a := range character.All {
		s := p.Limits.Clamp(scores.Get(a))
		if !p.Table.Reachable(s) {
			s = reset
		}
		out[a] = s
	}

	total, ok := TotalSpent(out, p.Table)
	if !ok || total > p.Pool {
		return character.Uniform(reset)
	}
	return out
}

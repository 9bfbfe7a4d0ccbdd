package pointbuy

import "github.com/cory-johannsen/pointbuy/internal/game/character"

// Result is everything a presentation layer renders for one allocation.
type Result struct {
	Purchased       character.Scores
	Final           character.Scores
	Modifiers       character.Scores
	Bonuses         character.Scores
	PointsSpent     int
	RemainingPoints int
	LevelAdjustment int
}

// Derive computes the full derived state for an allocation. Unreachable
// purchased scores contribute nothing to PointsSpent.
func Derive(scores character.Scores, p Params, sources ...BonusSource) Result {
	spent, _ := TotalSpent(scores, p.Table)
	final, la := AggregateBonuses(scores, sources...)

	var mods, bonuses character.Scores
	for _, a := range character.All {
		mods[a] = FinalModifier(final.Get(a))
		bonuses[a] = final.Get(a) - scores.Get(a)
	}

	return Result{
		Purchased:       scores,
		Final:           final,
		Modifiers:       mods,
		Bonuses:         bonuses,
		PointsSpent:     spent,
		RemainingPoints: p.Pool - spent,
		LevelAdjustment: la,
	}
}

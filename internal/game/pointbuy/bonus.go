package pointbuy

import "github.com/cory-johannsen/pointbuy/internal/game/character"

// BonusSource is a named set of per-ability deltas applied after purchase:
// a race, a template, chosen free increases or a feat. LevelAdjustment is
// tracked alongside but never affects scores or cost.
type BonusSource struct {
	Name            string
	Deltas          map[character.Ability]int
	LevelAdjustment int
}

// Delta returns the source's delta for a, zero when absent.
func (b BonusSource) Delta(a character.Ability) int {
	return b.Deltas[a]
}

// FreePick is one chosen free-increase slot. An invalid Ability leaves the
// slot unassigned.
type FreePick struct {
	Ability character.Ability
	Amount  int
}

// FreeIncreases builds the source for chosen free-increase slots. Slots that
// name the same ability do not stack: a later slot overwrites the earlier
// one, so two +1 picks on one ability yield +1.
func FreeIncreases(name string, picks ...FreePick) BonusSource {
	deltas := make(map[character.Ability]int, len(picks))
	for _, p := range picks {
		if !p.Ability.Valid() {
			continue
		}
		deltas[p.Ability] = p.Amount
	}
	return BonusSource{Name: name, Deltas: deltas}
}

// AggregateBonuses adds every source's deltas onto the purchased scores and
// sums the level adjustments. Summation order does not matter.
func AggregateBonuses(base character.Scores, sources ...BonusSource) (character.Scores, int) {
	final := base
	levelAdjustment := 0
	for _, src := range sources {
		for a, d := range src.Deltas {
			if a.Valid() {
				final[a] += d
			}
		}
		levelAdjustment += src.LevelAdjustment
	}
	return final, levelAdjustment
}

// FinalModifier returns floor((score - 10) / 2).
func FinalModifier(score int) int {
	return character.Modifier(score)
}

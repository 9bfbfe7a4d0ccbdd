package ruleset

import (
	"fmt"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
)

// FeatID enumerates the 5e ability score improvements and half-feats.
type FeatID int

// Feats. FeatNone contributes nothing.
const (
	FeatNone FeatID = iota
	FeatASIPlusTwo
	FeatASISplit
	FeatActor
	FeatDurable
	FeatHeavilyArmored
	FeatKeenMind
	FeatLinguist
	FeatResilient
	FeatObservant
)

// Pick is a chosen increase. Allowed is nil when any ability may be chosen.
type Pick struct {
	Amount  int
	Allowed []character.Ability
}

func (p Pick) allows(a character.Ability) bool {
	if len(p.Allowed) == 0 {
		return a.Valid()
	}
	for _, x := range p.Allowed {
		if x == a {
			return true
		}
	}
	return false
}

// Feat is an ASI or half-feat: fixed deltas plus zero or more picks.
type Feat struct {
	ID    FeatID
	Name  string
	Fixed map[character.Ability]int
	Picks []Pick
}

// Source validates choices against the feat's picks and returns its bonus
// source. Picks naming the same ability overwrite rather than stack.
//
// Precondition: len(choices) must equal len(f.Picks).
// Postcondition: Returns the source or a non-nil error on a disallowed choice.
func (f Feat) Source(choices []character.Ability) (pointbuy.BonusSource, error) {
	if len(choices) != len(f.Picks) {
		return pointbuy.BonusSource{}, fmt.Errorf("feat %s takes %d ability choice(s), got %d", f.Name, len(f.Picks), len(choices))
	}
	fp := make([]pointbuy.FreePick, 0, len(f.Picks))
	for i, p := range f.Picks {
		if !p.allows(choices[i]) {
			return pointbuy.BonusSource{}, fmt.Errorf("feat %s cannot increase %s", f.Name, choices[i])
		}
		fp = append(fp, pointbuy.FreePick{Ability: choices[i], Amount: p.Amount})
	}
	src := pointbuy.FreeIncreases(f.Name, fp...)
	for a, d := range f.Fixed {
		src.Deltas[a] += d
	}
	return src, nil
}

var feats = []Feat{
	{ID: FeatNone, Name: "None"},
	{ID: FeatASIPlusTwo, Name: "ASI +2", Picks: []Pick{{Amount: 2}}},
	{ID: FeatASISplit, Name: "ASI +1/+1", Picks: []Pick{{Amount: 1}, {Amount: 1}}},
	{ID: FeatActor, Name: "Actor", Fixed: mods{cha: 1}},
	{ID: FeatDurable, Name: "Durable", Fixed: mods{con: 1}},
	{ID: FeatHeavilyArmored, Name: "Heavily Armored", Fixed: mods{str: 1}},
	{ID: FeatKeenMind, Name: "Keen Mind", Fixed: mods{itl: 1}},
	{ID: FeatLinguist, Name: "Linguist", Fixed: mods{itl: 1}},
	{ID: FeatResilient, Name: "Resilient", Picks: []Pick{{Amount: 1}}},
	{ID: FeatObservant, Name: "Observant", Picks: []Pick{{Amount: 1, Allowed: []character.Ability{itl, wis}}}},
}

// Feats returns every feat in display order, starting with None.
func Feats() []Feat {
	out := make([]Feat, len(feats))
	copy(out, feats)
	return out
}

// LookupFeat returns the feat with the given ID.
func LookupFeat(id FeatID) (Feat, bool) {
	for _, f := range feats {
		if f.ID == id {
			return f, true
		}
	}
	return Feat{}, false
}

// FindFeat resolves a feat by name, ignoring case and punctuation
// ("asi+2" and "ASI +2" both match).
func FindFeat(name string) (Feat, error) {
	key := normalize(name)
	for _, f := range feats {
		if normalize(f.Name) == key {
			return f, nil
		}
	}
	return Feat{}, fmt.Errorf("unknown feat %q", name)
}

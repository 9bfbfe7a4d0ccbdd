// Package character defines the ability score domain model shared by the
// point-buy engine and its callers.
package character

import (
	"fmt"
	"strings"
)

// Ability identifies one of the six fixed ability scores.
type Ability int

// The six abilities in canonical display order.
const (
	Strength Ability = iota
	Dexterity
	Constitution
	Intelligence
	Wisdom
	Charisma
)

// NoAbility marks an unassigned choice slot.
const NoAbility Ability = -1

// NumAbilities is the number of ability scores every character carries.
const NumAbilities = 6

// All lists every ability in canonical order.
var All = [NumAbilities]Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

var abilityNames = [NumAbilities]string{"strength", "dexterity", "constitution", "intelligence", "wisdom", "charisma"}

var abilityShort = [NumAbilities]string{"str", "dex", "con", "int", "wis", "cha"}

// Valid reports whether a is one of the six abilities.
func (a Ability) Valid() bool {
	return a >= Strength && a <= Charisma
}

// String returns the lowercase full ability name.
func (a Ability) String() string {
	if !a.Valid() {
		return fmt.Sprintf("<ability %d>", int(a))
	}
	return abilityNames[a]
}

// Short returns the three-letter lowercase key ("str", "dex", ...).
func (a Ability) Short() string {
	if !a.Valid() {
		return fmt.Sprintf("<%d>", int(a))
	}
	return abilityShort[a]
}

// Label returns the uppercase three-letter display label.
func (a Ability) Label() string {
	return strings.ToUpper(a.Short())
}

// ParseAbility resolves a full name or three-letter key, case-insensitively.
//
// Postcondition: Returns a valid Ability or a non-nil error.
func ParseAbility(s string) (Ability, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, a := range All {
		if key == abilityNames[a] || key == abilityShort[a] {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown ability %q", s)
}

// Scores maps every ability to an integer value. The array form makes the
// mapping total: no ability can be missing.
type Scores [NumAbilities]int

// Uniform returns a Scores with every ability set to v.
func Uniform(v int) Scores {
	var s Scores
	for i := range s {
		s[i] = v
	}
	return s
}

// Get returns the value for a.
//
// Precondition: a.Valid().
func (s Scores) Get(a Ability) int {
	return s[a]
}

// With returns a copy of s with a set to v.
//
// Precondition: a.Valid().
func (s Scores) With(a Ability, v int) Scores {
	s[a] = v
	return s
}

// Modifier returns the ability modifier for score: floor((score - 10) / 2).
// Go's integer division truncates toward zero, so odd scores below 10 need
// the extra adjustment (7 yields -2, not -1).
func Modifier(score int) int {
	d := score - 10
	if d < 0 {
		return (d - 1) / 2
	}
	return d / 2
}

// FormatModifier renders a modifier with an explicit sign ("+3", "-1", "+0").
func FormatModifier(mod int) string {
	return fmt.Sprintf("%+d", mod)
}

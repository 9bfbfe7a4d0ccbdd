package ruleset

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
)

// RaceID enumerates every selectable race across both editions.
type RaceID int

// Races. RaceCustom is shared by both editions and takes its deltas from
// user input.
const (
	RaceCustom RaceID = iota

	RaceHuman35
	RaceElf35
	RaceDwarf35
	RaceGnome35
	RaceHalfElf35
	RaceHalfOrc35
	RaceHalfling35
	RaceAasimar35
	RaceTiefling35
	RaceDrow35

	RaceHumanVariant5
	RaceHumanStandard5
	RaceElfHigh5
	RaceDwarfHill5
	RaceDwarfMountain5
	RaceTiefling5
	RaceDragonborn5
	RaceHalflingLightfoot5
	RaceGnomeRock5
	RaceHalfElf5
	RaceHalfOrc5
)

// Race is a fixed modifier record. FreeSlots counts the +1 increases the
// player assigns to abilities of their choice.
type Race struct {
	ID              RaceID
	Edition         Edition
	Name            string
	Modifiers       map[character.Ability]int
	LevelAdjustment int
	FreeSlots       int
}

// IsCustom reports whether the race takes user-entered deltas.
func (r Race) IsCustom() bool {
	return r.ID == RaceCustom
}

// Source returns the race's bonus source. custom supplies the deltas for
// RaceCustom and is ignored otherwise.
func (r Race) Source(custom character.Scores) pointbuy.BonusSource {
	deltas := make(map[character.Ability]int, character.NumAbilities)
	if r.IsCustom() {
		for _, a := range character.All {
			if d := custom.Get(a); d != 0 {
				deltas[a] = d
			}
		}
	} else {
		for a, d := range r.Modifiers {
			deltas[a] = d
		}
	}
	return pointbuy.BonusSource{
		Name:            r.Name,
		Deltas:          deltas,
		LevelAdjustment: r.LevelAdjustment,
	}
}

// FreeSource builds the source for the race's chosen free increases. Picks
// beyond FreeSlots are ignored; invalid abilities mark empty slots.
func (r Race) FreeSource(picks []character.Ability) pointbuy.BonusSource {
	var fp []pointbuy.FreePick
	for i, a := range picks {
		if i >= r.FreeSlots {
			break
		}
		fp = append(fp, pointbuy.FreePick{Ability: a, Amount: 1})
	}
	return pointbuy.FreeIncreases(r.Name+" choices", fp...)
}

type mods = map[character.Ability]int

const (
	str = character.Strength
	dex = character.Dexterity
	con = character.Constitution
	itl = character.Intelligence
	wis = character.Wisdom
	cha = character.Charisma
)

var races = []Race{
	{ID: RaceHuman35, Edition: Edition35, Name: "Human"},
	{ID: RaceElf35, Edition: Edition35, Name: "Elf", Modifiers: mods{dex: 2, con: -2}},
	{ID: RaceDwarf35, Edition: Edition35, Name: "Dwarf", Modifiers: mods{con: 2, cha: -2}},
	{ID: RaceGnome35, Edition: Edition35, Name: "Gnome", Modifiers: mods{con: 2, str: -2}},
	{ID: RaceHalfElf35, Edition: Edition35, Name: "Half-Elf"},
	{ID: RaceHalfOrc35, Edition: Edition35, Name: "Half-Orc", Modifiers: mods{str: 2, itl: -2, cha: -2}},
	{ID: RaceHalfling35, Edition: Edition35, Name: "Halfling", Modifiers: mods{dex: 2, str: -2}},
	{ID: RaceAasimar35, Edition: Edition35, Name: "Aasimar", Modifiers: mods{wis: 2, cha: 2}, LevelAdjustment: 1},
	{ID: RaceTiefling35, Edition: Edition35, Name: "Tiefling", Modifiers: mods{dex: 2, itl: 2, cha: -2}, LevelAdjustment: 1},
	{ID: RaceDrow35, Edition: Edition35, Name: "Drow", Modifiers: mods{dex: 2, con: -2, itl: 2, cha: 2}, LevelAdjustment: 2},

	{ID: RaceHumanVariant5, Edition: Edition5, Name: "Human (Variant)", FreeSlots: 2},
	{ID: RaceHumanStandard5, Edition: Edition5, Name: "Human (Standard)", Modifiers: mods{str: 1, dex: 1, con: 1, itl: 1, wis: 1, cha: 1}},
	{ID: RaceElfHigh5, Edition: Edition5, Name: "Elf (High)", Modifiers: mods{dex: 2, itl: 1}},
	{ID: RaceDwarfHill5, Edition: Edition5, Name: "Dwarf (Hill)", Modifiers: mods{con: 2, wis: 1}},
	{ID: RaceDwarfMountain5, Edition: Edition5, Name: "Dwarf (Mountain)", Modifiers: mods{str: 2, con: 2}},
	{ID: RaceTiefling5, Edition: Edition5, Name: "Tiefling", Modifiers: mods{itl: 1, cha: 2}},
	{ID: RaceDragonborn5, Edition: Edition5, Name: "Dragonborn", Modifiers: mods{str: 2, cha: 1}},
	{ID: RaceHalflingLightfoot5, Edition: Edition5, Name: "Halfling (Lightfoot)", Modifiers: mods{dex: 2, cha: 1}},
	{ID: RaceGnomeRock5, Edition: Edition5, Name: "Gnome (Rock)", Modifiers: mods{con: 2, itl: 1}},
	{ID: RaceHalfElf5, Edition: Edition5, Name: "Half-Elf", Modifiers: mods{cha: 2}, FreeSlots: 2},
	{ID: RaceHalfOrc5, Edition: Edition5, Name: "Half-Orc", Modifiers: mods{str: 2, con: 1}},
}

var customRace = Race{ID: RaceCustom, Name: "Custom"}

// Races returns the selectable races for e in display order, ending with
// Custom.
func Races(e Edition) []Race {
	var out []Race
	for _, r := range races {
		if r.Edition == e {
			out = append(out, r)
		}
	}
	c := customRace
	c.Edition = e
	return append(out, c)
}

// LookupRace returns the race with the given ID.
func LookupRace(id RaceID) (Race, bool) {
	if id == RaceCustom {
		return customRace, true
	}
	for _, r := range races {
		if r.ID == id {
			return r, true
		}
	}
	return Race{}, false
}

// FindRace resolves a race of edition e by name, ignoring case, spaces and
// punctuation ("half-elf", "Human (Variant)", "humanvariant").
//
// Postcondition: Returns the race or a non-nil error listing no candidates.
func FindRace(e Edition, name string) (Race, error) {
	key := normalize(name)
	for _, r := range Races(e) {
		if normalize(r.Name) == key {
			return r, nil
		}
	}
	return Race{}, fmt.Errorf("unknown %s race %q", e, name)
}

// normalize lowercases s and drops everything that is not a letter or digit.
func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

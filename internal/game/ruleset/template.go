package ruleset

import (
	"fmt"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
)

// TemplateID enumerates the 3.5e templates a character may carry.
type TemplateID int

// Templates. TemplateNone contributes nothing.
const (
	TemplateNone TemplateID = iota
	TemplateCelestial
	TemplateFiendish
	TemplateHalfCelestial
	TemplateHalfFiend
	TemplateHalfDragon
	TemplateLich
	TemplateVampire
)

// Template is an acquired or inherited template with fixed ability changes
// and a level adjustment.
type Template struct {
	ID              TemplateID
	Name            string
	Modifiers       map[character.Ability]int
	LevelAdjustment int
}

// Source returns the template's bonus source.
func (t Template) Source() pointbuy.BonusSource {
	deltas := make(mods, len(t.Modifiers))
	for a, d := range t.Modifiers {
		deltas[a] = d
	}
	return pointbuy.BonusSource{
		Name:            t.Name,
		Deltas:          deltas,
		LevelAdjustment: t.LevelAdjustment,
	}
}

var templates = []Template{
	{ID: TemplateNone, Name: "None"},
	{ID: TemplateCelestial, Name: "Celestial", LevelAdjustment: 2},
	{ID: TemplateFiendish, Name: "Fiendish", LevelAdjustment: 2},
	{ID: TemplateHalfCelestial, Name: "Half-Celestial", Modifiers: mods{str: 4, dex: 2, con: 4, itl: 2, wis: 4, cha: 4}, LevelAdjustment: 4},
	{ID: TemplateHalfFiend, Name: "Half-Fiend", Modifiers: mods{str: 4, dex: 4, con: 2, itl: 4, cha: 2}, LevelAdjustment: 4},
	{ID: TemplateHalfDragon, Name: "Half-Dragon", Modifiers: mods{str: 8, con: 2, itl: 2, cha: 2}, LevelAdjustment: 3},
	{ID: TemplateLich, Name: "Lich", Modifiers: mods{itl: 2, wis: 2, cha: 2}, LevelAdjustment: 4},
	{ID: TemplateVampire, Name: "Vampire", Modifiers: mods{str: 6, dex: 4, itl: 2, wis: 2, cha: 4}, LevelAdjustment: 8},
}

// Templates returns every template in display order, starting with None.
func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}

// LookupTemplate returns the template with the given ID.
func LookupTemplate(id TemplateID) (Template, bool) {
	for _, t := range templates {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

// FindTemplate resolves a template by name, ignoring case and punctuation.
func FindTemplate(name string) (Template, error) {
	key := normalize(name)
	for _, t := range templates {
		if normalize(t.Name) == key {
			return t, nil
		}
	}
	return Template{}, fmt.Errorf("unknown template %q", name)
}

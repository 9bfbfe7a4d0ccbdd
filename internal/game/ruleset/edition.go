// Package ruleset holds the per-edition point-buy rules: standard cost
// tables, pool presets, purchase limits and the closed sets of races,
// templates and feats that contribute ability bonuses.
package ruleset

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
)

// Edition selects a rule variant.
type Edition string

// Supported editions.
const (
	Edition35 Edition = "3.5e"
	Edition5  Edition = "5e"
)

// Editions lists every supported edition in display order.
var Editions = []Edition{Edition35, Edition5}

// ParseEdition accepts "3.5e", "3.5", "35", "5e" or "5".
//
// Postcondition: Returns a supported Edition or a non-nil error.
func ParseEdition(s string) (Edition, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "3.5e", "3.5", "35", "35e", "dnd35":
		return Edition35, nil
	case "5e", "5", "dnd5e":
		return Edition5, nil
	}
	return "", fmt.Errorf("unknown edition %q (want 3.5e or 5e)", s)
}

// PoolPreset is a named point budget offered by an edition.
type PoolPreset struct {
	Points int
	Label  string
}

// Rules is the static configuration for one edition.
type Rules struct {
	Edition       Edition
	Name          string
	DefaultPool   int
	PoolPresets   []PoolPreset
	DefaultLimits pointbuy.Limits
	// FallbackMin is used when no score within the limits can be priced.
	FallbackMin int
	DefaultRace RaceID
	// HasTemplates and HasFeats gate the template and feat bonus sources.
	HasTemplates bool
	HasFeats     bool

	standardCosts pointbuy.CostTable
}

// StandardCosts returns a fresh copy of the edition's standard cost table.
func (r *Rules) StandardCosts() pointbuy.CostTable {
	return r.standardCosts.Clone()
}

// Params builds engine params from the rules plus caller overrides.
func (r *Rules) Params(table pointbuy.CostTable, limits pointbuy.Limits, pool int) pointbuy.Params {
	return pointbuy.Params{
		Table:       table,
		Limits:      limits,
		Pool:        pool,
		FallbackMin: r.FallbackMin,
	}
}

// Preset resolves a preset by points or by a case-insensitive label prefix.
func (r *Rules) Preset(s string) (PoolPreset, bool) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return PoolPreset{}, false
	}
	for _, p := range r.PoolPresets {
		if fmt.Sprint(p.Points) == key || strings.HasPrefix(strings.ToLower(p.Label), key) {
			return p, true
		}
	}
	return PoolPreset{}, false
}

var rules35 = &Rules{
	Edition:     Edition35,
	Name:        "D&D 3.5e",
	DefaultPool: 25,
	PoolPresets: []PoolPreset{
		{Points: 15, Label: "Low Fantasy"},
		{Points: 25, Label: "Standard"},
		{Points: 32, Label: "High Fantasy"},
		{Points: 40, Label: "Epic"},
	},
	DefaultLimits: pointbuy.Limits{Min: 8, Max: 18},
	FallbackMin:   8,
	DefaultRace:   RaceHuman35,
	HasTemplates:  true,
	standardCosts: pointbuy.CostTable{
		// below 8: house-rule refunds
		2: -13, 3: -9, 4: -6, 5: -4, 6: -2, 7: -1,
		8: 0, 9: 1, 10: 2, 11: 3, 12: 4, 13: 5, 14: 6, 15: 8, 16: 10, 17: 13, 18: 16,
		// above 18: escalating homebrew costs
		19: 20, 20: 24,
	},
}

var rules5 = &Rules{
	Edition:     Edition5,
	Name:        "D&D 5e",
	DefaultPool: 27,
	PoolPresets: []PoolPreset{
		{Points: 27, Label: "Standard 5e"},
		{Points: 15, Label: "Low"},
	},
	DefaultLimits: pointbuy.Limits{Min: 8, Max: 15},
	FallbackMin:   8,
	DefaultRace:   RaceHumanStandard5,
	HasFeats:      true,
	standardCosts: pointbuy.CostTable{
		2: -13, 3: -9, 4: -6, 5: -4, 6: -2, 7: -1,
		8: 0, 9: 1, 10: 2, 11: 3, 12: 4, 13: 5, 14: 7, 15: 9,
		16: 12, 17: 15, 18: 19, 19: 23, 20: 28,
	},
}

// For returns the rules for e.
//
// Precondition: e must be a supported edition.
func For(e Edition) *Rules {
	switch e {
	case Edition35:
		return rules35
	case Edition5:
		return rules5
	}
	panic(fmt.Sprintf("ruleset.For: unsupported edition %q", e))
}

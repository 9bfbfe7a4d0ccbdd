// Package session holds the per-connection calculator state and the
// registry of live sessions.
package session

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
)

// Bounds on user-entered purchase limits.
const (
	LimitFloor   = 1
	LimitCeiling = 30
)

// ErrNotSupported is returned when a setting does not apply to the sheet's
// edition (templates under 5e, feats under 3.5e).
var ErrNotSupported = errors.New("not available in this edition")

// Sheet is one edition's calculator configuration plus the purchased
// scores. Every mutation that changes pricing re-runs limit reconciliation,
// so Scores is always a valid allocation for the current Params.
//
// A Sheet is not safe for concurrent use; the owning Session serializes
// access.
type Sheet struct {
	Edition ruleset.Edition
	Scores  character.Scores

	Race       ruleset.RaceID
	CustomRace character.Scores
	// Picks holds the race's free-increase slots; NoAbility marks an empty one.
	Picks       []character.Ability
	Template    ruleset.TemplateID
	Feat        ruleset.FeatID
	FeatChoices []character.Ability

	// CustomCosts starts as a copy of the standard table.
	CustomCosts   pointbuy.CostTable
	UseCustom     bool
	CustomName    string
	AllowNegative bool

	Pool   int
	Limits pointbuy.Limits
}

// NewSheet returns a sheet with the edition's defaults: every score at the
// fallback minimum, the default race and pool, standard costs in use and
// negative costs allowed.
//
// Precondition: e must be a supported edition.
func NewSheet(e ruleset.Edition) *Sheet {
	r := ruleset.For(e)
	s := &Sheet{
		Edition:       e,
		CustomCosts:   r.StandardCosts(),
		AllowNegative: true,
		Pool:          r.DefaultPool,
		Limits:        r.DefaultLimits,
	}
	s.setRace(r.DefaultRace)
	s.Scores = character.Uniform(pointbuy.ResetValue(s.Params()))
	return s
}

// Rules returns the sheet's edition rules.
func (s *Sheet) Rules() *ruleset.Rules {
	return ruleset.For(s.Edition)
}

// ActiveTable returns the table the engine prices against: standard or
// custom, with refunds stripped when negative costs are disallowed.
func (s *Sheet) ActiveTable() pointbuy.CostTable {
	table := s.Rules().StandardCosts()
	if s.UseCustom {
		table = s.CustomCosts.Clone()
	}
	if !s.AllowNegative {
		table = table.WithoutRefunds()
	}
	return table
}

// Params returns the engine params for the current configuration.
func (s *Sheet) Params() pointbuy.Params {
	return s.Rules().Params(s.ActiveTable(), s.Limits, s.Pool)
}

func (s *Sheet) reconcile() {
	s.Scores = pointbuy.ReconcileLimits(s.Scores, s.Params())
}

// Adjust raises or lowers one ability by a single step.
//
// Postcondition: On error Scores is unchanged and the error wraps a
// pointbuy sentinel.
func (s *Sheet) Adjust(a character.Ability, delta int) error {
	next, err := pointbuy.ValidateAdjustment(s.Scores, a, delta, s.Params())
	if err != nil {
		return err
	}
	s.Scores = next
	return nil
}

// SetPool sets the point budget and reconciles.
//
// Precondition: points >= 0.
func (s *Sheet) SetPool(points int) error {
	if points < 0 {
		return fmt.Errorf("pool must be non-negative, got %d", points)
	}
	s.Pool = points
	s.reconcile()
	return nil
}

// SetLimits replaces the purchase limits and reconciles.
//
// Precondition: LimitFloor <= min <= max <= LimitCeiling.
func (s *Sheet) SetLimits(min, max int) error {
	for _, v := range []int{min, max} {
		if v < LimitFloor || v > LimitCeiling {
			return fmt.Errorf("limit %d outside [%d, %d]", v, LimitFloor, LimitCeiling)
		}
	}
	if min > max {
		return fmt.Errorf("minimum %d exceeds maximum %d", min, max)
	}
	s.Limits = pointbuy.Limits{Min: min, Max: max}
	s.reconcile()
	return nil
}

// SetRace selects a race of the sheet's edition and clears free picks.
func (s *Sheet) SetRace(id ruleset.RaceID) error {
	r, ok := ruleset.LookupRace(id)
	if !ok {
		return fmt.Errorf("unknown race %d", id)
	}
	if !r.IsCustom() && r.Edition != s.Edition {
		return fmt.Errorf("race %s: %w", r.Name, ErrNotSupported)
	}
	s.setRace(id)
	return nil
}

func (s *Sheet) setRace(id ruleset.RaceID) {
	s.Race = id
	r, _ := ruleset.LookupRace(id)
	s.Picks = make([]character.Ability, r.FreeSlots)
	for i := range s.Picks {
		s.Picks[i] = character.NoAbility
	}
}

func (s *Sheet) race() ruleset.Race {
	r, _ := ruleset.LookupRace(s.Race)
	return r
}

// SetCustomRaceDelta sets one ability's custom race modifier. It applies
// whenever the Custom race is selected.
func (s *Sheet) SetCustomRaceDelta(a character.Ability, delta int) error {
	if !a.Valid() {
		return fmt.Errorf("invalid ability %d", int(a))
	}
	s.CustomRace[a] = delta
	return nil
}

// SetPick assigns free-increase slot (zero-based) to a, or clears it with
// NoAbility. Two slots may name the same ability; they do not stack.
func (s *Sheet) SetPick(slot int, a character.Ability) error {
	if slot < 0 || slot >= len(s.Picks) {
		return fmt.Errorf("race %s has %d free increase slot(s)", s.race().Name, len(s.Picks))
	}
	if a != character.NoAbility && !a.Valid() {
		return fmt.Errorf("invalid ability %d", int(a))
	}
	s.Picks[slot] = a
	return nil
}

// SetTemplate selects a template. Only editions with templates accept one
// other than TemplateNone.
func (s *Sheet) SetTemplate(id ruleset.TemplateID) error {
	t, ok := ruleset.LookupTemplate(id)
	if !ok {
		return fmt.Errorf("unknown template %d", id)
	}
	if id != ruleset.TemplateNone && !s.Rules().HasTemplates {
		return fmt.Errorf("template %s: %w", t.Name, ErrNotSupported)
	}
	s.Template = id
	return nil
}

// SetFeat selects a feat with its ability choices.
//
// Postcondition: On error the previous feat is kept.
func (s *Sheet) SetFeat(id ruleset.FeatID, choices []character.Ability) error {
	f, ok := ruleset.LookupFeat(id)
	if !ok {
		return fmt.Errorf("unknown feat %d", id)
	}
	if id != ruleset.FeatNone && !s.Rules().HasFeats {
		return fmt.Errorf("feat %s: %w", f.Name, ErrNotSupported)
	}
	if _, err := f.Source(choices); err != nil {
		return err
	}
	s.Feat = id
	s.FeatChoices = append([]character.Ability(nil), choices...)
	return nil
}

// UseCustomCosts switches between the standard and custom tables.
func (s *Sheet) UseCustomCosts(on bool) {
	s.UseCustom = on
	s.reconcile()
}

// SetCustomCost edits one entry of the custom table.
//
// Precondition: score within [pointbuy.MinScore, pointbuy.MaxScore] and
// cost within [-pointbuy.MaxCost, pointbuy.MaxCost].
func (s *Sheet) SetCustomCost(score, cost int) error {
	if score < pointbuy.MinScore || score > pointbuy.MaxScore {
		return fmt.Errorf("score %d outside [%d, %d]", score, pointbuy.MinScore, pointbuy.MaxScore)
	}
	if !pointbuy.ValidCost(cost) {
		return fmt.Errorf("cost %d outside [%d, %d]", cost, -pointbuy.MaxCost, pointbuy.MaxCost)
	}
	s.CustomCosts[score] = cost
	s.CustomName = ""
	s.reconcile()
	return nil
}

// ClearCustomCost removes a custom entry, making the score unreachable
// while the custom table is active.
func (s *Sheet) ClearCustomCost(score int) error {
	if score < pointbuy.MinScore || score > pointbuy.MaxScore {
		return fmt.Errorf("score %d outside [%d, %d]", score, pointbuy.MinScore, pointbuy.MaxScore)
	}
	delete(s.CustomCosts, score)
	s.CustomName = ""
	s.reconcile()
	return nil
}

// LoadTable copies a named table into the custom slot and activates it.
func (s *Sheet) LoadTable(t *ruleset.NamedCostTable) error {
	if !t.AppliesTo(s.Edition) {
		return fmt.Errorf("table %s is for %s: %w", t.ID, t.Edition, ErrNotSupported)
	}
	s.CustomCosts = t.Costs.Clone()
	s.CustomName = t.Name
	s.UseCustom = true
	s.reconcile()
	return nil
}

// SetAllowNegative toggles refunds for scores below 8.
func (s *Sheet) SetAllowNegative(on bool) {
	s.AllowNegative = on
	s.reconcile()
}

// ResetScores puts every ability back at the lowest purchasable score.
func (s *Sheet) ResetScores() {
	s.Scores = character.Uniform(pointbuy.ResetValue(s.Params()))
}

// Sources returns the active bonus sources. A feat whose stored choices no
// longer validate contributes nothing.
func (s *Sheet) Sources() []pointbuy.BonusSource {
	r := s.race()
	sources := []pointbuy.BonusSource{r.Source(s.CustomRace)}
	if r.FreeSlots > 0 {
		sources = append(sources, r.FreeSource(s.Picks))
	}
	if s.Rules().HasTemplates {
		if t, ok := ruleset.LookupTemplate(s.Template); ok && t.ID != ruleset.TemplateNone {
			sources = append(sources, t.Source())
		}
	}
	if s.Rules().HasFeats {
		if f, ok := ruleset.LookupFeat(s.Feat); ok && f.ID != ruleset.FeatNone {
			if src, err := f.Source(s.FeatChoices); err == nil {
				sources = append(sources, src)
			}
		}
	}
	return sources
}

// Result derives the rendered state for the current allocation.
func (s *Sheet) Result() pointbuy.Result {
	return pointbuy.Derive(s.Scores, s.Params(), s.Sources()...)
}

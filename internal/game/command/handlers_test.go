package command_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/command"
	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

func TestHandleInc(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	msg, err := command.HandleInc(sheet, []string{"str"})
	require.NoError(t, err)
	assert.Equal(t, "STR is now 9.", msg)
	assert.Equal(t, 9, sheet.Scores.Get(character.Strength))
}

func TestHandleInc_Usage(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	_, err := command.HandleInc(sheet, nil)
	assert.ErrorContains(t, err, "usage")
	_, err = command.HandleInc(sheet, []string{"luck"})
	assert.Error(t, err)
}

func TestHandleDec_OutOfRangeWrapsSentinel(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	_, err := command.HandleDec(sheet, []string{"wisdom"})
	assert.ErrorIs(t, err, pointbuy.ErrOutOfRange)
	assert.ErrorContains(t, err, "cannot lower WIS")
}

func TestHandleInc_BudgetExceeded(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	require.NoError(t, sheet.SetPool(0))
	_, err := command.HandleInc(sheet, []string{"cha"})
	assert.ErrorIs(t, err, pointbuy.ErrBudgetExceeded)
}

func TestHandlePool(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	msg, err := command.HandlePool(sheet, "32")
	require.NoError(t, err)
	assert.Equal(t, "Point pool is 32.", msg)

	_, err = command.HandlePool(sheet, "epic")
	require.NoError(t, err)
	assert.Equal(t, 40, sheet.Pool)

	_, err = command.HandlePool(sheet, "legendary")
	assert.Error(t, err)
	_, err = command.HandlePool(sheet, "-3")
	assert.Error(t, err)
	assert.Equal(t, 40, sheet.Pool)
}

func TestHandleLimits(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	_, err := command.HandleLimits(sheet, []string{"10", "14"})
	require.NoError(t, err)
	assert.Equal(t, pointbuy.Limits{Min: 10, Max: 14}, sheet.Limits)
	assert.Equal(t, character.Uniform(10), sheet.Scores)
}

func TestHandleLimits_RejectsBeforeEngine(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	for _, args := range [][]string{{"eight", "15"}, {"0", "15"}, {"8", "31"}, {"15", "8"}, {"8"}} {
		_, err := command.HandleLimits(sheet, args)
		assert.Error(t, err, "%v", args)
	}
	assert.Equal(t, pointbuy.Limits{Min: 8, Max: 15}, sheet.Limits)
}

func TestHandleRace(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	msg, err := command.HandleRace(sheet, "Human (Variant)")
	require.NoError(t, err)
	assert.Contains(t, msg, "Assign 2 free +1")
	assert.Equal(t, ruleset.RaceHumanVariant5, sheet.Race)

	_, err = command.HandleRace(sheet, "drow")
	assert.Error(t, err, "3.5e race is not offered under 5e")
}

func TestHandleTemplate(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	_, err := command.HandleTemplate(sheet, "half-fiend")
	require.NoError(t, err)
	assert.Equal(t, ruleset.TemplateHalfFiend, sheet.Template)

	msg, err := command.HandleTemplate(sheet, "none")
	require.NoError(t, err)
	assert.Equal(t, "Template cleared.", msg)

	_, err = command.HandleTemplate(session.NewSheet(ruleset.Edition5), "lich")
	assert.ErrorIs(t, err, session.ErrNotSupported)
}

func TestHandlePick(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	_, err := command.HandleRace(sheet, "half-elf")
	require.NoError(t, err)

	msg, err := command.HandlePick(sheet, []string{"1", "con"})
	require.NoError(t, err)
	assert.Equal(t, "Slot 1: +1 CON.", msg)

	_, err = command.HandlePick(sheet, []string{"2", "none"})
	require.NoError(t, err)
	assert.Equal(t, []character.Ability{character.Constitution, character.NoAbility}, sheet.Picks)

	_, err = command.HandlePick(sheet, []string{"3", "str"})
	assert.Error(t, err)
	_, err = command.HandlePick(sheet, []string{"one", "str"})
	assert.Error(t, err)
}

func TestHandleFeat_MultiWordNames(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	_, err := command.HandleFeat(sheet, []string{"asi", "+1/+1", "str", "dex"})
	require.NoError(t, err)
	assert.Equal(t, ruleset.FeatASISplit, sheet.Feat)
	assert.Equal(t, []character.Ability{character.Strength, character.Dexterity}, sheet.FeatChoices)

	_, err = command.HandleFeat(sheet, []string{"Keen", "Mind"})
	require.NoError(t, err)
	assert.Equal(t, ruleset.FeatKeenMind, sheet.Feat)

	msg, err := command.HandleFeat(sheet, []string{"none"})
	require.NoError(t, err)
	assert.Equal(t, "Feat cleared.", msg)
}

func TestHandleFeat_Errors(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	_, err := command.HandleFeat(sheet, []string{"tough"})
	assert.ErrorContains(t, err, "unknown feat")
	_, err = command.HandleFeat(sheet, []string{"asi", "+2"})
	assert.Error(t, err, "ASI +2 needs a choice")
	_, err = command.HandleFeat(sheet, []string{"resilient", "luck"})
	assert.Error(t, err)
}

func TestHandleCustom(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition35)
	msg, err := command.HandleCustom(sheet, []string{"int", "2"})
	require.NoError(t, err)
	assert.Contains(t, msg, "race custom")

	_, err = command.HandleRace(sheet, "custom")
	require.NoError(t, err)
	assert.Equal(t, 10, sheet.Result().Final.Get(character.Intelligence))

	_, err = command.HandleCustom(sheet, []string{"int", "two"})
	assert.Error(t, err)
}

func TestHandleCostsAndCost(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	msg, err := command.HandleCost(sheet, []string{"9", "3"})
	require.NoError(t, err)
	assert.Contains(t, msg, "costs custom")

	_, err = command.HandleCosts(sheet, []string{"custom"})
	require.NoError(t, err)
	_, err = command.HandleInc(sheet, []string{"dex"})
	require.NoError(t, err)
	assert.Equal(t, 3, sheet.Result().PointsSpent)

	_, err = command.HandleCost(sheet, []string{"8", "none"})
	require.NoError(t, err)
	assert.False(t, sheet.ActiveTable().Reachable(8))

	_, err = command.HandleCost(sheet, []string{"1", "0"})
	assert.Error(t, err)
	_, err = command.HandleCosts(sheet, []string{"homebrew"})
	assert.Error(t, err)
}

func TestHandleNegative(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	_, err := command.HandleNegative(sheet, []string{"off"})
	require.NoError(t, err)
	assert.False(t, sheet.AllowNegative)
	_, err = command.HandleNegative(sheet, []string{"maybe"})
	assert.Error(t, err)
}

func TestHandleLoad(t *testing.T) {
	reg := ruleset.NewTableRegistry()
	reg.Register(&ruleset.NamedCostTable{ID: "flat", Name: "Flat", Costs: pointbuy.CostTable{8: 0, 9: 1, 10: 2}})
	sheet := session.NewSheet(ruleset.Edition5)

	msg, err := command.HandleLoad(sheet, reg, []string{"FLAT"})
	require.NoError(t, err)
	assert.Equal(t, "Loaded Flat as the custom cost table.", msg)
	assert.True(t, sheet.UseCustom)

	_, err = command.HandleLoad(sheet, reg, []string{"missing"})
	assert.ErrorContains(t, err, "tables")
}

func TestHandleEditionAndReset(t *testing.T) {
	m := session.NewManager(ruleset.Edition35, 0)
	sess, err := m.Open("test")
	require.NoError(t, err)

	_, err = command.HandleEdition(sess, []string{"5e"})
	require.NoError(t, err)
	assert.Equal(t, ruleset.Edition5, sess.Edition())

	_, err = command.HandleEdition(sess, []string{"4e"})
	assert.Error(t, err)

	require.NoError(t, sess.With(func(s *session.Sheet) error { return s.Adjust(character.Strength, 1) }))
	_, err = command.HandleReset(sess, nil)
	require.NoError(t, err)
	_ = sess.With(func(s *session.Sheet) error {
		assert.Equal(t, character.Uniform(8), s.Scores)
		return nil
	})

	_, err = command.HandleReset(sess, []string{"everything"})
	assert.Error(t, err)
}

// Property: a rejected inc/dec never changes the sheet.
func TestPropertyRejectedAdjustLeavesSheet(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		sheet := session.NewSheet(rapid.SampledFrom(ruleset.Editions).Draw(rt, "edition"))
		steps := rapid.IntRange(0, 40).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			a := rapid.SampledFrom(character.All[:]).Draw(rt, "ability")
			before := sheet.Scores
			var err error
			if rapid.Bool().Draw(rt, "up") {
				_, err = command.HandleInc(sheet, []string{a.Short()})
			} else {
				_, err = command.HandleDec(sheet, []string{a.Short()})
			}
			if err != nil && sheet.Scores != before {
				rt.Fatalf("rejected %s changed %v to %v", a, before, sheet.Scores)
			}
		}
	})
}

func TestHandleCost_RejectsOversizedCost(t *testing.T) {
	sheet := session.NewSheet(ruleset.Edition5)
	_, err := command.HandleCosts(sheet, []string{"custom"})
	require.NoError(t, err)

	_, err = command.HandleCost(sheet, []string{"9", "9223372036854775807"})
	assert.ErrorContains(t, err, "outside")
	_, err = command.HandleCost(sheet, []string{"9", "-1001"})
	assert.Error(t, err)

	c, ok := sheet.ActiveTable().CostOf(9)
	require.True(t, ok)
	assert.Equal(t, 1, c)
}

package command

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

// HandleInc processes "inc <ability>".
//
// Precondition: sheet must not be nil.
// Postcondition: On success one ability rose by one. On error the sheet is
// unchanged and the error wraps the engine's rejection reason.
func HandleInc(sheet *session.Sheet, args []string) (string, error) {
	return adjust(sheet, args, 1, "inc", "raise")
}

// HandleDec processes "dec <ability>".
//
// Precondition: sheet must not be nil.
func HandleDec(sheet *session.Sheet, args []string) (string, error) {
	return adjust(sheet, args, -1, "dec", "lower")
}

func adjust(sheet *session.Sheet, args []string, delta int, name, verb string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: %s <ability>", name)
	}
	a, err := character.ParseAbility(args[0])
	if err != nil {
		return "", err
	}
	if err := sheet.Adjust(a, delta); err != nil {
		return "", fmt.Errorf("cannot %s %s: %w", verb, a.Label(), err)
	}
	return fmt.Sprintf("%s is now %d.", a.Label(), sheet.Scores.Get(a)), nil
}

// HandleReset processes "reset [all]". Without an argument the purchased
// scores return to the lowest purchasable value; "all" restores every
// setting of the active edition to its defaults.
//
// Precondition: sess must not be nil.
func HandleReset(sess *session.Session, args []string) (string, error) {
	switch {
	case len(args) == 0:
		_ = sess.With(func(s *session.Sheet) error {
			s.ResetScores()
			return nil
		})
		return "Scores reset.", nil
	case len(args) == 1 && strings.EqualFold(args[0], "all"):
		sess.ResetEdition()
		return fmt.Sprintf("%s settings restored to defaults.", sess.Edition()), nil
	}
	return "", fmt.Errorf("usage: reset [all]")
}

// HandleEdition processes "edition <3.5e|5e>". Each edition keeps its own
// sheet for the life of the session.
//
// Precondition: sess must not be nil.
func HandleEdition(sess *session.Session, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: edition <3.5e|5e> (current: %s)", sess.Edition())
	}
	e, err := ruleset.ParseEdition(args[0])
	if err != nil {
		return "", err
	}
	sess.SwitchEdition(e)
	return fmt.Sprintf("Using %s rules.", ruleset.For(e).Name), nil
}

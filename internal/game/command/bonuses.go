package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

// HandleRace processes "race <name>". Names match ignoring case and
// punctuation, so "half-elf" and "Half Elf" are equivalent.
//
// Precondition: sheet must not be nil.
// Postcondition: On success the race changed and its free picks were cleared.
func HandleRace(sheet *session.Sheet, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("usage: race <name>")
	}
	r, err := ruleset.FindRace(sheet.Edition, raw)
	if err != nil {
		return "", err
	}
	if err := sheet.SetRace(r.ID); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Race set to %s.", r.Name)
	switch {
	case r.FreeSlots > 0:
		msg += fmt.Sprintf(" Assign %d free +1 with 'pick'.", r.FreeSlots)
	case r.IsCustom():
		msg += " Set modifiers with 'custom <ability> <delta>'."
	}
	return msg, nil
}

// HandleTemplate processes "template <name|none>".
//
// Precondition: sheet must not be nil.
func HandleTemplate(sheet *session.Sheet, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("usage: template <name|none>")
	}
	t, err := ruleset.FindTemplate(raw)
	if err != nil {
		return "", err
	}
	if err := sheet.SetTemplate(t.ID); err != nil {
		return "", err
	}
	if t.ID == ruleset.TemplateNone {
		return "Template cleared.", nil
	}
	return fmt.Sprintf("Template set to %s.", t.Name), nil
}

// HandlePick processes "pick <slot> <ability|none>". Slots are numbered
// from 1.
//
// Precondition: sheet must not be nil.
func HandlePick(sheet *session.Sheet, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: pick <slot> <ability|none>")
	}
	slot, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("slot %q is not a number", args[0])
	}
	a := character.NoAbility
	if !strings.EqualFold(args[1], "none") {
		if a, err = character.ParseAbility(args[1]); err != nil {
			return "", err
		}
	}
	if err := sheet.SetPick(slot-1, a); err != nil {
		return "", err
	}
	if a == character.NoAbility {
		return fmt.Sprintf("Slot %d cleared.", slot), nil
	}
	return fmt.Sprintf("Slot %d: +1 %s.", slot, a.Label()), nil
}

// HandleFeat processes "feat <name> [ability...]". The feat name may span
// several words; the longest leading run of words naming a feat wins and the
// rest are its ability choices.
//
// Precondition: sheet must not be nil.
// Postcondition: On error the previous feat is kept.
func HandleFeat(sheet *session.Sheet, args []string) (string, error) {
	if len(args) == 0 {
		return "", fmt.Errorf("usage: feat <name> [ability...]")
	}
	for n := len(args); n >= 1; n-- {
		f, err := ruleset.FindFeat(strings.Join(args[:n], " "))
		if err != nil {
			continue
		}
		choices := make([]character.Ability, 0, len(args)-n)
		for _, s := range args[n:] {
			a, err := character.ParseAbility(s)
			if err != nil {
				return "", err
			}
			choices = append(choices, a)
		}
		if err := sheet.SetFeat(f.ID, choices); err != nil {
			return "", err
		}
		if f.ID == ruleset.FeatNone {
			return "Feat cleared.", nil
		}
		return fmt.Sprintf("Feat set to %s.", f.Name), nil
	}
	return "", fmt.Errorf("unknown feat %q", strings.Join(args, " "))
}

// HandleCustom processes "custom <ability> <delta>", editing the Custom
// race's modifiers.
//
// Precondition: sheet must not be nil.
func HandleCustom(sheet *session.Sheet, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: custom <ability> <delta>")
	}
	a, err := character.ParseAbility(args[0])
	if err != nil {
		return "", err
	}
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("modifier %q is not a whole number", args[1])
	}
	if err := sheet.SetCustomRaceDelta(a, delta); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Custom %s modifier is %s.", a.Label(), character.FormatModifier(delta))
	if sheet.Race != ruleset.RaceCustom {
		msg += " Select 'race custom' to apply it."
	}
	return msg, nil
}

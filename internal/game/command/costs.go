package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

// HandleCosts processes "costs <standard|custom>".
//
// Precondition: sheet must not be nil.
// Postcondition: On success the active table changed and scores were
// reconciled against it.
func HandleCosts(sheet *session.Sheet, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: costs <standard|custom>")
	}
	switch strings.ToLower(args[0]) {
	case "standard", "std":
		sheet.UseCustomCosts(false)
		return "Using the standard cost table.", nil
	case "custom":
		sheet.UseCustomCosts(true)
		return "Using the custom cost table.", nil
	}
	return "", fmt.Errorf("unknown cost table %q (want standard or custom)", args[0])
}

// HandleCost processes "cost <score> <value|none>", editing the custom
// table. "none" removes the entry, making the score unreachable.
//
// Precondition: sheet must not be nil.
func HandleCost(sheet *session.Sheet, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: cost <score> <value|none>")
	}
	score, err := strconv.Atoi(args[0])
	if err != nil {
		return "", fmt.Errorf("score %q is not a whole number", args[0])
	}
	if strings.EqualFold(args[1], "none") {
		if err := sheet.ClearCustomCost(score); err != nil {
			return "", err
		}
		return fmt.Sprintf("Score %d can no longer be bought with the custom table.", score), nil
	}
	cost, err := strconv.Atoi(args[1])
	if err != nil {
		return "", fmt.Errorf("cost %q is not a whole number", args[1])
	}
	if err := sheet.SetCustomCost(score, cost); err != nil {
		return "", err
	}
	msg := fmt.Sprintf("Custom cost for %d is %d.", score, cost)
	if !sheet.UseCustom {
		msg += " Enable it with 'costs custom'."
	}
	return msg, nil
}

// HandleNegative processes "negative <on|off>".
//
// Precondition: sheet must not be nil.
func HandleNegative(sheet *session.Sheet, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: negative <on|off>")
	}
	on, err := parseToggle(args[0])
	if err != nil {
		return "", err
	}
	sheet.SetAllowNegative(on)
	if on {
		return "Scores below 8 refund points.", nil
	}
	return "Scores below 8 cost nothing and refund nothing.", nil
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "yes", "true", "1":
		return true, nil
	case "off", "no", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", s)
}

// HandleLoad processes "load <table>", copying a named table into the
// custom slot and activating it.
//
// Precondition: sheet and tables must not be nil.
func HandleLoad(sheet *session.Sheet, tables *ruleset.TableRegistry, args []string) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("usage: load <table>")
	}
	t, ok := tables.Table(args[0])
	if !ok {
		return "", fmt.Errorf("no cost table named %q; try 'tables'", args[0])
	}
	if err := sheet.LoadTable(t); err != nil {
		return "", err
	}
	return fmt.Sprintf("Loaded %s as the custom cost table.", t.Name), nil
}

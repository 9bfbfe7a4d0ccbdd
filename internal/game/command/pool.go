package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

// HandlePool processes "pool <points|preset>". A number sets a custom pool;
// anything else is matched against the edition's preset labels.
//
// Precondition: sheet must not be nil.
// Postcondition: On success the pool changed and scores were reconciled.
func HandlePool(sheet *session.Sheet, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("usage: pool <points|preset> (current: %d)", sheet.Pool)
	}
	points, err := strconv.Atoi(raw)
	if err != nil {
		preset, ok := sheet.Rules().Preset(raw)
		if !ok {
			return "", fmt.Errorf("unknown pool preset %q", raw)
		}
		points = preset.Points
	}
	if err := sheet.SetPool(points); err != nil {
		return "", err
	}
	return fmt.Sprintf("Point pool is %d.", sheet.Pool), nil
}

// HandleLimits processes "limits <min> <max>". Both bounds must be whole
// numbers in [session.LimitFloor, session.LimitCeiling] with min <= max.
//
// Precondition: sheet must not be nil.
// Postcondition: On error the limits and scores are unchanged.
func HandleLimits(sheet *session.Sheet, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("usage: limits <min> <max> (current: %d-%d)", sheet.Limits.Min, sheet.Limits.Max)
	}
	bounds := make([]int, 2)
	for i, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return "", fmt.Errorf("limit %q is not a whole number", a)
		}
		bounds[i] = v
	}
	if err := sheet.SetLimits(bounds[0], bounds[1]); err != nil {
		return "", err
	}
	return fmt.Sprintf("Purchasable scores are %d to %d.", sheet.Limits.Min, sheet.Limits.Max), nil
}

package handlers

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/pointbuy/internal/frontend/telnet"
	"github.com/cory-johannsen/pointbuy/internal/game/character"
	"github.com/cory-johannsen/pointbuy/internal/game/command"
	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
	"github.com/cory-johannsen/pointbuy/internal/game/session"
)

const crlf = "\r\n"

// RenderSheet formats the sheet's configuration and derived scores as
// colored Telnet text.
//
// Precondition: s must not be nil.
// Postcondition: Returns a multi-line block ending in CR LF.
func RenderSheet(s *session.Sheet) string {
	res := s.Result()
	rules := s.Rules()
	table := s.ActiveTable()
	var b strings.Builder

	b.WriteString(telnet.Colorize(telnet.Bold+telnet.BrightWhite, "=== "+rules.Name+" point buy ==="))
	b.WriteString(crlf)
	b.WriteString(renderBonusLine(s))
	b.WriteString(crlf)

	b.WriteString(telnet.Colorize(telnet.Cyan, "Ability  Base  Cost  Bonus  Final  Mod"))
	b.WriteString(crlf)
	for _, a := range character.All {
		cost := "-"
		if c, ok := table.CostOf(res.Purchased.Get(a)); ok {
			cost = fmt.Sprint(c)
		}
		bonus := ""
		if d := res.Bonuses.Get(a); d != 0 {
			bonus = character.FormatModifier(d)
		}
		mod := character.FormatModifier(res.Modifiers.Get(a))
		modColor := telnet.White
		switch m := res.Modifiers.Get(a); {
		case m > 0:
			modColor = telnet.BrightGreen
		case m < 0:
			modColor = telnet.BrightRed
		}
		fmt.Fprintf(&b, "%-7s  %4d  %4s  %5s  %5d  %s%s",
			a.Label(), res.Purchased.Get(a), cost, bonus, res.Final.Get(a),
			telnet.PadLeft(telnet.Colorize(modColor, mod), 3), crlf)
	}

	remaining := telnet.Colorf(telnet.BrightGreen, "%d", res.RemainingPoints)
	if res.RemainingPoints == 0 {
		remaining = telnet.Colorf(telnet.Yellow, "%d", res.RemainingPoints)
	} else if res.RemainingPoints < 0 {
		remaining = telnet.Colorf(telnet.BrightRed, "%d", res.RemainingPoints)
	}
	fmt.Fprintf(&b, "Points: %d spent of %d, %s remaining%s", res.PointsSpent, s.Pool, remaining, crlf)
	if res.LevelAdjustment != 0 {
		fmt.Fprintf(&b, "Level adjustment: %s%s", character.FormatModifier(res.LevelAdjustment), crlf)
	}

	neg := "on"
	if !s.AllowNegative {
		neg = "off"
	}
	fmt.Fprintf(&b, "%s%s",
		telnet.Colorf(telnet.Dim, "Limits %d-%d, %s costs, negative costs %s", s.Limits.Min, s.Limits.Max, costsLabel(s), neg),
		crlf)
	return b.String()
}

// renderBonusLine lists the selected race and, per edition, the template or
// feat plus any free picks.
func renderBonusLine(s *session.Sheet) string {
	parts := make([]string, 0, 4)
	race, _ := ruleset.LookupRace(s.Race)
	parts = append(parts, "Race: "+telnet.Colorize(telnet.BrightYellow, race.Name))

	if race.FreeSlots > 0 {
		picks := make([]string, race.FreeSlots)
		for i := range picks {
			picks[i] = "-"
			if i < len(s.Picks) && s.Picks[i].Valid() {
				picks[i] = s.Picks[i].Label()
			}
		}
		parts = append(parts, "Picks: "+strings.Join(picks, " "))
	}
	if race.IsCustom() {
		parts = append(parts, "Custom: "+formatScores(s.CustomRace))
	}
	if s.Rules().HasTemplates {
		t, _ := ruleset.LookupTemplate(s.Template)
		parts = append(parts, "Template: "+t.Name)
	}
	if s.Rules().HasFeats {
		f, _ := ruleset.LookupFeat(s.Feat)
		label := f.Name
		if len(s.FeatChoices) > 0 {
			names := make([]string, len(s.FeatChoices))
			for i, a := range s.FeatChoices {
				names[i] = a.Label()
			}
			label += " (" + strings.Join(names, ", ") + ")"
		}
		parts = append(parts, "Feat: "+label)
	}
	return strings.Join(parts, "  ")
}

func costsLabel(s *session.Sheet) string {
	if !s.UseCustom {
		return "standard"
	}
	if s.CustomName != "" {
		return "custom (" + s.CustomName + ")"
	}
	return "custom"
}

// formatScores renders the non-zero entries of a delta set, or "none".
func formatScores(d character.Scores) string {
	deltas := make(map[character.Ability]int, character.NumAbilities)
	for _, a := range character.All {
		if v := d.Get(a); v != 0 {
			deltas[a] = v
		}
	}
	return formatDeltas(deltas)
}

// formatDeltas renders ability deltas in ability order, e.g. "DEX +2, CON -2".
func formatDeltas(deltas map[character.Ability]int) string {
	parts := make([]string, 0, len(deltas))
	for _, a := range character.All {
		if d, ok := deltas[a]; ok && d != 0 {
			parts = append(parts, a.Label()+" "+character.FormatModifier(d))
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

// RenderCostTable formats a table as "score:cost" pairs in score order.
// Unreachable scores are omitted.
func RenderCostTable(t pointbuy.CostTable) string {
	scores := t.Scores()
	parts := make([]string, len(scores))
	for i, sc := range scores {
		parts[i] = fmt.Sprintf("%d:%d", sc, t[sc])
	}
	return strings.Join(parts, " ")
}

// RenderRules lists everything selectable under e.
//
// Postcondition: Returns a non-empty multi-line block.
func RenderRules(e ruleset.Edition) string {
	rules := ruleset.For(e)
	var b strings.Builder

	b.WriteString(telnet.Colorize(telnet.BrightWhite, "=== "+rules.Name+" rules ==="))
	b.WriteString(crlf)

	presets := make([]string, len(rules.PoolPresets))
	for i, p := range rules.PoolPresets {
		presets[i] = fmt.Sprintf("%s (%d)", p.Label, p.Points)
	}
	fmt.Fprintf(&b, "Pool presets: %s%s", strings.Join(presets, ", "), crlf)
	fmt.Fprintf(&b, "Default limits: %d-%d%s", rules.DefaultLimits.Min, rules.DefaultLimits.Max, crlf)
	fmt.Fprintf(&b, "Standard costs: %s%s", RenderCostTable(rules.StandardCosts()), crlf)

	b.WriteString(telnet.Colorize(telnet.Cyan, "Races:"))
	b.WriteString(crlf)
	for _, r := range ruleset.Races(e) {
		line := "  " + telnet.PadRight(r.Name, 22)
		switch {
		case r.IsCustom():
			line += "set with 'custom'"
		default:
			line += formatDeltas(r.Modifiers)
		}
		if r.FreeSlots > 0 {
			line += fmt.Sprintf(" + %d free +1", r.FreeSlots)
		}
		if r.LevelAdjustment != 0 {
			line += fmt.Sprintf(" [LA %s]", character.FormatModifier(r.LevelAdjustment))
		}
		b.WriteString(line + crlf)
	}

	if rules.HasTemplates {
		b.WriteString(telnet.Colorize(telnet.Cyan, "Templates:"))
		b.WriteString(crlf)
		for _, t := range ruleset.Templates() {
			if t.ID == ruleset.TemplateNone {
				continue
			}
			fmt.Fprintf(&b, "  %s%s [LA %s]%s", telnet.PadRight(t.Name, 22), formatDeltas(t.Modifiers),
				character.FormatModifier(t.LevelAdjustment), crlf)
		}
	}

	if rules.HasFeats {
		b.WriteString(telnet.Colorize(telnet.Cyan, "Feats:"))
		b.WriteString(crlf)
		for _, f := range ruleset.Feats() {
			if f.ID == ruleset.FeatNone {
				continue
			}
			fmt.Fprintf(&b, "  %s%s%s", telnet.PadRight(f.Name, 22), describeFeat(f), crlf)
		}
	}
	return b.String()
}

func describeFeat(f ruleset.Feat) string {
	var parts []string
	if len(f.Fixed) > 0 {
		parts = append(parts, formatDeltas(f.Fixed))
	}
	for _, p := range f.Picks {
		choice := "any"
		if len(p.Allowed) > 0 {
			names := make([]string, len(p.Allowed))
			for i, a := range p.Allowed {
				names[i] = a.Label()
			}
			choice = strings.Join(names, "/")
		}
		parts = append(parts, fmt.Sprintf("+%d %s", p.Amount, choice))
	}
	return strings.Join(parts, ", ")
}

// RenderTables lists the named cost tables usable under e.
func RenderTables(tables []*ruleset.NamedCostTable) string {
	if len(tables) == 0 {
		return telnet.Colorize(telnet.Dim, "No cost tables are loaded.")
	}
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "Cost tables:"))
	for _, t := range tables {
		b.WriteString(crlf)
		fmt.Fprintf(&b, "  %s %s", telnet.Colorize(telnet.Green, telnet.PadRight(t.ID, 16)), t.Name)
		if t.Description != "" {
			b.WriteString(telnet.Colorize(telnet.Dim, ": "+t.Description))
		}
		b.WriteString(crlf)
		b.WriteString("    " + RenderCostTable(t.Costs))
	}
	return b.String()
}

// RenderHelp lists commands by category, or describes one command when
// topic names it.
func RenderHelp(reg *command.Registry, topic string) string {
	if topic != "" {
		cmd, ok := reg.Resolve(topic)
		if !ok {
			return telnet.Colorf(telnet.Red, "No help for %q.", topic)
		}
		var b strings.Builder
		b.WriteString(telnet.Colorize(telnet.Green, strings.TrimSpace(cmd.Name+" "+cmd.Usage)))
		b.WriteString(crlf + "  " + cmd.Help)
		if len(cmd.Aliases) > 0 {
			aliases := append([]string(nil), cmd.Aliases...)
			sort.Strings(aliases)
			b.WriteString(crlf + "  Aliases: " + strings.Join(aliases, ", "))
		}
		return b.String()
	}

	byCat := reg.CommandsByCategory()
	var b strings.Builder
	b.WriteString(telnet.Colorize(telnet.BrightWhite, "Available commands:"))
	for _, cat := range command.CategoryOrder {
		cmds := byCat[cat]
		if len(cmds) == 0 {
			continue
		}
		b.WriteString(crlf)
		b.WriteString(telnet.Colorize(telnet.Cyan, strings.ToUpper(cat[:1])+cat[1:]+":"))
		for _, c := range cmds {
			b.WriteString(crlf)
			b.WriteString("  " + telnet.PadRight(telnet.Colorize(telnet.Green, strings.TrimSpace(c.Name+" "+c.Usage)), 28) + c.Help)
		}
	}
	return b.String()
}

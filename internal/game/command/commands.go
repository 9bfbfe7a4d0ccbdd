// Package command provides the command registry, parser, and the calculator
// command definitions and sheet handlers.
package command

// Categories for organizing commands in help output.
const (
	CategoryScores  = "scores"
	CategoryPool    = "pool"
	CategoryBonuses = "bonuses"
	CategoryCosts   = "costs"
	CategorySystem  = "system"
)

// CategoryOrder is the order help lists categories in.
var CategoryOrder = []string{CategoryScores, CategoryPool, CategoryBonuses, CategoryCosts, CategorySystem}

// Handler identifiers mapping commands to their implementation.
const (
	HandlerShow     = "show"
	HandlerRules    = "rules"
	HandlerEdition  = "edition"
	HandlerInc      = "inc"
	HandlerDec      = "dec"
	HandlerReset    = "reset"
	HandlerPool     = "pool"
	HandlerLimits   = "limits"
	HandlerRace     = "race"
	HandlerTemplate = "template"
	HandlerPick     = "pick"
	HandlerFeat     = "feat"
	HandlerCustom   = "custom"
	HandlerCosts    = "costs"
	HandlerCost     = "cost"
	HandlerNegative = "negative"
	HandlerLoad     = "load"
	HandlerTables   = "tables"
	HandlerHelp     = "help"
	HandlerQuit     = "quit"
)

// Command defines a user-invocable command.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Aliases are alternate names for this command.
	Aliases []string
	// Usage is the argument synopsis shown in help.
	Usage string
	// Help is the short help text.
	Help string
	// Category groups the command in help output.
	Category string
	// Handler maps to the implementation.
	Handler string
	// Mutates is true when the command may change the sheet, so the
	// frontend re-renders the summary afterward.
	Mutates bool
}

// BuiltinCommands returns all calculator commands.
func BuiltinCommands() []Command {
	return []Command{
		// Scores
		{Name: "show", Aliases: []string{"s", "sheet"}, Help: "Show scores, bonuses and points", Category: CategoryScores, Handler: HandlerShow},
		{Name: "inc", Aliases: []string{"+", "up"}, Usage: "<ability>", Help: "Raise an ability by one", Category: CategoryScores, Handler: HandlerInc, Mutates: true},
		{Name: "dec", Aliases: []string{"-", "down"}, Usage: "<ability>", Help: "Lower an ability by one", Category: CategoryScores, Handler: HandlerDec, Mutates: true},
		{Name: "reset", Aliases: nil, Usage: "[all]", Help: "Reset scores, or the whole edition with 'all'", Category: CategoryScores, Handler: HandlerReset, Mutates: true},

		// Pool and rules
		{Name: "edition", Aliases: []string{"ed"}, Usage: "<3.5e|5e>", Help: "Switch rule edition", Category: CategoryPool, Handler: HandlerEdition, Mutates: true},
		{Name: "rules", Aliases: nil, Help: "List races, templates, feats and pool presets", Category: CategoryPool, Handler: HandlerRules},
		{Name: "pool", Aliases: []string{"budget"}, Usage: "<points|preset>", Help: "Set the point pool", Category: CategoryPool, Handler: HandlerPool, Mutates: true},
		{Name: "limits", Aliases: []string{"lim"}, Usage: "<min> <max>", Help: "Set purchasable score limits (1-30)", Category: CategoryPool, Handler: HandlerLimits, Mutates: true},

		// Bonuses
		{Name: "race", Aliases: nil, Usage: "<name>", Help: "Select a race", Category: CategoryBonuses, Handler: HandlerRace, Mutates: true},
		{Name: "template", Aliases: []string{"tpl"}, Usage: "<name|none>", Help: "Select a template (3.5e)", Category: CategoryBonuses, Handler: HandlerTemplate, Mutates: true},
		{Name: "pick", Aliases: nil, Usage: "<slot> <ability|none>", Help: "Assign a racial free +1", Category: CategoryBonuses, Handler: HandlerPick, Mutates: true},
		{Name: "feat", Aliases: nil, Usage: "<name> [ability...]", Help: "Select a feat or ASI (5e)", Category: CategoryBonuses, Handler: HandlerFeat, Mutates: true},
		{Name: "custom", Aliases: nil, Usage: "<ability> <delta>", Help: "Set a custom race modifier", Category: CategoryBonuses, Handler: HandlerCustom, Mutates: true},

		// Costs
		{Name: "costs", Aliases: nil, Usage: "<standard|custom>", Help: "Choose the active cost table", Category: CategoryCosts, Handler: HandlerCosts, Mutates: true},
		{Name: "cost", Aliases: nil, Usage: "<score> <value|none>", Help: "Edit a custom cost entry", Category: CategoryCosts, Handler: HandlerCost, Mutates: true},
		{Name: "negative", Aliases: []string{"neg"}, Usage: "<on|off>", Help: "Allow refunds for scores below 8", Category: CategoryCosts, Handler: HandlerNegative, Mutates: true},
		{Name: "tables", Aliases: nil, Help: "List loadable cost tables", Category: CategoryCosts, Handler: HandlerTables},
		{Name: "load", Aliases: nil, Usage: "<table>", Help: "Load a named cost table as the custom table", Category: CategoryCosts, Handler: HandlerLoad, Mutates: true},

		// System
		{Name: "help", Aliases: []string{"?"}, Usage: "[command]", Help: "Show available commands", Category: CategorySystem, Handler: HandlerHelp},
		{Name: "quit", Aliases: []string{"exit", "q"}, Help: "Disconnect", Category: CategorySystem, Handler: HandlerQuit},
	}
}

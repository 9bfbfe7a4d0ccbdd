package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.NotNil(t, r)
	assert.Len(t, r.Commands(), len(BuiltinCommands()))
}

func TestResolve_CanonicalName(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("inc")
	assert.True(t, ok)
	assert.Equal(t, "inc", cmd.Name)
	assert.Equal(t, HandlerInc, cmd.Handler)
	assert.True(t, cmd.Mutates)
}

func TestResolve_AliasAndCase(t *testing.T) {
	r := DefaultRegistry()

	cmd, ok := r.Resolve("+")
	require.True(t, ok)
	assert.Equal(t, "inc", cmd.Name)

	cmd, ok = r.Resolve("TPL")
	require.True(t, ok)
	assert.Equal(t, "template", cmd.Name)
}

func TestResolve_NotFound(t *testing.T) {
	r := DefaultRegistry()

	_, ok := r.Resolve("north")
	assert.False(t, ok)
}

func TestResolve_AllHandlers(t *testing.T) {
	r := DefaultRegistry()

	tests := []struct {
		input   string
		handler string
	}{
		{"show", HandlerShow},
		{"s", HandlerShow},
		{"rules", HandlerRules},
		{"edition", HandlerEdition},
		{"dec", HandlerDec},
		{"-", HandlerDec},
		{"pool", HandlerPool},
		{"limits", HandlerLimits},
		{"race", HandlerRace},
		{"pick", HandlerPick},
		{"feat", HandlerFeat},
		{"custom", HandlerCustom},
		{"costs", HandlerCosts},
		{"cost", HandlerCost},
		{"neg", HandlerNegative},
		{"load", HandlerLoad},
		{"tables", HandlerTables},
		{"reset", HandlerReset},
		{"?", HandlerHelp},
		{"exit", HandlerQuit},
	}

	for _, tt := range tests {
		cmd, ok := r.Resolve(tt.input)
		require.True(t, ok, "input %q not found", tt.input)
		assert.Equal(t, tt.handler, cmd.Handler, "input %q wrong handler", tt.input)
	}
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	cmds := []Command{
		{Name: "test", Handler: "a"},
		{Name: "test", Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate command name")
}

func TestNewRegistry_DuplicateAlias(t *testing.T) {
	cmds := []Command{
		{Name: "test1", Aliases: []string{"t"}, Handler: "a"},
		{Name: "test2", Aliases: []string{"t"}, Handler: "b"},
	}
	_, err := NewRegistry(cmds)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate alias")
}

func TestNewRegistry_EmptyName(t *testing.T) {
	_, err := NewRegistry([]Command{{Handler: "a"}})
	assert.Error(t, err)
}

func TestCommandsByCategory(t *testing.T) {
	r := DefaultRegistry()
	cats := r.CommandsByCategory()

	for _, c := range CategoryOrder {
		assert.Contains(t, cats, c)
	}
	assert.Len(t, cats, len(CategoryOrder), "every category appears in CategoryOrder")
	assert.Len(t, cats[CategoryCosts], 5)
}

func TestPropertyAllAliasesResolveToCanonical(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		r := DefaultRegistry()
		cmds := r.Commands()
		idx := rapid.IntRange(0, len(cmds)-1).Draw(t, "cmd_idx")
		cmd := cmds[idx]

		resolved, ok := r.Resolve(cmd.Name)
		if !ok {
			t.Fatalf("canonical name %q did not resolve", cmd.Name)
		}
		if resolved.Name != cmd.Name {
			t.Fatalf("canonical name %q resolved to %q", cmd.Name, resolved.Name)
		}

		for _, alias := range cmd.Aliases {
			aliasResolved, ok := r.Resolve(alias)
			if !ok {
				t.Fatalf("alias %q did not resolve", alias)
			}
			if aliasResolved.Name != cmd.Name {
				t.Fatalf("alias %q resolved to %q, expected %q", alias, aliasResolved.Name, cmd.Name)
			}
		}
	})
}

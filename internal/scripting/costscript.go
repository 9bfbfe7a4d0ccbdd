package scripting

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
	"github.com/cory-johannsen/pointbuy/internal/game/ruleset"
)

// costHook is the global Lua function a cost script must define. It receives
// a score and returns an integer cost, or nil when the score is unreachable.
const costHook = "cost"

// CostTableFromSource evaluates a cost script held in memory. Optional string
// globals name, description and edition fill in the table metadata.
//
// Precondition: id must be non-empty.
// Postcondition: Returns a validated table or a non-nil error. Lua errors,
// missing hooks, non-integer costs and instruction-limit overruns all fail.
func CostTableFromSource(id, src string, instLimit int) (*ruleset.NamedCostTable, error) {
	L, cancel := NewSandboxedState(instLimit)
	defer cancel()
	defer L.Close()

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("scripting: loading cost script %q: %w", id, err)
	}
	return evaluate(L, id)
}

// CostTableFromScript evaluates the cost script at path. The table ID is the
// file name without its extension.
//
// Precondition: path must name a readable .lua file.
func CostTableFromScript(path string, instLimit int) (*ruleset.NamedCostTable, error) {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	L, cancel := NewSandboxedState(instLimit)
	defer cancel()
	defer L.Close()

	if err := L.DoFile(path); err != nil {
		return nil, fmt.Errorf("scripting: loading cost script %q: %w", path, err)
	}
	return evaluate(L, id)
}

func evaluate(L *lua.LState, id string) (*ruleset.NamedCostTable, error) {
	fn := L.GetGlobal(costHook)
	if fn.Type() != lua.LTFunction {
		return nil, fmt.Errorf("scripting: cost script %q does not define %s(score)", id, costHook)
	}

	costs := make(pointbuy.CostTable)
	for score := pointbuy.MinScore; score <= pointbuy.MaxScore; score++ {
		if err := L.CallByParam(lua.P{
			Fn:      fn,
			NRet:    1,
			Protect: true,
		}, lua.LNumber(score)); err != nil {
			return nil, fmt.Errorf("scripting: cost script %q at score %d: %w", id, score, err)
		}
		ret := L.Get(-1)
		L.Pop(1)

		switch v := ret.(type) {
		case *lua.LNilType:
			continue
		case lua.LNumber:
			f := float64(v)
			if f != math.Trunc(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("scripting: cost script %q returned non-integer %v for score %d", id, f, score)
			}
			if math.Abs(f) > pointbuy.MaxCost {
				return nil, fmt.Errorf("scripting: cost script %q returned %v for score %d, outside [%d, %d]",
					id, f, score, -pointbuy.MaxCost, pointbuy.MaxCost)
			}
			costs[score] = int(f)
		default:
			return nil, fmt.Errorf("scripting: cost script %q returned %s for score %d", id, ret.Type(), score)
		}
	}

	t := &ruleset.NamedCostTable{
		ID:          id,
		Name:        stringGlobal(L, "name", id),
		Description: stringGlobal(L, "description", ""),
		Costs:       costs,
	}
	if e := stringGlobal(L, "edition", ""); e != "" {
		edition, err := ruleset.ParseEdition(e)
		if err != nil {
			return nil, fmt.Errorf("scripting: cost script %q: %w", id, err)
		}
		t.Edition = edition
	}
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("scripting: %w", err)
	}
	return t, nil
}

func stringGlobal(L *lua.LState, name, fallback string) string {
	if s, ok := L.GetGlobal(name).(lua.LString); ok && s != "" {
		return string(s)
	}
	return fallback
}

// LoadCostScripts evaluates every *.lua file in dir in lexicographic order.
// A broken script is logged at Warn level and skipped so one bad homebrew
// file does not take the others down.
//
// Precondition: dir must be a readable directory; logger must be non-nil.
// Postcondition: Returns every table that evaluated cleanly.
func LoadCostScripts(dir string, instLimit int, logger *zap.Logger) ([]*ruleset.NamedCostTable, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script dir %q: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	tables := make([]*ruleset.NamedCostTable, 0, len(paths))
	for _, path := range paths {
		t, err := CostTableFromScript(path, instLimit)
		if err != nil {
			logger.Warn("skipping cost script",
				zap.String("path", path),
				zap.Error(err),
			)
			continue
		}
		tables = append(tables, t)
	}
	return tables, nil
}

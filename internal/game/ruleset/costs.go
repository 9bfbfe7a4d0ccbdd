package ruleset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/pointbuy/internal/game/pointbuy"
)

// NamedCostTable is a homebrew cost table that can be loaded into a
// calculator's custom table.
//
// Edition restricts the table to one edition; empty means any.
//
// Precondition: ID and Name must be non-empty after loading.
type NamedCostTable struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Edition     Edition            `yaml:"edition"`
	Costs       pointbuy.CostTable `yaml:"costs"`
}

// AppliesTo reports whether the table may be used under e.
func (n *NamedCostTable) AppliesTo(e Edition) bool {
	return n.Edition == "" || n.Edition == e
}

// Validate checks that the table is usable and normalizes Edition.
//
// Postcondition: Returns nil or an error naming the first violation.
func (n *NamedCostTable) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("cost table must have an id")
	}
	if n.Name == "" {
		return fmt.Errorf("cost table %q must have a name", n.ID)
	}
	if n.Edition != "" {
		e, err := ParseEdition(string(n.Edition))
		if err != nil {
			return fmt.Errorf("cost table %q: %w", n.ID, err)
		}
		n.Edition = e
	}
	for score, cost := range n.Costs {
		if !pointbuy.ValidCost(cost) {
			return fmt.Errorf("cost table %q: cost %d for score %d outside [%d, %d]",
				n.ID, cost, score, -pointbuy.MaxCost, pointbuy.MaxCost)
		}
	}
	if len(n.Costs.Scores()) == 0 {
		return fmt.Errorf("cost table %q defines no score in [%d, %d]", n.ID, pointbuy.MinScore, pointbuy.MaxScore)
	}
	return nil
}

// LoadCostTables reads all .yaml files in dir and parses each as a
// NamedCostTable.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed tables (may be empty slice) or a non-nil error.
func LoadCostTables(dir string) ([]*NamedCostTable, error) {
	files, err := yamlFiles(dir)
	if err != nil {
		return nil, err
	}
	tables := make([]*NamedCostTable, 0, len(files))
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var t NamedCostTable
		if err := yaml.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("parsing cost table file %s: %w", path, err)
		}
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		tables = append(tables, &t)
	}
	return tables, nil
}

func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// TableRegistry provides lookup of named cost tables by ID.
type TableRegistry struct {
	tables map[string]*NamedCostTable
}

// NewTableRegistry returns an empty TableRegistry.
//
// Postcondition: Returns a non-nil *TableRegistry ready to accept registrations.
func NewTableRegistry() *TableRegistry {
	return &TableRegistry{tables: make(map[string]*NamedCostTable)}
}

// Register adds a table to the registry.
//
// Precondition: t must be non-nil with a non-empty ID.
// Postcondition: t is retrievable via Table using t.ID; if called multiple
// times with the same ID, the last call wins.
func (r *TableRegistry) Register(t *NamedCostTable) {
	if t == nil {
		panic("TableRegistry.Register: precondition violated: table must be non-nil")
	}
	if t.ID == "" {
		panic("TableRegistry.Register: precondition violated: table ID must be non-empty")
	}
	r.tables[strings.ToLower(t.ID)] = t
}

// Table returns the table registered under id, case-insensitively.
func (r *TableRegistry) Table(id string) (*NamedCostTable, bool) {
	t, ok := r.tables[strings.ToLower(strings.TrimSpace(id))]
	return t, ok
}

// For returns the tables usable under e, sorted by ID.
func (r *TableRegistry) For(e Edition) []*NamedCostTable {
	var out []*NamedCostTable
	for _, t := range r.tables {
		if t.AppliesTo(e) {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of registered tables.
func (r *TableRegistry) Len() int {
	return len(r.tables)
}

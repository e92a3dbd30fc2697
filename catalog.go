package prdflow

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	prderrors "github.com/randalmurphal/prdflow/errors"
)

// =============================================================================
// Section Catalog
// =============================================================================

// CatalogEntry describes one section template: its display title,
// whether it must appear in every document, the sections it depends on,
// and the checklist its content is scored against.
type CatalogEntry struct {
	Title        string   `yaml:"title" json:"title"`
	Mandatory    bool     `yaml:"mandatory" json:"mandatory"`
	Dependencies []string `yaml:"dependencies" json:"dependencies"`
	Checklist    []string `yaml:"checklist" json:"checklist"`
}

// Catalog is the static table of document sections. It is immutable at
// runtime; sessions copy it into their section maps.
type Catalog struct {
	entries map[string]CatalogEntry
	order   []string
}

// NewCatalog builds a catalog from entries in the given declaration
// order and validates the dependency graph.
func NewCatalog(keys []string, entries map[string]CatalogEntry) (*Catalog, error) {
	c := &Catalog{
		entries: make(map[string]CatalogEntry, len(entries)),
		order:   append([]string(nil), keys...),
	}
	for _, key := range keys {
		entry, ok := entries[key]
		if !ok {
			return nil, fmt.Errorf("catalog order lists section %q: %w", key, prderrors.ErrUnknownSection)
		}
		c.entries[key] = entry
	}
	if len(c.entries) != len(entries) {
		return nil, fmt.Errorf("catalog order covers %d of %d sections", len(c.order), len(entries))
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// validate checks that dependencies reference known sections and that
// the dependency graph is acyclic. Shallow staleness propagation
// assumes a DAG.
func (c *Catalog) validate() error {
	for key, entry := range c.entries {
		for _, dep := range entry.Dependencies {
			if _, ok := c.entries[dep]; !ok {
				return fmt.Errorf("section %q depends on %q: %w", key, dep, prderrors.ErrUnknownSection)
			}
		}
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	colors := make(map[string]int, len(c.entries))
	var visit func(key string) error
	visit = func(key string) error {
		switch colors[key] {
		case visiting:
			return fmt.Errorf("dependency cycle through section %q", key)
		case done:
			return nil
		}
		colors[key] = visiting
		for _, dep := range c.entries[key].Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		colors[key] = done
		return nil
	}
	for _, key := range c.order {
		if err := visit(key); err != nil {
			return err
		}
	}
	return nil
}

// Keys returns all section keys in declaration order.
func (c *Catalog) Keys() []string {
	return append([]string(nil), c.order...)
}

// Entry returns the template for key.
func (c *Catalog) Entry(key string) (CatalogEntry, bool) {
	entry, ok := c.entries[key]
	return entry, ok
}

// Title returns the display title for key, or the key itself if
// unknown.
func (c *Catalog) Title(key string) string {
	if entry, ok := c.entries[key]; ok {
		return entry.Title
	}
	return key
}

// Has reports whether key is a known section.
func (c *Catalog) Has(key string) bool {
	_, ok := c.entries[key]
	return ok
}

// Sections seeds a fresh section map covering every catalog entry.
func (c *Catalog) Sections() map[string]*Section {
	sections := make(map[string]*Section, len(c.entries))
	for key, entry := range c.entries {
		sections[key] = &Section{
			Key:          key,
			Status:       StatusPending,
			Dependencies: append([]string(nil), entry.Dependencies...),
			Checklist:    append([]string(nil), entry.Checklist...),
		}
	}
	return sections
}

// MandatoryKeys returns the mandatory section keys in declaration
// order.
func (c *Catalog) MandatoryKeys() []string {
	var keys []string
	for _, key := range c.order {
		if c.entries[key].Mandatory {
			keys = append(keys, key)
		}
	}
	return keys
}

// PlanOrder returns the execution order for mandatory sections: a
// stable topological sort that always picks the earliest-declared
// section whose mandatory dependencies are already placed.
func (c *Catalog) PlanOrder() []string {
	mandatory := c.MandatoryKeys()
	inPlan := make(map[string]bool, len(mandatory))
	for _, key := range mandatory {
		inPlan[key] = true
	}

	placed := make(map[string]bool, len(mandatory))
	order := make([]string, 0, len(mandatory))
	for len(order) < len(mandatory) {
		progressed := false
		for _, key := range mandatory {
			if placed[key] {
				continue
			}
			ready := true
			for _, dep := range c.entries[key].Dependencies {
				if inPlan[dep] && !placed[dep] {
					ready = false
					break
				}
			}
			if ready {
				placed[key] = true
				order = append(order, key)
				progressed = true
				break
			}
		}
		if !progressed {
			// Unreachable with a validated DAG.
			break
		}
	}
	return order
}

// LoadCatalog reads a catalog override from a YAML file. The file maps
// section keys to entries; declaration order follows an explicit
// top-level "order" list.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var file struct {
		Order    []string                `yaml:"order"`
		Sections map[string]CatalogEntry `yaml:"sections"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return NewCatalog(file.Order, file.Sections)
}

// DefaultCatalog returns the built-in PRD section catalog.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog(defaultCatalogOrder, defaultCatalogEntries)
	if err != nil {
		// The built-in table is validated by tests; a failure here is a
		// programming error.
		panic(fmt.Sprintf("prdflow: invalid built-in catalog: %v", err))
	}
	return catalog
}

var defaultCatalogOrder = []string{
	"problem_statement",
	"goals",
	"success_metrics",
	"user_personas",
	"core_features",
	"user_flows",
	"technical_architecture",
	"constraints",
	"risks",
	"timeline",
}

var defaultCatalogEntries = map[string]CatalogEntry{
	"problem_statement": {
		Title:     "Problem Statement",
		Mandatory: true,
		Checklist: []string{
			"Problem is clearly defined and specific",
			"Target users/personas are identified",
			"Pain points are quantified where possible",
			"Current solutions' limitations are addressed",
		},
	},
	"goals": {
		Title:        "Goals & Objectives",
		Mandatory:    true,
		Dependencies: []string{"problem_statement"},
		Checklist: []string{
			"Primary goal is measurable and time-bound",
			"Secondary goals are listed",
			"Goals align with problem statement",
			"Business impact is articulated",
		},
	},
	"success_metrics": {
		Title:        "Success Metrics",
		Mandatory:    true,
		Dependencies: []string{"goals"},
		Checklist: []string{
			"Each metric has baseline, target, and timeframe",
			"Metrics owner is assigned",
			"Data source/measurement method is specified",
			"Leading and lagging indicators are included",
		},
	},
	"user_personas": {
		Title:        "User Personas",
		Mandatory:    true,
		Dependencies: []string{"problem_statement"},
		Checklist: []string{
			"Primary persona is detailed with demographics",
			"User needs and pain points are specified",
			"User journey touchpoints are identified",
			"Secondary personas are briefly described",
		},
	},
	"core_features": {
		Title:        "Core Features",
		Mandatory:    true,
		Dependencies: []string{"user_personas", "goals"},
		Checklist: []string{
			"Features directly address user needs",
			"MVP features are prioritized",
			"Feature requirements are specific",
			"Technical feasibility is considered",
		},
	},
	"user_flows": {
		Title:        "User Flows",
		Mandatory:    true,
		Dependencies: []string{"core_features", "user_personas"},
		Checklist: []string{
			"Key user journeys are mapped",
			"Happy path and edge cases are covered",
			"Flow steps reference specific features",
			"User personas are connected to flows",
		},
	},
	"technical_architecture": {
		Title:        "Technical Architecture",
		Mandatory:    false,
		Dependencies: []string{"core_features"},
		Checklist: []string{
			"High-level system components are defined",
			"Data flow is outlined",
			"Integration points are specified",
			"Scalability considerations are addressed",
		},
	},
	"constraints": {
		Title:     "Constraints & Assumptions",
		Mandatory: true,
		Checklist: []string{
			"Technical constraints are listed",
			"Business constraints are specified",
			"Resource limitations are acknowledged",
			"Key assumptions are documented",
		},
	},
	"risks": {
		Title:        "Risks & Mitigation",
		Mandatory:    true,
		Dependencies: []string{"core_features"},
		Checklist: []string{
			"Technical risks are identified",
			"Market/competitive risks are listed",
			"Mitigation strategies are provided",
			"Risk probability and impact are assessed",
		},
	},
	"timeline": {
		Title:        "Timeline & Milestones",
		Mandatory:    true,
		Dependencies: []string{"core_features"},
		Checklist: []string{
			"Key milestones are defined",
			"Dependencies between milestones are clear",
			"Resource allocation is considered",
			"Buffer time for unknowns is included",
		},
	},
}

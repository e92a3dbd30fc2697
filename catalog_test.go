package prdflow

import (
	"errors"
	"path/filepath"
	"testing"

	prderrors "github.com/randalmurphal/prdflow/errors"
	"github.com/randalmurphal/prdflow/testutil"
)

func TestDefaultCatalog(t *testing.T) {
	catalog := DefaultCatalog()

	if got := len(catalog.Keys()); got != 10 {
		t.Errorf("len(Keys()) = %d, want 10", got)
	}
	if !catalog.Has("problem_statement") {
		t.Error("missing problem_statement")
	}
	if catalog.Title("goals") != "Goals & Objectives" {
		t.Errorf("Title(goals) = %q", catalog.Title("goals"))
	}
	// Unknown keys fall back to the key itself.
	if catalog.Title("nope") != "nope" {
		t.Errorf("Title(nope) = %q", catalog.Title("nope"))
	}
}

func TestCatalog_PlanOrder(t *testing.T) {
	catalog := DefaultCatalog()
	order := catalog.PlanOrder()

	pos := make(map[string]int, len(order))
	for i, key := range order {
		pos[key] = i
	}

	// Non-mandatory sections stay out of the plan.
	if _, ok := pos["technical_architecture"]; ok {
		t.Error("technical_architecture is optional and must not be planned")
	}

	// Every mandatory dependency precedes its dependents.
	for _, key := range order {
		entry, _ := catalog.Entry(key)
		for _, dep := range entry.Dependencies {
			depPos, inPlan := pos[dep]
			if !inPlan {
				continue
			}
			if depPos > pos[key] {
				t.Errorf("%s planned before its dependency %s", key, dep)
			}
		}
	}

	if order[0] != "problem_statement" {
		t.Errorf("order[0] = %q, want problem_statement", order[0])
	}
}

func TestNewCatalog_RejectsCycle(t *testing.T) {
	_, err := NewCatalog([]string{"a", "b"}, map[string]CatalogEntry{
		"a": {Title: "A", Mandatory: true, Dependencies: []string{"b"}},
		"b": {Title: "B", Mandatory: true, Dependencies: []string{"a"}},
	})
	if err == nil {
		t.Fatal("NewCatalog() accepted a dependency cycle")
	}
}

func TestNewCatalog_RejectsUnknownDependency(t *testing.T) {
	_, err := NewCatalog([]string{"a"}, map[string]CatalogEntry{
		"a": {Title: "A", Dependencies: []string{"ghost"}},
	})
	if !errors.Is(err, prderrors.ErrUnknownSection) {
		t.Fatalf("NewCatalog() error = %v, want ErrUnknownSection", err)
	}
}

func TestNewCatalog_OrderMustCoverEntries(t *testing.T) {
	_, err := NewCatalog([]string{"a"}, map[string]CatalogEntry{
		"a": {Title: "A"},
		"b": {Title: "B"},
	})
	if err == nil {
		t.Fatal("NewCatalog() accepted an order missing a section")
	}
}

func TestCatalog_Sections(t *testing.T) {
	catalog := DefaultCatalog()
	sections := catalog.Sections()

	if len(sections) != len(catalog.Keys()) {
		t.Fatalf("Sections() len = %d, want %d", len(sections), len(catalog.Keys()))
	}
	goals := sections["goals"]
	if goals.Status != StatusPending {
		t.Errorf("seeded status = %q, want pending", goals.Status)
	}
	if len(goals.Checklist) == 0 {
		t.Error("seeded section missing checklist")
	}

	// Seeded sections are copies; mutating one must not touch the catalog.
	goals.Dependencies[0] = "mutated"
	entry, _ := catalog.Entry("goals")
	if entry.Dependencies[0] == "mutated" {
		t.Error("catalog entry shares slice with seeded section")
	}
}

func TestLoadCatalog(t *testing.T) {
	data := `
order:
  - overview
  - details
sections:
  overview:
    title: Overview
    mandatory: true
    checklist:
      - States the purpose
  details:
    title: Details
    mandatory: true
    dependencies: [overview]
    checklist:
      - Lists the specifics
`
	catalog, err := LoadCatalog(testutil.TempFileString(t, "catalog.yaml", data))
	if err != nil {
		t.Fatalf("LoadCatalog() error: %v", err)
	}
	if got := catalog.Keys(); len(got) != 2 || got[0] != "overview" {
		t.Errorf("Keys() = %v", got)
	}
	if got := catalog.PlanOrder(); len(got) != 2 || got[1] != "details" {
		t.Errorf("PlanOrder() = %v", got)
	}
}

func TestLoadCatalog_MissingFile(t *testing.T) {
	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadCatalog() succeeded on a missing file")
	}
}

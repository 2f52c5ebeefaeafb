// Package macro implements the second and third pipeline stages: cataloguing
// of #def definitions and textual macro expansion.
package macro

import (
	"sort"
)

// Definition is one catalogued macro. Created once during cataloguing and
// immutable afterwards; a later definition with the same name never replaces
// it — the collision is recorded as a Duplicate fact instead.
type Definition struct {
	Name      string
	Params    []string
	Body      []string
	Multiline bool
	// Line is the Stage-1/2 line of the #def header.
	Line uint32
	// SourceFile is "" for local definitions, the included filename otherwise.
	SourceFile string
}

// Arity returns the declared parameter count.
func (d *Definition) Arity() int {
	return len(d.Params)
}

// Duplicate records a name collision: the first definition stays
// authoritative, the later one is only a fact. Lines are stage-local and are
// translated to original coordinates before surfacing.
type Duplicate struct {
	Name      string
	FirstLine uint32
	DupLine   uint32
}

// Table is the name -> definition catalogue built once per pass and consumed
// read-only by the expander and the usage checks.
type Table struct {
	defs  []*Definition
	index map[string]int
	dups  []Duplicate
}

func NewTable() *Table {
	return &Table{index: make(map[string]int)}
}

// Add registers a definition. Возвращает false, если имя уже занято: первое
// определение остаётся разрешимым, коллизия записывается в dups.
func (t *Table) Add(d *Definition) bool {
	if i, ok := t.index[d.Name]; ok {
		t.dups = append(t.dups, Duplicate{
			Name:      d.Name,
			FirstLine: t.defs[i].Line,
			DupLine:   d.Line,
		})
		return false
	}
	t.index[d.Name] = len(t.defs)
	t.defs = append(t.defs, d)
	return true
}

// Lookup resolves a macro name (terminal marker included).
func (t *Table) Lookup(name string) (*Definition, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.defs[i], true
}

// Definitions returns the catalogued definitions in document order.
func (t *Table) Definitions() []*Definition {
	return t.defs
}

// Duplicates returns the recorded name collisions in document order.
func (t *Table) Duplicates() []Duplicate {
	return t.dups
}

// Names returns all resolvable macro names, sorted; the suggestion engine
// feeds on this.
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.defs))
	for _, d := range t.defs {
		names = append(names, d.Name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of resolvable definitions.
func (t *Table) Len() int {
	return len(t.defs)
}

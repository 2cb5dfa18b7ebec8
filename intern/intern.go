// Package intern implements the dense symbol intern table shared by the
// ANF compiler and the binary container: a bidirectional mapping between
// small integer ids and UTF-8 names, assigned monotonically on first
// insertion.
package intern

// SymId is a dense, monotonically assigned symbol id. Ids start at zero
// and are never reused.
type SymId uint32

// Table is a bidirectional name <-> SymId mapping. The zero value is not
// usable; construct with New.
type Table struct {
	names []string
	index map[string]SymId
}

// New returns an empty intern table.
func New() *Table {
	return &Table{
		names: make([]string, 0, 16),
		index: make(map[string]SymId, 16),
	}
}

// Intern returns the existing id for name, allocating the next id if name
// has not been seen before. Allocation is infallible.
func (t *Table) Intern(name string) SymId {
	if id, ok := t.index[name]; ok {
		return id
	}
	id := SymId(len(t.names))
	t.names = append(t.names, name)
	t.index[name] = id
	return id
}

// Get returns the name for id, or false if id was never interned.
func (t *Table) Get(id SymId) (string, bool) {
	if int(id) >= len(t.names) {
		return "", false
	}
	return t.names[id], true
}

// NextID reports the id that would be assigned to the next newly interned
// name. Exposed for diagnostics only.
func (t *Table) NextID() SymId {
	return SymId(len(t.names))
}

// Len reports how many distinct names have been interned.
func (t *Table) Len() int {
	return len(t.names)
}

// Names returns the interned names in insertion order, the order the
// container's SYMBOL_TABLE section is serialized in.
func (t *Table) Names() []string {
	return t.names
}

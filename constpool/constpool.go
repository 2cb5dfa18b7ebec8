// Package constpool implements the ordered, indexed collection of typed
// literal constants referenced by LOAD_CONST operands.
package constpool

import "lanf/bytecode"

// Pool is an ordered sequence of BCData entries indexed by position.
// Equal literals are not required to be deduplicated, but Intern does
// dedupe for identical (tag, value) pairs to keep small programs compact,
// as the spec permits.
type Pool struct {
	entries []bytecode.BCData
	index   map[key]int
}

type key struct {
	tag   bytecode.Tag
	i     int32
	f     float64
	sym   uint32
	str   string
	boolv bool
}

func keyOf(v bytecode.BCData) key {
	return key{tag: v.Tag, i: v.Int, f: v.Float, sym: uint32(v.Sym), str: v.Str, boolv: v.Bool}
}

// New returns an empty constant pool.
func New() *Pool {
	return &Pool{index: make(map[key]int)}
}

// Intern returns the pool index for v, appending it if an identical entry
// is not already present.
func (p *Pool) Intern(v bytecode.BCData) int {
	k := keyOf(v)
	if idx, ok := p.index[k]; ok {
		return idx
	}
	idx := len(p.entries)
	p.entries = append(p.entries, v)
	p.index[k] = idx
	return idx
}

// Get returns the entry at idx.
func (p *Pool) Get(idx int) (bytecode.BCData, bool) {
	if idx < 0 || idx >= len(p.entries) {
		return bytecode.BCData{}, false
	}
	return p.entries[idx], true
}

// Entries returns the pool contents in index order.
func (p *Pool) Entries() []bytecode.BCData {
	return p.entries
}

// Len reports the number of entries in the pool.
func (p *Pool) Len() int {
	return len(p.entries)
}

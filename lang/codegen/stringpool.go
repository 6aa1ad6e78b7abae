package codegen

import "github.com/dolthub/swiss"

// StringPool deduplicates string literals, assigning each a stable index on
// first insertion (spec.md §3: "String pool entries are unique by value;
// indices into the pool are stable once assigned"). Backed by swiss.Map
// rather than a builtin map, reused here for a compile-time table instead
// of a runtime value.
type StringPool struct {
	index  *swiss.Map[string, uint32]
	values []string
}

// NewStringPool returns an empty pool.
func NewStringPool() *StringPool {
	return &StringPool{index: swiss.NewMap[string, uint32](8)}
}

// Intern returns the stable index of s, inserting it if not already present.
func (p *StringPool) Intern(s string) uint32 {
	if idx, ok := p.index.Get(s); ok {
		return idx
	}
	idx := uint32(len(p.values))
	p.values = append(p.values, s)
	p.index.Put(s, idx)
	return idx
}

// Values returns the pool's entries in index order.
func (p *StringPool) Values() []string { return p.values }

package codegen

import "github.com/dolthub/swiss"

// slotTable is the "bump-allocated variable slot table (indexed by name,
// one entry per declaration in lexical scope order)" of spec.md §4.5. One
// slotTable is created per function; declarations bump the next free slot.
type slotTable struct {
	index *swiss.Map[string, uint32]
	next  uint32
}

func newSlotTable() *slotTable {
	return &slotTable{index: swiss.NewMap[string, uint32](8)}
}

// declare allocates a new slot for name and returns it. Re-declaring a name
// already in scope overwrites its slot binding (shadowing within a single
// function's flat slot space; spec.md does not model nested block scoping
// of variable storage, only of jump-target domains).
func (t *slotTable) declare(name string) uint32 {
	slot := t.next
	t.next++
	t.index.Put(name, slot)
	return slot
}

// lookup returns the slot bound to name, if any.
func (t *slotTable) lookup(name string) (uint32, bool) {
	return t.index.Get(name)
}

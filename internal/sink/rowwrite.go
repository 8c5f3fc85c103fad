package sink

// Cell is a single (family, qualifier, value) unit to be written under a
// row key.
type Cell struct {
	Family    string
	Qualifier string
	Value     []byte
}

// RowWrite is a fully formed write for one store row: the row key plus every
// cell derived from the event. Family and qualifier pairs are not
// deduplicated here; the store applies its own semantics to duplicates.
type RowWrite struct {
	RowKey []byte
	Cells  []Cell
}

// Add appends a cell and returns the write for chaining.
func (w *RowWrite) Add(family, qualifier string, value []byte) *RowWrite {
	w.Cells = append(w.Cells, Cell{Family: family, Qualifier: qualifier, Value: value})
	return w
}

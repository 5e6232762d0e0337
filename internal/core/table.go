package core

// BuildTable produces the comparison table for a selection.
//
// Rows follow regionOrder, the canonical country order of the active region,
// and never the selection order. Selected names that are not in regionOrder
// get no row; they stay in the selection untouched. Columns follow
// indicators, which callers pass in catalog declaration order.
//
// A cell is NotAvailable when the country has no record, the record has no
// value for the key, or the value is not a finite number.
//
// BuildTable does not modify its inputs and returns the same model for the
// same inputs.
func BuildTable(sel *Selection, indicators []Indicator, regionOrder []string, store RecordFinder) (*TableModel, error) {
	if sel == nil || sel.Len() == 0 {
		return nil, ErrEmptySelection
	}

	t := &TableModel{
		Header: make([]string, 0, len(indicators)+1),
		Keys:   make([]string, 0, len(indicators)),
		Rows:   []Row{},
	}
	t.Header = append(t.Header, CountryColumnLabel)
	for _, ind := range indicators {
		t.Header = append(t.Header, ind.Label)
		t.Keys = append(t.Keys, ind.Key)
	}

	for _, name := range regionOrder {
		if !sel.Has(name) {
			continue
		}
		record, found := store.FindRecord(name)
		row := Row{Country: name, Cells: make([]Cell, 0, len(indicators))}
		for _, ind := range indicators {
			row.Cells = append(row.Cells, buildCell(record, found, ind.Key))
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func buildCell(record *CountryRecord, found bool, key string) Cell {
	if !found {
		return Cell{Key: key, Text: NotAvailable}
	}
	v, ok := record.Value(key)
	if !ok {
		return Cell{Key: key, Text: NotAvailable}
	}
	text := FormatNumber(v)
	return Cell{Key: key, Text: text, Available: text != NotAvailable}
}

package types

import "sort"

// CellOverride replaces one cell of one row in a variant.
type CellOverride struct {
	RowID    string
	ColumnID string
	Value    CellValue
}

// VariantDelta is the operation log describing how a non-base variant
// differs from the base rows.
type VariantDelta struct {
	VariantID     int
	DeletedRowIDs []string
	AddedRows     []Row
	CellOverrides []CellOverride
}

// IsEmpty reports whether d carries no operation.
func (d *VariantDelta) IsEmpty() bool {
	return len(d.DeletedRowIDs) == 0 && len(d.AddedRows) == 0 && len(d.CellOverrides) == 0
}

// SetCell records an override, replacing an earlier one for the same cell.
func (d *VariantDelta) SetCell(rowID, columnID string, v CellValue) {
	for i := range d.CellOverrides {
		o := &d.CellOverrides[i]
		if o.RowID == rowID && o.ColumnID == columnID {
			o.Value = v
			return
		}
	}
	d.CellOverrides = append(d.CellOverrides, CellOverride{RowID: rowID, ColumnID: columnID, Value: v})
}

// ClearCell removes the override for one cell, if any.
func (d *VariantDelta) ClearCell(rowID, columnID string) {
	out := d.CellOverrides[:0]
	for _, o := range d.CellOverrides {
		if o.RowID != rowID || o.ColumnID != columnID {
			out = append(out, o)
		}
	}
	d.CellOverrides = out
}

// SortDeltas orders deltas by ascending variant id, dropping empty ones. It
// returns nil when no delta remains.
func SortDeltas(deltas []VariantDelta) []VariantDelta {
	var out []VariantDelta
	for _, d := range deltas {
		if d.VariantID != BaseVariantID && !d.IsEmpty() {
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].VariantID < out[j].VariantID })
	return out
}

// EffectiveRows resolves the row set seen by a variant: base rows in order
// minus deleted ids, then added rows in log order, then cell overrides in log
// order with the last one winning per (row, column). Overrides that target a
// row absent from the result are ignored. The returned rows are copies.
func (t *Table) EffectiveRows(variantID int) []Row {
	rows := make([]Row, 0, len(t.Rows))
	d := t.Delta(variantID)
	if variantID == BaseVariantID || d == nil {
		for _, r := range t.Rows {
			rows = append(rows, r.Clone())
		}
		return rows
	}

	deleted := make(map[string]bool, len(d.DeletedRowIDs))
	for _, id := range d.DeletedRowIDs {
		deleted[id] = true
	}
	for _, r := range t.Rows {
		if !deleted[r.ID] {
			rows = append(rows, r.Clone())
		}
	}
	for _, r := range d.AddedRows {
		rows = append(rows, r.Clone())
	}

	index := make(map[string]int, len(rows))
	for i, r := range rows {
		index[r.ID] = i
	}
	for _, o := range d.CellOverrides {
		i, ok := index[o.RowID]
		if !ok {
			continue
		}
		rows[i].Cells[o.ColumnID] = o.Value
	}
	return rows
}

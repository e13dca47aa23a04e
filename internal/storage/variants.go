// This file implements the variant overlay log of regular tables.
package storage

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// decodeVariantLog groups variants.jsonl operations into one delta per
// variant id, preserving the order in which operations appear.
func (c *codec) decodeVariantLog(t *types.Table, cols columnIndex, records []json.RawMessage) []types.VariantDelta {
	byID := make(map[int]*types.VariantDelta)
	var order []int
	deltaFor := func(id int) *types.VariantDelta {
		d, ok := byID[id]
		if !ok {
			d = &types.VariantDelta{VariantID: id}
			byID[id] = d
			order = append(order, id)
		}
		return d
	}

	for _, rec := range records {
		var op variantOpJSON
		if err := json.Unmarshal(rec, &op); err != nil {
			c.log.WithField("table", t.ID).WithError(err).Debug("skipping malformed variant operation")
			continue
		}
		log := c.log.WithFields(logrus.Fields{"table": t.ID, "variant": op.VariantID, "op": op.Op})
		if op.VariantID <= types.BaseVariantID {
			log.Debug("skipping operation on base variant")
			continue
		}
		switch op.Op {
		case opRowDelete:
			if strings.TrimSpace(op.RowID) == "" {
				continue
			}
			d := deltaFor(op.VariantID)
			if !containsString(d.DeletedRowIDs, op.RowID) {
				d.DeletedRowIDs = append(d.DeletedRowIDs, op.RowID)
			}
		case opRowAdd:
			row, ok := c.decodeRow(t, cols, rowJSON{ID: op.RowID, Cells: op.Cells}, true)
			if !ok {
				continue
			}
			d := deltaFor(op.VariantID)
			d.AddedRows = append(d.AddedRows, row)
		case opCellSet:
			col, ok := cols[op.ColumnID]
			if !ok || strings.TrimSpace(op.RowID) == "" {
				log.WithField("column", op.ColumnID).Debug("dropping cell override")
				continue
			}
			v, ok := c.decodeCell(col, op.Value)
			if !ok {
				continue
			}
			deltaFor(op.VariantID).SetCell(op.RowID, op.ColumnID, v)
		default:
			log.Debug("skipping unknown variant operation")
		}
	}

	sort.Ints(order)
	var deltas []types.VariantDelta
	for _, id := range order {
		if d := byID[id]; !d.IsEmpty() {
			deltas = append(deltas, *d)
		}
	}
	return deltas
}

// encodeVariantLog flattens deltas in ascending variant id order. Within a
// variant, deletions come first, then additions, then overrides, each in
// stored order.
func (c *codec) encodeVariantLog(t *types.Table, cols columnIndex) ([]json.RawMessage, error) {
	var records []json.RawMessage
	add := func(op variantOpJSON) error {
		data, err := json.Marshal(op)
		if err != nil {
			return fmt.Errorf("encoding %s for variant %d: %w", op.Op, op.VariantID, err)
		}
		records = append(records, data)
		return nil
	}

	deltas := types.SortDeltas(t.VariantDeltas)
	for di := range deltas {
		d := &deltas[di]
		for _, id := range d.DeletedRowIDs {
			if err := add(variantOpJSON{VariantID: d.VariantID, Op: opRowDelete, RowID: id}); err != nil {
				return nil, err
			}
		}
		for i := range d.AddedRows {
			rj, err := c.encodeRow(t, cols, &d.AddedRows[i], true)
			if err != nil {
				return nil, err
			}
			if err := add(variantOpJSON{VariantID: d.VariantID, Op: opRowAdd, RowID: rj.ID, Cells: rj.Cells}); err != nil {
				return nil, err
			}
		}
		for _, o := range d.CellOverrides {
			col, ok := cols[o.ColumnID]
			if !ok {
				continue
			}
			raw, err := c.encodeCell(col, o.Value)
			if err != nil {
				return nil, fmt.Errorf("override %s/%s: %w", o.RowID, o.ColumnID, err)
			}
			if err := add(variantOpJSON{VariantID: d.VariantID, Op: opCellSet, RowID: o.RowID, ColumnID: o.ColumnID, Value: raw}); err != nil {
				return nil, err
			}
		}
	}
	return records, nil
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

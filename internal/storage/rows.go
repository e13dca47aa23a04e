// This file implements the row codec shared by rows.jsonl, the variant log,
// and the derived-table own-data files.
package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// columnIndex maps column ids to columns. The first column with a given id
// wins.
type columnIndex map[string]*types.Column

func indexColumns(t *types.Table) columnIndex {
	idx := make(columnIndex, len(t.Columns))
	for i := range t.Columns {
		if _, dup := idx[t.Columns[i].ID]; !dup {
			idx[t.Columns[i].ID] = &t.Columns[i]
		}
	}
	return idx
}

// decodeRow decodes one row record. Cells of unknown columns are dropped.
// With autoID set, blank Id cells are filled with the row id. ok is false for
// a record without a row id.
func (c *codec) decodeRow(t *types.Table, cols columnIndex, rj rowJSON, autoID bool) (types.Row, bool) {
	if strings.TrimSpace(rj.ID) == "" {
		c.log.WithField("table", t.ID).Debug("skipping row without id")
		return types.Row{}, false
	}
	row := types.Row{ID: rj.ID, Cells: make(map[string]types.CellValue, len(rj.Cells))}
	for colID, raw := range rj.Cells {
		col, ok := cols[colID]
		if !ok {
			c.log.WithFields(logrus.Fields{"table": t.ID, "row": rj.ID, "column": colID}).
				Debug("dropping cell of unknown column")
			continue
		}
		if v, ok := c.decodeCell(col, raw); ok {
			row.Cells[colID] = v
		}
	}
	if autoID {
		fillAutoIDs(t, &row)
	}
	return row, true
}

// decodeRowRecords decodes raw row lines, skipping unparseable records.
func (c *codec) decodeRowRecords(t *types.Table, cols columnIndex, records []json.RawMessage, autoID bool) []types.Row {
	var rows []types.Row
	for _, rec := range records {
		var rj rowJSON
		if err := json.Unmarshal(rec, &rj); err != nil {
			c.log.WithField("table", t.ID).WithError(err).Debug("skipping malformed row")
			continue
		}
		if row, ok := c.decodeRow(t, cols, rj, autoID); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// encodeRow encodes the row, first filling blank Id cells in place when
// autoID is set. Cells of columns the table does not declare are not written.
func (c *codec) encodeRow(t *types.Table, cols columnIndex, row *types.Row, autoID bool) (rowJSON, error) {
	if autoID {
		fillAutoIDs(t, row)
	}
	rj := rowJSON{ID: row.ID}
	cells, err := c.encodeCells(cols, row.Cells)
	if err != nil {
		return rj, fmt.Errorf("row %s: %w", row.ID, err)
	}
	rj.Cells = cells
	return rj, nil
}

func (c *codec) encodeCells(cols columnIndex, cells map[string]types.CellValue) (map[string]json.RawMessage, error) {
	if len(cells) == 0 {
		return nil, nil
	}
	out := make(map[string]json.RawMessage, len(cells))
	for colID, v := range cells {
		col, ok := cols[colID]
		if !ok {
			continue
		}
		raw, err := c.encodeCell(col, v)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", colID, err)
		}
		out[colID] = raw
	}
	return out, nil
}

func (c *codec) encodeRowRecords(t *types.Table, cols columnIndex, rows []types.Row, autoID bool) ([]json.RawMessage, error) {
	records := make([]json.RawMessage, 0, len(rows))
	for i := range rows {
		rj, err := c.encodeRow(t, cols, &rows[i], autoID)
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(rj)
		if err != nil {
			return nil, fmt.Errorf("encoding row %s: %w", rows[i].ID, err)
		}
		records = append(records, data)
	}
	return records, nil
}

// fillAutoIDs sets every blank Id-kind cell of row to the row's own id.
func fillAutoIDs(t *types.Table, row *types.Row) {
	for i := range t.Columns {
		col := &t.Columns[i]
		if col.Kind != types.KindID {
			continue
		}
		v, ok := row.Cells[col.ID]
		if ok && !(v.Kind == types.CellText && v.IsBlank()) {
			continue
		}
		if row.Cells == nil {
			row.Cells = make(map[string]types.CellValue)
		}
		v.Kind = types.CellText
		v.Text = row.ID
		row.Cells[col.ID] = v
	}
}

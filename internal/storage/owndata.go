// This file implements own-data persistence for derived tables: locally
// authored cells stored per variant in {file}.own-data.jsonl and
// {file}.own-data@v{N}.jsonl.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/tabledb/internal/fsutil"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

const (
	ownDataSuffix        = ".own-data.jsonl"
	ownDataVariantInfix  = ".own-data@v"
	ownDataVariantSuffix = ".jsonl"
)

// ownDataVariantFile returns the file name holding variant id's own-data.
func ownDataVariantFile(fileName string, variantID int) string {
	return fileName + ownDataVariantInfix + strconv.Itoa(variantID) + ownDataVariantSuffix
}

// parseOwnDataVariant extracts the variant id from name if it is an
// own-data variant file of the table stored as fileName. Anything that does
// not match exactly (prefix, positive decimal id, suffix) does not belong to
// the table.
func parseOwnDataVariant(fileName, name string) (int, bool) {
	prefix := fileName + ownDataVariantInfix
	if len(name) <= len(prefix)+len(ownDataVariantSuffix) {
		return 0, false
	}
	if name[:len(prefix)] != prefix || name[len(name)-len(ownDataVariantSuffix):] != ownDataVariantSuffix {
		return 0, false
	}
	digits := name[len(prefix) : len(name)-len(ownDataVariantSuffix)]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id <= types.BaseVariantID {
		return 0, false
	}
	return id, true
}

// ownDataVariantFiles lists the own-data variant files of a table in file
// name order, keyed by variant id.
func ownDataVariantFiles(tablesDir, fileName string) ([]string, map[string]int, error) {
	entries, err := os.ReadDir(tablesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("listing %s: %w", tablesDir, err)
	}
	var names []string
	ids := make(map[string]int)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if id, ok := parseOwnDataVariant(fileName, e.Name()); ok {
			names = append(names, e.Name())
			ids[e.Name()] = id
		}
	}
	sort.Strings(names)
	return names, ids, nil
}

// loadOwnData reads base own-data into t.Rows and every variant file into
// an override-only delta.
func (c *codec) loadOwnData(tablesDir string, t *types.Table, cols columnIndex) error {
	base := filepath.Join(tablesDir, t.FileName+ownDataSuffix)
	records, skipped, err := fsutil.ReadJSONLOptional(base)
	if err != nil {
		return err
	}
	c.logSkipped(base, skipped)
	t.Rows = c.localRows(t, cols, c.decodeRowRecords(t, cols, records, true))

	names, ids, err := ownDataVariantFiles(tablesDir, t.FileName)
	if err != nil {
		return err
	}
	var deltas []types.VariantDelta
	for _, name := range names {
		path := filepath.Join(tablesDir, name)
		records, skipped, err := fsutil.ReadJSONL(path)
		if err != nil {
			return err
		}
		c.logSkipped(path, skipped)
		d := types.VariantDelta{VariantID: ids[name]}
		for _, row := range c.localRows(t, cols, c.decodeRowRecords(t, cols, records, false)) {
			for _, colID := range sortedCellIDs(row.Cells) {
				d.SetCell(row.ID, colID, row.Cells[colID])
			}
		}
		if !d.IsEmpty() {
			deltas = append(deltas, d)
		}
	}
	sort.SliceStable(deltas, func(i, j int) bool { return deltas[i].VariantID < deltas[j].VariantID })
	t.VariantDeltas = deltas
	return nil
}

// saveOwnData deletes every existing variant file of the table before
// writing the current ones, so a variant whose last override was removed
// leaves no file behind.
func (c *codec) saveOwnData(tablesDir string, t *types.Table, cols columnIndex) error {
	names, _, err := ownDataVariantFiles(tablesDir, t.FileName)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := fsutil.RemoveIfExists(filepath.Join(tablesDir, name)); err != nil {
			return err
		}
	}

	for i := range t.Rows {
		fillAutoIDs(t, &t.Rows[i])
	}
	records, err := c.encodeRowRecords(t, cols, c.localRows(t, cols, t.Rows), false)
	if err != nil {
		return err
	}
	if err := fsutil.WriteJSONL(filepath.Join(tablesDir, t.FileName+ownDataSuffix), records); err != nil {
		return err
	}

	for _, d := range types.SortDeltas(t.VariantDeltas) {
		if len(d.DeletedRowIDs) > 0 || len(d.AddedRows) > 0 {
			c.log.WithFields(logrus.Fields{"table": t.ID, "variant": d.VariantID}).
				Debug("derived table keeps only cell overrides; row operations not written")
		}
		rows := c.localRows(t, cols, overridesToRows(d.CellOverrides))
		if len(rows) == 0 {
			continue
		}
		records, err := c.encodeRowRecords(t, cols, rows, false)
		if err != nil {
			return err
		}
		path := filepath.Join(tablesDir, ownDataVariantFile(t.FileName, d.VariantID))
		if err := fsutil.WriteJSONL(path, records); err != nil {
			return err
		}
	}
	return nil
}

// removeOwnData deletes all own-data files of a table.
func removeOwnData(tablesDir, fileName string) error {
	names, _, err := ownDataVariantFiles(tablesDir, fileName)
	if err != nil {
		return err
	}
	names = append(names, fileName+ownDataSuffix)
	for _, name := range names {
		if err := fsutil.RemoveIfExists(filepath.Join(tablesDir, name)); err != nil {
			return err
		}
	}
	return nil
}

// localRows keeps only the cells of local columns, dropping rows left with
// no cell. Projected and inherited values are computed from the source
// tables and are never own-data.
func (c *codec) localRows(t *types.Table, cols columnIndex, rows []types.Row) []types.Row {
	var out []types.Row
	for _, row := range rows {
		local := types.Row{ID: row.ID, Cells: make(map[string]types.CellValue, len(row.Cells))}
		for colID, v := range row.Cells {
			if col, ok := cols[colID]; ok && col.IsLocal() {
				local.Cells[colID] = v
				continue
			}
			c.log.WithFields(logrus.Fields{"table": t.ID, "row": row.ID, "column": colID}).
				Debug("dropping own-data cell of non-local column")
		}
		if len(local.Cells) > 0 {
			out = append(out, local)
		}
	}
	return out
}

// overridesToRows groups overrides by row in first-appearance order.
func overridesToRows(overrides []types.CellOverride) []types.Row {
	var rows []types.Row
	index := make(map[string]int)
	for _, o := range overrides {
		i, ok := index[o.RowID]
		if !ok {
			i = len(rows)
			index[o.RowID] = i
			rows = append(rows, types.Row{ID: o.RowID, Cells: make(map[string]types.CellValue)})
		}
		rows[i].Cells[o.ColumnID] = o.Value
	}
	return rows
}

func sortedCellIDs(cells map[string]types.CellValue) []string {
	ids := make([]string, 0, len(cells))
	for id := range cells {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (c *codec) logSkipped(path string, skipped int) {
	if skipped > 0 {
		c.log.WithFields(logrus.Fields{"file": path, "lines": skipped}).Debug("skipped malformed lines")
	}
}

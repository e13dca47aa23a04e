// This file implements the optional per-table views file.
package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mesh-intelligence/tabledb/internal/fsutil"
	"github.com/mesh-intelligence/tabledb/pkg/types"
)

const viewsSuffix = ".views.json"

// loadViews reads the views file if present. A malformed views file is not
// fatal: the table simply loads without views.
func (c *codec) loadViews(tablesDir string, t *types.Table) error {
	path := tablePath(tablesDir, t.FileName, viewsSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}
	var vj viewsJSON
	if err := json.Unmarshal(data, &vj); err != nil {
		c.log.WithField("file", path).WithError(err).Debug("ignoring malformed views file")
		return nil
	}
	t.Views = nil
	for _, v := range vj.Views {
		view := types.View{
			ID:              v.ID,
			Name:            v.Name,
			Type:            types.ParseViewType(v.Type),
			Filter:          v.Filter,
			GroupByColumnID: v.GroupByColumnID,
			HiddenColumnIDs: v.HiddenColumnIDs,
		}
		for _, s := range v.Sorts {
			view.Sorts = append(view.Sorts, types.ViewSort{ColumnID: s.ColumnID, Descending: s.Descending})
		}
		t.Views = append(t.Views, view)
	}
	return nil
}

// saveViews writes the views file, or removes it when the table has none.
func saveViews(tablesDir string, t *types.Table) error {
	path := tablePath(tablesDir, t.FileName, viewsSuffix)
	if len(t.Views) == 0 {
		return fsutil.RemoveIfExists(path)
	}
	vj := viewsJSON{Views: make([]viewJSON, 0, len(t.Views))}
	for _, v := range t.Views {
		view := viewJSON{
			ID:              v.ID,
			Name:            v.Name,
			Type:            string(v.Type),
			Filter:          v.Filter,
			GroupByColumnID: v.GroupByColumnID,
			HiddenColumnIDs: v.HiddenColumnIDs,
		}
		if view.Type == "" {
			view.Type = string(types.ViewGrid)
		}
		for _, s := range v.Sorts {
			view.Sorts = append(view.Sorts, viewSortJSON{ColumnID: s.ColumnID, Descending: s.Descending})
		}
		vj.Views = append(vj.Views, view)
	}
	return fsutil.WriteJSON(path, vj)
}

// This file implements loading a project into the index.
package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

// load inserts p in a single transaction: either the whole project is
// indexed or the database stays empty.
func load(ctx context.Context, db *sql.DB, p *types.Project) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning index transaction: %w", err)
	}
	defer tx.Rollback()

	for _, f := range p.Folders {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO folders (folder_id, name, scope, parent_id) VALUES (?, ?, ?, ?)`,
			f.ID, f.Name, string(f.Scope), nullString(f.ParentID)); err != nil {
			return fmt.Errorf("indexing folder %s: %w", f.ID, err)
		}
	}

	seen := make(map[string]bool, len(p.Tables))
	for _, t := range p.Tables {
		if seen[t.ID] {
			continue
		}
		seen[t.ID] = true
		if err := loadTable(ctx, tx, t); err != nil {
			return fmt.Errorf("indexing table %s: %w", t.ID, err)
		}
	}

	seenDocs := make(map[string]bool, len(p.Documents))
	for _, d := range p.Documents {
		if seenDocs[d.ID] {
			continue
		}
		seenDocs[d.ID] = true
		if err := loadDocument(ctx, tx, d); err != nil {
			return fmt.Errorf("indexing document %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing index transaction: %w", err)
	}
	return nil
}

func loadTable(ctx context.Context, tx *sql.Tx, t *types.Table) error {
	base := ""
	if t.Derived != nil {
		base = t.Derived.BaseTableID
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tables (table_id, name, file_name, folder_id, derived, base_table_id) VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.FileName, nullString(t.FolderID), boolInt(t.IsDerived()), nullString(base)); err != nil {
		return err
	}

	for i, c := range t.Columns {
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO columns (table_id, column_id, name, kind, type_id, ordinal, hidden, projected, inherited, formula)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, c.ID, c.Name, string(c.Kind), c.TypeID, i, boolInt(c.Hidden), boolInt(c.Projected), boolInt(c.Inherited), nullString(c.Formula)); err != nil {
			return fmt.Errorf("column %s: %w", c.ID, err)
		}
	}

	variants := []types.Variant{{ID: types.BaseVariantID, Name: "Base"}}
	variants = append(variants, t.Variants...)
	for _, v := range variants {
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO variants (table_id, variant_id, name) VALUES (?, ?, ?)`,
			t.ID, v.ID, v.Name)
		if err != nil {
			return fmt.Errorf("variant %d: %w", v.ID, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			continue
		}
		if err := loadRows(ctx, tx, t, v.ID); err != nil {
			return fmt.Errorf("variant %d: %w", v.ID, err)
		}
	}
	return nil
}

// loadRows indexes the effective rows of one variant.
func loadRows(ctx context.Context, tx *sql.Tx, t *types.Table, variantID int) error {
	rowStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO table_rows (table_id, variant_id, row_id, ordinal) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer rowStmt.Close()
	cellStmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO cells (table_id, variant_id, row_id, column_id, value_kind, text_value, number_value, formula)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer cellStmt.Close()

	for i, r := range t.EffectiveRows(variantID) {
		if _, err := rowStmt.ExecContext(ctx, t.ID, variantID, r.ID, i); err != nil {
			return fmt.Errorf("row %s: %w", r.ID, err)
		}
		for colID, v := range r.Cells {
			if _, err := cellStmt.ExecContext(ctx, t.ID, variantID, r.ID, colID,
				valueKind(v), v.String(), numberValue(v), nullString(v.Formula)); err != nil {
				return fmt.Errorf("cell %s/%s: %w", r.ID, colID, err)
			}
		}
	}
	return nil
}

func loadDocument(ctx context.Context, tx *sql.Tx, d *types.Document) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO documents (document_id, title, file_name, folder_id) VALUES (?, ?, ?, ?)`,
		d.ID, d.Title, d.FileName, nullString(d.FolderID)); err != nil {
		return err
	}
	for i, b := range d.Blocks {
		tableID := ""
		if b.Table != nil {
			tableID = b.Table.TableID
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO blocks (document_id, block_id, ordinal, order_key, type, indent, checked, text, table_id)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, b.ID, i, b.Order, string(b.Type), b.Indent, boolInt(b.Checked), b.Text.Text, nullString(tableID)); err != nil {
			return fmt.Errorf("block %s: %w", b.ID, err)
		}
	}
	return nil
}

var valueKinds = map[types.CellKind]string{
	types.CellText:   "text",
	types.CellNumber: "number",
	types.CellBool:   "bool",
	types.CellVec2:   "vec2",
	types.CellVec3:   "vec3",
	types.CellVec4:   "vec4",
	types.CellMesh:   "mesh",
}

func valueKind(v types.CellValue) string {
	if k, ok := valueKinds[v.Kind]; ok {
		return k
	}
	return "text"
}

// numberValue is the numeric view of numbers and booleans, NULL otherwise.
func numberValue(v types.CellValue) any {
	switch v.Kind {
	case types.CellNumber:
		return v.Number
	case types.CellBool:
		if v.Bool {
			return 1.0
		}
		return 0.0
	default:
		return nil
	}
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

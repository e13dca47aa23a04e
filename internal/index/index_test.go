package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/tabledb/pkg/types"
)

func testProject() *types.Project {
	items := &types.Table{
		ID:       "items",
		Name:     "Items",
		FileName: "items",
		FolderID: "F",
		Columns: []types.Column{
			types.NewColumn("name", "Name", types.KindText),
			types.NewColumn("price", "Price", types.KindNumber),
			types.NewColumn("live", "Live", types.KindCheckbox),
		},
		Variants: []types.Variant{{ID: 2, Name: "Sale"}},
		Rows: []types.Row{
			{ID: "r1", Cells: map[string]types.CellValue{"name": types.TextCell("Sword"), "price": types.NumberCell(10), "live": types.BoolCell(true)}},
			{ID: "r2", Cells: map[string]types.CellValue{"name": types.TextCell("Shield"), "price": types.NumberCell(7).WithFormula("=3+4")}},
		},
		VariantDeltas: []types.VariantDelta{{
			VariantID:     2,
			DeletedRowIDs: []string{"r2"},
			AddedRows:     []types.Row{{ID: "r3", Cells: map[string]types.CellValue{"name": types.TextCell("Bow")}}},
			CellOverrides: []types.CellOverride{{RowID: "r1", ColumnID: "price", Value: types.NumberCell(8)}},
		}},
	}
	summary := &types.Table{
		ID:       "summary",
		Name:     "Summary",
		FileName: "summary",
		Columns:  []types.Column{types.NewColumn("note", "Note", types.KindText)},
		Derived:  &types.DerivedConfig{BaseTableID: "items"},
		Rows:     []types.Row{{ID: "r1", Cells: map[string]types.CellValue{"note": types.TextCell("local")}}},
	}
	return &types.Project{
		Name:    "shop",
		Folders: []types.Folder{{ID: "F", Name: "Tables", Scope: types.ScopeTables}},
		Tables:  []*types.Table{items, summary, {ID: "items", Name: "Duplicate", FileName: "dup"}},
		Documents: []*types.Document{{
			ID: "d", Title: "Notes", FileName: "d",
			Blocks: []types.Block{
				{ID: "b1", Order: "a0", Type: types.BlockHeading1, Text: types.RichText{Text: "Shop"}},
				{ID: "b2", Order: "a1", Type: types.BlockTable, Table: &types.EmbeddedTable{TableID: "items"}},
			},
		}},
	}
}

func TestBuildAndQuery(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, testProject(), MemoryPath)
	require.NoError(t, err)
	defer ix.Close()

	res, err := ix.Query(ctx, `SELECT table_id, name, derived, base_table_id FROM tables ORDER BY table_id`)
	require.NoError(t, err)
	assert.Equal(t, []string{"table_id", "name", "derived", "base_table_id"}, res.Columns)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, []any{"items", "Items", int64(0), nil}, res.Rows[0])
	assert.Equal(t, []any{"summary", "Summary", int64(1), "items"}, res.Rows[1])

	res, err = ix.Query(ctx, `SELECT column_id FROM columns WHERE table_id = ? ORDER BY ordinal`, "items")
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "price", res.Rows[1][0])
}

func TestVariantRowsAreEffective(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, testProject(), MemoryPath)
	require.NoError(t, err)
	defer ix.Close()

	ids := func(variant int) []any {
		res, err := ix.Query(ctx, `SELECT row_id FROM table_rows WHERE table_id = 'items' AND variant_id = ? ORDER BY ordinal`, variant)
		require.NoError(t, err)
		var out []any
		for _, r := range res.Rows {
			out = append(out, r[0])
		}
		return out
	}
	assert.Equal(t, []any{"r1", "r2"}, ids(0))
	assert.Equal(t, []any{"r1", "r3"}, ids(2))

	res, err := ix.Query(ctx, `SELECT variant_id, number_value FROM cells WHERE table_id = 'items' AND row_id = 'r1' AND column_id = 'price' ORDER BY variant_id`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(0), 10.0}, {int64(2), 8.0}}, res.Rows)

	res, err = ix.Query(ctx, `SELECT value_kind, text_value, number_value, formula FROM cells WHERE row_id = 'r2' AND column_id = 'price'`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{"number", "7", 7.0, "=3+4"}}, res.Rows)

	res, err = ix.Query(ctx, `SELECT number_value FROM cells WHERE row_id = 'r1' AND column_id = 'live' AND variant_id = 0`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{1.0}}, res.Rows)
}

func TestDocumentsIndexed(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, testProject(), MemoryPath)
	require.NoError(t, err)
	defer ix.Close()

	res, err := ix.Query(ctx, `SELECT block_id, type, text, table_id FROM blocks WHERE document_id = 'd' ORDER BY ordinal`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{
		{"b1", "Heading1", "Shop", nil},
		{"b2", "Table", "", "items"},
	}, res.Rows)
}

func TestBuildOnDiskReplacesExisting(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	ix, err := Build(ctx, testProject(), path)
	require.NoError(t, err)
	require.NoError(t, ix.Close())
	assert.FileExists(t, path)

	ix, err = Build(ctx, &types.Project{Name: "empty"}, path)
	require.NoError(t, err)
	defer ix.Close()
	assert.Equal(t, path, ix.Path())

	res, err := ix.Query(ctx, `SELECT COUNT(*) FROM tables`)
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(0)}}, res.Rows)
}

func TestQueryError(t *testing.T) {
	ctx := context.Background()
	ix, err := Build(ctx, &types.Project{}, MemoryPath)
	require.NoError(t, err)
	defer ix.Close()

	_, err = ix.Query(ctx, `SELECT * FROM nowhere`)
	assert.Error(t, err)
}

package types

// Row is one table row. Cells holds one entry per populated column, keyed by
// column id.
type Row struct {
	ID    string
	Cells map[string]CellValue
}

// Clone returns a deep copy of r.
func (r Row) Clone() Row {
	out := Row{ID: r.ID, Cells: make(map[string]CellValue, len(r.Cells))}
	for k, v := range r.Cells {
		out.Cells[k] = v
	}
	return out
}

// Variant is a named alternative row set of a table. Id 0 is the implicit
// base variant and is never listed.
type Variant struct {
	ID   int
	Name string
}

// BaseVariantID is the id of the implicit base variant.
const BaseVariantID = 0

// SecondaryKey is a non-primary key column.
type SecondaryKey struct {
	ColumnID string
	Unique   bool
}

// TableKeys declares the key columns of a table.
type TableKeys struct {
	PrimaryKeyColumnID string
	SecondaryKeys      []SecondaryKey
}

// Variable is a named table-level expression.
type Variable struct {
	ID         string
	Name       string
	Kind       ColumnKind
	TypeID     string
	Expression string
}

// ExportConfig controls code export of a table.
type ExportConfig struct {
	Enabled   bool
	Namespace string
	TypeName  string
}

// ViewType is the presentation of a view.
type ViewType string

// View types.
const (
	ViewGrid    ViewType = "Grid"
	ViewBoard   ViewType = "Board"
	ViewGallery ViewType = "Gallery"
	ViewChart   ViewType = "Chart"
)

// ParseViewType returns the view type named by s, defaulting to ViewGrid.
func ParseViewType(s string) ViewType {
	switch ViewType(s) {
	case ViewBoard, ViewGallery, ViewChart:
		return ViewType(s)
	default:
		return ViewGrid
	}
}

// ViewSort orders a view by one column.
type ViewSort struct {
	ColumnID   string
	Descending bool
}

// View is a saved presentation of a table.
type View struct {
	ID              string
	Name            string
	Type            ViewType
	Filter          string
	Sorts           []ViewSort
	GroupByColumnID string
	HiddenColumnIDs []string
}

// Table is one spreadsheet-like table of a project.
type Table struct {
	ID       string
	Name     string
	FileName string
	FolderID string

	SchemaSourceTableID      string
	InheritanceSourceTableID string
	ParentTableID            string
	ParentRowColumnID        string

	SystemKey               string
	SystemSchemaLocked      bool
	SystemDataLocked        bool
	PluginTableTypeID       string
	PluginOwnerColumnTypeID string
	PluginSchemaLocked      bool

	Columns   []Column
	Variants  []Variant
	Keys      *TableKeys
	Variables []Variable
	Derived   *DerivedConfig
	Export    *ExportConfig
	Views     []View

	// Rows holds the base rows of a regular table. For a derived table it
	// holds only the base-variant own-data: locally authored cells keyed by
	// derived row id.
	Rows []Row

	// VariantDeltas holds the non-empty overlays, sorted by variant id.
	VariantDeltas []VariantDelta
}

// IsDerived reports whether the table's rows are computed from other tables.
func (t *Table) IsDerived() bool {
	return t.Derived != nil
}

// ColumnByID returns the column with the given id, or nil.
func (t *Table) ColumnByID(id string) *Column {
	for i := range t.Columns {
		if t.Columns[i].ID == id {
			return &t.Columns[i]
		}
	}
	return nil
}

// Delta returns the overlay for variantID, or nil.
func (t *Table) Delta(variantID int) *VariantDelta {
	for i := range t.VariantDeltas {
		if t.VariantDeltas[i].VariantID == variantID {
			return &t.VariantDeltas[i]
		}
	}
	return nil
}
